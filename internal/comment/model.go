// Package comment provides the comment domain model, its validation and the
// side effects of creating and destroying comments.
package comment

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/evcraddock/project-tracker/internal/people"
	"github.com/evcraddock/project-tracker/internal/target"
)

// SubjectType is the type name comments are logged under in activities.
const SubjectType = "Comment"

// Comment is a note left by a user on a target.
type Comment struct {
	ID                 int64             `json:"id"`
	TargetType         target.Kind       `json:"target_type,omitempty"`
	TargetID           int64             `json:"target_id,omitempty"`
	UserID             int64             `json:"user_id"`
	ProjectID          *int64            `json:"project_id,omitempty"`
	AssignedID         *int64            `json:"assigned_id,omitempty"`
	PreviousAssignedID *int64            `json:"previous_assigned_id,omitempty"`
	Body               string            `json:"body"`
	BodyHTML           string            `json:"body_html"`
	Hours              *float64          `json:"hours,omitempty"`
	Status             int               `json:"status"`
	Billable           bool              `json:"billable"`
	IsPrivate          bool              `json:"is_private"`
	Uploads            []*Upload         `json:"uploads,omitempty"`
	LinkedDocuments    []*LinkedDocument `json:"linked_documents,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`

	// Resolved once on load; soft-deleted users are included.
	User             *people.User `json:"user,omitempty"`
	Assigned         *people.User `json:"assigned,omitempty"`
	PreviousAssigned *people.User `json:"previous_assigned,omitempty"`
}

// Upload is file metadata attached to a comment.
type Upload struct {
	ID          int64     `json:"id"`
	CommentID   *int64    `json:"comment_id,omitempty"`
	FileName    string    `json:"file_name"`
	FileSize    int64     `json:"file_size"`
	ContentType string    `json:"content_type,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Signature identifies an upload's content for duplicate detection.
func (u *Upload) Signature() string {
	return u.FileName + "_" + strconv.FormatInt(u.FileSize, 10)
}

// LinkedDocument is an external document linked from a comment.
type LinkedDocument struct {
	ID        int64     `json:"id"`
	CommentID int64     `json:"comment_id"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

// Target returns the reference to the object the comment is attached to.
func (c *Comment) Target() target.Ref {
	return target.Ref{Kind: c.TargetType, ID: c.TargetID}
}

// HasTarget reports whether the comment points at a target.
func (c *Comment) HasTarget() bool {
	return c.TargetID != 0
}

// IsTaskComment reports whether the comment is attached to a task.
func (c *Comment) IsTaskComment() bool {
	return c.TargetType == target.KindTask
}

// HasHours reports whether time was tracked on the comment.
func (c *Comment) HasHours() bool {
	return c.Hours != nil && *c.Hours > 0
}

// HumanHours returns the hours as entered-style text, or "" when unset.
func (c *Comment) HumanHours() string {
	if c.Hours == nil {
		return ""
	}
	return strconv.FormatFloat(*c.Hours, 'g', -1, 64)
}

// SetHumanHours parses a duration such as "2h 30m" into Hours.
func (c *Comment) SetHumanHours(duration string) {
	c.Hours = ParseHours(duration)
}

// ThreadID names the discussion thread the comment belongs to.
func (c *Comment) ThreadID() string {
	return fmt.Sprintf("%s_%d", c.TargetType, c.TargetID)
}

// References lists the IDs of every record the comment points at, keyed by
// table name.
func (c *Comment) References() map[string][]int64 {
	refs := map[string][]int64{
		"users":    {c.UserID},
		"projects": {},
		"people":   {},
	}
	if c.ProjectID != nil {
		refs["projects"] = append(refs["projects"], *c.ProjectID)
	}
	if table := c.TargetType.Table(); table != "" {
		refs[table] = []int64{c.TargetID}
	}
	if c.AssignedID != nil {
		refs["people"] = append(refs["people"], *c.AssignedID)
	}
	if c.PreviousAssignedID != nil {
		refs["people"] = append(refs["people"], *c.PreviousAssignedID)
	}
	return refs
}

// SubjectType, SubjectID and AuthorID make a comment an activity subject.
func (c *Comment) SubjectType() string { return SubjectType }
func (c *Comment) SubjectID() int64    { return c.ID }
func (c *Comment) AuthorID() int64     { return c.UserID }

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
