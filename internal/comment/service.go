package comment

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/evcraddock/project-tracker/internal/activity"
	"github.com/evcraddock/project-tracker/internal/people"
	"github.com/evcraddock/project-tracker/internal/target"
)

// Targets loads and saves the objects comments attach to.
type Targets interface {
	Load(ref target.Ref) (target.Target, error)
	Save(t target.Target) error
	Delete(ref target.Ref) error
	CommentCount(ref target.Ref) (int, error)
}

// ActivityLog records project activity.
type ActivityLog interface {
	Record(projectID int64, subject activity.Subject, action activity.Action) (*activity.Activity, error)
	DeleteAllFor(targetType string, targetID int64) error
}

// CreateRequest carries the attributes of a new comment together with the
// flags that only matter while it is being created.
type CreateRequest struct {
	Target             target.Ref
	UserID             int64
	ProjectID          *int64
	Body               string
	Hours              *float64
	HumanHours         *string // parsed into Hours when set
	Status             int
	Billable           bool
	AssignedID         *int64
	PreviousAssignedID *int64

	// IsPrivate is nil unless the author chose a privacy setting.
	IsPrivate *bool
	// PrivateWatcherIDs replaces the watchers of a target made private by
	// its owner. Nil means no list was given.
	PrivateWatcherIDs []int64
	// MentionedUserIDs are users mentioned in the body, resolved by the caller.
	MentionedUserIDs []int64

	Uploads         []UploadAttributes
	UploadIDs       []int64
	LinkedDocuments []LinkedDocumentAttributes

	// Importing skips duplicate detection.
	Importing bool
}

// UpdateRequest changes an existing comment. Nil fields are left alone.
type UpdateRequest struct {
	Body            *string
	Hours           *float64
	HumanHours      *string
	Status          *int
	Billable        *bool
	AssignedID      *int64
	IsPrivate       *bool
	Uploads         []UploadAttributes
	LinkedDocuments []LinkedDocumentAttributes
}

// Result is the outcome of creating a comment.
type Result struct {
	Comment  *Comment           `json:"comment"`
	Activity *activity.Activity `json:"activity,omitempty"`
}

// operation holds the request-scoped state of one Create call.
type operation struct {
	privateSet        bool
	privateWatcherIDs []int64
	mentionedUserIDs  []int64
	importing         bool
}

// Service provides comment business logic.
type Service struct {
	repo     *Repository
	targets  Targets
	users    people.Directory
	activity ActivityLog
	now      func() time.Time
}

// NewService creates a comment service.
func NewService(repo *Repository, targets Targets, users people.Directory, log ActivityLog) *Service {
	return &Service{
		repo:     repo,
		targets:  targets,
		users:    users,
		activity: log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Create validates and stores a new comment, then applies it to its target
// and the project's activity log. Validation failures are returned as a
// *ValidationError and nothing is stored. Failures after the comment is
// stored are logged and do not undo it.
func (s *Service) Create(req CreateRequest) (*Result, error) {
	c, op, err := s.build(req)
	if err != nil {
		return nil, err
	}

	verr := &ValidationError{}

	var t target.Target
	if c.HasTarget() {
		t, err = s.targets.Load(c.Target())
		if errors.Is(err, target.ErrNotFound) {
			verr.Add("target", ErrNotFound)
		} else if err != nil {
			return nil, fmt.Errorf("loading target: %w", err)
		}
	}

	if t != nil {
		resolveOwnership(c, t, op.privateSet)
	}
	formatBody(c)

	if err := s.validate(c, verr); err != nil {
		return nil, err
	}

	if t != nil && !op.importing && !c.HasHours() {
		preceding, err := s.repo.LatestByUser(c.Target(), c.UserID)
		if err != nil {
			return nil, fmt.Errorf("checking for duplicate: %w", err)
		}
		if isDuplicate(c, preceding) {
			verr.Add("body", ErrDuplicate)
		}
	}

	if err := verr.errOrNil(); err != nil {
		return nil, err
	}

	c.CreatedAt = s.now()
	c.UpdatedAt = c.CreatedAt
	if err := s.repo.Insert(c); err != nil {
		return nil, fmt.Errorf("saving comment: %w", err)
	}
	slog.Info("comment created", "comment_id", c.ID, "thread", c.ThreadID(), "user_id", c.UserID)

	res := &Result{Comment: c}
	if c.ProjectID != nil {
		a, err := s.activity.Record(*c.ProjectID, c, activity.Create)
		if err != nil {
			slog.Warn("recording comment activity", "comment_id", c.ID, "error", err)
		} else {
			res.Activity = a
		}
	}

	if t != nil {
		fanOut(c, t, op)
		if err := s.targets.Save(t); err != nil {
			slog.Warn("saving comment target", "comment_id", c.ID, "target", t.Ref().String(), "error", err)
		}
	}

	return res, nil
}

// Update changes an existing comment. Ownership, duplicate detection and
// target side effects are not re-run.
func (s *Service) Update(id int64, req UpdateRequest) (*Comment, error) {
	c, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if req.Body != nil {
		c.Body = *req.Body
	}
	if req.Hours != nil {
		h := *req.Hours
		c.Hours = &h
	}
	if req.HumanHours != nil {
		c.SetHumanHours(*req.HumanHours)
	}
	if req.Status != nil {
		c.Status = *req.Status
	}
	if req.Billable != nil {
		c.Billable = *req.Billable
	}
	if req.AssignedID != nil && !equalPtr(req.AssignedID, c.AssignedID) {
		c.PreviousAssignedID = c.AssignedID
		assigned := *req.AssignedID
		c.AssignedID = &assigned
	}
	if req.IsPrivate != nil {
		c.IsPrivate = *req.IsPrivate
	}

	removedUploads, err := assignUploads(c, req.Uploads)
	if err != nil {
		return nil, err
	}
	removedDocuments, err := assignLinkedDocuments(c, req.LinkedDocuments)
	if err != nil {
		return nil, err
	}

	formatBody(c)

	verr := &ValidationError{}
	if err := s.validate(c, verr); err != nil {
		return nil, err
	}
	if err := verr.errOrNil(); err != nil {
		return nil, err
	}

	c.UpdatedAt = s.now()
	if err := s.repo.Update(c, removedUploads, removedDocuments); err != nil {
		return nil, fmt.Errorf("saving comment: %w", err)
	}
	slog.Info("comment updated", "comment_id", c.ID)

	return c, nil
}

// Destroy deletes a comment, the activity that points at it, and its
// conversation when that was a simple one left with no comments.
func (s *Service) Destroy(id int64) error {
	c, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(id); err != nil {
		return err
	}
	slog.Info("comment deleted", "comment_id", id, "thread", c.ThreadID())

	if err := s.activity.DeleteAllFor(SubjectType, id); err != nil {
		return fmt.Errorf("cleaning up activity of comment %d: %w", id, err)
	}

	if !c.HasTarget() {
		return nil
	}
	return s.cleanupTarget(c.Target())
}

// cleanupTarget removes a disposable target with no comments left.
func (s *Service) cleanupTarget(ref target.Ref) error {
	t, err := s.targets.Load(ref)
	if errors.Is(err, target.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading target: %w", err)
	}

	d, ok := t.(target.Disposable)
	if !ok || !d.Simple() {
		return nil
	}

	n, err := s.targets.CommentCount(ref)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	if err := s.targets.Delete(ref); err != nil {
		return fmt.Errorf("removing empty %s: %w", ref, err)
	}
	slog.Info("removed empty conversation", "target", ref.String())
	return nil
}

// Get returns a comment with its people resolved.
func (s *Service) Get(id int64) (*Comment, error) {
	c, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if err := s.resolvePeople(c); err != nil {
		return nil, err
	}
	return c, nil
}

// ListByTarget returns the comments on a target, newest first, with their
// people resolved.
func (s *Service) ListByTarget(ref target.Ref) ([]*Comment, error) {
	comments, err := s.repo.ListByTarget(ref)
	if err != nil {
		return nil, err
	}
	for _, c := range comments {
		if err := s.resolvePeople(c); err != nil {
			return nil, err
		}
	}
	return comments, nil
}

// build assigns the request's attributes and children to a new comment.
func (s *Service) build(req CreateRequest) (*Comment, *operation, error) {
	c := &Comment{
		TargetType:         req.Target.Kind,
		TargetID:           req.Target.ID,
		UserID:             req.UserID,
		ProjectID:          req.ProjectID,
		Body:               req.Body,
		Hours:              req.Hours,
		Status:             req.Status,
		Billable:           req.Billable,
		AssignedID:         req.AssignedID,
		PreviousAssignedID: req.PreviousAssignedID,
	}
	if req.HumanHours != nil {
		c.SetHumanHours(*req.HumanHours)
	}

	op := &operation{
		privateWatcherIDs: req.PrivateWatcherIDs,
		mentionedUserIDs:  req.MentionedUserIDs,
		importing:         req.Importing,
	}
	if req.IsPrivate != nil {
		c.IsPrivate = *req.IsPrivate
		op.privateSet = true
	}

	if len(req.UploadIDs) > 0 {
		uploads, err := s.repo.UnattachedUploads(req.UploadIDs)
		if err != nil {
			return nil, nil, err
		}
		c.Uploads = append(c.Uploads, uploads...)
	}
	if _, err := assignUploads(c, req.Uploads); err != nil {
		return nil, nil, err
	}
	if _, err := assignLinkedDocuments(c, req.LinkedDocuments); err != nil {
		return nil, nil, err
	}

	return c, op, nil
}

// validate resolves the comment's people and records presence failures on
// verr. The returned error is for lookup failures only.
func (s *Service) validate(c *Comment, verr *ValidationError) error {
	if err := s.resolvePeople(c); err != nil {
		return err
	}

	if c.User == nil {
		verr.Add("user", ErrBlank)
	}
	if blank(c.Body) && !c.IsTaskComment() && len(c.Uploads) == 0 && len(c.LinkedDocuments) == 0 {
		verr.Add("body", ErrBlank)
	}
	if c.Hours != nil && *c.Hours < 0 {
		verr.Add("hours", ErrNegative)
	}
	return nil
}

// resolvePeople looks up the author and assignees, soft-deleted or not.
func (s *Service) resolvePeople(c *Comment) error {
	var err error
	if c.User, err = s.lookup(c.UserID); err != nil {
		return err
	}
	if c.AssignedID != nil {
		if c.Assigned, err = s.lookup(*c.AssignedID); err != nil {
			return err
		}
	}
	if c.PreviousAssignedID != nil {
		if c.PreviousAssigned, err = s.lookup(*c.PreviousAssignedID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) lookup(id int64) (*people.User, error) {
	if id == 0 {
		return nil, nil
	}
	u, err := s.users.FindIncludingDeleted(id)
	if err != nil {
		return nil, fmt.Errorf("looking up user %d: %w", id, err)
	}
	return u, nil
}
