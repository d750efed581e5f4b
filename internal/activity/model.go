// Package activity provides the per-project activity log.
package activity

import "time"

// Action is what happened to the activity's target.
type Action string

const (
	Create Action = "create"
	Edit   Action = "edit"
	Delete Action = "delete"
)

// Subject is anything an activity can point at.
type Subject interface {
	SubjectType() string
	SubjectID() int64
	AuthorID() int64
}

// Activity is one entry of a project's activity log.
type Activity struct {
	ID         int64     `json:"id"`
	ProjectID  int64     `json:"project_id"`
	UserID     int64     `json:"user_id"`
	TargetType string    `json:"target_type"`
	TargetID   int64     `json:"target_id"`
	Action     Action    `json:"action"`
	CreatedAt  time.Time `json:"created_at"`
}
