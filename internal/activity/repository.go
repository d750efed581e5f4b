package activity

import (
	"database/sql"
	"fmt"
)

// Repository records and removes activity log entries.
type Repository struct {
	db *sql.DB
}

// NewRepository creates an activity repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const selectColumns = "id, project_id, user_id, target_type, target_id, action, created_at"

// Record appends an entry for subject to the project's log.
func (r *Repository) Record(projectID int64, subject Subject, action Action) (*Activity, error) {
	if projectID == 0 {
		return nil, fmt.Errorf("project is required")
	}

	result, err := r.db.Exec(
		"INSERT INTO activities (project_id, user_id, target_type, target_id, action) VALUES (?, ?, ?, ?, ?)",
		projectID, subject.AuthorID(), subject.SubjectType(), subject.SubjectID(), action,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting activity: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting insert id: %w", err)
	}

	var a Activity
	err = r.db.QueryRow(
		"SELECT "+selectColumns+" FROM activities WHERE id = ?", id,
	).Scan(&a.ID, &a.ProjectID, &a.UserID, &a.TargetType, &a.TargetID, &a.Action, &a.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("reading back activity: %w", err)
	}

	return &a, nil
}

// DeleteAllFor removes every entry pointing at the given target.
func (r *Repository) DeleteAllFor(targetType string, targetID int64) error {
	if _, err := r.db.Exec(
		"DELETE FROM activities WHERE target_type = ? AND target_id = ?",
		targetType, targetID,
	); err != nil {
		return fmt.Errorf("deleting activities for %s %d: %w", targetType, targetID, err)
	}
	return nil
}

// ListByProject returns a project's activity, newest first.
func (r *Repository) ListByProject(projectID int64) ([]*Activity, error) {
	return r.list("WHERE project_id = ? ORDER BY id DESC", projectID)
}

// ListFor returns all entries pointing at the given target, newest first.
func (r *Repository) ListFor(targetType string, targetID int64) ([]*Activity, error) {
	return r.list("WHERE target_type = ? AND target_id = ? ORDER BY id DESC", targetType, targetID)
}

func (r *Repository) list(where string, args ...interface{}) (activities []*Activity, err error) {
	rows, err := r.db.Query("SELECT "+selectColumns+" FROM activities "+where, args...)
	if err != nil {
		return nil, fmt.Errorf("listing activities: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	for rows.Next() {
		var a Activity
		if err := rows.Scan(&a.ID, &a.ProjectID, &a.UserID, &a.TargetType, &a.TargetID, &a.Action, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning activity: %w", err)
		}
		activities = append(activities, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating activities: %w", err)
	}

	return activities, nil
}
