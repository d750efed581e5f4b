package comment

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/evcraddock/project-tracker/internal/target"
)

// Repository persists comments and their uploads and linked documents.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a comment repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const selectColumns = `id, target_type, target_id, user_id, project_id, assigned_id, previous_assigned_id,
	body, body_html, hours, status, billable, is_private, created_at, updated_at`

const insertSQL = `INSERT INTO comments
	(target_type, target_id, user_id, project_id, assigned_id, previous_assigned_id,
	 body, body_html, hours, status, billable, is_private, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const updateSQL = `UPDATE comments SET
	assigned_id = ?, previous_assigned_id = ?, body = ?, body_html = ?, hours = ?,
	status = ?, billable = ?, is_private = ?, updated_at = ?
	WHERE id = ?`

// scanComment scans a comment from a database row.
func scanComment(row interface{ Scan(...interface{}) error }) (*Comment, error) {
	var c Comment
	var targetType string
	var projectID, assignedID, previousAssignedID sql.NullInt64
	var hours sql.NullFloat64

	err := row.Scan(
		&c.ID, &targetType, &c.TargetID, &c.UserID, &projectID, &assignedID, &previousAssignedID,
		&c.Body, &c.BodyHTML, &hours, &c.Status, &c.Billable, &c.IsPrivate, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.TargetType = target.Kind(targetType)
	c.ProjectID = nullInt(projectID)
	c.AssignedID = nullInt(assignedID)
	c.PreviousAssignedID = nullInt(previousAssignedID)
	if hours.Valid {
		h := hours.Float64
		c.Hours = &h
	}
	return &c, nil
}

// Insert stores a new comment with its children and bumps the target's
// comment count, all in one transaction.
func (r *Repository) Insert(c *Comment) (err error) {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer rollbackOnError(tx, &err)

	result, err := tx.Exec(insertSQL,
		string(c.TargetType), c.TargetID, c.UserID, c.ProjectID, c.AssignedID, c.PreviousAssignedID,
		c.Body, c.BodyHTML, c.Hours, c.Status, c.Billable, c.IsPrivate, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting comment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting insert id: %w", err)
	}
	c.ID = id

	if err := saveChildren(tx, c); err != nil {
		return err
	}

	if err := adjustCommentsCount(tx, c, 1); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing comment: %w", err)
	}
	return nil
}

// Update writes an existing comment's editable fields and children.
func (r *Repository) Update(c *Comment, removedUploads, removedDocuments []int64) (err error) {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer rollbackOnError(tx, &err)

	result, err := tx.Exec(updateSQL,
		c.AssignedID, c.PreviousAssignedID, c.Body, c.BodyHTML, c.Hours,
		c.Status, c.Billable, c.IsPrivate, c.UpdatedAt, c.ID,
	)
	if err != nil {
		return fmt.Errorf("updating comment %d: %w", c.ID, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("comment %d %w", c.ID, ErrNotFound)
	}

	for _, id := range removedUploads {
		if _, err := tx.Exec("DELETE FROM uploads WHERE id = ? AND comment_id = ?", id, c.ID); err != nil {
			return fmt.Errorf("removing upload %d: %w", id, err)
		}
	}
	for _, id := range removedDocuments {
		if _, err := tx.Exec("DELETE FROM linked_documents WHERE id = ? AND comment_id = ?", id, c.ID); err != nil {
			return fmt.Errorf("removing linked document %d: %w", id, err)
		}
	}

	if err := saveChildren(tx, c); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing comment %d: %w", c.ID, err)
	}
	return nil
}

// Delete removes a comment by ID. Uploads and linked documents go with it.
func (r *Repository) Delete(id int64) (err error) {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer rollbackOnError(tx, &err)

	var c Comment
	var targetType string
	err = tx.QueryRow("SELECT target_type, target_id FROM comments WHERE id = ?", id).Scan(&targetType, &c.TargetID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("comment %d %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("querying comment %d: %w", id, err)
	}
	c.TargetType = target.Kind(targetType)

	if _, err := tx.Exec("DELETE FROM comments WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting comment: %w", err)
	}

	if err := adjustCommentsCount(tx, &c, -1); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing delete of comment %d: %w", id, err)
	}
	return nil
}

// GetByID returns a comment with its children.
func (r *Repository) GetByID(id int64) (*Comment, error) {
	c, err := scanComment(r.db.QueryRow("SELECT "+selectColumns+" FROM comments WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("comment %d %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying comment %d: %w", id, err)
	}

	if err := r.loadChildren(c); err != nil {
		return nil, err
	}
	return c, nil
}

// LatestByUser returns the newest comment a user left on a target, or nil
// when there is none.
func (r *Repository) LatestByUser(ref target.Ref, userID int64) (*Comment, error) {
	c, err := scanComment(r.db.QueryRow(
		"SELECT "+selectColumns+` FROM comments
		 WHERE target_type = ? AND target_id = ? AND user_id = ?
		 ORDER BY id DESC LIMIT 1`,
		string(ref.Kind), ref.ID, userID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying latest comment on %s: %w", ref, err)
	}

	if err := r.loadChildren(c); err != nil {
		return nil, err
	}
	return c, nil
}

// ListByTarget returns all comments on a target, newest first.
func (r *Repository) ListByTarget(ref target.Ref) ([]*Comment, error) {
	return r.list("WHERE target_type = ? AND target_id = ? ORDER BY id DESC", string(ref.Kind), ref.ID)
}

// ListWithHours returns a project's comments that tracked time, newest first.
func (r *Repository) ListWithHours(projectID int64) ([]*Comment, error) {
	return r.list("WHERE project_id = ? AND hours > 0 ORDER BY id DESC", projectID)
}

// CreateUpload stores an upload that is not yet attached to a comment.
func (r *Repository) CreateUpload(fileName string, fileSize int64, contentType string) (*Upload, error) {
	if blank(fileName) {
		return nil, fmt.Errorf("file name is required")
	}

	result, err := r.db.Exec(
		"INSERT INTO uploads (file_name, file_size, content_type) VALUES (?, ?, ?)",
		strings.TrimSpace(fileName), fileSize, contentType,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting upload: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting insert id: %w", err)
	}

	u, err := scanUpload(r.db.QueryRow("SELECT "+uploadColumns+" FROM uploads WHERE id = ?", id))
	if err != nil {
		return nil, fmt.Errorf("reading back upload: %w", err)
	}
	return u, nil
}

// UnattachedUploads returns the uploads with the given IDs, all of which
// must exist and not yet belong to a comment.
func (r *Repository) UnattachedUploads(ids []int64) ([]*Upload, error) {
	uploads := make([]*Upload, 0, len(ids))
	for _, id := range ids {
		u, err := scanUpload(r.db.QueryRow(
			"SELECT "+uploadColumns+" FROM uploads WHERE id = ? AND comment_id IS NULL", id,
		))
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("upload %d not found or already attached", id)
		}
		if err != nil {
			return nil, fmt.Errorf("querying upload %d: %w", id, err)
		}
		uploads = append(uploads, u)
	}
	return uploads, nil
}

func (r *Repository) list(where string, args ...interface{}) ([]*Comment, error) {
	comments, err := r.queryComments("SELECT "+selectColumns+" FROM comments "+where, args...)
	if err != nil {
		return nil, err
	}

	for _, c := range comments {
		if err := r.loadChildren(c); err != nil {
			return nil, err
		}
	}
	return comments, nil
}

func (r *Repository) queryComments(query string, args ...interface{}) (comments []*Comment, err error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning comment: %w", err)
		}
		comments = append(comments, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating comments: %w", err)
	}

	return comments, nil
}

const uploadColumns = "id, comment_id, file_name, file_size, content_type, created_at"

func scanUpload(row interface{ Scan(...interface{}) error }) (*Upload, error) {
	var u Upload
	var commentID sql.NullInt64
	if err := row.Scan(&u.ID, &commentID, &u.FileName, &u.FileSize, &u.ContentType, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.CommentID = nullInt(commentID)
	return &u, nil
}

func (r *Repository) loadChildren(c *Comment) (err error) {
	c.Uploads, err = r.uploads(c.ID)
	if err != nil {
		return err
	}
	c.LinkedDocuments, err = r.linkedDocuments(c.ID)
	return err
}

func (r *Repository) uploads(commentID int64) (uploads []*Upload, err error) {
	rows, err := r.db.Query("SELECT "+uploadColumns+" FROM uploads WHERE comment_id = ? ORDER BY id", commentID)
	if err != nil {
		return nil, fmt.Errorf("listing uploads: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	for rows.Next() {
		u, err := scanUpload(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning upload: %w", err)
		}
		uploads = append(uploads, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating uploads: %w", err)
	}

	return uploads, nil
}

func (r *Repository) linkedDocuments(commentID int64) (docs []*LinkedDocument, err error) {
	rows, err := r.db.Query(
		"SELECT id, comment_id, title, url, created_at FROM linked_documents WHERE comment_id = ? ORDER BY id",
		commentID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing linked documents: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	for rows.Next() {
		var d LinkedDocument
		if err := rows.Scan(&d.ID, &d.CommentID, &d.Title, &d.URL, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning linked document: %w", err)
		}
		docs = append(docs, &d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating linked documents: %w", err)
	}

	return docs, nil
}

// saveChildren inserts new uploads and documents and updates existing ones.
// Existing uploads may be unattached ones being claimed by c.
func saveChildren(tx *sql.Tx, c *Comment) error {
	for _, u := range c.Uploads {
		if u.ID == 0 {
			result, err := tx.Exec(
				"INSERT INTO uploads (comment_id, file_name, file_size, content_type) VALUES (?, ?, ?, ?)",
				c.ID, u.FileName, u.FileSize, u.ContentType,
			)
			if err != nil {
				return fmt.Errorf("inserting upload %s: %w", u.FileName, err)
			}
			if u.ID, err = result.LastInsertId(); err != nil {
				return fmt.Errorf("getting upload id: %w", err)
			}
		} else {
			result, err := tx.Exec(
				`UPDATE uploads SET comment_id = ?, file_name = ?, file_size = ?, content_type = ?
				 WHERE id = ? AND (comment_id IS NULL OR comment_id = ?)`,
				c.ID, u.FileName, u.FileSize, u.ContentType, u.ID, c.ID,
			)
			if err != nil {
				return fmt.Errorf("updating upload %d: %w", u.ID, err)
			}
			if n, err := result.RowsAffected(); err != nil || n == 0 {
				return fmt.Errorf("upload %d belongs to another comment", u.ID)
			}
		}
		id := c.ID
		u.CommentID = &id
	}

	for _, d := range c.LinkedDocuments {
		if d.ID == 0 {
			result, err := tx.Exec(
				"INSERT INTO linked_documents (comment_id, title, url) VALUES (?, ?, ?)",
				c.ID, d.Title, d.URL,
			)
			if err != nil {
				return fmt.Errorf("inserting linked document %s: %w", d.Title, err)
			}
			if d.ID, err = result.LastInsertId(); err != nil {
				return fmt.Errorf("getting linked document id: %w", err)
			}
		} else if _, err := tx.Exec(
			"UPDATE linked_documents SET title = ?, url = ? WHERE id = ? AND comment_id = ?",
			d.Title, d.URL, d.ID, c.ID,
		); err != nil {
			return fmt.Errorf("updating linked document %d: %w", d.ID, err)
		}
		d.CommentID = c.ID
	}

	return nil
}

// adjustCommentsCount keeps the target's comments_count column in step.
func adjustCommentsCount(tx *sql.Tx, c *Comment, delta int) error {
	table := c.TargetType.Table()
	if !c.HasTarget() || table == "" {
		return nil
	}

	query := fmt.Sprintf("UPDATE %s SET comments_count = MAX(comments_count + ?, 0) WHERE id = ?", table)
	if _, err := tx.Exec(query, delta, c.TargetID); err != nil {
		return fmt.Errorf("updating comment count of %s: %w", c.Target(), err)
	}
	return nil
}

func rollbackOnError(tx *sql.Tx, err *error) {
	if *err == nil {
		return
	}
	if rbErr := tx.Rollback(); rbErr != nil {
		*err = fmt.Errorf("%w (also failed to roll back: %v)", *err, rbErr)
	}
}

func nullInt(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}
