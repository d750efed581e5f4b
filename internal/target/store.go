package target

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// New describes a target to create.
type New struct {
	Kind      Kind
	UserID    int64
	ProjectID *int64
	Title     string
	Private   bool
	Simple    bool
}

// Validate checks the fields required to create a target.
func (n New) Validate() error {
	if !n.Kind.IsValid() {
		return fmt.Errorf("invalid target kind: %q", n.Kind)
	}
	if strings.TrimSpace(n.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if n.Private && n.Kind != KindTask && n.Kind != KindConversation {
		return fmt.Errorf("%s targets cannot be private", n.Kind)
	}
	if n.Simple && n.Kind != KindConversation {
		return fmt.Errorf("only conversations can be simple")
	}
	return nil
}

// Store loads and saves targets of every kind.
type Store struct {
	db *sql.DB
}

// NewStore creates a target store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const baseColumns = "id, user_id, project_id, title, comments_count, created_at"

var extraColumns = map[Kind][]string{
	KindTask:         {"is_private", "updated_at"},
	KindConversation: {"simple", "is_private", "updated_at"},
	KindPage:         {"updated_at"},
	KindNote:         nil,
}

// Create validates and inserts a new target. Its owner starts out watching it.
func (s *Store) Create(n New) (Target, error) {
	if err := n.Validate(); err != nil {
		return nil, err
	}

	cols := []string{"user_id", "project_id", "title"}
	args := []interface{}{nullableID(n.UserID), n.ProjectID, strings.TrimSpace(n.Title)}
	switch n.Kind {
	case KindTask:
		cols = append(cols, "is_private")
		args = append(args, n.Private)
	case KindConversation:
		cols = append(cols, "is_private", "simple")
		args = append(args, n.Private, n.Simple)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		n.Kind.Table(), strings.Join(cols, ", "), placeholders(len(cols)))
	result, err := s.db.Exec(query, args...)
	if err != nil {
		return nil, fmt.Errorf("inserting %s: %w", strings.ToLower(string(n.Kind)), err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting insert id: %w", err)
	}

	t, err := s.Load(Ref{Kind: n.Kind, ID: id})
	if err != nil {
		return nil, err
	}

	if w, ok := t.(Watchable); ok && n.UserID != 0 {
		w.AddWatchers(n.UserID)
		if err := s.Save(t); err != nil {
			return nil, err
		}
	}

	return t, nil
}

// Load returns the target a reference points at. A missing row yields an
// error wrapping ErrNotFound.
func (s *Store) Load(ref Ref) (Target, error) {
	var t Target
	var base *Base
	var extra []interface{}

	switch ref.Kind {
	case KindTask:
		task := &Task{}
		t, base = task, &task.Base
		extra = []interface{}{&task.Private, &task.UpdatedAt}
	case KindConversation:
		c := &Conversation{}
		t, base = c, &c.Base
		extra = []interface{}{&c.IsSimple, &c.Private, &c.UpdatedAt}
	case KindPage:
		p := &Page{}
		t, base = p, &p.Base
		extra = []interface{}{&p.UpdatedAt}
	case KindNote:
		n := &Note{}
		t, base = n, &n.Base
	default:
		return nil, fmt.Errorf("unknown target kind: %q", ref.Kind)
	}

	cols := baseColumns
	if more := extraColumns[ref.Kind]; len(more) > 0 {
		cols += ", " + strings.Join(more, ", ")
	}

	var userID, projectID sql.NullInt64
	dest := append([]interface{}{&base.ID, &userID, &projectID, &base.Title, &base.CommentsCount, &base.CreatedAt}, extra...)
	err := s.db.QueryRow(
		fmt.Sprintf("SELECT %s FROM %s WHERE id = ?", cols, ref.Kind.Table()), ref.ID,
	).Scan(dest...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s %d: %w", ref.Kind, ref.ID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying %s %d: %w", ref.Kind, ref.ID, err)
	}

	base.UserID = userID.Int64
	if projectID.Valid {
		id := projectID.Int64
		base.ProjectID = &id
	}

	if w, ok := t.(Watchable); ok {
		ids, err := s.watchers(ref)
		if err != nil {
			return nil, err
		}
		w.SetPrivateWatchers(ids)
	}

	return t, nil
}

// Save writes a target's mutable state: privacy, update time and watchers.
// Unlike Create it does not validate, so side effects of a new comment are
// never blocked by unrelated invalid target state.
func (s *Store) Save(t Target) (err error) {
	ref := t.Ref()
	table := ref.Kind.Table()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				err = fmt.Errorf("%w (also failed to roll back: %v)", err, rbErr)
			}
		}
	}()

	if p, ok := t.(Private); ok {
		if _, err := tx.Exec(fmt.Sprintf("UPDATE %s SET is_private = ? WHERE id = ?", table), p.IsPrivate(), ref.ID); err != nil {
			return fmt.Errorf("saving privacy of %s: %w", ref, err)
		}
	}

	if u, ok := t.(Touchable); ok && !u.LastUpdated().IsZero() {
		if _, err := tx.Exec(fmt.Sprintf("UPDATE %s SET updated_at = ? WHERE id = ?", table), u.LastUpdated().UTC(), ref.ID); err != nil {
			return fmt.Errorf("saving updated_at of %s: %w", ref, err)
		}
	}

	if w, ok := t.(Watchable); ok {
		if _, err := tx.Exec(
			"DELETE FROM watchers WHERE target_type = ? AND target_id = ?", ref.Kind, ref.ID,
		); err != nil {
			return fmt.Errorf("clearing watchers of %s: %w", ref, err)
		}
		for _, userID := range w.Watchers() {
			if _, err := tx.Exec(
				"INSERT INTO watchers (target_type, target_id, user_id) VALUES (?, ?, ?)",
				ref.Kind, ref.ID, userID,
			); err != nil {
				return fmt.Errorf("adding watcher %d to %s: %w", userID, ref, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing %s: %w", ref, err)
	}
	return nil
}

// Delete removes a target and its watchers.
func (s *Store) Delete(ref Ref) (err error) {
	if !ref.Kind.IsValid() {
		return fmt.Errorf("unknown target kind: %q", ref.Kind)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				err = fmt.Errorf("%w (also failed to roll back: %v)", err, rbErr)
			}
		}
	}()

	result, err := tx.Exec(fmt.Sprintf("DELETE FROM %s WHERE id = ?", ref.Kind.Table()), ref.ID)
	if err != nil {
		return fmt.Errorf("deleting %s: %w", ref, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%s %d: %w", ref.Kind, ref.ID, ErrNotFound)
	}

	if _, err := tx.Exec(
		"DELETE FROM watchers WHERE target_type = ? AND target_id = ?", ref.Kind, ref.ID,
	); err != nil {
		return fmt.Errorf("deleting watchers of %s: %w", ref, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing delete of %s: %w", ref, err)
	}
	return nil
}

// CommentCount counts the comments currently attached to a target.
func (s *Store) CommentCount(ref Ref) (int, error) {
	var n int
	if err := s.db.QueryRow(
		"SELECT COUNT(*) FROM comments WHERE target_type = ? AND target_id = ?", ref.Kind, ref.ID,
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting comments on %s: %w", ref, err)
	}
	return n, nil
}

func (s *Store) watchers(ref Ref) (ids []int64, err error) {
	rows, err := s.db.Query(
		"SELECT user_id FROM watchers WHERE target_type = ? AND target_id = ? ORDER BY user_id",
		ref.Kind, ref.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing watchers of %s: %w", ref, err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning watcher: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating watchers: %w", err)
	}

	return ids, nil
}

func nullableID(id int64) interface{} {
	if id == 0 {
		return nil
	}
	return id
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
