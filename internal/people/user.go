// Package people provides the user directory that comments resolve their
// author and assignees against. Removed users are soft-deleted so old
// comments keep resolving them.
package people

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// User is a person who can author comments and be assigned work.
type User struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Deleted reports whether the user has been soft-deleted.
func (u *User) Deleted() bool {
	return u.DeletedAt != nil
}

// Directory looks users up by ID, including soft-deleted ones.
// A missing user is reported as (nil, nil).
type Directory interface {
	FindIncludingDeleted(id int64) (*User, error)
}

// Store manages users in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore creates a user store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const selectColumns = "id, name, email, deleted_at, created_at"

// Add creates a new user.
func (s *Store) Add(name, email string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)

	if email == "" {
		return nil, fmt.Errorf("email is required")
	}

	result, err := s.db.Exec(
		"INSERT INTO users (name, email) VALUES (?, ?)",
		name, email,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return nil, fmt.Errorf("user already exists: %s", email)
		}
		return nil, fmt.Errorf("adding user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting user ID: %w", err)
	}

	return s.GetByID(id)
}

// GetByID returns an active user by ID. Soft-deleted users are not found.
func (s *Store) GetByID(id int64) (*User, error) {
	u, err := s.scanOne(
		"SELECT "+selectColumns+" FROM users WHERE id = ? AND deleted_at IS NULL", id,
	)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("user %d not found", id)
	}
	return u, nil
}

// FindIncludingDeleted returns the user with the given ID whether or not it
// has been soft-deleted. It returns (nil, nil) when no such row exists.
func (s *Store) FindIncludingDeleted(id int64) (*User, error) {
	if id == 0 {
		return nil, nil
	}
	return s.scanOne("SELECT "+selectColumns+" FROM users WHERE id = ?", id)
}

// List returns all active users.
func (s *Store) List() (users []*User, err error) {
	rows, err := s.db.Query(
		"SELECT " + selectColumns + " FROM users WHERE deleted_at IS NULL ORDER BY email",
	)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", cerr)
		}
	}()

	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating users: %w", err)
	}

	return users, nil
}

// SoftDelete marks a user as deleted without removing the row.
func (s *Store) SoftDelete(id int64) error {
	result, err := s.db.Exec(
		"UPDATE users SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL",
		time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("user %d not found", id)
	}

	return nil
}

func (s *Store) scanOne(query string, args ...interface{}) (*User, error) {
	u, err := scanUser(s.db.QueryRow(query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return u, nil
}

func scanUser(row interface{ Scan(...interface{}) error }) (*User, error) {
	var u User
	var deletedAt sql.NullTime
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &deletedAt, &u.CreatedAt); err != nil {
		return nil, err
	}
	if deletedAt.Valid {
		t := deletedAt.Time
		u.DeletedAt = &t
	}
	return &u, nil
}
