package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestOpen(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T) string
		wantErr bool
	}{
		{
			name: "creates new database",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "tracker.db")
			},
		},
		{
			name: "creates nested directories",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "a", "b", "tracker.db")
			},
		},
		{
			name: "opens existing database",
			setup: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "tracker.db")
				d, err := Open(path)
				if err != nil {
					t.Fatalf("setup: %v", err)
				}
				if err := d.Close(); err != nil {
					t.Fatalf("setup close: %v", err)
				}
				return path
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tt.setup(t)
			d, err := Open(path)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			defer func() {
				if err := d.Close(); err != nil {
					t.Errorf("close: %v", err)
				}
			}()

			if _, err := os.Stat(path); os.IsNotExist(err) {
				t.Error("database file was not created")
			}
		})
	}
}

func TestWALMode(t *testing.T) {
	d := openTestDB(t)

	var mode string
	if err := d.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want %q", mode, "wal")
	}
}

func TestForeignKeys(t *testing.T) {
	d := openTestDB(t)

	var fk int
	if err := d.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatalf("query foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Errorf("foreign_keys = %d, want 1", fk)
	}
}

func TestMigrations(t *testing.T) {
	tests := []struct {
		name  string
		table string
		cols  []string
	}{
		{
			name:  "users table exists",
			table: "users",
			cols:  []string{"id", "name", "email", "deleted_at", "created_at"},
		},
		{
			name:  "conversations table exists",
			table: "conversations",
			cols:  []string{"id", "project_id", "user_id", "title", "simple", "is_private", "comments_count", "created_at", "updated_at"},
		},
		{
			name:  "comments table exists",
			table: "comments",
			cols: []string{
				"id", "target_type", "target_id", "user_id", "project_id", "assigned_id", "previous_assigned_id",
				"body", "hours", "status", "billable", "is_private", "created_at", "updated_at", "body_html",
			},
		},
		{
			name:  "uploads table exists",
			table: "uploads",
			cols:  []string{"id", "comment_id", "file_name", "file_size", "content_type", "created_at"},
		},
		{
			name:  "activities table exists",
			table: "activities",
			cols:  []string{"id", "project_id", "user_id", "target_type", "target_id", "action", "created_at"},
		},
	}

	d := openTestDB(t)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cols := tableColumns(t, d, tt.table)
			if len(cols) != len(tt.cols) {
				t.Fatalf("got %d columns, want %d: %v", len(cols), len(tt.cols), cols)
			}
			for i, want := range tt.cols {
				if cols[i] != want {
					t.Errorf("column %d = %q, want %q", i, cols[i], want)
				}
			}
		})
	}
}

func TestHoursConstraint(t *testing.T) {
	d := openTestDB(t)

	insert := `INSERT INTO comments (user_id, hours, created_at, updated_at) VALUES (?, ?, ?, ?)`

	tests := []struct {
		name    string
		hours   interface{}
		wantErr bool
	}{
		{"null hours is valid", nil, false},
		{"zero hours is valid", 0.0, false},
		{"fractional hours is valid", 2.5, false},
		{"negative hours is invalid", -1.0, true},
	}

	now := time.Now().UTC()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.Exec(insert, 1, tt.hours, now, now)
			if tt.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestCascadeDeleteChildren(t *testing.T) {
	d := openTestDB(t)

	now := time.Now().UTC()
	res, err := d.Exec(
		`INSERT INTO comments (user_id, body, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		1, "with files", now, now,
	)
	if err != nil {
		t.Fatalf("insert comment: %v", err)
	}
	commentID, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("last insert id: %v", err)
	}

	for i := 0; i < 3; i++ {
		_, err = d.Exec(
			`INSERT INTO uploads (comment_id, file_name, file_size) VALUES (?, ?, ?)`,
			commentID, fmt.Sprintf("file-%d.txt", i), 10+i,
		)
		if err != nil {
			t.Fatalf("insert upload %d: %v", i, err)
		}
	}
	if _, err := d.Exec(
		`INSERT INTO linked_documents (comment_id, title, url) VALUES (?, ?, ?)`,
		commentID, "Spec", "https://docs.example.com/spec",
	); err != nil {
		t.Fatalf("insert linked document: %v", err)
	}

	if _, err := d.Exec(`DELETE FROM comments WHERE id = ?`, commentID); err != nil {
		t.Fatalf("delete comment: %v", err)
	}

	for _, table := range []string{"uploads", "linked_documents"} {
		var count int
		q := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE comment_id = ?`, table)
		if err := d.QueryRow(q, commentID).Scan(&count); err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		if count != 0 {
			t.Errorf("expected 0 %s after cascade delete, got %d", table, count)
		}
	}
}

func TestMigrationsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracker.db")

	// Open twice; migrations should not fail on second run
	d1, err := Open(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if err := d1.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}

	d2, err := Open(path)
	if err != nil {
		t.Fatalf("second open (idempotency): %v", err)
	}
	if err := d2.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestDefaultPath(t *testing.T) {
	p, err := DefaultPath()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if filepath.Base(p) != "tracker.db" {
		t.Errorf("expected filename tracker.db, got %s", filepath.Base(p))
	}

	dir := filepath.Base(filepath.Dir(p))
	if dir != "pt" {
		t.Errorf("expected directory pt, got %s", dir)
	}
}

// openTestDB creates a temporary database for testing.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tracker.db")
	d, err := Open(path)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() {
		if err := d.Close(); err != nil {
			t.Errorf("close test db: %v", err)
		}
	})
	return d
}

// tableColumns returns column names for a table using PRAGMA table_info.
func tableColumns(t *testing.T, d *sql.DB, table string) []string {
	t.Helper()
	rows, err := d.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		t.Fatalf("pragma table_info(%s): %v", table, err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			t.Errorf("close rows: %v", err)
		}
	}()

	var cols []string
	for rows.Next() {
		var cid int
		var name, typ string
		var notnull int
		var dflt *string
		var pk int
		if err := rows.Scan(&cid, &name, &typ, &notnull, &dflt, &pk); err != nil {
			t.Fatalf("scan: %v", err)
		}
		cols = append(cols, name)
	}
	return cols
}
