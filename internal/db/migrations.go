package db

import (
	"database/sql"
	"fmt"
)

// migrations is an ordered list of SQL statements to run.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		name       TEXT    NOT NULL DEFAULT '',
		email      TEXT    NOT NULL UNIQUE,
		deleted_at DATETIME,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS projects (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		name       TEXT    NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id     INTEGER REFERENCES projects(id) ON DELETE CASCADE,
		user_id        INTEGER,
		title          TEXT    NOT NULL DEFAULT '',
		is_private     INTEGER NOT NULL DEFAULT 0,
		comments_count INTEGER NOT NULL DEFAULT 0,
		created_at     DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at     DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS conversations (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id     INTEGER REFERENCES projects(id) ON DELETE CASCADE,
		user_id        INTEGER,
		title          TEXT    NOT NULL DEFAULT '',
		simple         INTEGER NOT NULL DEFAULT 0,
		is_private     INTEGER NOT NULL DEFAULT 0,
		comments_count INTEGER NOT NULL DEFAULT 0,
		created_at     DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at     DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS pages (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id     INTEGER REFERENCES projects(id) ON DELETE CASCADE,
		user_id        INTEGER,
		title          TEXT    NOT NULL DEFAULT '',
		comments_count INTEGER NOT NULL DEFAULT 0,
		created_at     DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at     DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS notes (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id     INTEGER REFERENCES projects(id) ON DELETE CASCADE,
		user_id        INTEGER,
		title          TEXT    NOT NULL DEFAULT '',
		comments_count INTEGER NOT NULL DEFAULT 0,
		created_at     DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS watchers (
		target_type TEXT    NOT NULL,
		target_id   INTEGER NOT NULL,
		user_id     INTEGER NOT NULL,
		PRIMARY KEY (target_type, target_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS comments (
		id                   INTEGER PRIMARY KEY AUTOINCREMENT,
		target_type          TEXT    NOT NULL DEFAULT '',
		target_id            INTEGER NOT NULL DEFAULT 0,
		user_id              INTEGER NOT NULL,
		project_id           INTEGER,
		assigned_id          INTEGER,
		previous_assigned_id INTEGER,
		body                 TEXT    NOT NULL DEFAULT '',
		hours                REAL CHECK (hours IS NULL OR hours >= 0),
		status               INTEGER NOT NULL DEFAULT 0,
		billable             INTEGER NOT NULL DEFAULT 0,
		is_private           INTEGER NOT NULL DEFAULT 0,
		created_at           DATETIME NOT NULL,
		updated_at           DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_target_user
		ON comments (target_type, target_id, user_id, id)`,
	`CREATE TABLE IF NOT EXISTS uploads (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		comment_id   INTEGER REFERENCES comments(id) ON DELETE CASCADE,
		file_name    TEXT    NOT NULL,
		file_size    INTEGER NOT NULL DEFAULT 0,
		content_type TEXT    NOT NULL DEFAULT '',
		created_at   DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS linked_documents (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		comment_id INTEGER NOT NULL REFERENCES comments(id) ON DELETE CASCADE,
		title      TEXT    NOT NULL,
		url        TEXT    NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS activities (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id  INTEGER NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		user_id     INTEGER NOT NULL DEFAULT 0,
		target_type TEXT    NOT NULL,
		target_id   INTEGER NOT NULL,
		action      TEXT    NOT NULL,
		created_at  DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_activities_target
		ON activities (target_type, target_id)`,
}

// migrate runs all migrations in order.
func migrate(db *sql.DB) error {
	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}

	// Column additions (idempotent, checks if column exists first)
	columnMigrations := []struct {
		table, column, definition string
	}{
		{"comments", "body_html", "TEXT NOT NULL DEFAULT ''"},
	}

	for _, cm := range columnMigrations {
		if err := addColumnIfNotExists(db, cm.table, cm.column, cm.definition); err != nil {
			return fmt.Errorf("adding %s.%s: %w", cm.table, cm.column, err)
		}
	}

	return nil
}

// addColumnIfNotExists adds a column to a table if it doesn't already exist.
func addColumnIfNotExists(db *sql.DB, table, column, definition string) error {
	exists, err := hasColumn(db, table, column)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	_, err = db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, definition))
	return err
}

func hasColumn(db *sql.DB, table, column string) (found bool, err error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, fmt.Errorf("checking table info: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", cerr)
		}
	}()

	for rows.Next() {
		var cid int
		var name, colType string
		var notNull, pk int
		var dfltValue interface{}
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return false, fmt.Errorf("scanning column info: %w", err)
		}
		if name == column {
			found = true
		}
	}
	if err := rows.Err(); err != nil {
		return false, fmt.Errorf("iterating columns: %w", err)
	}

	return found, nil
}
