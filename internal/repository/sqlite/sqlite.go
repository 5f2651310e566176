// Package sqlite implements the repository interfaces on SQLite via
// database/sql and the pure-Go modernc.org/sqlite driver.
//
// The schema carries the uniqueness guarantees the rest of the system leans
// on: unique user emails, one category name per user, and at most one
// notification per (user, task, type) triple.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// DB wraps a sql.DB connection pool. Per-collection stores implementing the
// repository interfaces hang off it via accessors (Users, Tasks, ...).
type DB struct {
	conn *sql.DB
}

func (db *DB) Users() *UserStore                { return &UserStore{conn: db.conn} }
func (db *DB) Tokens() *VerificationTokenStore  { return &VerificationTokenStore{conn: db.conn} }
func (db *DB) Tasks() *TaskStore                { return &TaskStore{conn: db.conn} }
func (db *DB) Categories() *CategoryStore       { return &CategoryStore{conn: db.conn} }
func (db *DB) Notifications() *NotificationStore {
	return &NotificationStore{conn: db.conn}
}
func (db *DB) AdminNotifications() *AdminNotificationStore {
	return &AdminNotificationStore{conn: db.conn}
}

// New opens (or creates) the database at dbPath and runs migrations.
// Use ":memory:" in tests.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL allows concurrent reads during writes; a web server needs that.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id                TEXT PRIMARY KEY,
			name              TEXT NOT NULL,
			email             TEXT NOT NULL COLLATE NOCASE UNIQUE,
			password_hash     TEXT NOT NULL DEFAULT '',
			role              TEXT NOT NULL DEFAULT 'user',
			is_email_verified INTEGER NOT NULL DEFAULT 0,
			avatar_emoji      TEXT NOT NULL DEFAULT '',
			avatar_background TEXT NOT NULL DEFAULT '',
			github_id         INTEGER NOT NULL DEFAULT 0,
			reset_token       TEXT NOT NULL DEFAULT '',
			reset_expires     DATETIME,
			created_at        DATETIME NOT NULL,
			updated_at        DATETIME NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_github_id
			ON users(github_id) WHERE github_id != 0`,

		`CREATE TABLE IF NOT EXISTS verification_tokens (
			id         TEXT PRIMARY KEY,
			email      TEXT NOT NULL,
			otp        TEXT NOT NULL,
			expires_at DATETIME NOT NULL,
			attempts   INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_verification_tokens_email
			ON verification_tokens(email)`,

		`CREATE TABLE IF NOT EXISTS tasks (
			id          TEXT PRIMARY KEY,
			user_id     TEXT NOT NULL REFERENCES users(id),
			title       TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			category    TEXT NOT NULL DEFAULT '',
			priority    TEXT NOT NULL DEFAULT 'medium',
			status      TEXT NOT NULL DEFAULT 'todo',
			due_date    DATETIME NOT NULL,
			created_at  DATETIME NOT NULL,
			updated_at  DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_user_id ON tasks(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_due_date ON tasks(due_date)`,

		`CREATE TABLE IF NOT EXISTS categories (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL REFERENCES users(id),
			name       TEXT NOT NULL,
			color      TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			UNIQUE(user_id, name)
		)`,

		`CREATE TABLE IF NOT EXISTS notifications (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL REFERENCES users(id),
			task_id    TEXT NOT NULL,
			type       TEXT NOT NULL,
			title      TEXT NOT NULL,
			message    TEXT NOT NULL DEFAULT '',
			priority   TEXT NOT NULL DEFAULT 'medium',
			is_read    INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			UNIQUE(user_id, task_id, type)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_user_id ON notifications(user_id)`,

		`CREATE TABLE IF NOT EXISTS admin_notifications (
			id         TEXT PRIMARY KEY,
			type       TEXT NOT NULL,
			user_id    TEXT NOT NULL DEFAULT '',
			user_name  TEXT NOT NULL DEFAULT '',
			user_email TEXT NOT NULL DEFAULT '',
			message    TEXT NOT NULL DEFAULT '',
			is_read    INTEGER NOT NULL DEFAULT 0,
			metadata   TEXT NOT NULL DEFAULT '{}',
			created_at DATETIME NOT NULL
		)`,
	}

	for _, stmt := range stmts {
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("migrating (%.40s...): %w", stmt, err)
		}
	}
	return nil
}

// isUniqueViolation detects a unique-index violation from the driver. The
// modernc driver has no typed error for this, so we match the message.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
