package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Open opens a SQLite database with the given DSN.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return db, nil
}

// Migrate creates the schema. Idempotent.
func Migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY,
			username VARCHAR(50) NOT NULL,
			email VARCHAR(100) UNIQUE NOT NULL,
			hashed_password VARCHAR(255) NOT NULL,
			is_admin BOOLEAN NOT NULL DEFAULT FALSE,
			is_verified BOOLEAN NOT NULL DEFAULT FALSE,
			verify_token TEXT DEFAULT NULL,
			verify_token_expiry DATETIME DEFAULT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS items (
			id INTEGER PRIMARY KEY,
			title VARCHAR(200) NOT NULL,
			description TEXT NOT NULL,
			location VARCHAR(200) NOT NULL,
			status VARCHAR(16) NOT NULL DEFAULT 'lost'
				CHECK (status IN ('lost','found','claimed','returned','closed')),
			image BLOB DEFAULT NULL,
			image_content_type VARCHAR(64) DEFAULT NULL,
			created_by INTEGER NOT NULL,
			is_approved BOOLEAN NOT NULL DEFAULT FALSE,
			is_claimed BOOLEAN NOT NULL DEFAULT FALSE,
			claimed_by INTEGER DEFAULT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (created_by) REFERENCES users(id),
			FOREIGN KEY (claimed_by) REFERENCES users(id)
		);`,
		`CREATE TABLE IF NOT EXISTS threads (
			id INTEGER PRIMARY KEY,
			item_id INTEGER UNIQUE NOT NULL,
			creator_id INTEGER NOT NULL,
			claimer_id INTEGER NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (item_id) REFERENCES items(id) ON DELETE CASCADE,
			FOREIGN KEY (creator_id) REFERENCES users(id),
			FOREIGN KEY (claimer_id) REFERENCES users(id)
		);`,
		`CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY,
			thread_id INTEGER NOT NULL,
			sender_id INTEGER NOT NULL,
			text TEXT NOT NULL DEFAULT '',
			attachment_url TEXT DEFAULT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (thread_id) REFERENCES threads(id) ON DELETE CASCADE,
			FOREIGN KEY (sender_id) REFERENCES users(id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);`,
		`CREATE INDEX IF NOT EXISTS idx_users_verify_token ON users(verify_token);`,
		`CREATE INDEX IF NOT EXISTS idx_items_approved ON items(is_approved);`,
		`CREATE INDEX IF NOT EXISTS idx_items_status ON items(status);`,
		`CREATE INDEX IF NOT EXISTS idx_items_created_by ON items(created_by);`,
		`CREATE INDEX IF NOT EXISTS idx_items_created_at ON items(created_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_threads_item ON threads(item_id);`,
		`CREATE INDEX IF NOT EXISTS idx_messages_thread ON messages(thread_id);`,
		`CREATE INDEX IF NOT EXISTS idx_messages_thread_created ON messages(thread_id, created_at ASC);`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
