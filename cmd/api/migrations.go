// cmd/api/migrations.go
// Schema bootstrap, applied on startup

package main

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		email VARCHAR(255) UNIQUE NOT NULL,
		phone VARCHAR(20),
		password_hash VARCHAR(255) NOT NULL,
		is_admin BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS profiles (
		id BIGINT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
		display_name VARCHAR(100) NOT NULL DEFAULT '',
		age INTEGER NOT NULL DEFAULT 0,
		gender VARCHAR(10) NOT NULL DEFAULT '',
		madhab VARCHAR(20),
		prayer_frequency VARCHAR(20),
		location VARCHAR(200),
		willing_to_relocate BOOLEAN NOT NULL DEFAULT FALSE,
		education VARCHAR(100),
		profession VARCHAR(100),
		marriage_timeline VARCHAR(30),
		interests TEXT[] NOT NULL DEFAULT '{}',
		preferred_min_age INTEGER,
		preferred_max_age INTEGER,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	// user_a < user_b gives every unordered pair exactly one
	// representation; the unique constraint then forbids duplicates.
	`CREATE TABLE IF NOT EXISTS matches (
		id BIGSERIAL PRIMARY KEY,
		user_a BIGINT NOT NULL REFERENCES users(id),
		user_b BIGINT NOT NULL REFERENCES users(id),
		status_a VARCHAR(10) NOT NULL DEFAULT 'pending'
			CHECK (status_a IN ('pending', 'accepted', 'rejected')),
		status_b VARCHAR(10) NOT NULL DEFAULT 'pending'
			CHECK (status_b IN ('pending', 'accepted', 'rejected')),
		compatibility_score DOUBLE PRECISION NOT NULL DEFAULT 0,
		reasoning TEXT NOT NULL DEFAULT '',
		created_by VARCHAR(50) NOT NULL DEFAULT 'system',
		activated_notified_at TIMESTAMP,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CHECK (user_a < user_b),
		UNIQUE (user_a, user_b)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_matches_user_a ON matches(user_a)`,
	`CREATE INDEX IF NOT EXISTS idx_matches_user_b ON matches(user_b)`,

	`CREATE TABLE IF NOT EXISTS notifications (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		type VARCHAR(30) NOT NULL,
		title VARCHAR(200) NOT NULL,
		message TEXT NOT NULL,
		data JSONB,
		read BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE INDEX IF NOT EXISTS idx_notifications_user_unread
		ON notifications(user_id) WHERE read = FALSE`,

	`CREATE TABLE IF NOT EXISTS messages (
		id BIGSERIAL PRIMARY KEY,
		match_id BIGINT NOT NULL REFERENCES matches(id) ON DELETE CASCADE,
		sender_id BIGINT NOT NULL REFERENCES users(id),
		content TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE INDEX IF NOT EXISTS idx_messages_match ON messages(match_id, created_at)`,
}

func runMigrations(db *sqlx.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
