// Package database provides durable store instantiation
package database

import (
	"database/sql"
	"fmt"
)

// TableCreator handles the creation of the durable session store schema.
type TableCreator struct{}

// NewTableCreator creates a new TableCreator.
func NewTableCreator() *TableCreator {
	return &TableCreator{}
}

// CreateSchema executes all necessary queries to build the tables and indexes.
// Every statement is idempotent so the creator can run on every boot.
func (tc *TableCreator) CreateSchema(db *sql.DB) error {
	for _, tableSQL := range tables {
		if _, err := db.Exec(tableSQL); err != nil {
			return fmt.Errorf("failed to create table for query [%s]: %w", tableSQL, err)
		}
	}

	for _, indexSQL := range indexes {
		if _, err := db.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create index for query [%s]: %w", indexSQL, err)
		}
	}
	return nil
}

var tables = []string{
	`CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		last_accessed TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		status TEXT NOT NULL DEFAULT 'active',
		authenticated BOOLEAN NOT NULL DEFAULT 0,
		locked_intent TEXT,
		pending_intent TEXT,
		pending_message TEXT,
		failed_attempts INTEGER NOT NULL DEFAULT 0,
		user_type TEXT,
		display_name TEXT,
		profile_payload TEXT,
		auth_method TEXT,
		authenticated_at TIMESTAMP,
		encrypted_national_id TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS auth_events (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL REFERENCES sessions(id),
		intent TEXT NOT NULL,
		outcome TEXT NOT NULL,
		credential_hash TEXT,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
}

var indexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_sessions_status ON sessions(status)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_last_accessed ON sessions(last_accessed)`,
	`CREATE INDEX IF NOT EXISTS idx_auth_events_session_id ON auth_events(session_id)`,
	`CREATE INDEX IF NOT EXISTS idx_auth_events_created_at ON auth_events(created_at)`,
}
