// Copyright (c) 2026 Pavel Karpov.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import "database/sql"

// CreateSchema creates all tables if they don't exist. The DDL sticks
// to the dialect both sqlite and postgres accept.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS player (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			chat_id BIGINT NOT NULL DEFAULT 0,
			rating INTEGER NOT NULL DEFAULT 0,
			ready_msg_id INTEGER NOT NULL DEFAULT 0,
			ready_msg_text TEXT NOT NULL DEFAULT '',
			poll_msg_id INTEGER NOT NULL DEFAULT 0,
			poll_msg_text TEXT NOT NULL DEFAULT '',
			updated_at TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_player_chat_id ON player(chat_id);

		CREATE TABLE IF NOT EXISTS partition_candidate (
			population INTEGER NOT NULL,
			variant INTEGER NOT NULL,
			assignment TEXT NOT NULL,
			PRIMARY KEY (population, variant)
		);
	`)
	return err
}
