// Copyright (c) 2026 Pavel Karpov.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pkarpov/matchnight/auth"
	"github.com/pkarpov/matchnight/models"
)

// ErrNotFound marks a roster lookup that matched no player. Callers
// treat it as "not registered", never as a failure.
var ErrNotFound = errors.New("player not found")

// Roster is the database-backed player roster.
type Roster struct {
	db *sql.DB
}

func NewRoster(db *sql.DB) *Roster {
	return &Roster{db: db}
}

// GetAll returns every player ordered by name.
func (r *Roster) GetAll(ctx context.Context) ([]models.Participant, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, chat_id, rating FROM player ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("query players: %w", err)
	}
	defer rows.Close()

	var players []models.Participant
	for rows.Next() {
		var p models.Participant
		if err := rows.Scan(&p.ID, &p.Name, &p.ChatID, &p.Rating); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// GetByName looks a player up by display name.
func (r *Roster) GetByName(ctx context.Context, name string) (models.Participant, error) {
	return r.getOne(ctx, `
		SELECT id, name, chat_id, rating FROM player WHERE name = $1
	`, name)
}

// GetByChatID looks a player up by chat identity.
func (r *Roster) GetByChatID(ctx context.Context, chatID int64) (models.Participant, error) {
	return r.getOne(ctx, `
		SELECT id, name, chat_id, rating FROM player WHERE chat_id = $1
	`, chatID)
}

func (r *Roster) getOne(ctx context.Context, query string, arg any) (models.Participant, error) {
	var p models.Participant
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&p.ID, &p.Name, &p.ChatID, &p.Rating)
	if err == sql.ErrNoRows {
		return models.Participant{}, ErrNotFound
	}
	if err != nil {
		return models.Participant{}, fmt.Errorf("query player: %w", err)
	}
	return p, nil
}

// Upsert inserts the player or updates chat id and rating on a name
// conflict. A missing ID is generated.
func (r *Roster) Upsert(ctx context.Context, p models.Participant) error {
	if p.ID == "" {
		id, err := auth.GenerateID(8)
		if err != nil {
			return err
		}
		p.ID = id
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO player (id, name, chat_id, rating, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (name) DO UPDATE SET
			chat_id = excluded.chat_id,
			rating = excluded.rating,
			updated_at = excluded.updated_at
	`, p.ID, p.Name, p.ChatID, p.Rating, time.Now())
	if err != nil {
		return fmt.Errorf("upsert player %q: %w", p.Name, err)
	}
	return nil
}

// SetMessage persists the last message of the given kind delivered to a
// player's chat, so edits survive a restart.
func (r *Roster) SetMessage(ctx context.Context, chatID int64, kind models.MessageKind, messageID int, text string) error {
	var query string
	switch kind {
	case models.KindReadyCount:
		query = `UPDATE player SET ready_msg_id = $1, ready_msg_text = $2 WHERE chat_id = $3`
	case models.KindTeamPoll:
		query = `UPDATE player SET poll_msg_id = $1, poll_msg_text = $2 WHERE chat_id = $3`
	default:
		return fmt.Errorf("unknown message kind %d", kind)
	}
	if _, err := r.db.ExecContext(ctx, query, messageID, text, chatID); err != nil {
		return fmt.Errorf("set message for chat %d: %w", chatID, err)
	}
	return nil
}

// Messages returns the recorded messages of the given kind for every
// player that has one.
func (r *Roster) Messages(ctx context.Context, kind models.MessageKind) ([]models.MessageRecord, error) {
	var query string
	switch kind {
	case models.KindReadyCount:
		query = `SELECT chat_id, ready_msg_id, ready_msg_text FROM player WHERE ready_msg_id <> 0`
	case models.KindTeamPoll:
		query = `SELECT chat_id, poll_msg_id, poll_msg_text FROM player WHERE poll_msg_id <> 0`
	default:
		return nil, fmt.Errorf("unknown message kind %d", kind)
	}
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var records []models.MessageRecord
	for rows.Next() {
		var rec models.MessageRecord
		if err := rows.Scan(&rec.ChatID, &rec.MessageID, &rec.Text); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ClearMessages forgets every recorded message of the given kind.
func (r *Roster) ClearMessages(ctx context.Context, kind models.MessageKind) error {
	var query string
	switch kind {
	case models.KindReadyCount:
		query = `UPDATE player SET ready_msg_id = 0, ready_msg_text = ''`
	case models.KindTeamPoll:
		query = `UPDATE player SET poll_msg_id = 0, poll_msg_text = ''`
	default:
		return fmt.Errorf("unknown message kind %d", kind)
	}
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("clear messages: %w", err)
	}
	return nil
}
