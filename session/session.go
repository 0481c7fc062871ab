// Copyright (c) 2026 Pavel Karpov.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package session keeps the per-recipient message ledger for the
// running game cycle: for each chat, the readiness message and the team
// poll message last delivered there, with the text known to be on each.
// The ledger feeds BroadcastEdit so unchanged messages are skipped and
// cleanup knows what to delete.
package session

import (
	"sync"

	"github.com/pkarpov/matchnight/models"
)

// Tracker is a mutex-guarded message ledger keyed by message kind and
// chat id.
type Tracker struct {
	mu     sync.Mutex
	byKind map[models.MessageKind]map[int64]models.MessageRecord
}

func NewTracker() *Tracker {
	return &Tracker{byKind: make(map[models.MessageKind]map[int64]models.MessageRecord)}
}

// Record remembers a delivered message, replacing any earlier record
// of the same kind for that chat.
func (t *Tracker) Record(kind models.MessageKind, rec models.MessageRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()
	byChat := t.byKind[kind]
	if byChat == nil {
		byChat = make(map[int64]models.MessageRecord)
		t.byKind[kind] = byChat
	}
	byChat[rec.ChatID] = rec
}

// RecordOutcomes stores every successful outcome of a fan-out as a
// message of the given kind carrying text. Failed outcomes leave any
// prior record untouched.
func (t *Tracker) RecordOutcomes(kind models.MessageKind, text string, outcomes map[int64]models.DispatchOutcome) {
	for _, o := range outcomes {
		if o.Status != models.StatusSuccess {
			continue
		}
		t.Record(kind, models.MessageRecord{
			ChatID:    o.RecipientID,
			MessageID: o.MessageID,
			Text:      text,
		})
	}
}

// Messages returns the recorded messages of one kind in unspecified
// order.
func (t *Tracker) Messages(kind models.MessageKind) []models.MessageRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	byChat := t.byKind[kind]
	records := make([]models.MessageRecord, 0, len(byChat))
	for _, rec := range byChat {
		records = append(records, rec)
	}
	return records
}

// Forget drops every record of one kind.
func (t *Tracker) Forget(kind models.MessageKind) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.byKind, kind)
}
