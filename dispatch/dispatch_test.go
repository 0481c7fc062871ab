// Copyright (c) 2026 Pavel Karpov.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package dispatch_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pkarpov/matchnight/dispatch"
	"github.com/pkarpov/matchnight/models"
	"github.com/pkarpov/matchnight/testutil"
)

func TestBroadcastIsolatesFailure(t *testing.T) {
	transport := testutil.NewFakeTransport()
	transport.SendErr[3] = errors.New("blocked by user")
	d := dispatch.New(transport, 1000)

	recipients := []int64{1, 2, 3, 4, 5}
	outcomes := d.Broadcast(context.Background(), "Привет", recipients, nil)

	if len(outcomes) != len(recipients) {
		t.Fatalf("Expected %d outcomes, got %d", len(recipients), len(outcomes))
	}
	for _, chatID := range recipients {
		o, ok := outcomes[chatID]
		if !ok {
			t.Fatalf("No outcome for chat %d", chatID)
		}
		if chatID == 3 {
			if o.Status != models.StatusError {
				t.Errorf("Expected error outcome for chat 3, got %+v", o)
			}
			if o.Detail != "blocked by user" {
				t.Errorf("Expected transport error as detail, got %q", o.Detail)
			}
			continue
		}
		if o.Status != models.StatusSuccess {
			t.Errorf("Expected success for chat %d, got %+v", chatID, o)
		}
		if o.MessageID == 0 {
			t.Errorf("Success outcome for chat %d lost its message id", chatID)
		}
	}
}

func TestBroadcastTimeoutDoesNotBlockOthers(t *testing.T) {
	transport := testutil.NewFakeTransport()
	transport.Hang[2] = true
	d := dispatch.New(transport, 1000)
	d.Timeout = 50 * time.Millisecond

	start := time.Now()
	outcomes := d.Broadcast(context.Background(), "Привет", []int64{1, 2, 3}, nil)
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("Broadcast took %s despite per-op timeout", elapsed)
	}

	if o := outcomes[2]; o.Status != models.StatusError || !strings.Contains(o.Detail, "50ms") {
		t.Errorf("Expected timeout error naming the deadline, got %+v", o)
	}
	for _, chatID := range []int64{1, 3} {
		if o := outcomes[chatID]; o.Status != models.StatusSuccess {
			t.Errorf("Hanging recipient invalidated chat %d: %+v", chatID, o)
		}
	}
}

func TestBroadcastEditSkipsIdenticalText(t *testing.T) {
	transport := testutil.NewFakeTransport()
	d := dispatch.New(transport, 1000)

	const text = "Готовы играть: 7"
	prior := []models.MessageRecord{
		{ChatID: 1, MessageID: 11, Text: "Готовы играть: 6"},
		{ChatID: 2, MessageID: 12, Text: text},
		{ChatID: 3, MessageID: 13, Text: "Готовы играть: 5"},
		{ChatID: 4, MessageID: 14, Text: text},
	}
	outcomes := d.BroadcastEdit(context.Background(), text, prior)

	if len(outcomes) != 4 {
		t.Fatalf("Expected 4 outcomes, got %d", len(outcomes))
	}
	for _, m := range prior {
		o := outcomes[m.ChatID]
		if o.Status != models.StatusSuccess {
			t.Errorf("Expected success for chat %d, got %+v", m.ChatID, o)
		}
		if o.MessageID != m.MessageID {
			t.Errorf("Outcome for chat %d lost message id: %+v", m.ChatID, o)
		}
	}
	if transport.EditCount() != 2 {
		t.Errorf("Expected exactly 2 transport edits, got %d", transport.EditCount())
	}
}

func TestBroadcastEditFailureRecorded(t *testing.T) {
	transport := testutil.NewFakeTransport()
	transport.EditErr[9] = errors.New("message to edit not found")
	d := dispatch.New(transport, 1000)

	outcomes := d.BroadcastEdit(context.Background(), "новый текст", []models.MessageRecord{
		{ChatID: 9, MessageID: 90, Text: "старый текст"},
	})

	o := outcomes[9]
	if o.Status != models.StatusError || o.Detail != "message to edit not found" {
		t.Errorf("Expected recorded edit failure, got %+v", o)
	}
}

func TestNotifyOwnerSwallowsFailure(t *testing.T) {
	transport := testutil.NewFakeTransport()
	transport.SendErr[1000] = errors.New("owner unreachable")
	d := dispatch.New(transport, 1000)

	// Must not panic or propagate anything.
	d.NotifyOwner(context.Background(), "всё сломалось")

	if len(transport.SentTo(1000)) != 0 {
		t.Error("Failed send still recorded a message")
	}
}

func TestDeleteAndClearMarkupAreSingleTarget(t *testing.T) {
	transport := testutil.NewFakeTransport()
	d := dispatch.New(transport, 1000)

	m := models.MessageRecord{ChatID: 5, MessageID: 55}
	d.Delete(context.Background(), m)
	d.ClearMarkup(context.Background(), m)

	if len(transport.Deleted) != 1 || transport.Deleted[0] != (testutil.MessageRef{ChatID: 5, MessageID: 55}) {
		t.Errorf("Unexpected delete calls: %+v", transport.Deleted)
	}
	if len(transport.Cleared) != 1 || transport.Cleared[0] != (testutil.MessageRef{ChatID: 5, MessageID: 55}) {
		t.Errorf("Unexpected clear-markup calls: %+v", transport.Cleared)
	}
}
