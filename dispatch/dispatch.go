// Copyright (c) 2026 Pavel Karpov.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/pkarpov/matchnight/models"
)

// DefaultTimeout bounds each individual transport call.
const DefaultTimeout = 10 * time.Second

// maxInFlight caps how many transport calls run at once during a
// fan-out.
const maxInFlight = 8

// Button is one inline keyboard button with its callback payload.
type Button struct {
	Text string `json:"text"`
	Data string `json:"data"`
}

// Markup is an inline keyboard attached to a message.
type Markup struct {
	Rows [][]Button `json:"rows"`
}

// Transport is the external chat client. Every call may fail or hang;
// the dispatcher isolates that per recipient.
type Transport interface {
	Send(ctx context.Context, chatID int64, text string, markup *Markup) (messageID int, err error)
	Edit(ctx context.Context, chatID int64, messageID int, text string) error
	Delete(ctx context.Context, chatID int64, messageID int) error
	ClearMarkup(ctx context.Context, chatID int64, messageID int) error
}

// Dispatcher fans messages out to many chats concurrently and collects
// a per-recipient outcome for each operation.
type Dispatcher struct {
	transport Transport
	owner     int64
	sem       *semaphore.Weighted

	// Timeout bounds each individual send/edit/delete call.
	Timeout time.Duration
}

func New(transport Transport, owner int64) *Dispatcher {
	return &Dispatcher{
		transport: transport,
		owner:     owner,
		sem:       semaphore.NewWeighted(maxInFlight),
		Timeout:   DefaultTimeout,
	}
}

// Broadcast sends text to every recipient concurrently. One outcome
// per recipient, recorded as each call resolves; a failing or slow
// recipient never blocks the others past the fan-out width.
func (d *Dispatcher) Broadcast(ctx context.Context, text string, recipients []int64, markup *Markup) map[int64]models.DispatchOutcome {
	results := make(chan models.DispatchOutcome, len(recipients))
	var wg sync.WaitGroup
	for _, chatID := range recipients {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- d.send(ctx, chatID, text, markup)
		}()
	}
	wg.Wait()
	close(results)

	outcomes := make(map[int64]models.DispatchOutcome, len(recipients))
	for o := range results {
		outcomes[o.RecipientID] = o
	}
	return outcomes
}

// BroadcastEdit rewrites every prior message to text. A message whose
// known text already equals the new one is recorded as a success
// without touching the transport.
func (d *Dispatcher) BroadcastEdit(ctx context.Context, text string, prior []models.MessageRecord) map[int64]models.DispatchOutcome {
	outcomes := make(map[int64]models.DispatchOutcome, len(prior))
	results := make(chan models.DispatchOutcome, len(prior))
	var wg sync.WaitGroup
	for _, m := range prior {
		if m.Text == text {
			outcomes[m.ChatID] = models.DispatchOutcome{
				RecipientID: m.ChatID,
				Status:      models.StatusSuccess,
				MessageID:   m.MessageID,
			}
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- d.edit(ctx, m, text)
		}()
	}
	wg.Wait()
	close(results)

	for o := range results {
		outcomes[o.RecipientID] = o
	}
	return outcomes
}

// NotifyOwner sends text to the privileged owner chat. Failures are
// logged and swallowed so a broken reporting channel cannot cascade.
func (d *Dispatcher) NotifyOwner(ctx context.Context, text string) {
	o := d.send(ctx, d.owner, text, nil)
	if o.Status == models.StatusError {
		slog.Error("owner notification failed", "chat_id", d.owner, "detail", o.Detail)
	}
}

// Delete removes a single message. The transport cannot tell "already
// deleted" apart from real failures, so this only logs.
func (d *Dispatcher) Delete(ctx context.Context, m models.MessageRecord) {
	d.single(ctx, "delete", m, func(opCtx context.Context) error {
		return d.transport.Delete(opCtx, m.ChatID, m.MessageID)
	})
}

// ClearMarkup strips the inline keyboard from a single message,
// logging failures only.
func (d *Dispatcher) ClearMarkup(ctx context.Context, m models.MessageRecord) {
	d.single(ctx, "clear markup", m, func(opCtx context.Context) error {
		return d.transport.ClearMarkup(opCtx, m.ChatID, m.MessageID)
	})
}

func (d *Dispatcher) send(ctx context.Context, chatID int64, text string, markup *Markup) models.DispatchOutcome {
	return d.run(ctx, chatID, func(opCtx context.Context) (int, error) {
		return d.transport.Send(opCtx, chatID, text, markup)
	})
}

func (d *Dispatcher) edit(ctx context.Context, m models.MessageRecord, text string) models.DispatchOutcome {
	return d.run(ctx, m.ChatID, func(opCtx context.Context) (int, error) {
		return m.MessageID, d.transport.Edit(opCtx, m.ChatID, m.MessageID, text)
	})
}

// run executes one transport call under the per-operation timeout. The
// call runs in its own goroutine with a buffered result channel, so a
// transport that ignores cancellation is abandoned at the deadline
// rather than dragging the fan-out.
func (d *Dispatcher) run(ctx context.Context, chatID int64, call func(context.Context) (int, error)) models.DispatchOutcome {
	opCtx, cancel := context.WithTimeout(ctx, d.Timeout)
	defer cancel()

	if err := d.sem.Acquire(opCtx, 1); err != nil {
		return models.DispatchOutcome{
			RecipientID: chatID,
			Status:      models.StatusError,
			Detail:      fmt.Sprintf("no slot within %s", d.Timeout),
		}
	}

	type result struct {
		messageID int
		err       error
	}
	done := make(chan result, 1)
	go func() {
		defer d.sem.Release(1)
		id, err := call(opCtx)
		done <- result{messageID: id, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return models.DispatchOutcome{
				RecipientID: chatID,
				Status:      models.StatusError,
				Detail:      r.err.Error(),
			}
		}
		return models.DispatchOutcome{
			RecipientID: chatID,
			Status:      models.StatusSuccess,
			MessageID:   r.messageID,
		}
	case <-opCtx.Done():
		return models.DispatchOutcome{
			RecipientID: chatID,
			Status:      models.StatusError,
			Detail:      fmt.Sprintf("no reply within %s", d.Timeout),
		}
	}
}

func (d *Dispatcher) single(ctx context.Context, op string, m models.MessageRecord, call func(context.Context) error) {
	o := d.run(ctx, m.ChatID, func(opCtx context.Context) (int, error) {
		return m.MessageID, call(opCtx)
	})
	if o.Status == models.StatusError {
		slog.Warn("message operation failed",
			"op", op,
			"chat_id", m.ChatID,
			"message_id", m.MessageID,
			"detail", o.Detail,
		)
	}
}
