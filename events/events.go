// Copyright (c) 2026 Pavel Karpov.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package events

import (
	"context"
	"errors"
	"log/slog"

	"github.com/pkarpov/matchnight/consensus"
	"github.com/pkarpov/matchnight/dispatch"
	"github.com/pkarpov/matchnight/models"
	"github.com/pkarpov/matchnight/session"
	"github.com/pkarpov/matchnight/sheet"
	"github.com/pkarpov/matchnight/store"
	"github.com/pkarpov/matchnight/wire"
)

// Event is one decoded callback from a chat.
type Event struct {
	ChatID   int64
	Callback wire.Callback
}

// Roster resolves chat identities back to players.
type Roster interface {
	GetByChatID(ctx context.Context, chatID int64) (models.Participant, error)
}

// Loop consumes decoded callbacks one at a time and drives the engine
// and dispatcher. Intake is strictly sequential; only the dispatcher's
// fan-out runs concurrently.
type Loop struct {
	engine     *consensus.Engine
	dispatcher *dispatch.Dispatcher
	tracker    *session.Tracker
	roster     Roster
	sheet      sheet.Store // nil when no sheet is configured

	events chan Event
}

func NewLoop(engine *consensus.Engine, dispatcher *dispatch.Dispatcher, tracker *session.Tracker, roster Roster, sh sheet.Store) *Loop {
	return &Loop{
		engine:     engine,
		dispatcher: dispatcher,
		tracker:    tracker,
		roster:     roster,
		sheet:      sh,
		events:     make(chan Event, 64),
	}
}

// Enqueue hands an event to the loop, blocking if the buffer is full.
func (l *Loop) Enqueue(ev Event) {
	l.events <- ev
}

// Run consumes events until the context is cancelled.
func (l *Loop) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-l.events:
			l.Handle(ctx, ev)
		}
	}
}

// Handle processes a single event.
func (l *Loop) Handle(ctx context.Context, ev Event) {
	switch ev.Callback.Poll {
	case wire.TeamPoll:
		l.handleTeamVote(ctx, ev)
	case wire.ReadyPoll:
		l.handleReadiness(ctx, ev)
	default:
		slog.Warn("callback for unknown poll", "poll", ev.Callback.Poll, "chat_id", ev.ChatID)
	}
}

func (l *Loop) handleTeamVote(ctx context.Context, ev Event) {
	var answer models.Answer
	switch ev.Callback.Answer {
	case wire.AnswerYes:
		answer = models.AnswerLike
	case wire.AnswerNo:
		answer = models.AnswerDislike
	default:
		slog.Warn("team vote with unknown answer", "answer", ev.Callback.Answer, "chat_id", ev.ChatID)
		return
	}

	regenerated := l.engine.Vote(models.VoteToken{PollToken: ev.Callback.Data, Answer: answer})
	if regenerated {
		slog.Info("active split retired", "chat_id", ev.ChatID)
		l.announceSplit(ctx)
		return
	}
	l.pushCounts(ctx)
}

// pushCounts edits every delivered poll message to the current counts.
// Messages already showing them are skipped by the dispatcher.
func (l *Loop) pushCounts(ctx context.Context) {
	set, ok := l.engine.CurrentTeamSet()
	if !ok {
		return
	}
	text := PollText(set, l.engine.LikeCount(), l.engine.DislikeCount())
	outcomes := l.dispatcher.BroadcastEdit(ctx, text, l.tracker.Messages(models.KindTeamPoll))
	l.tracker.RecordOutcomes(models.KindTeamPoll, text, outcomes)
}

// announceSplit replaces the retired split's poll with the new active
// one: stale keyboards are stripped, then fresh poll messages go to the
// same recipients under the new token.
func (l *Loop) announceSplit(ctx context.Context) {
	prior := l.tracker.Messages(models.KindTeamPoll)
	for _, m := range prior {
		l.dispatcher.ClearMarkup(ctx, m)
	}
	l.tracker.Forget(models.KindTeamPoll)

	set, ok := l.engine.CurrentTeamSet()
	if !ok {
		l.dispatcher.NotifyOwner(ctx, "Все варианты составов отклонены, вариантов больше нет")
		return
	}

	recipients := make([]int64, 0, len(prior))
	for _, m := range prior {
		recipients = append(recipients, m.ChatID)
	}
	text := PollText(set, 0, 0)
	outcomes := l.dispatcher.Broadcast(ctx, text, recipients, PollMarkup(l.engine.CurrentPollToken()))
	l.tracker.RecordOutcomes(models.KindTeamPoll, text, outcomes)
}

func (l *Loop) handleReadiness(ctx context.Context, ev Event) {
	p, err := l.roster.GetByChatID(ctx, ev.ChatID)
	if errors.Is(err, store.ErrNotFound) {
		slog.Info("readiness answer from unregistered chat", "chat_id", ev.ChatID)
		return
	}
	if err != nil {
		slog.Error("resolve chat failed", "chat_id", ev.ChatID, "error", err)
		return
	}
	if l.sheet == nil {
		slog.Warn("readiness answer with no sheet configured", "name", p.Name)
		return
	}

	if err := l.sheet.SetApproval(ctx, p.Name, ev.Callback.Answer); err != nil {
		slog.Error("record approval failed", "name", p.Name, "error", err)
		return
	}
	names, err := l.sheet.ReadyToPlay(ctx)
	if err != nil {
		slog.Error("read ready list failed", "error", err)
		return
	}

	text := ReadyText(len(names))
	outcomes := l.dispatcher.BroadcastEdit(ctx, text, l.tracker.Messages(models.KindReadyCount))
	l.tracker.RecordOutcomes(models.KindReadyCount, text, outcomes)
}
