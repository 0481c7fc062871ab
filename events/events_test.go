// Copyright (c) 2026 Pavel Karpov.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package events

import (
	"context"
	"strings"
	"testing"

	"github.com/pkarpov/matchnight/consensus"
	"github.com/pkarpov/matchnight/dispatch"
	"github.com/pkarpov/matchnight/models"
	"github.com/pkarpov/matchnight/session"
	"github.com/pkarpov/matchnight/store"
	"github.com/pkarpov/matchnight/testutil"
	"github.com/pkarpov/matchnight/wire"
)

type stubNameRoster struct{}

func (stubNameRoster) GetByName(ctx context.Context, name string) (models.Participant, error) {
	return models.Participant{}, store.ErrNotFound
}

type stubSplitter struct {
	sets []models.TeamSet
}

func (s *stubSplitter) Generate(ctx context.Context, _ []models.Participant) ([]models.TeamSet, error) {
	return s.sets, nil
}

type chatRoster struct {
	byChat map[int64]models.Participant
}

func (r *chatRoster) GetByChatID(ctx context.Context, chatID int64) (models.Participant, error) {
	p, ok := r.byChat[chatID]
	if !ok {
		return models.Participant{}, store.ErrNotFound
	}
	return p, nil
}

type fixture struct {
	engine    *consensus.Engine
	transport *testutil.FakeTransport
	tracker   *session.Tracker
	sheet     *testutil.FakeSheet
	loop      *Loop
}

// newFixture builds a loop over an engine holding two candidate splits
// and an active team poll already delivered to chats 1 and 2.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	engine := consensus.New(stubNameRoster{}, &stubSplitter{sets: []models.TeamSet{
		{{Name: "Барсы"}},
		{{Name: "Волки"}},
	}})
	if err := engine.Generate(context.Background(), nil); err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	transport := testutil.NewFakeTransport()
	tracker := session.NewTracker()
	sh := testutil.NewFakeSheet("Петя", "Вася")
	roster := &chatRoster{byChat: map[int64]models.Participant{
		5: {Name: "Петя", ChatID: 5},
	}}
	loop := NewLoop(engine, dispatch.New(transport, 1000), tracker, roster, sh)

	set, _ := engine.CurrentTeamSet()
	text := PollText(set, 0, 0)
	tracker.Record(models.KindTeamPoll, models.MessageRecord{ChatID: 1, MessageID: 11, Text: text})
	tracker.Record(models.KindTeamPoll, models.MessageRecord{ChatID: 2, MessageID: 12, Text: text})

	return &fixture{engine: engine, transport: transport, tracker: tracker, sheet: sh, loop: loop}
}

func (f *fixture) vote(t *testing.T, answer string) {
	t.Helper()
	f.loop.Handle(context.Background(), Event{
		ChatID:   1,
		Callback: wire.Callback{Poll: wire.TeamPoll, Data: f.engine.CurrentPollToken(), Answer: answer},
	})
}

func TestHandleLikePushesCounts(t *testing.T) {
	f := newFixture(t)

	f.vote(t, wire.AnswerYes)

	if f.engine.LikeCount() != 1 {
		t.Errorf("Expected 1 like, got %d", f.engine.LikeCount())
	}
	if f.transport.EditCount() != 2 {
		t.Errorf("Expected both poll messages edited, got %d edits", f.transport.EditCount())
	}
	for _, m := range f.tracker.Messages(models.KindTeamPoll) {
		if !strings.Contains(m.Text, "👍 1") {
			t.Errorf("Tracker text not updated: %q", m.Text)
		}
	}
}

func TestHandleSecondIdenticalVoteSkipsEdits(t *testing.T) {
	f := newFixture(t)

	f.vote(t, wire.AnswerYes)
	edits := f.transport.EditCount()

	// Counts unchanged between these two events: the tracker already
	// holds the rendered text, so no transport calls happen.
	f.loop.Handle(context.Background(), Event{
		ChatID:   2,
		Callback: wire.Callback{Poll: wire.TeamPoll, Data: "stale-token", Answer: wire.AnswerYes},
	})
	if f.transport.EditCount() != edits {
		t.Errorf("Stale vote caused %d extra edits", f.transport.EditCount()-edits)
	}
}

func TestHandleDislikeLimitRebroadcastsNewSplit(t *testing.T) {
	f := newFixture(t)
	oldToken := f.engine.CurrentPollToken()
	oldSet, _ := f.engine.CurrentTeamSet()

	for i := 0; i < models.DislikeLimit; i++ {
		f.vote(t, wire.AnswerNo)
	}

	if len(f.transport.Cleared) != 2 {
		t.Errorf("Expected stale keyboards cleared on both chats, got %d", len(f.transport.Cleared))
	}
	sent1, sent2 := f.transport.SentTo(1), f.transport.SentTo(2)
	if len(sent1) != 1 || len(sent2) != 1 {
		t.Fatalf("Expected one new poll message per chat, got %d and %d", len(sent1), len(sent2))
	}
	newSet, ok := f.engine.CurrentTeamSet()
	if !ok {
		t.Fatal("Expected a replacement split")
	}
	if newSet[0].Name == oldSet[0].Name {
		t.Error("Retired split re-announced")
	}
	if !strings.Contains(sent1[0].Text, newSet[0].Name) {
		t.Errorf("New poll text does not mention the new split: %q", sent1[0].Text)
	}

	// Fresh keyboard carries the new token, not the retired one.
	newToken := f.engine.CurrentPollToken()
	if newToken == oldToken {
		t.Fatal("Token did not rotate")
	}
	data := sent1[0].Markup.Rows[0][0].Data
	if !strings.Contains(data, newToken) || strings.Contains(data, oldToken) {
		t.Errorf("Keyboard token wrong: %q", data)
	}

	if got := len(f.tracker.Messages(models.KindTeamPoll)); got != 2 {
		t.Errorf("Expected tracker rebuilt with 2 records, got %d", got)
	}
}

func TestHandleAllSplitsRetiredNotifiesOwner(t *testing.T) {
	f := newFixture(t)

	// Retire both candidate splits.
	for round := 0; round < 2; round++ {
		for i := 0; i < models.DislikeLimit; i++ {
			f.vote(t, wire.AnswerNo)
		}
	}

	owner := f.transport.SentTo(1000)
	if len(owner) != 1 {
		t.Fatalf("Expected one owner notification, got %d", len(owner))
	}
	if !strings.Contains(owner[0].Text, "вариантов больше нет") {
		t.Errorf("Unexpected owner text: %q", owner[0].Text)
	}
}

func TestHandleReadinessRecordsApprovalAndCount(t *testing.T) {
	f := newFixture(t)
	f.tracker.Record(models.KindReadyCount, models.MessageRecord{ChatID: 5, MessageID: 51, Text: ReadyText(0)})
	f.tracker.Record(models.KindReadyCount, models.MessageRecord{ChatID: 6, MessageID: 61, Text: ReadyText(0)})

	f.loop.Handle(context.Background(), Event{
		ChatID:   5,
		Callback: wire.Callback{Poll: wire.ReadyPoll, Data: "29.08", Answer: wire.AnswerYes},
	})

	if f.sheet.Approvals["Петя"] != wire.AnswerYes {
		t.Errorf("Approval not recorded: %+v", f.sheet.Approvals)
	}
	if f.transport.EditCount() != 2 {
		t.Errorf("Expected both readiness messages edited, got %d", f.transport.EditCount())
	}
	for _, m := range f.tracker.Messages(models.KindReadyCount) {
		if m.Text != ReadyText(2) {
			t.Errorf("Readiness text not updated: %q", m.Text)
		}
	}
}

func TestHandleReadinessFromUnregisteredChat(t *testing.T) {
	f := newFixture(t)

	f.loop.Handle(context.Background(), Event{
		ChatID:   99,
		Callback: wire.Callback{Poll: wire.ReadyPoll, Data: "29.08", Answer: wire.AnswerYes},
	})

	if f.transport.EditCount() != 0 {
		t.Errorf("Unregistered chat caused %d edits", f.transport.EditCount())
	}
	if len(f.sheet.Approvals) != 0 {
		t.Errorf("Unregistered chat wrote approvals: %+v", f.sheet.Approvals)
	}
}

func TestHandleUnknownPollIgnored(t *testing.T) {
	f := newFixture(t)

	f.loop.Handle(context.Background(), Event{
		ChatID:   1,
		Callback: wire.Callback{Poll: "WeatherPoll", Data: "x", Answer: "Да"},
	})

	if f.transport.EditCount() != 0 || len(f.transport.Sent) != 0 {
		t.Error("Unknown poll produced transport traffic")
	}
}
