// Copyright (c) 2026 Pavel Karpov.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/pkarpov/matchnight/auth"
	"github.com/pkarpov/matchnight/cliparse"
	"github.com/pkarpov/matchnight/consensus"
	"github.com/pkarpov/matchnight/dispatch"
	"github.com/pkarpov/matchnight/events"
	"github.com/pkarpov/matchnight/middleware"
	"github.com/pkarpov/matchnight/models"
	"github.com/pkarpov/matchnight/session"
	"github.com/pkarpov/matchnight/sheet"
	"github.com/pkarpov/matchnight/store"
)

type SessionHandler struct {
	engine     *consensus.Engine
	dispatcher *dispatch.Dispatcher
	tracker    *session.Tracker
	roster     *store.Roster
	sheet      sheet.Store // nil when no sheet is configured
	cfg        cliparse.Config
}

func NewSessionHandler(engine *consensus.Engine, dispatcher *dispatch.Dispatcher, tracker *session.Tracker, roster *store.Roster, sh sheet.Store, cfg cliparse.Config) *SessionHandler {
	return &SessionHandler{
		engine:     engine,
		dispatcher: dispatcher,
		tracker:    tracker,
		roster:     roster,
		sheet:      sh,
		cfg:        cfg,
	}
}

// requireOperator validates the single privileged-operator key.
func (h *SessionHandler) requireOperator(w http.ResponseWriter, r *http.Request) bool {
	key := r.Header.Get("X-Operator-Key")
	if err := auth.ValidateOperatorKey(h.cfg.OwnerChatID, key, h.cfg.OperatorKeySalt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid operator key")
		return false
	}
	return true
}

// Generate handles POST /session/generate: builds a fresh candidate
// pool from the eligible names and broadcasts the active split with
// like/dislike buttons.
func (h *SessionHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if !h.requireOperator(w, r) {
		return
	}

	var req models.GenerateSessionRequest
	if r.ContentLength > 0 {
		if err := middleware.ParseJSONBody(r, &req); err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
	}

	names := req.Names
	if len(names) == 0 && h.sheet != nil {
		var err error
		names, err = h.sheet.ReadyToPlay(r.Context())
		if err != nil {
			slog.Error("failed to read ready list", "error", err)
			middleware.ErrorResponse(w, http.StatusBadGateway, "Attendance sheet unavailable")
			return
		}
	}
	if len(names) == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "No eligible names: provide names or configure the sheet")
		return
	}

	if err := h.engine.Generate(r.Context(), names); err != nil {
		slog.Error("generation failed", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to generate team splits")
		return
	}

	set, ok := h.engine.CurrentTeamSet()
	if !ok {
		// Not enough players or no precomputed candidates for this
		// population; expected at unusual roster sizes.
		slog.Info("generation yielded no splits", "eligible", len(names))
		h.dispatcher.NotifyOwner(r.Context(), "Не удалось собрать составы: не хватает игроков или вариантов")
		middleware.JSONResponse(w, http.StatusOK, models.GenerateSessionResponse{Generated: false})
		return
	}

	recipients, err := h.recipients(r.Context())
	if err != nil {
		slog.Error("failed to list recipients", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	text := events.PollText(set, 0, 0)
	outcomes := h.dispatcher.Broadcast(r.Context(), text, recipients, events.PollMarkup(h.engine.CurrentPollToken()))
	h.tracker.Forget(models.KindTeamPoll)
	h.tracker.RecordOutcomes(models.KindTeamPoll, text, outcomes)
	h.persistOutcomes(r.Context(), models.KindTeamPoll, text, outcomes)

	slog.Info("team poll broadcast",
		"eligible", len(names),
		"recipients", len(recipients),
		"token", h.engine.CurrentPollToken(),
	)

	middleware.JSONResponse(w, http.StatusOK, models.GenerateSessionResponse{
		Generated: true,
		Session:   h.sessionView(),
		Report:    report(outcomes),
	})
}

// Ask handles POST /session/ask: broadcasts the weekly readiness
// question.
func (h *SessionHandler) Ask(w http.ResponseWriter, r *http.Request) {
	if !h.requireOperator(w, r) {
		return
	}

	count := 0
	if h.sheet != nil {
		names, err := h.sheet.ReadyToPlay(r.Context())
		if err != nil {
			slog.Warn("failed to read ready list, starting from zero", "error", err)
		} else {
			count = len(names)
		}
	}

	recipients, err := h.recipients(r.Context())
	if err != nil {
		slog.Error("failed to list recipients", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	text := events.ReadyText(count)
	week := time.Now().Format("02.01")
	outcomes := h.dispatcher.Broadcast(r.Context(), text, recipients, events.ReadyMarkup(week))
	h.tracker.Forget(models.KindReadyCount)
	h.tracker.RecordOutcomes(models.KindReadyCount, text, outcomes)
	h.persistOutcomes(r.Context(), models.KindReadyCount, text, outcomes)

	slog.Info("readiness poll broadcast", "recipients", len(recipients), "week", week)

	middleware.JSONResponse(w, http.StatusOK, report(outcomes))
}

// Clear handles POST /session/clear: end of game cycle. Wipes the
// session and deletes the delivered poll messages.
func (h *SessionHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if !h.requireOperator(w, r) {
		return
	}

	h.engine.ClearGeneratedSets()

	deleted := 0
	for _, kind := range []models.MessageKind{models.KindTeamPoll, models.KindReadyCount} {
		for _, m := range h.tracker.Messages(kind) {
			h.dispatcher.Delete(r.Context(), m)
			deleted++
		}
		h.tracker.Forget(kind)
		if err := h.roster.ClearMessages(r.Context(), kind); err != nil {
			slog.Warn("failed to clear persisted messages", "kind", int(kind), "error", err)
		}
	}

	slog.Info("session cleared", "deleted", deleted)
	middleware.JSONResponse(w, http.StatusOK, models.ClearSessionResponse{Deleted: deleted})
}

// Get handles GET /session.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, h.sessionView())
}

func (h *SessionHandler) sessionView() models.SessionResponse {
	resp := models.SessionResponse{
		PollToken: h.engine.CurrentPollToken(),
		Likes:     h.engine.LikeCount(),
		Dislikes:  h.engine.DislikeCount(),
	}
	if set, ok := h.engine.CurrentTeamSet(); ok {
		resp.Teams = set.View()
	}
	return resp
}

// recipients lists every roster chat reachable by broadcast.
func (h *SessionHandler) recipients(ctx context.Context) ([]int64, error) {
	players, err := h.roster.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	chats := make([]int64, 0, len(players))
	for _, p := range players {
		if p.ChatID != 0 {
			chats = append(chats, p.ChatID)
		}
	}
	return chats, nil
}

// persistOutcomes mirrors successful deliveries into the roster so
// edits survive a restart. Best effort.
func (h *SessionHandler) persistOutcomes(ctx context.Context, kind models.MessageKind, text string, outcomes map[int64]models.DispatchOutcome) {
	for _, o := range outcomes {
		if o.Status != models.StatusSuccess {
			continue
		}
		if err := h.roster.SetMessage(ctx, o.RecipientID, kind, o.MessageID, text); err != nil {
			slog.Warn("failed to persist message", "chat_id", o.RecipientID, "error", err)
		}
	}
}

func report(outcomes map[int64]models.DispatchOutcome) models.BroadcastReport {
	var rep models.BroadcastReport
	for _, o := range outcomes {
		if o.Status == models.StatusSuccess {
			rep.Sent++
		} else {
			rep.Failed++
		}
	}
	return rep
}
