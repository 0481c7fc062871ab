// Copyright (c) 2026 Pavel Karpov.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/pkarpov/matchnight/events"
	"github.com/pkarpov/matchnight/middleware"
	"github.com/pkarpov/matchnight/models"
	"github.com/pkarpov/matchnight/wire"
)

// Enqueuer accepts decoded callback events for the consumer loop.
type Enqueuer interface {
	Enqueue(ev events.Event)
}

type CallbackHandler struct {
	queue Enqueuer
}

func NewCallbackHandler(queue Enqueuer) *CallbackHandler {
	return &CallbackHandler{queue: queue}
}

// Receive handles POST /callbacks: decodes a vote payload from the
// chat bridge and hands it to the event loop. Malformed payloads are
// the one loud failure path; they signal a protocol violation.
func (h *CallbackHandler) Receive(w http.ResponseWriter, r *http.Request) {
	var req models.CallbackRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.ChatID == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "chat_id is required")
		return
	}

	cb, err := wire.Decode(req.Payload)
	if err != nil {
		slog.Warn("malformed callback payload", "chat_id", req.ChatID, "error", err)
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	h.queue.Enqueue(events.Event{ChatID: req.ChatID, Callback: cb})
	middleware.JSONResponse(w, http.StatusAccepted, models.CallbackResponse{Queued: true})
}
