// Copyright (c) 2026 Pavel Karpov.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/pkarpov/matchnight/auth"
	"github.com/pkarpov/matchnight/cliparse"
	"github.com/pkarpov/matchnight/middleware"
	"github.com/pkarpov/matchnight/models"
	"github.com/pkarpov/matchnight/store"
)

type PlayerHandler struct {
	roster *store.Roster
	cfg    cliparse.Config
}

func NewPlayerHandler(roster *store.Roster, cfg cliparse.Config) *PlayerHandler {
	return &PlayerHandler{roster: roster, cfg: cfg}
}

// Upsert handles POST /players: registers a player or updates an
// existing one's chat id and rating.
func (h *PlayerHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	key := r.Header.Get("X-Operator-Key")
	if err := auth.ValidateOperatorKey(h.cfg.OwnerChatID, key, h.cfg.OperatorKeySalt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid operator key")
		return
	}

	var req models.UpsertPlayerRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Name == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Rating < 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "rating must be non-negative")
		return
	}

	err := h.roster.Upsert(r.Context(), models.Participant{
		Name:   req.Name,
		ChatID: req.ChatID,
		Rating: req.Rating,
	})
	if err != nil {
		slog.Error("failed to upsert player", "name", req.Name, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save player")
		return
	}

	slog.Info("player upserted", "name", req.Name, "rating", req.Rating)
	w.WriteHeader(http.StatusCreated)
}

// List handles GET /players.
func (h *PlayerHandler) List(w http.ResponseWriter, r *http.Request) {
	players, err := h.roster.GetAll(r.Context())
	if err != nil {
		slog.Error("failed to list players", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.PlayersResponse{Players: players})
}
