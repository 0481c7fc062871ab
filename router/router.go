// Copyright (c) 2026 Pavel Karpov.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/pkarpov/matchnight/cliparse"
	"github.com/pkarpov/matchnight/consensus"
	"github.com/pkarpov/matchnight/dispatch"
	"github.com/pkarpov/matchnight/handlers"
	"github.com/pkarpov/matchnight/middleware"
	"github.com/pkarpov/matchnight/session"
	"github.com/pkarpov/matchnight/sheet"
	"github.com/pkarpov/matchnight/store"
)

// Deps collects everything the route handlers need.
type Deps struct {
	Engine     *consensus.Engine
	Dispatcher *dispatch.Dispatcher
	Tracker    *session.Tracker
	Roster     *store.Roster
	Sheet      sheet.Store // nil when no sheet is configured
	Queue      handlers.Enqueuer
	Config     cliparse.Config
}

func NewRouter(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	sessionHandler := handlers.NewSessionHandler(d.Engine, d.Dispatcher, d.Tracker, d.Roster, d.Sheet, d.Config)
	callbackHandler := handlers.NewCallbackHandler(d.Queue)
	playerHandler := handlers.NewPlayerHandler(d.Roster, d.Config)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Session lifecycle (operator operations)
	mux.HandleFunc("POST /session/generate", middleware.WithLogging(sessionHandler.Generate))
	mux.HandleFunc("POST /session/ask", middleware.WithLogging(sessionHandler.Ask))
	mux.HandleFunc("POST /session/clear", middleware.WithLogging(sessionHandler.Clear))
	mux.HandleFunc("GET /session", middleware.WithLogging(sessionHandler.Get))

	// Vote intake from the chat bridge
	mux.HandleFunc("POST /callbacks", middleware.WithLogging(callbackHandler.Receive))

	// Roster management
	mux.HandleFunc("POST /players", middleware.WithLogging(playerHandler.Upsert))
	mux.HandleFunc("GET /players", middleware.WithLogging(playerHandler.List))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("matchnight API v1"))
	})

	return mux
}
