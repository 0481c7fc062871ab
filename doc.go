// Copyright (c) 2026 Pavel Karpov.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the matchnight coordination
server.

Matchnight runs the weekly game cycle for a fixed group of players: it
asks who plays this week, splits the ready players into rating-balanced
teams, broadcasts the proposed split to every player's chat with
like/dislike buttons, and replaces the split when enough players reject
it. Chat delivery goes through an external bridge service; attendance
lives in an external sheet service.

# Starting the Server

The server requires environment variables or CLI flags for
configuration (a .env file is loaded when present):

	DATABASE_URL=matchnight.db TRANSPORT_URL=http://bridge:8081 ... go run main.go

Or with flags:

	go run main.go -p 3319 -d matchnight.db --transport http://bridge:8081

# Configuration

Required settings:

  - DATABASE_URL (-d): sqlite path or PostgreSQL connection string
  - TRANSPORT_URL (--transport): chat bridge base URL
  - OPERATOR_KEY_SALT (--operator-salt): secret for the operator key HMAC
  - OWNER_CHAT_ID (--owner): chat id receiving failure notifications

Optional settings:

  - PORT (-p): server port (default: 3319)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - SHEET_URL (--sheet): attendance sheet base URL
  - CANDIDATE_FILE (--candidates): partition candidate YAML to seed

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (session, callbacks, players)
  - router: route definitions using Go 1.22+ routing
  - partition: balanced team split generation
  - consensus: the voting session over the active split
  - dispatch: concurrent fan-out to chats with per-recipient outcomes
  - events: the sequential callback consumer loop
  - session: in-memory ledger of delivered messages
  - wire: callback payload codec shared with the chat bridge
  - transport, sheet: HTTP clients for the external collaborators
  - store: roster and candidate persistence
  - models: domain types and request/response types
  - auth: operator key generation and validation
  - db: schema creation
  - cliparse: configuration parsing

See package documentation for each component.
*/
package main
