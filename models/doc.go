// Copyright (c) 2026 Pavel Karpov.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines domain, request, and response types shared across
the service.

# Domain Types

  - Participant: roster entry with chat id and rating
  - Team / TeamSet: one named group / one full split of the players
  - VoteToken: decoded like/dislike vote scoped to a poll token
  - DispatchOutcome: per-recipient broadcast result
  - MessageRecord: a delivered message with its last known text
  - MessageKind: which per-participant message an edit targets

# Constants

Cycle tuning:

	MinPlayers    = 10
	MaxPlayers    = 14
	TeamVariants  = 5
	DislikeLimit  = 5
	DefaultRating = 50
*/
package models
