// Copyright (c) 2026 Pavel Karpov.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains the HTTP request handlers for the matchnight
API.

# Handler Types

Each handler is a struct built from its collaborators via a constructor:

  - SessionHandler: weekly session lifecycle (generate, ask, clear, get)
  - CallbackHandler: vote intake from the chat bridge
  - PlayerHandler: roster registration and listing

# Session Lifecycle

A game week runs through three operator calls:

	POST /session/ask      → Ask (broadcast the readiness question)
	POST /session/generate → Generate (split the ready players, broadcast the poll)
	POST /session/clear    → Clear (wipe the session, delete the poll messages)

Operator operations require the X-Operator-Key header; the key is an
HMAC over the owner chat id, validated with auth.ValidateOperatorKey.

# Vote Intake

The chat bridge forwards button presses as callbacks:

	POST /callbacks → Receive

Receive decodes the payload with wire.Decode and enqueues an event for
the consumer loop. Malformed payloads get a 400; they mean the bridge
and the server disagree on the callback format, which should be loud.
Stale or otherwise ignorable votes are accepted and dropped later by
the engine.
*/
package handlers
