// Copyright (c) 2026 Pavel Karpov.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package events is the single-consumer loop between callback intake and
the rest of the service.

Decoded callbacks arrive on a channel and are handled one at a time:
team-poll votes go to the consensus engine, after which every delivered
poll message is edited to the fresh counts; when a vote retires the
active split, the loop strips stale keyboards and re-broadcasts the new
split under its new token. Readiness answers are written to the
attendance sheet and the readiness counter is edited everywhere.

Keeping intake sequential means all shared-state transitions happen in
one goroutine; concurrency is confined to the dispatcher's fan-out.
*/
package events
