// Copyright (c) 2026 Pavel Karpov.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package consensus runs the like/dislike loop over a proposed team
split.

A generation run produces a pool of candidate splits and activates one
at random. Votes are scoped to the active split by an opaque poll
token; when the dislike counter hits the limit, the split is retired
for the rest of the session and a random survivor takes over under a
fresh token. Stale votes, arriving after a swap, are dropped without
error.
*/
package consensus
