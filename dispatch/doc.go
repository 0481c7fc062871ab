// Copyright (c) 2026 Pavel Karpov.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package dispatch fans a single message out to many chat recipients.

Each recipient's send or edit is an independent concurrent operation
bounded by a per-operation timeout; one slow or failing recipient never
delays or invalidates another's outcome. Broadcast and BroadcastEdit
return one DispatchOutcome per recipient. Edits are idempotent: when
the new text matches what is already on a message, no transport call is
made.

Owner notification and the single-target delete/clear-markup paths
never propagate errors; they log and move on, which keeps a broken
reporting channel from feeding itself.
*/
package dispatch
