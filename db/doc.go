// Copyright (c) 2026 Pavel Karpov.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package db creates the database schema: the player roster cache and
// the precomputed partition_candidate table.
package db
