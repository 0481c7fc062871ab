// Copyright (c) 2026 Pavel Karpov.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store provides the database-backed roster and the precomputed
partition-candidate source.

The roster caches players (name, chat id, rating) together with the
per-kind message ids last delivered to each chat. Candidate partitions
live in the partition_candidate table keyed by population size, or can
be served straight from a YAML fixture via CandidateFile.
*/
package store
