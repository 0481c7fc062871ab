// Copyright (c) 2026 Pavel Karpov.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package partition generates balanced team splits from a rated player
population.

Candidate partitions are precomputed combinatorics supplied by a
CandidateSource keyed by population size; the package never enumerates
partitions itself. Selection is a streaming top-K scan over the
candidates: a fixed-capacity set of the smallest-delta assignments is
kept, where delta is the spread between the strongest and weakest team
average rating. Candidates duplicating an already kept delta are
skipped so the retained splits differ meaningfully.

After selection, players who did not make the distributable population
are appended round-robin starting at the weakest team, team names are
drawn from a shuffled label pool without repetition across all kept
splits, and each roster is alphabetized.
*/
package partition
