// Copyright (c) 2026 Pavel Karpov.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// CandidateTable streams precomputed partitions from the
// partition_candidate table. It satisfies partition.CandidateSource.
type CandidateTable struct {
	db *sql.DB
}

func NewCandidateTable(db *sql.DB) *CandidateTable {
	return &CandidateTable{db: db}
}

// Each calls fn for every stored candidate of the population size, in
// variant order. Sizes with no rows call fn zero times; that is the
// normal "insufficient precomputed data" case, not an error.
func (c *CandidateTable) Each(ctx context.Context, population int, fn func(assignment [][]int) error) error {
	rows, err := c.db.QueryContext(ctx, `
		SELECT assignment FROM partition_candidate
		WHERE population = $1
		ORDER BY variant
	`, population)
	if err != nil {
		return fmt.Errorf("query candidates for population %d: %w", population, err)
	}
	defer rows.Close()

	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return fmt.Errorf("scan candidate: %w", err)
		}
		var assignment [][]int
		if err := json.Unmarshal([]byte(raw), &assignment); err != nil {
			return fmt.Errorf("decode candidate for population %d: %w", population, err)
		}
		if err := fn(assignment); err != nil {
			return err
		}
	}
	return rows.Err()
}
