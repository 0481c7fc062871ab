// Copyright (c) 2026 Pavel Karpov.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CandidateFile holds precomputed partitions loaded from a YAML
// fixture: population size -> list of assignments, each assignment a
// list of per-team index lists. It satisfies partition.CandidateSource
// directly and can seed the partition_candidate table.
type CandidateFile map[int][][][]int

// LoadCandidateFile reads and parses a candidate fixture.
func LoadCandidateFile(path string) (CandidateFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read candidate file: %w", err)
	}
	var f CandidateFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse candidate file %s: %w", path, err)
	}
	return f, nil
}

// Each iterates the in-memory candidates for the population size.
func (f CandidateFile) Each(ctx context.Context, population int, fn func(assignment [][]int) error) error {
	for _, assignment := range f[population] {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(assignment); err != nil {
			return err
		}
	}
	return nil
}

// SeedCandidates writes the fixture into partition_candidate,
// replacing any variant that already exists.
func SeedCandidates(ctx context.Context, db *sql.DB, f CandidateFile) error {
	for population, variants := range f {
		for i, assignment := range variants {
			encoded, err := json.Marshal(assignment)
			if err != nil {
				return fmt.Errorf("encode candidate %d/%d: %w", population, i, err)
			}
			_, err = db.ExecContext(ctx, `
				INSERT INTO partition_candidate (population, variant, assignment)
				VALUES ($1, $2, $3)
				ON CONFLICT (population, variant) DO UPDATE SET
					assignment = excluded.assignment
			`, population, i, string(encoded))
			if err != nil {
				return fmt.Errorf("seed candidate %d/%d: %w", population, i, err)
			}
		}
	}
	return nil
}
