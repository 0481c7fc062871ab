// Copyright (c) 2026 Pavel Karpov.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package partition

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"

	"github.com/pkarpov/matchnight/models"
)

type stubSource struct {
	candidates map[int][][][]int
	err        error
	calls      int
}

func (s *stubSource) Each(ctx context.Context, population int, fn func([][]int) error) error {
	s.calls++
	if s.err != nil {
		return s.err
	}
	for _, a := range s.candidates[population] {
		if err := fn(a); err != nil {
			return err
		}
	}
	return nil
}

// ratedPlayers builds n players named P01..Pnn with descending ratings
// starting at top and stepping by -10.
func ratedPlayers(n, top int) []models.Participant {
	players := make([]models.Participant, n)
	for i := range players {
		players[i] = models.Participant{
			Name:   fmt.Sprintf("P%02d", i+1),
			Rating: top - 10*i,
		}
	}
	return players
}

func allNames(set models.TeamSet) []string {
	var names []string
	for _, t := range set {
		for _, p := range t.Players {
			names = append(names, p.Name)
		}
	}
	sort.Strings(names)
	return names
}

func TestGenerateTooFewPlayers(t *testing.T) {
	src := &stubSource{}
	p := New(src)

	sets, err := p.Generate(context.Background(), ratedPlayers(models.MinPlayers-1, 100))
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if len(sets) != 0 {
		t.Errorf("Expected no sets below MinPlayers, got %d", len(sets))
	}
	if src.calls != 0 {
		t.Errorf("Expected candidate source untouched, got %d calls", src.calls)
	}
}

func TestGenerateNoCandidatesForPopulation(t *testing.T) {
	src := &stubSource{candidates: map[int][][][]int{}}
	p := New(src)

	sets, err := p.Generate(context.Background(), ratedPlayers(10, 100))
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if len(sets) != 0 {
		t.Errorf("Expected empty result with no candidates, got %d sets", len(sets))
	}
}

func TestGenerateTenPlayers(t *testing.T) {
	// Ratings 100..10 by tens; deltas per candidate: 10, 50, 2,
	// duplicate 10, 18, 22, 30. Top-5 distinct deltas: 2,10,18,22,30.
	src := &stubSource{candidates: map[int][][][]int{
		10: {
			{{0, 2, 4, 6, 8}, {1, 3, 5, 7, 9}},
			{{0, 1, 2, 3, 4}, {5, 6, 7, 8, 9}},
			{{0, 3, 4, 7, 8}, {1, 2, 5, 6, 9}},
			{{1, 3, 5, 7, 9}, {0, 2, 4, 6, 8}},
			{{0, 1, 4, 5, 8}, {2, 3, 6, 7, 9}},
			{{0, 1, 2, 5, 9}, {3, 4, 6, 7, 8}},
			{{0, 1, 2, 3, 9}, {4, 5, 6, 7, 8}},
		},
	}}
	p := New(src)

	players := ratedPlayers(10, 100)
	sets, err := p.Generate(context.Background(), players)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if len(sets) != models.TeamVariants {
		t.Fatalf("Expected %d sets, got %d", models.TeamVariants, len(sets))
	}

	want := allNames(models.TeamSet{{Players: players}})
	deltas := make(map[float64]bool)
	labels := make(map[string]bool)
	for _, set := range sets {
		got := allNames(set)
		if len(got) != len(want) {
			t.Fatalf("Set covers %d players, want %d", len(got), len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("Set roster mismatch: got %v, want %v", got, want)
			}
		}

		d := set.Delta()
		if deltas[d] {
			t.Errorf("Duplicate delta %v retained", d)
		}
		deltas[d] = true
		if d == 50 {
			t.Errorf("Worst candidate (delta 50) should have been displaced")
		}

		for _, team := range set {
			if team.Name == "" {
				t.Errorf("Team left unnamed")
			}
			if labels[team.Name] {
				t.Errorf("Label %q reused across teams", team.Name)
			}
			labels[team.Name] = true
			if !sort.SliceIsSorted(team.Players, func(i, j int) bool {
				return team.Players[i].Name < team.Players[j].Name
			}) {
				t.Errorf("Team %q roster not alphabetized", team.Name)
			}
		}
	}
}

func TestGenerateDistributesLeftovers(t *testing.T) {
	src := &stubSource{candidates: map[int][][][]int{
		14: {
			{{0, 1, 2, 3, 4, 5, 6}, {7, 8, 9, 10, 11, 12, 13}},
		},
	}}
	p := New(src)

	players := ratedPlayers(16, 160)
	sets, err := p.Generate(context.Background(), players)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if len(sets) != 1 {
		t.Fatalf("Expected 1 set, got %d", len(sets))
	}

	set := sets[0]
	got := allNames(set)
	want := allNames(models.TeamSet{{Players: players}})
	if len(got) != 16 {
		t.Fatalf("Expected all 16 players distributed, got %d", len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Roster mismatch: got %v, want %v", got, want)
		}
	}

	// Two leftovers over two teams: one each, weakest team first.
	if len(set[0].Players) != 8 || len(set[1].Players) != 8 {
		t.Errorf("Expected 8+8 players, got %d+%d", len(set[0].Players), len(set[1].Players))
	}
}

func TestGenerateUnratedUseDefault(t *testing.T) {
	src := &stubSource{candidates: map[int][][][]int{
		10: {
			{{0, 1, 2, 3, 4}, {5, 6, 7, 8, 9}},
		},
	}}
	p := New(src)

	players := make([]models.Participant, 10)
	for i := range players {
		players[i] = models.Participant{Name: fmt.Sprintf("U%02d", i)}
	}
	sets, err := p.Generate(context.Background(), players)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if len(sets) != 1 {
		t.Fatalf("Expected 1 set, got %d", len(sets))
	}
	for _, team := range sets[0] {
		if avg := team.AverageRating(); avg != models.DefaultRating {
			t.Errorf("Expected average %d for all-unrated team, got %v", models.DefaultRating, avg)
		}
	}
}

func TestGenerateAllDuplicateDeltas(t *testing.T) {
	// Mirrored assignments share one delta; only the first is kept.
	src := &stubSource{candidates: map[int][][][]int{
		10: {
			{{0, 2, 4, 6, 8}, {1, 3, 5, 7, 9}},
			{{1, 3, 5, 7, 9}, {0, 2, 4, 6, 8}},
			{{0, 2, 4, 6, 8}, {1, 3, 5, 7, 9}},
		},
	}}
	p := New(src)

	sets, err := p.Generate(context.Background(), ratedPlayers(10, 100))
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if len(sets) != 1 {
		t.Errorf("Expected a single set for duplicate deltas, got %d", len(sets))
	}
}

func TestGenerateSourceError(t *testing.T) {
	src := &stubSource{err: errors.New("table unavailable")}
	p := New(src)

	if _, err := p.Generate(context.Background(), ratedPlayers(10, 100)); err == nil {
		t.Fatal("Expected source error to propagate")
	}
}

func TestGenerateBadCandidateIndex(t *testing.T) {
	src := &stubSource{candidates: map[int][][][]int{
		10: {
			{{0, 1, 2, 3, 4}, {5, 6, 7, 8, 42}},
		},
	}}
	p := New(src)

	if _, err := p.Generate(context.Background(), ratedPlayers(10, 100)); err == nil {
		t.Fatal("Expected out-of-range candidate index to fail")
	}
}
