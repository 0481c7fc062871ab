// Copyright (c) 2026 Pavel Karpov.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package partition

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/pkarpov/matchnight/models"
)

// CandidateSource yields precomputed partitions of a population into
// fixed-size teams. Each assignment lists, per team, the indices of the
// rating-ordered population belonging to that team. Unknown population
// sizes call fn zero times and return nil.
type CandidateSource interface {
	Each(ctx context.Context, population int, fn func(assignment [][]int) error) error
}

// Label pool for generated teams. Assigned without repetition across
// every team of every retained split in one run.
var teamLabels = []string{
	"Барсы", "Волки", "Тигры", "Орлы", "Акулы",
	"Львы", "Медведи", "Соколы", "Пантеры", "Кобры",
	"Ястребы", "Быки", "Драконы", "Шершни",
}

// Partitioner selects balanced splits of a rated population from a
// candidate source.
type Partitioner struct {
	src CandidateSource

	// shuffle randomizes label order per run; swapped in tests.
	shuffle func(n int, swap func(i, j int))
}

func New(src CandidateSource) *Partitioner {
	return &Partitioner{src: src, shuffle: rand.Shuffle}
}

// retained is one kept candidate during the streaming top-K scan.
type retained struct {
	delta      float64
	assignment [][]int
}

// Generate splits the participants into up to models.TeamVariants
// balanced team sets. Participants are ordered by rating (unrated ones
// count as models.DefaultRating), the top models.MaxPlayers form the
// distributable population, and candidates for that population size are
// ranked by delta. Everyone beyond the cap is round-robined onto each
// kept split. Returns nil when fewer than models.MinPlayers are
// available or when the source has no candidates for the size.
func (p *Partitioner) Generate(ctx context.Context, participants []models.Participant) ([]models.TeamSet, error) {
	rated := make([]models.Participant, len(participants))
	copy(rated, participants)
	for i := range rated {
		if rated[i].Rating == 0 {
			rated[i].Rating = models.DefaultRating
		}
	}
	sort.SliceStable(rated, func(i, j int) bool {
		return rated[i].Rating > rated[j].Rating
	})

	pool := rated
	if len(pool) > models.MaxPlayers {
		pool = rated[:models.MaxPlayers]
	}
	if len(pool) < models.MinPlayers {
		return nil, nil
	}
	leftovers := rated[len(pool):]

	kept, err := p.selectBest(ctx, pool)
	if err != nil {
		return nil, err
	}

	sets := make([]models.TeamSet, 0, len(kept))
	for _, c := range kept {
		set, err := buildSet(pool, c.assignment)
		if err != nil {
			return nil, err
		}
		distributeLeftovers(set, leftovers)
		sets = append(sets, set)
	}

	p.assignLabels(sets)
	for _, set := range sets {
		for _, team := range set {
			sort.Slice(team.Players, func(i, j int) bool {
				return team.Players[i].Name < team.Players[j].Name
			})
		}
	}
	return sets, nil
}

// selectBest streams candidates for the population size and keeps the
// models.TeamVariants assignments with the smallest deltas. Candidates
// whose delta matches an already kept one are discarded so the kept
// splits stay distinct.
func (p *Partitioner) selectBest(ctx context.Context, pool []models.Participant) ([]retained, error) {
	var kept []retained
	err := p.src.Each(ctx, len(pool), func(assignment [][]int) error {
		delta, err := assignmentDelta(pool, assignment)
		if err != nil {
			return err
		}
		for _, c := range kept {
			if c.delta == delta {
				return nil
			}
		}
		if len(kept) < models.TeamVariants {
			kept = append(kept, retained{delta: delta, assignment: copyAssignment(assignment)})
			return nil
		}
		worst := 0
		for i := 1; i < len(kept); i++ {
			if kept[i].delta > kept[worst].delta {
				worst = i
			}
		}
		if delta < kept[worst].delta {
			kept[worst] = retained{delta: delta, assignment: copyAssignment(assignment)}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan candidates for population %d: %w", len(pool), err)
	}
	return kept, nil
}

func assignmentDelta(pool []models.Participant, assignment [][]int) (float64, error) {
	var min, max float64
	for ti, idxs := range assignment {
		if len(idxs) == 0 {
			return 0, fmt.Errorf("candidate team %d is empty", ti)
		}
		sum := 0
		for _, pi := range idxs {
			if pi < 0 || pi >= len(pool) {
				return 0, fmt.Errorf("candidate index %d out of range for population %d", pi, len(pool))
			}
			sum += pool[pi].Rating
		}
		avg := float64(sum) / float64(len(idxs))
		if ti == 0 || avg < min {
			min = avg
		}
		if ti == 0 || avg > max {
			max = avg
		}
	}
	return max - min, nil
}

func copyAssignment(assignment [][]int) [][]int {
	out := make([][]int, len(assignment))
	for i, idxs := range assignment {
		out[i] = append([]int(nil), idxs...)
	}
	return out
}

func buildSet(pool []models.Participant, assignment [][]int) (models.TeamSet, error) {
	set := make(models.TeamSet, len(assignment))
	for ti, idxs := range assignment {
		players := make([]models.Participant, 0, len(idxs))
		for _, pi := range idxs {
			if pi < 0 || pi >= len(pool) {
				return nil, fmt.Errorf("candidate index %d out of range for population %d", pi, len(pool))
			}
			players = append(players, pool[pi])
		}
		set[ti] = models.Team{Players: players}
	}
	return set, nil
}

// distributeLeftovers appends the beyond-cap participants round-robin,
// weakest team first. Team order is fixed by the averages of the
// candidate membership, before any leftover lands.
func distributeLeftovers(set models.TeamSet, leftovers []models.Participant) {
	if len(leftovers) == 0 || len(set) == 0 {
		return
	}
	order := make([]int, len(set))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return set[order[i]].AverageRating() < set[order[j]].AverageRating()
	})
	for i, p := range leftovers {
		ti := order[i%len(order)]
		set[ti].Players = append(set[ti].Players, p)
	}
}

// assignLabels names every team across all sets from the shuffled pool,
// no label twice. A pool smaller than the flattened team count falls
// back to numbered names.
func (p *Partitioner) assignLabels(sets []models.TeamSet) {
	labels := append([]string(nil), teamLabels...)
	p.shuffle(len(labels), func(i, j int) {
		labels[i], labels[j] = labels[j], labels[i]
	})
	next := 0
	for _, set := range sets {
		for ti := range set {
			if next < len(labels) {
				set[ti].Name = labels[next]
			} else {
				set[ti].Name = fmt.Sprintf("Команда %d", next+1)
			}
			next++
		}
	}
}
