// Copyright (c) 2026 Pavel Karpov.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package consensus

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/google/uuid"

	"github.com/pkarpov/matchnight/models"
	"github.com/pkarpov/matchnight/store"
)

// Roster resolves display names to registered players.
type Roster interface {
	GetByName(ctx context.Context, name string) (models.Participant, error)
}

// Splitter produces balanced team sets for a player list.
type Splitter interface {
	Generate(ctx context.Context, participants []models.Participant) ([]models.TeamSet, error)
}

// Engine owns the voting session over a proposed team split: the
// candidate pool, the active set, the poll token scoping votes to it,
// and the like/dislike counters. One mutex guards it all so the retire
// swap (new active set, new token, zeroed counters) is a single
// transition; a concurrent vote sees either the old state or the new,
// never a mix.
type Engine struct {
	roster   Roster
	splitter Splitter

	mu         sync.Mutex
	candidates []models.TeamSet
	retired    []bool
	active     int // index into candidates, -1 when none
	token      string
	likes      int
	dislikes   int

	// intn picks uniformly in [0,n); swapped in tests.
	intn func(n int) int
}

func New(roster Roster, splitter Splitter) *Engine {
	return &Engine{
		roster:   roster,
		splitter: splitter,
		active:   -1,
		intn:     rand.IntN,
	}
}

// Generate resolves the eligible names, produces a fresh candidate
// pool, and activates one set at random under a new poll token. Names
// absent from the roster still play, as placeholder unrated entries.
// Counters and retirement history reset.
func (e *Engine) Generate(ctx context.Context, names []string) error {
	players := make([]models.Participant, 0, len(names))
	for _, name := range names {
		p, err := e.roster.GetByName(ctx, name)
		switch {
		case errors.Is(err, store.ErrNotFound):
			// Not registered; include by name with no rating.
			p = models.Participant{Name: name}
		case err != nil:
			return fmt.Errorf("resolve %q: %w", name, err)
		}
		players = append(players, p)
	}

	sets, err := e.splitter.Generate(ctx, players)
	if err != nil {
		return fmt.Errorf("generate splits: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.candidates = sets
	e.retired = make([]bool, len(sets))
	e.likes, e.dislikes = 0, 0
	e.token = uuid.NewString()
	if len(sets) == 0 {
		e.active = -1
	} else {
		e.active = e.intn(len(sets))
	}
	return nil
}

// Vote applies a decoded vote. Votes carrying a stale poll token are
// dropped silently. Reaching models.DislikeLimit retires the active
// set, activates a random non-retired candidate (or none) under a new
// token with zeroed counters, and returns true so the caller can
// announce the new split.
func (e *Engine) Vote(tok models.VoteToken) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if tok.PollToken != e.token {
		return false
	}
	switch tok.Answer {
	case models.AnswerLike:
		e.likes++
	case models.AnswerDislike:
		e.dislikes++
		if e.dislikes == models.DislikeLimit {
			e.retireActiveLocked()
			return true
		}
	}
	return false
}

func (e *Engine) retireActiveLocked() {
	if e.active >= 0 {
		e.retired[e.active] = true
	}
	var alive []int
	for i, r := range e.retired {
		if !r {
			alive = append(alive, i)
		}
	}
	if len(alive) == 0 {
		e.active = -1
	} else {
		e.active = alive[e.intn(len(alive))]
	}
	e.token = uuid.NewString()
	e.likes, e.dislikes = 0, 0
}

// ClearGeneratedSets wipes the session at end of game cycle: candidate
// pool, retirement history, active set, counters, token.
func (e *Engine) ClearGeneratedSets() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.candidates = nil
	e.retired = nil
	e.active = -1
	e.likes, e.dislikes = 0, 0
	e.token = ""
}

// CurrentTeamSet returns the active split, if any.
func (e *Engine) CurrentTeamSet() (models.TeamSet, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active < 0 {
		return nil, false
	}
	return e.candidates[e.active], true
}

// CurrentPollToken returns the token scoping votes to the active set,
// issuing one first if none exists yet.
func (e *Engine) CurrentPollToken() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.token == "" {
		e.token = uuid.NewString()
	}
	return e.token
}

func (e *Engine) LikeCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.likes
}

func (e *Engine) DislikeCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dislikes
}
