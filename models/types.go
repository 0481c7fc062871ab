// Copyright (c) 2026 Pavel Karpov.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

// Tuning constants for the weekly game cycle.
const (
	// MinPlayers is the fewest rated players worth balancing; below this
	// no split is attempted.
	MinPlayers = 10

	// MaxPlayers caps the population that candidate partitions cover.
	// Everyone past the cap is round-robined onto the teams afterwards.
	MaxPlayers = 14

	// TeamVariants is how many balanced splits a generation run keeps.
	TeamVariants = 5

	// DislikeLimit is the dislike count that retires the active split.
	DislikeLimit = 5

	// DefaultRating substitutes for players with no recorded rating.
	DefaultRating = 50
)

// Participant is one player from the roster. Rating 0 means unrated.
type Participant struct {
	ID     string `json:"id"`
	ChatID int64  `json:"chat_id"`
	Name   string `json:"name"`
	Rating int    `json:"rating"`
}

// Team is a named group of participants within one split.
type Team struct {
	Name    string        `json:"name"`
	Players []Participant `json:"players"`
}

// AverageRating returns the mean rating of the team roster, 0 for an
// empty team.
func (t Team) AverageRating() float64 {
	if len(t.Players) == 0 {
		return 0
	}
	sum := 0
	for _, p := range t.Players {
		sum += p.Rating
	}
	return float64(sum) / float64(len(t.Players))
}

// TeamSet is one full partition of the eligible players into teams.
type TeamSet []Team

// Delta is the spread between the strongest and weakest team average,
// the balance metric generation minimizes.
func (s TeamSet) Delta() float64 {
	if len(s) == 0 {
		return 0
	}
	min, max := s[0].AverageRating(), s[0].AverageRating()
	for _, t := range s[1:] {
		avg := t.AverageRating()
		if avg < min {
			min = avg
		}
		if avg > max {
			max = avg
		}
	}
	return max - min
}

// Answer is a team-poll vote.
type Answer int

const (
	AnswerLike Answer = iota
	AnswerDislike
)

// VoteToken is a decoded vote: which poll generation it targets and the
// answer. Votes whose PollToken is stale are dropped.
type VoteToken struct {
	PollToken string
	Answer    Answer
}

// DispatchStatus classifies a per-recipient dispatch result.
type DispatchStatus int

const (
	StatusSuccess DispatchStatus = iota
	StatusError
)

// DispatchOutcome is the per-recipient result of a broadcast or edit
// fan-out. MessageID is set on successful sends so callers can edit the
// message later.
type DispatchOutcome struct {
	RecipientID int64
	Status      DispatchStatus
	Detail      string
	MessageID   int
}

// MessageKind selects which per-participant message a fan-out edit
// targets.
type MessageKind int

const (
	// KindReadyCount is the weekly "who plays" message carrying the
	// readiness counter.
	KindReadyCount MessageKind = iota

	// KindTeamPoll is the proposed-split message carrying like/dislike
	// buttons.
	KindTeamPoll
)

// MessageRecord remembers a message already delivered to a chat, with
// the text known to be on it. BroadcastEdit compares against the text
// to skip no-op edits.
type MessageRecord struct {
	ChatID    int64
	MessageID int
	Text      string
}

// Request types

type GenerateSessionRequest struct {
	Names []string `json:"names"`
}

type CallbackRequest struct {
	ChatID  int64  `json:"chat_id"`
	Payload string `json:"payload"`
}

type UpsertPlayerRequest struct {
	Name   string `json:"name"`
	ChatID int64  `json:"chat_id"`
	Rating int    `json:"rating"`
}

// Response types

type TeamView struct {
	Name          string   `json:"name"`
	AverageRating float64  `json:"average_rating"`
	Players       []string `json:"players"`
}

type SessionResponse struct {
	PollToken string     `json:"poll_token"`
	Likes     int        `json:"likes"`
	Dislikes  int        `json:"dislikes"`
	Teams     []TeamView `json:"teams"`
}

type BroadcastReport struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

type GenerateSessionResponse struct {
	Generated bool            `json:"generated"`
	Session   SessionResponse `json:"session"`
	Report    BroadcastReport `json:"report"`
}

type ClearSessionResponse struct {
	Deleted int `json:"deleted"`
}

type CallbackResponse struct {
	Queued bool `json:"queued"`
}

type PlayersResponse struct {
	Players []Participant `json:"players"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// View converts a team set into its response shape.
func (s TeamSet) View() []TeamView {
	views := make([]TeamView, 0, len(s))
	for _, t := range s {
		names := make([]string, 0, len(t.Players))
		for _, p := range t.Players {
			names = append(names, p.Name)
		}
		views = append(views, TeamView{
			Name:          t.Name,
			AverageRating: t.AverageRating(),
			Players:       names,
		})
	}
	return views
}
