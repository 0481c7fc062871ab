// Copyright (c) 2026 Pavel Karpov.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package events

import (
	"fmt"
	"strings"

	"github.com/pkarpov/matchnight/dispatch"
	"github.com/pkarpov/matchnight/models"
	"github.com/pkarpov/matchnight/wire"
)

// PollText renders the proposed split with its current vote counts.
func PollText(set models.TeamSet, likes, dislikes int) string {
	var b strings.Builder
	b.WriteString("Составы на игру:\n")
	for _, team := range set {
		fmt.Fprintf(&b, "\n%s (средний %.1f):\n", team.Name, team.AverageRating())
		for _, p := range team.Players {
			fmt.Fprintf(&b, "  %s\n", p.Name)
		}
	}
	fmt.Fprintf(&b, "\n👍 %d  👎 %d", likes, dislikes)
	return b.String()
}

// ReadyText renders the weekly readiness question with the live count.
func ReadyText(count int) string {
	return fmt.Sprintf("Кто играет на этой неделе?\n\nГотовы играть: %d", count)
}

// PollMarkup builds the like/dislike keyboard scoped to the poll token.
func PollMarkup(token string) *dispatch.Markup {
	return &dispatch.Markup{Rows: [][]dispatch.Button{{
		{Text: "👍", Data: wire.Encode(wire.TeamPoll, token, wire.AnswerYes)},
		{Text: "👎", Data: wire.Encode(wire.TeamPoll, token, wire.AnswerNo)},
	}}}
}

// ReadyMarkup builds the readiness keyboard. data tags the week the
// answers belong to.
func ReadyMarkup(data string) *dispatch.Markup {
	return &dispatch.Markup{Rows: [][]dispatch.Button{{
		{Text: "Да", Data: wire.Encode(wire.ReadyPoll, data, wire.AnswerYes)},
		{Text: "Нет", Data: wire.Encode(wire.ReadyPoll, data, wire.AnswerNo)},
		{Text: "Мож", Data: wire.Encode(wire.ReadyPoll, data, wire.AnswerMaybe)},
	}}}
}
