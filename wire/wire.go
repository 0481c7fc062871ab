// Copyright (c) 2026 Pavel Karpov.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package wire

import (
	"errors"
	"fmt"
	"strings"
)

// Poll names routed by the callback prefix.
const (
	TeamPoll  = "TeamPoll"
	ReadyPoll = "ReadyPoll"
)

// Localized answer texts carried on the wire.
const (
	AnswerYes   = "Да"
	AnswerNo    = "Нет"
	AnswerMaybe = "Мож"
)

const (
	nameSep   = "|"
	answerSep = "_"
)

// ErrMalformedPayload marks callback payloads that do not follow the
// <PollName>|<PollData>_<Answer> format.
var ErrMalformedPayload = errors.New("malformed callback payload")

// Callback is a decoded vote payload.
type Callback struct {
	Poll   string // routing name, e.g. TeamPoll
	Data   string // opaque poll data, the poll token for team polls
	Answer string // localized answer text
}

// Encode builds the callback payload placed on a button.
func Encode(poll, data, answer string) string {
	return poll + nameSep + data + answerSep + answer
}

// Decode parses a callback payload. Payloads missing either separator
// or the poll data segment are rejected with ErrMalformedPayload.
func Decode(payload string) (Callback, error) {
	prefix, answer, ok := strings.Cut(payload, answerSep)
	if !ok {
		return Callback{}, fmt.Errorf("%w: no %q separator in %q", ErrMalformedPayload, answerSep, payload)
	}
	poll, data, ok := strings.Cut(prefix, nameSep)
	if !ok || data == "" {
		return Callback{}, fmt.Errorf("%w: no poll data segment in %q", ErrMalformedPayload, payload)
	}
	return Callback{Poll: poll, Data: data, Answer: answer}, nil
}

// PollName extracts the routing name without decoding the rest. Unknown
// or malformed payloads yield whatever precedes the first separator;
// callers route on exact matches only.
func PollName(payload string) string {
	name, _, _ := strings.Cut(payload, nameSep)
	return name
}
