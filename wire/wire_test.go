// Copyright (c) 2026 Pavel Karpov.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package wire

import (
	"errors"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	payload := Encode(TeamPoll, "8a6bdfd2-4f61-4c12-9a7e-3f0f0b7f9b10", AnswerYes)

	cb, err := Decode(payload)
	if err != nil {
		t.Fatalf("Decode(%q) returned error: %v", payload, err)
	}
	if cb.Poll != TeamPoll {
		t.Errorf("Expected poll %q, got %q", TeamPoll, cb.Poll)
	}
	if cb.Data != "8a6bdfd2-4f61-4c12-9a7e-3f0f0b7f9b10" {
		t.Errorf("Unexpected data %q", cb.Data)
	}
	if cb.Answer != AnswerYes {
		t.Errorf("Expected answer %q, got %q", AnswerYes, cb.Answer)
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    Callback
		wantErr bool
	}{
		{
			name:    "team poll dislike",
			payload: "TeamPoll|abc123_Нет",
			want:    Callback{Poll: TeamPoll, Data: "abc123", Answer: AnswerNo},
		},
		{
			name:    "readiness maybe",
			payload: "ReadyPoll|29.08_Мож",
			want:    Callback{Poll: ReadyPoll, Data: "29.08", Answer: AnswerMaybe},
		},
		{
			name:    "missing answer separator",
			payload: "TeamPoll|abc123",
			wantErr: true,
		},
		{
			name:    "missing name separator",
			payload: "TeamPoll_Да",
			wantErr: true,
		},
		{
			name:    "empty data segment",
			payload: "TeamPoll|_Да",
			wantErr: true,
		},
		{
			name:    "empty payload",
			payload: "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cb, err := Decode(tt.payload)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Expected error for %q, got %+v", tt.payload, cb)
				}
				if !errors.Is(err, ErrMalformedPayload) {
					t.Errorf("Expected ErrMalformedPayload, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Decode(%q) returned error: %v", tt.payload, err)
			}
			if cb != tt.want {
				t.Errorf("Decode(%q) = %+v, want %+v", tt.payload, cb, tt.want)
			}
		})
	}
}

func TestPollName(t *testing.T) {
	if got := PollName("ReadyPoll|29.08_Да"); got != ReadyPoll {
		t.Errorf("Expected %q, got %q", ReadyPoll, got)
	}
	if got := PollName("garbage"); got != "garbage" {
		t.Errorf("Expected raw payload back, got %q", got)
	}
}
