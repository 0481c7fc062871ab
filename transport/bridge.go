// Copyright (c) 2026 Pavel Karpov.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package transport adapts the external chat bridge to the dispatcher.
// The bridge is whatever service actually talks to the chat platform;
// this client only forwards send/edit/delete calls to it over HTTP.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pkarpov/matchnight/dispatch"
)

// Bridge is an HTTP client for the chat bridge. Per-call deadlines come
// from the caller's context; the dispatcher already bounds every call,
// so the underlying client carries no timeout of its own.
type Bridge struct {
	baseURL string
	client  *http.Client
}

func NewBridge(baseURL string) *Bridge {
	return &Bridge{baseURL: baseURL, client: &http.Client{}}
}

type sendRequest struct {
	ChatID int64            `json:"chat_id"`
	Text   string           `json:"text"`
	Markup *dispatch.Markup `json:"markup,omitempty"`
}

type editRequest struct {
	ChatID    int64  `json:"chat_id"`
	MessageID int    `json:"message_id"`
	Text      string `json:"text"`
}

type messageRef struct {
	ChatID    int64 `json:"chat_id"`
	MessageID int   `json:"message_id"`
}

func (b *Bridge) Send(ctx context.Context, chatID int64, text string, markup *dispatch.Markup) (int, error) {
	var body struct {
		MessageID int `json:"message_id"`
	}
	err := b.post(ctx, "/send", sendRequest{ChatID: chatID, Text: text, Markup: markup}, &body)
	if err != nil {
		return 0, err
	}
	return body.MessageID, nil
}

func (b *Bridge) Edit(ctx context.Context, chatID int64, messageID int, text string) error {
	return b.post(ctx, "/edit", editRequest{ChatID: chatID, MessageID: messageID, Text: text}, nil)
}

func (b *Bridge) Delete(ctx context.Context, chatID int64, messageID int) error {
	return b.post(ctx, "/delete", messageRef{ChatID: chatID, MessageID: messageID}, nil)
}

func (b *Bridge) ClearMarkup(ctx context.Context, chatID int64, messageID int) error {
	return b.post(ctx, "/clear-markup", messageRef{ChatID: chatID, MessageID: messageID}, nil)
}

func (b *Bridge) post(ctx context.Context, path string, payload, out any) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("bridge %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Message string `json:"message"`
		}
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("bridge %s: %s", path, apiErr.Message)
		}
		return fmt.Errorf("bridge %s: status %d", path, resp.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("bridge %s: decode response: %w", path, err)
		}
	}
	return nil
}
