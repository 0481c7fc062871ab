// Copyright (c) 2026 Pavel Karpov.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package sheet defines the spreadsheet collaborator tracking weekly
// attendance. The sheet itself lives outside this service; Bridge talks
// to whatever exposes it over HTTP.
package sheet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Store reads and writes the attendance column.
type Store interface {
	// ReadyToPlay lists the names marked as playing this week.
	ReadyToPlay(ctx context.Context) ([]string, error)

	// SetApproval writes one player's attendance answer.
	SetApproval(ctx context.Context, name, value string) error
}

// Bridge is an HTTP client for an external sheet service exposing
// GET /ready and POST /approval.
type Bridge struct {
	baseURL string
	client  *http.Client
}

func NewBridge(baseURL string) *Bridge {
	return &Bridge{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (b *Bridge) ReadyToPlay(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"/ready", nil)
	if err != nil {
		return nil, err
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sheet ready request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sheet ready request: status %d", resp.StatusCode)
	}

	var body struct {
		Names []string `json:"names"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode sheet response: %w", err)
	}
	return body.Names, nil
}

func (b *Bridge) SetApproval(ctx context.Context, name, value string) error {
	payload, err := json.Marshal(map[string]string{"name": name, "value": value})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/approval", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("sheet approval request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("sheet approval request: status %d", resp.StatusCode)
	}
	return nil
}
