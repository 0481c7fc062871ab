// Copyright (c) 2026 Pavel Karpov.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/pkarpov/matchnight/auth"
	"github.com/pkarpov/matchnight/cliparse"
	"github.com/pkarpov/matchnight/db"
	"github.com/pkarpov/matchnight/dispatch"
	"github.com/pkarpov/matchnight/models"
	"github.com/pkarpov/matchnight/store"
	"github.com/pkarpov/matchnight/wire"
)

// SetupTestDB opens a fresh in-memory sqlite database with the full
// schema.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	name, err := auth.GenerateID(8)
	if err != nil {
		t.Fatalf("Failed to name test database: %v", err)
	}
	conn, err := sql.Open("sqlite", "file:"+name+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	// Shared-cache memory DBs vanish when the last connection closes;
	// a single pooled connection keeps them alive for the test.
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:            3319,
		DatabaseURL:     "file:test?mode=memory",
		DatabaseType:    "sqlite",
		OperatorKeySalt: "test-operator-salt",
		OwnerChatID:     1000,
	}
}

// AddTestPlayer inserts a roster entry.
func AddTestPlayer(t *testing.T, conn *sql.DB, name string, chatID int64, rating int) {
	t.Helper()
	if err := store.NewRoster(conn).Upsert(context.Background(), models.Participant{
		Name:   name,
		ChatID: chatID,
		Rating: rating,
	}); err != nil {
		t.Fatalf("Failed to add test player %q: %v", name, err)
	}
}

// TenPlayers seeds ten rated players with chat ids 101..110 and
// returns their names.
func TenPlayers(t *testing.T, conn *sql.DB) []string {
	t.Helper()
	names := make([]string, 10)
	for i := 0; i < 10; i++ {
		names[i] = fmt.Sprintf("Игрок%02d", i+1)
		AddTestPlayer(t, conn, names[i], int64(101+i), 100-10*i)
	}
	return names
}

// SeedTestCandidates stores candidate assignments for a population.
func SeedTestCandidates(t *testing.T, conn *sql.DB, population int, assignments ...[][]int) {
	t.Helper()
	f := store.CandidateFile{population: assignments}
	if err := store.SeedCandidates(context.Background(), conn, f); err != nil {
		t.Fatalf("Failed to seed candidates: %v", err)
	}
}

// SplitsOfTen is a set of 2x5 partitions of a 10-player population
// with pairwise distinct deltas for descending ratings.
var SplitsOfTen = [][][]int{
	{{0, 2, 4, 6, 8}, {1, 3, 5, 7, 9}},
	{{0, 3, 4, 7, 8}, {1, 2, 5, 6, 9}},
	{{0, 1, 4, 5, 8}, {2, 3, 6, 7, 9}},
	{{0, 1, 2, 5, 9}, {3, 4, 6, 7, 8}},
	{{0, 1, 2, 3, 9}, {4, 5, 6, 7, 8}},
	{{0, 1, 2, 3, 4}, {5, 6, 7, 8, 9}},
}

// SentMessage records one FakeTransport.Send call.
type SentMessage struct {
	ChatID    int64
	MessageID int
	Text      string
	Markup    *dispatch.Markup
}

// EditCall records one FakeTransport.Edit call.
type EditCall struct {
	ChatID    int64
	MessageID int
	Text      string
}

// MessageRef records a delete or clear-markup target.
type MessageRef struct {
	ChatID    int64
	MessageID int
}

// FakeTransport is an in-memory dispatch.Transport. Failures and hangs
// are scripted per chat id.
type FakeTransport struct {
	mu     sync.Mutex
	nextID int

	Sent    []SentMessage
	Edits   []EditCall
	Deleted []MessageRef
	Cleared []MessageRef

	SendErr map[int64]error
	EditErr map[int64]error
	Hang    map[int64]bool // block until the op context expires
}

func NewFakeTransport() *FakeTransport {
	return &FakeTransport{
		SendErr: make(map[int64]error),
		EditErr: make(map[int64]error),
		Hang:    make(map[int64]bool),
	}
}

func (f *FakeTransport) Send(ctx context.Context, chatID int64, text string, markup *dispatch.Markup) (int, error) {
	if f.hangs(chatID) {
		<-ctx.Done()
		return 0, ctx.Err()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.SendErr[chatID]; err != nil {
		return 0, err
	}
	f.nextID++
	f.Sent = append(f.Sent, SentMessage{ChatID: chatID, MessageID: f.nextID, Text: text, Markup: markup})
	return f.nextID, nil
}

func (f *FakeTransport) Edit(ctx context.Context, chatID int64, messageID int, text string) error {
	if f.hangs(chatID) {
		<-ctx.Done()
		return ctx.Err()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.EditErr[chatID]; err != nil {
		return err
	}
	f.Edits = append(f.Edits, EditCall{ChatID: chatID, MessageID: messageID, Text: text})
	return nil
}

func (f *FakeTransport) Delete(ctx context.Context, chatID int64, messageID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Deleted = append(f.Deleted, MessageRef{ChatID: chatID, MessageID: messageID})
	return nil
}

func (f *FakeTransport) ClearMarkup(ctx context.Context, chatID int64, messageID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Cleared = append(f.Cleared, MessageRef{ChatID: chatID, MessageID: messageID})
	return nil
}

func (f *FakeTransport) hangs(chatID int64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Hang[chatID]
}

// SentTo returns the messages sent to one chat.
func (f *FakeTransport) SentTo(chatID int64) []SentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []SentMessage
	for _, m := range f.Sent {
		if m.ChatID == chatID {
			out = append(out, m)
		}
	}
	return out
}

// EditCount returns how many edit calls reached the transport.
func (f *FakeTransport) EditCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Edits)
}

// FakeSheet is an in-memory spreadsheet collaborator.
type FakeSheet struct {
	mu        sync.Mutex
	Ready     []string
	Approvals map[string]string
	Err       error
}

func NewFakeSheet(ready ...string) *FakeSheet {
	return &FakeSheet{Ready: ready, Approvals: make(map[string]string)}
}

func (f *FakeSheet) ReadyToPlay(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	return append([]string(nil), f.Ready...), nil
}

func (f *FakeSheet) SetApproval(ctx context.Context, name, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	f.Approvals[name] = value

	// Mirror the real sheet: the approval moves the player in or out of
	// the ready list.
	idx := -1
	for i, n := range f.Ready {
		if n == name {
			idx = i
			break
		}
	}
	switch {
	case value == wire.AnswerYes && idx < 0:
		f.Ready = append(f.Ready, name)
	case value != wire.AnswerYes && idx >= 0:
		f.Ready = append(f.Ready[:idx], f.Ready[idx+1:]...)
	}
	return nil
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
