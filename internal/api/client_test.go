// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/securechat-tui/internal/auth"
	"github.com/jeranaias/securechat-tui/internal/model"
)

// collect drains a stream into a slice.
func collect(t *testing.T, s EventStream) []Event {
	t.Helper()
	defer s.Close()
	var out []Event
	for ev, ok := s.Next(); ok; ev, ok = s.Next() {
		out = append(out, ev)
		require.Less(t, len(out), 1000, "stream did not terminate")
	}
	return out
}

func kinds(events []Event) []EventKind {
	out := make([]EventKind, len(events))
	for i, ev := range events {
		out[i] = ev.Kind
	}
	return out
}

// =============================================================================
// STREAM TESTS
// =============================================================================

func TestOpenStream_ChunksThenFinal(t *testing.T) {
	var got SendRequest
	var chatID, authz string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/send", r.URL.Path)
		chatID = r.Header.Get(ChatIDHeader)
		authz = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"data\": \"Hel\"}\n\n")
		fmt.Fprint(w, ": keep-alive\n")
		fmt.Fprint(w, "data: {\"data\": \"lo\"}\r\n")
		fmt.Fprint(w, "data: {\"data\": {\"response\": \"Hello\", \"message_id\": 42, \"tokens\": 12, \"cost\": \"0.01\"}}\n")
		fmt.Fprint(w, "data: [DONE]\n")
	}))
	defer server.Close()

	client := NewClient(server.URL, auth.StaticSource("tok"))
	history := make([]model.HistoryEntry, 20)
	for i := range history {
		history[i] = model.HistoryEntry{Type: "user", Content: fmt.Sprintf("h%d", i)}
	}

	events := collect(t, client.OpenStream(context.Background(), StreamRequest{
		Message: "hi", History: history, ChatID: "chat-1",
	}))

	require.Equal(t, []EventKind{EventChunk, EventChunk, EventFinal, EventDone}, kinds(events))
	assert.Equal(t, "Hel", events[0].Text)
	assert.Equal(t, "lo", events[1].Text)
	assert.Equal(t, FinalPayload{Response: "Hello", MessageID: "42", Tokens: 12, Cost: 0.01}, events[2].Final)

	assert.Equal(t, "chat-1", chatID)
	assert.Equal(t, "Bearer tok", authz)
	assert.Equal(t, "hi", got.Message)
	require.Len(t, got.History, MaxHistory)
	assert.Equal(t, "h5", got.History[0].Content)
	assert.Equal(t, "h19", got.History[MaxHistory-1].Content)
}

func TestOpenStream_MalformedLineContinues(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "data: {\"data\": \"a\"}\n")
		fmt.Fprint(w, "data: {not json\n")
		fmt.Fprint(w, "data: {\"data\": \"b\"}")
	}))
	defer server.Close()

	events := collect(t, NewClient(server.URL, nil).OpenStream(context.Background(), StreamRequest{Message: "x"}))

	require.Equal(t, []EventKind{EventChunk, EventError, EventChunk, EventDone}, kinds(events))
	assert.True(t, events[1].Recoverable())
	assert.ErrorIs(t, events[1].Err, ErrMalformedPayload)
	assert.Equal(t, "b", events[2].Text, "trailing line without newline is still parsed")
}

func TestOpenStream_NonStreamingJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		fmt.Fprint(w, `{"response": "whole answer", "message_id": "m-9", "tokens": null}`)
	}))
	defer server.Close()

	events := collect(t, NewClient(server.URL, nil).OpenStream(context.Background(), StreamRequest{Message: "x"}))

	require.Equal(t, []EventKind{EventFinal, EventDone}, kinds(events))
	assert.Equal(t, "whole answer", events[0].Final.Response)
	assert.Equal(t, "m-9", events[0].Final.MessageID)
	assert.Zero(t, events[0].Final.Tokens)
}

func TestOpenStream_HTTPErrorIsFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer server.Close()

	events := collect(t, NewClient(server.URL, nil).OpenStream(context.Background(), StreamRequest{Message: "x"}))

	require.Equal(t, []EventKind{EventError, EventDone}, kinds(events))
	assert.False(t, events[0].Recoverable())
	assert.True(t, IsUnauthorized(events[0].Err))
}

func TestOpenStream_ConnectionFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	events := collect(t, NewClient(url, nil).OpenStream(context.Background(), StreamRequest{Message: "x"}))
	require.Equal(t, []EventKind{EventError, EventDone}, kinds(events))
}

func TestOpenStream_TokenFailureIsErrorEvent(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))
	defer server.Close()

	broken := auth.TokenFunc(func(context.Context) (string, error) { return "", auth.ErrTokenExpired })
	events := collect(t, NewClient(server.URL, broken).OpenStream(context.Background(), StreamRequest{Message: "x"}))

	require.Equal(t, []EventKind{EventError, EventDone}, kinds(events))
	assert.ErrorIs(t, events[0].Err, auth.ErrTokenExpired)
	assert.False(t, called, "no request without a usable credential")
}

func TestOpenStream_NoTokenProceedsUnauthenticated(t *testing.T) {
	var authz string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authz = r.Header.Get("Authorization")
		fmt.Fprint(w, "data: {\"data\": {\"response\": \"ok\"}}\n")
	}))
	defer server.Close()

	events := collect(t, NewClient(server.URL, auth.StaticSource("")).OpenStream(context.Background(), StreamRequest{Message: "x"}))
	require.Equal(t, []EventKind{EventFinal, EventDone}, kinds(events))
	assert.Empty(t, authz)
}

func TestOpenStream_NotConfigured(t *testing.T) {
	events := collect(t, NewClient("", nil).OpenStream(context.Background(), StreamRequest{Message: "x"}))
	require.Equal(t, []EventKind{EventError, EventDone}, kinds(events))
	assert.ErrorIs(t, events[0].Err, ErrNotConfigured)
}

func TestStream_NextAfterDone(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	defer server.Close()

	s := NewClient(server.URL, nil).OpenStream(context.Background(), StreamRequest{Message: "x"})
	ev, ok := s.Next()
	require.True(t, ok)
	assert.Equal(t, EventDone, ev.Kind)

	_, ok = s.Next()
	assert.False(t, ok)
	assert.NoError(t, s.Close())
}

// =============================================================================
// LINE PARSING
// =============================================================================

func TestParseLine(t *testing.T) {
	testCases := []struct {
		name string
		line string
		kind EventKind
		emit bool
	}{
		{"chunk", `data: {"data": "x"}`, EventChunk, true},
		{"no space", `data:{"data": "x"}`, EventChunk, true},
		{"sentinel", `data: [DONE]`, 0, false},
		{"blank payload", `data:   `, 0, false},
		{"not data", `event: message`, 0, false},
		{"empty chunk", `data: {"data": ""}`, 0, false},
		{"null data", `data: {"data": null}`, 0, false},
		{"object without response", `data: {"data": {"status": "thinking"}}`, 0, false},
		{"final empty response", `data: {"data": {"response": ""}}`, EventFinal, true},
		{"malformed", `data: {"data": `, EventError, true},
		{"number data", `data: {"data": 5}`, EventError, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ev, ok := parseLine([]byte(tc.line + "\n"))
			require.Equal(t, tc.emit, ok)
			if ok {
				assert.Equal(t, tc.kind, ev.Kind)
			}
		})
	}
}

// =============================================================================
// JSON ENDPOINTS
// =============================================================================

func TestUploadDocument(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/upload_document", r.URL.Path)
		assert.Equal(t, "chat-7", r.Header.Get(ChatIDHeader))

		f, hdr, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		data, _ := io.ReadAll(f)
		assert.Equal(t, "notes.md", hdr.Filename)
		assert.Equal(t, "# notes", string(data))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"summary": "short version", "tokens": 50, "cost": 0.002}`)
	}))
	defer server.Close()

	res, err := NewClient(server.URL, nil).UploadDocument(context.Background(), "chat-7", "notes.md", strings.NewReader("# notes"))
	require.NoError(t, err)
	assert.Equal(t, "short version", res.Summary)
	assert.Equal(t, 50.0, res.Tokens)
}

func TestCleanupChatSessions(t *testing.T) {
	var body cleanupRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/cleanup_chat_sessions", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	require.NoError(t, client.CleanupChatSessions(context.Background(), []string{"a", "b"}))
	assert.Equal(t, []string{"a", "b"}, body.ChatIDs)
	require.NoError(t, client.CleanupChatSessions(context.Background(), nil))
}

func TestSendFeedback(t *testing.T) {
	var got FeedbackRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/feedback/", r.URL.Path)
		assert.Equal(t, "Bearer abc", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		fmt.Fprint(w, `{"status": "Feedback received"}`)
	}))
	defer server.Close()

	status, err := NewClient(server.URL, auth.StaticSource("abc")).SendFeedback(context.Background(),
		FeedbackRequest{MessageID: "m1", Rating: 4, Comment: "good"})
	require.NoError(t, err)
	assert.Equal(t, "Feedback received", status)
	assert.Equal(t, FeedbackRequest{MessageID: "m1", Rating: 4, Comment: "good"}, got)
}

func TestInterceptor_ToleratesMissingToken(t *testing.T) {
	var authz []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authz = r.Header.Values("Authorization")
		fmt.Fprint(w, `{"message": "User logged in"}`)
	}))
	defer server.Close()

	failing := auth.TokenFunc(func(context.Context) (string, error) { return "", errors.New("helper crashed") })
	msg, err := NewClient(server.URL, failing).Login(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "User logged in", msg)
	assert.Empty(t, authz)
}

func TestSend_NonStreaming(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "c1", r.Header.Get(ChatIDHeader))
		fmt.Fprint(w, `{"response": "hi", "message_id": "m", "tokens": 3, "cost": 0.5}`)
	}))
	defer server.Close()

	p, err := NewClient(server.URL, nil).Send(context.Background(), StreamRequest{Message: "x", ChatID: "c1"})
	require.NoError(t, err)
	assert.Equal(t, FinalPayload{Response: "hi", MessageID: "m", Tokens: 3, Cost: 0.5}, p)
}

func TestHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "backend down", http.StatusBadGateway)
	}))
	defer server.Close()

	err := NewClient(server.URL, nil).CleanupChatSessions(context.Background(), []string{"a"})
	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadGateway, httpErr.Status)
	assert.Contains(t, httpErr.Error(), "backend down")
	assert.False(t, IsUnauthorized(err))
}
