// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/jeranaias/securechat-tui/internal/auth"
	"github.com/jeranaias/securechat-tui/internal/logger"
	"github.com/jeranaias/securechat-tui/internal/model"
)

// =============================================================================
// EVENTS
// =============================================================================

// EventKind classifies a stream event.
type EventKind int

const (
	// EventChunk carries incremental assistant text.
	EventChunk EventKind = iota
	// EventFinal carries the terminal payload.
	EventFinal
	// EventError carries a failure. Malformed lines wrap ErrMalformedPayload
	// and the stream continues; anything else is followed by EventDone.
	EventError
	// EventDone is emitted exactly once, last.
	EventDone
)

// String returns the name of the kind.
func (k EventKind) String() string {
	switch k {
	case EventChunk:
		return "chunk"
	case EventFinal:
		return "final"
	case EventError:
		return "error"
	case EventDone:
		return "done"
	default:
		return "unknown"
	}
}

// Event is one element of an EventStream.
type Event struct {
	Kind  EventKind
	Text  string
	Final FinalPayload
	Err   error
}

// ChunkEvent builds a chunk event.
func ChunkEvent(text string) Event { return Event{Kind: EventChunk, Text: text} }

// FinalEvent builds a final event.
func FinalEvent(p FinalPayload) Event { return Event{Kind: EventFinal, Final: p} }

// ErrorEvent builds an error event.
func ErrorEvent(err error) Event { return Event{Kind: EventError, Err: err} }

// DoneEvent builds the terminal event.
func DoneEvent() Event { return Event{Kind: EventDone} }

// Recoverable reports whether an error event leaves the stream usable.
func (e Event) Recoverable() bool {
	return e.Kind == EventError && errors.Is(e.Err, ErrMalformedPayload)
}

// EventStream is a finite, non-restartable sequence of events. Next returns
// false once EventDone has been delivered.
type EventStream interface {
	Next() (Event, bool)
	Close() error
}

// StreamRequest is one chat turn to send.
type StreamRequest struct {
	Message string
	History []model.HistoryEntry
	ChatID  string
}

// =============================================================================
// OPEN
// =============================================================================

// OpenStream sends the message and returns its reply as events. It never
// fails synchronously: request, status and credential failures arrive as an
// error event followed by done. Exactly one request is made.
func (c *Client) OpenStream(ctx context.Context, sr StreamRequest) EventStream {
	s := &httpStream{ctx: ctx}

	body, err := json.Marshal(SendRequest{Message: sr.Message, History: trimHistory(sr.History)})
	if err != nil {
		return s.fail(fmt.Errorf("failed to marshal request: %w", err))
	}

	// The credential is fetched up front. No configured token means an
	// unauthenticated request; any other acquisition failure ends the turn.
	tok, err := c.token(ctx)
	if err != nil && !errors.Is(err, auth.ErrNoToken) {
		logger.Logger.Warn().Err(err).Msg("STREAM_TOKEN_UNAVAILABLE")
		return s.fail(fmt.Errorf("acquire token: %w", err))
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/chat/send", bytes.NewReader(body))
	if err != nil {
		return s.fail(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream, application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	if sr.ChatID != "" {
		req.Header.Set(ChatIDHeader, sr.ChatID)
	}

	logRequest(req)
	resp, err := c.streamClient.Do(req)
	req.Header.Del("Authorization")
	if err != nil {
		logger.Logger.Warn().Err(err).Str("chat_id", sr.ChatID).Msg("STREAM_REQUEST_FAILED")
		return s.fail(fmt.Errorf("request failed: %w", err))
	}
	logger.Logger.Debug().Int("status", resp.StatusCode).Str("chat_id", sr.ChatID).Msg("STREAM_OPENED")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := readResponse(resp)
		resp.Body.Close()
		return s.fail(newHTTPError(resp.StatusCode, data))
	}

	if isJSONResponse(resp) {
		defer resp.Body.Close()
		data, err := readResponse(resp)
		if err != nil {
			return s.fail(err)
		}
		var p FinalPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return s.fail(fmt.Errorf("%w: %v", ErrMalformedPayload, err))
		}
		s.queue = []Event{FinalEvent(p), DoneEvent()}
		return s
	}

	s.body = resp.Body
	s.reader = bufio.NewReader(resp.Body)
	return s
}

func isJSONResponse(resp *http.Response) bool {
	mt, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	return err == nil && mt == "application/json"
}

// =============================================================================
// HTTP STREAM
// =============================================================================

// httpStream reads one line at a time from the response body and only reads
// the next line after the previous event has been consumed.
type httpStream struct {
	ctx    context.Context
	body   io.ReadCloser
	reader *bufio.Reader
	queue  []Event
	ended  bool
}

func (s *httpStream) fail(err error) *httpStream {
	s.queue = []Event{ErrorEvent(err), DoneEvent()}
	return s
}

// Next returns the next event.
func (s *httpStream) Next() (Event, bool) {
	for {
		if len(s.queue) > 0 {
			ev := s.queue[0]
			s.queue = s.queue[1:]
			if ev.Kind == EventDone {
				s.ended = true
				s.queue = nil
				s.Close()
			}
			return ev, true
		}
		if s.ended || s.reader == nil {
			return Event{}, false
		}
		s.readLine()
	}
}

// readLine consumes one line and queues whatever it produces.
func (s *httpStream) readLine() {
	line, err := s.reader.ReadBytes('\n')
	if len(line) > 0 {
		if ev, ok := parseLine(line); ok {
			s.queue = append(s.queue, ev)
		}
	}
	if err == nil {
		return
	}
	if err != io.EOF {
		if ctxErr := s.ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		logger.Logger.Warn().Err(err).Msg("STREAM_READ_FAILED")
		s.queue = append(s.queue, ErrorEvent(fmt.Errorf("read stream: %w", err)))
	}
	s.queue = append(s.queue, DoneEvent())
	s.reader = nil
}

// Close releases the response body. Safe to call more than once.
func (s *httpStream) Close() error {
	if s.body == nil {
		return nil
	}
	err := s.body.Close()
	s.body = nil
	return err
}

// =============================================================================
// LINE PARSING
// =============================================================================

var (
	dataPrefix   = []byte("data:")
	doneSentinel = []byte("[DONE]")
)

// parseLine classifies one line of the body. Lines without the data prefix,
// blank payloads and the [DONE] sentinel produce nothing.
func parseLine(line []byte) (Event, bool) {
	line = bytes.TrimRight(line, "\r\n")
	if !bytes.HasPrefix(line, dataPrefix) {
		return Event{}, false
	}
	payload := bytes.TrimSpace(line[len(dataPrefix):])
	if len(payload) == 0 || bytes.Equal(payload, doneSentinel) {
		return Event{}, false
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		logger.Logger.Debug().Err(err).Int("bytes", len(payload)).Msg("STREAM_MALFORMED_LINE")
		return ErrorEvent(fmt.Errorf("%w: %v", ErrMalformedPayload, err)), true
	}

	data := bytes.TrimSpace(envelope.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return Event{}, false
	}

	switch data[0] {
	case '"':
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return ErrorEvent(fmt.Errorf("%w: %v", ErrMalformedPayload, err)), true
		}
		if text == "" {
			return Event{}, false
		}
		return ChunkEvent(text), true

	case '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(data, &fields); err != nil {
			return ErrorEvent(fmt.Errorf("%w: %v", ErrMalformedPayload, err)), true
		}
		if _, ok := fields["response"]; !ok {
			logger.Logger.Debug().Int("fields", len(fields)).Msg("STREAM_OBJECT_WITHOUT_RESPONSE")
			return Event{}, false
		}
		var p FinalPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return ErrorEvent(fmt.Errorf("%w: %v", ErrMalformedPayload, err)), true
		}
		return FinalEvent(p), true

	default:
		return ErrorEvent(fmt.Errorf("%w: unexpected data %s", ErrMalformedPayload, truncate(data, 32))), true
	}
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}

// =============================================================================
// NON-STREAMING SEND
// =============================================================================

// Send posts a chat turn and waits for a single JSON answer.
func (c *Client) Send(ctx context.Context, sr StreamRequest) (FinalPayload, error) {
	var out FinalPayload
	body := SendRequest{Message: sr.Message, History: trimHistory(sr.History)}
	if err := c.postJSON(ctx, "/chat/send", chatHeader(sr.ChatID), body, &out); err != nil {
		return FinalPayload{}, err
	}
	return out, nil
}
