// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package controller

import (
	"context"
	"errors"
	"io"
	"sync/atomic"

	"github.com/jeranaias/securechat-tui/internal/api"
)

// =============================================================================
// ERRORS AND FIXED TEXT
// =============================================================================

var (
	// ErrEmptyMessage rejects a submission that is blank after trimming.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrTurnInFlight rejects a submission while another reply is in progress.
	ErrTurnInFlight = errors.New("a response is already in progress")

	// ErrSessionNotFound rejects a submission for a missing session.
	ErrSessionNotFound = errors.New("chat session not found")

	// ErrUnsupportedFile rejects an upload whose extension is not allowed.
	ErrUnsupportedFile = errors.New("unsupported file type")

	// ErrInvalidRating rejects feedback outside 1..5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")

	// ErrNoMessageID rejects feedback for a reply the backend never identified.
	ErrNoMessageID = errors.New("message has no backend id")
)

const (
	// FailureText replaces the placeholder when a reply fails.
	FailureText = "Error: Unable to fetch response"

	// SummaryFailureText replaces the placeholder when a summary fails.
	SummaryFailureText = "Error: Unable to fetch summary"
)

// =============================================================================
// COLLABORATORS
// =============================================================================

// Transport opens a reply stream. *api.Client implements it.
type Transport interface {
	OpenStream(ctx context.Context, req api.StreamRequest) api.EventStream
}

// Uploader posts a document for summarization. *api.Client implements it.
type Uploader interface {
	UploadDocument(ctx context.Context, chatID, filename string, r io.Reader) (api.UploadResult, error)
}

// FeedbackSender submits a rating. *api.Client implements it.
type FeedbackSender interface {
	SendFeedback(ctx context.Context, fb api.FeedbackRequest) (string, error)
}

// =============================================================================
// IN-FLIGHT GUARD
// =============================================================================

// Guard allows one assistant turn at a time across every session.
type Guard struct {
	busy atomic.Bool
}

// NewGuard creates an idle guard.
func NewGuard() *Guard {
	return &Guard{}
}

// TryAcquire takes the guard if it is free.
func (g *Guard) TryAcquire() bool {
	return g.busy.CompareAndSwap(false, true)
}

// Release frees the guard.
func (g *Guard) Release() {
	g.busy.Store(false)
}

// Busy reports whether a turn is in flight.
func (g *Guard) Busy() bool {
	return g.busy.Load()
}

// =============================================================================
// TURN STATE
// =============================================================================

// TurnState is where the current assistant turn stands.
type TurnState int32

const (
	StateIdle TurnState = iota
	StateSending
	StateStreaming
	StateFinalizing
	StateErrored
)

// String returns the state name.
func (s TurnState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	case StateStreaming:
		return "streaming"
	case StateFinalizing:
		return "finalizing"
	case StateErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// Active reports whether the state belongs to an in-flight turn.
func (s TurnState) Active() bool {
	return s == StateSending || s == StateStreaming || s == StateFinalizing
}
