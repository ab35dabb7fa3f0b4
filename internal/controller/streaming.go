// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package controller

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/jeranaias/securechat-tui/internal/api"
	"github.com/jeranaias/securechat-tui/internal/logger"
	"github.com/jeranaias/securechat-tui/internal/model"
	"github.com/jeranaias/securechat-tui/internal/session"
)

// Turn describes how a submitted message ended.
type Turn struct {
	SessionID     string
	PlaceholderID string

	// Content is the assistant text as finally written.
	Content   string
	MessageID string

	// Final is set when a terminal payload arrived.
	Final bool

	// Err is the fatal stream error, if any. The placeholder already shows FailureText.
	Err error
}

// StreamingController drives one chat turn at a time.
type StreamingController struct {
	store     *session.Store
	transport Transport
	guard     *Guard

	state    atomic.Int32
	onChange func(TurnState)
}

// NewStreamingController creates a controller. guard is shared with the
// upload controller so only one reply is pending process-wide.
func NewStreamingController(store *session.Store, transport Transport, guard *Guard) *StreamingController {
	if guard == nil {
		guard = NewGuard()
	}
	return &StreamingController{
		store:     store,
		transport: transport,
		guard:     guard,
	}
}

// OnStateChange registers fn to be called on every state transition. Must be
// set before the first Submit.
func (c *StreamingController) OnStateChange(fn func(TurnState)) {
	c.onChange = fn
}

// State returns the current turn state.
func (c *StreamingController) State() TurnState {
	return TurnState(c.state.Load())
}

func (c *StreamingController) setState(s TurnState) {
	if TurnState(c.state.Swap(int32(s))) == s {
		return
	}
	if c.onChange != nil {
		c.onChange(s)
	}
}

// Submit sends text as a user message in the session and blocks until the
// reply has finished. It returns an error only when the submission is
// rejected before anything is written; stream failures are reported in
// Turn.Err and shown in the transcript.
func (c *StreamingController) Submit(ctx context.Context, sessionID, text string) (Turn, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Turn{}, ErrEmptyMessage
	}
	if !c.guard.TryAcquire() {
		logger.Logger.Debug().Str("chat_id", sessionID).Msg("SUBMIT_REJECTED_IN_FLIGHT")
		return Turn{}, ErrTurnInFlight
	}
	defer c.guard.Release()

	user := model.NewUserMessage(text)
	placeholder := model.NewPlaceholder()
	var history []model.HistoryEntry

	ok := c.store.Update(sessionID, session.ChangeMessages, func(s *model.ChatSession) {
		history = s.History(model.MaxHistory)
		first := len(s.Messages) == 0
		s.Append(user)
		s.Append(placeholder)
		if first {
			s.Name = model.NameFromText(text)
		}
	})
	if !ok {
		return Turn{}, ErrSessionNotFound
	}

	c.setState(StateSending)
	defer c.setState(StateIdle)

	logger.Logger.Info().
		Str("chat_id", sessionID).
		Int("history", len(history)).
		Int("chars", len(text)).
		Msg("TURN_STARTED")

	stream := c.transport.OpenStream(ctx, api.StreamRequest{
		Message: text,
		History: history,
		ChatID:  sessionID,
	})
	defer stream.Close()

	turn := c.pump(sessionID, placeholder.ID, stream)

	logger.Logger.Info().
		Str("chat_id", sessionID).
		Bool("final", turn.Final).
		Bool("failed", turn.Err != nil).
		Str("message_id", turn.MessageID).
		Msg("TURN_FINISHED")
	return turn, nil
}

// pump applies events strictly in order. The next event is only requested
// after the previous one has been written to the store.
func (c *StreamingController) pump(sessionID, placeholderID string, stream api.EventStream) Turn {
	turn := Turn{SessionID: sessionID, PlaceholderID: placeholderID}
	var acc strings.Builder
	settled := false

	for ev, ok := stream.Next(); ok; ev, ok = stream.Next() {
		switch ev.Kind {
		case api.EventChunk:
			if settled {
				logger.Logger.Debug().Str("chat_id", sessionID).Msg("CHUNK_AFTER_SETTLE_IGNORED")
				continue
			}
			c.setState(StateStreaming)
			acc.WriteString(ev.Text)
			content := acc.String()
			c.store.EditMessage(sessionID, placeholderID, func(m *model.Message) {
				m.Content = content
			})

		case api.EventFinal:
			if settled {
				logger.Logger.Debug().Str("chat_id", sessionID).Msg("FINAL_AFTER_SETTLE_IGNORED")
				continue
			}
			c.setState(StateFinalizing)
			content := acc.String()
			if ev.Final.Response != "" && ev.Final.Response != content {
				content = ev.Final.Response
			}
			c.finalize(sessionID, placeholderID, content, ev.Final)
			turn.Content = content
			turn.MessageID = ev.Final.MessageID
			turn.Final = true
			settled = true

		case api.EventError:
			if ev.Recoverable() {
				logger.Logger.Warn().Err(ev.Err).Str("chat_id", sessionID).Msg("STREAM_LINE_SKIPPED")
				continue
			}
			if settled {
				logger.Logger.Warn().Err(ev.Err).Str("chat_id", sessionID).Msg("STREAM_ERROR_AFTER_FINAL")
				continue
			}
			c.setState(StateErrored)
			logger.Logger.Error().Err(ev.Err).Str("chat_id", sessionID).Msg("STREAM_FAILED")
			c.store.EditMessage(sessionID, placeholderID, func(m *model.Message) {
				m.Content = FailureText
				m.Pending = false
			})
			turn.Content = FailureText
			turn.Err = ev.Err
			settled = true

		case api.EventDone:
			if !settled {
				content := acc.String()
				c.store.EditMessage(sessionID, placeholderID, func(m *model.Message) {
					m.Content = content
					m.Pending = false
				})
				turn.Content = content
				settled = true
			}
		}
	}

	// A stream that ended without done still must not leave a pending placeholder.
	if !settled {
		content := acc.String()
		c.store.EditMessage(sessionID, placeholderID, func(m *model.Message) {
			m.Content = content
			m.Pending = false
		})
		turn.Content = content
	}
	return turn
}

// finalize writes the terminal payload in one store update so readers never
// see the id without the matching usage.
func (c *StreamingController) finalize(sessionID, placeholderID, content string, p api.FinalPayload) {
	c.store.Update(sessionID, session.ChangeUsage, func(s *model.ChatSession) {
		if i := s.IndexOf(placeholderID); i >= 0 {
			m := &s.Messages[i]
			m.Content = content
			m.MessageID = p.MessageID
			m.Pending = false
		}
		s.AddUsage(p.Tokens, p.Cost)
	})
}
