// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// NameMaxRunes is how much of the first user message becomes the session name.
const NameMaxRunes = 30

// MaxHistory is the number of prior messages sent with each new message.
const MaxHistory = 15

// =============================================================================
// CHAT SESSION
// =============================================================================

// ChatSession is one sidebar entry and its transcript.
type ChatSession struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`

	Messages []Message `json:"messages" yaml:"messages"`

	// Running totals, only ever increased by AddUsage.
	Tokens int64   `json:"tokens" yaml:"tokens"`
	Cost   float64 `json:"cost" yaml:"cost"`

	ShowPrompts bool `json:"-" yaml:"-"`
}

// NewChatSession creates an empty session named after its sequence number.
func NewChatSession(seq int) ChatSession {
	return ChatSession{
		ID:          uuid.NewString(),
		Name:        fmt.Sprintf("Chat %d", seq),
		CreatedAt:   time.Now(),
		Messages:    []Message{},
		ShowPrompts: true,
	}
}

// Clone returns a copy whose message slice can be mutated independently.
func (s ChatSession) Clone() ChatSession {
	out := s
	out.Messages = make([]Message, len(s.Messages))
	copy(out.Messages, s.Messages)
	return out
}

// Append adds a message. Any appended message hides the starter prompts.
func (s *ChatSession) Append(msg Message) {
	s.Messages = append(s.Messages, msg)
	s.ShowPrompts = false
}

// IndexOf returns the index of the message with the given local ID, or -1.
func (s ChatSession) IndexOf(id string) int {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].ID == id {
			return i
		}
	}
	return -1
}

// LastMessage returns the most recent message.
func (s ChatSession) LastMessage() (Message, bool) {
	if len(s.Messages) == 0 {
		return Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

// HasPending reports whether a placeholder is currently in the transcript.
func (s ChatSession) HasPending() bool {
	for i := range s.Messages {
		if s.Messages[i].Pending {
			return true
		}
	}
	return false
}

// History returns the most recent limit messages in wire form, oldest first.
func (s ChatSession) History(limit int) []HistoryEntry {
	msgs := s.Messages
	if limit >= 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]HistoryEntry, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.ToHistory())
	}
	return out
}

// AddUsage adds a final payload's tokens and cost to the running totals.
// Missing, negative or non-finite values count as zero.
func (s *ChatSession) AddUsage(tokens, cost float64) {
	s.Tokens += int64(math.Round(nonNegative(tokens)))
	s.Cost += nonNegative(cost)
}

// NameFromText derives a session name from the first user message.
func NameFromText(text string) string {
	runes := []rune(text)
	if len(runes) > NameMaxRunes {
		runes = runes[:NameMaxRunes]
	}
	return string(runes)
}

func nonNegative(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
