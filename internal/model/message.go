// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat sessions and messages.
package model

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// MessageType tags who produced a message.
type MessageType string

const (
	TypeUser      MessageType = "user"
	TypeAssistant MessageType = "assistant"
)

// String returns the string representation of the type.
func (t MessageType) String() string {
	return string(t)
}

// DisplayName returns a human-readable name for the sender.
func (t MessageType) DisplayName() string {
	switch t {
	case TypeUser:
		return "You"
	case TypeAssistant:
		return "Assistant"
	default:
		return string(t)
	}
}

// PlaceholderText is what a pending assistant message shows until its first chunk arrives.
const PlaceholderText = "..."

// =============================================================================
// MESSAGE
// =============================================================================

// Message is a single transcript entry. Messages are values: the session store
// replaces them wholesale, it never hands out pointers into a live session.
type Message struct {
	// ID is the local identity, assigned at creation and never sent to the backend.
	ID        string      `json:"id" yaml:"id"`
	Type      MessageType `json:"type" yaml:"type"`
	Content   string      `json:"content" yaml:"content"`
	Timestamp time.Time   `json:"timestamp" yaml:"timestamp"`

	// MessageID is the backend identifier, set only by a final stream payload.
	MessageID string `json:"message_id,omitempty" yaml:"message_id,omitempty"`

	// Pending marks the in-flight assistant placeholder.
	Pending bool `json:"-" yaml:"-"`

	// IsNew drives the one-time reveal effect in the transcript.
	IsNew bool `json:"-" yaml:"-"`
}

// NewUserMessage creates a user message.
func NewUserMessage(content string) Message {
	return Message{
		ID:        generateID(),
		Type:      TypeUser,
		Content:   content,
		Timestamp: time.Now(),
		IsNew:     true,
	}
}

// NewAssistantMessage creates a settled reply. messageID may be empty when
// the backend sent none.
func NewAssistantMessage(content, messageID string) Message {
	return Message{
		ID:        generateID(),
		Type:      TypeAssistant,
		Content:   content,
		MessageID: messageID,
		Timestamp: time.Now(),
	}
}

// NewPlaceholder creates the pending assistant message for one request.
func NewPlaceholder() Message {
	return Message{
		ID:        generateID(),
		Type:      TypeAssistant,
		Content:   PlaceholderText,
		Timestamp: time.Now(),
		Pending:   true,
		IsNew:     true,
	}
}

// HistoryEntry is the wire shape of a prior message sent along with a new one.
type HistoryEntry struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// ToHistory converts a message to its wire shape.
func (m Message) ToHistory() HistoryEntry {
	return HistoryEntry{Type: string(m.Type), Content: m.Content}
}

// Preview returns a truncated preview of the content.
func (m Message) Preview(maxLen int) string {
	runes := []rune(m.Content)
	if len(runes) <= maxLen {
		return m.Content
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// CanReceiveFeedback reports whether the message is a finalized assistant answer with a backend id.
func (m Message) CanReceiveFeedback() bool {
	return m.Type == TypeAssistant && !m.Pending && m.MessageID != ""
}

// generateID creates a unique local message ID.
func generateID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return "msg_" + hex.EncodeToString(bytes)
}
