// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"io"
	"time"
)

// JSONResponse is the envelope for --json output.
type JSONResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data"`
	Error     *string     `json:"error"`
	Timestamp string      `json:"timestamp"`
	Command   string      `json:"command,omitempty"`
}

// NewJSONResponse creates a successful response.
func NewJSONResponse(command string, data interface{}) *JSONResponse {
	return &JSONResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// NewJSONErrorResponse creates a failed response.
func NewJSONErrorResponse(command string, err error) *JSONResponse {
	msg := err.Error()
	return &JSONResponse{
		Success:   false,
		Error:     &msg,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// Write encodes the response, indented, to w.
func (r *JSONResponse) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// =============================================================================
// COMMAND DATA
// =============================================================================

// AskData is the --json payload of the ask command.
type AskData struct {
	ChatID    string  `json:"chat_id"`
	Response  string  `json:"response"`
	MessageID string  `json:"message_id,omitempty"`
	Tokens    int64   `json:"tokens"`
	Cost      float64 `json:"cost"`
}

// SummaryData is the --json payload of the summarize command.
type SummaryData struct {
	ChatID  string `json:"chat_id"`
	File    string `json:"file"`
	Summary string `json:"summary"`
}

// FeedbackData is the --json payload of the feedback command.
type FeedbackData struct {
	MessageID string `json:"message_id"`
	Rating    int    `json:"rating"`
	Status    string `json:"status"`
}

// WhoamiData is the --json payload of the whoami command.
type WhoamiData struct {
	Name      string     `json:"name"`
	Username  string     `json:"username,omitempty"`
	Email     string     `json:"email,omitempty"`
	Subject   string     `json:"subject,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Expired   bool       `json:"expired"`
}
