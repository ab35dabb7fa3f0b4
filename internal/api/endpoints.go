// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// =============================================================================
// DOCUMENT SUMMARY
// =============================================================================

// UploadResult is the response of POST /chat/upload_document.
type UploadResult struct {
	Summary string
	Tokens  float64
	Cost    float64
}

// UploadDocument posts a file for summarization and returns the summary text.
func (c *Client) UploadDocument(ctx context.Context, chatID, filename string, r io.Reader) (UploadResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return UploadResult{}, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return UploadResult{}, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return UploadResult{}, fmt.Errorf("failed to finish form: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/chat/upload_document", &buf)
	if err != nil {
		return UploadResult{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if chatID != "" {
		req.Header.Set(ChatIDHeader, chatID)
	}

	resp, err := c.do(c.httpClient, req)
	if err != nil {
		return UploadResult{}, err
	}
	defer resp.Body.Close()

	body, err := readResponse(resp)
	if err != nil {
		return UploadResult{}, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return UploadResult{}, newHTTPError(resp.StatusCode, body)
	}

	var raw struct {
		Summary string     `json:"summary"`
		Tokens  flexNumber `json:"tokens"`
		Cost    flexNumber `json:"cost"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return UploadResult{}, fmt.Errorf("failed to decode response: %w", err)
	}
	return UploadResult{Summary: raw.Summary, Tokens: float64(raw.Tokens), Cost: float64(raw.Cost)}, nil
}

// =============================================================================
// SESSION CLEANUP
// =============================================================================

type cleanupRequest struct {
	ChatIDs []string `json:"chat_ids"`
}

// CleanupChatSessions asks the backend to drop state held for the chat ids.
func (c *Client) CleanupChatSessions(ctx context.Context, chatIDs []string) error {
	if len(chatIDs) == 0 {
		return nil
	}
	return c.postJSON(ctx, "/chat/cleanup_chat_sessions", nil, cleanupRequest{ChatIDs: chatIDs}, nil)
}

// =============================================================================
// FEEDBACK
// =============================================================================

// FeedbackRequest is the body of POST /feedback/.
type FeedbackRequest struct {
	MessageID string `json:"message_id"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// SendFeedback submits a rating and returns the backend's acknowledgment.
func (c *Client) SendFeedback(ctx context.Context, fb FeedbackRequest) (string, error) {
	var out statusResponse
	if err := c.postJSON(ctx, "/feedback/", nil, fb, &out); err != nil {
		return "", err
	}
	if out.Status != "" {
		return out.Status, nil
	}
	return out.Message, nil
}

// =============================================================================
// LOGIN
// =============================================================================

// Login registers the authenticated user with the backend.
func (c *Client) Login(ctx context.Context) (string, error) {
	var out statusResponse
	if err := c.postJSON(ctx, "/auth/login", nil, struct{}{}, &out); err != nil {
		return "", err
	}
	if out.Message != "" {
		return out.Message, nil
	}
	return out.Status, nil
}
