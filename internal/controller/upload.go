// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package controller

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jeranaias/securechat-tui/internal/logger"
	"github.com/jeranaias/securechat-tui/internal/model"
	"github.com/jeranaias/securechat-tui/internal/session"
)

// AllowedExtensions are the document types the summarizer accepts.
var AllowedExtensions = []string{"pdf", "json", "docx", "txt", "md", "xml"}

// Extension returns the lowercased text after the last dot of the base name,
// or "" when there is none.
func Extension(name string) string {
	base := filepath.Base(name)
	i := strings.LastIndexByte(base, '.')
	if i < 0 || i == len(base)-1 {
		return ""
	}
	return strings.ToLower(base[i+1:])
}

// IsSupported reports whether the file name has an allowed extension.
func IsSupported(name string) bool {
	ext := Extension(name)
	if ext == "" {
		return false
	}
	for _, allowed := range AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// InvalidTypeText is the assistant reply for a rejected file.
func InvalidTypeText(name string) string {
	return fmt.Sprintf("Invalid file type: %s. Please upload a valid file of type: .pdf, .json, .docx, .txt, .md, or .xml.", name)
}

// Opener opens the document contents. It is only called for supported types.
type Opener func() (io.ReadCloser, error)

// FileOpener opens path from disk.
func FileOpener(path string) Opener {
	return func() (io.ReadCloser, error) {
		return os.Open(path)
	}
}

// UploadController posts documents for summarization.
type UploadController struct {
	store    *session.Store
	uploader Uploader
	guard    *Guard
}

// NewUploadController creates an upload controller sharing guard with chat.
func NewUploadController(store *session.Store, uploader Uploader, guard *Guard) *UploadController {
	if guard == nil {
		guard = NewGuard()
	}
	return &UploadController{store: store, uploader: uploader, guard: guard}
}

// Submit echoes "File: <name>" and a placeholder into the session, then
// replaces the placeholder with the summary, the invalid-type notice or
// SummaryFailureText. Session usage totals are never touched.
//
// The echo is skipped when another reply is still pending: Submit then
// returns ErrTurnInFlight without touching the session, whatever the file
// type, so a session never holds two placeholders.
func (c *UploadController) Submit(ctx context.Context, sessionID, name string, open Opener) (Turn, error) {
	name = filepath.Base(name)
	if !c.guard.TryAcquire() {
		return Turn{}, ErrTurnInFlight
	}
	defer c.guard.Release()

	placeholder := model.NewPlaceholder()
	ok := c.store.Update(sessionID, session.ChangeMessages, func(s *model.ChatSession) {
		s.Append(model.NewUserMessage("File: " + name))
		s.Append(placeholder)
	})
	if !ok {
		return Turn{}, ErrSessionNotFound
	}
	turn := Turn{SessionID: sessionID, PlaceholderID: placeholder.ID}

	if !IsSupported(name) {
		logger.Logger.Info().Str("chat_id", sessionID).Str("file", name).Msg("UPLOAD_REJECTED_TYPE")
		turn.Content = InvalidTypeText(name)
		turn.Err = ErrUnsupportedFile
		c.settle(sessionID, placeholder.ID, turn.Content)
		return turn, nil
	}

	summary, err := c.upload(ctx, sessionID, name, open)
	if err != nil {
		logger.Logger.Error().Err(err).Str("chat_id", sessionID).Str("file", name).Msg("UPLOAD_FAILED")
		turn.Content = SummaryFailureText
		turn.Err = err
		c.settle(sessionID, placeholder.ID, turn.Content)
		return turn, nil
	}

	logger.Logger.Info().Str("chat_id", sessionID).Str("file", name).Int("chars", len(summary)).Msg("UPLOAD_SUMMARIZED")
	turn.Content = summary
	turn.Final = true
	c.settle(sessionID, placeholder.ID, summary)
	return turn, nil
}

func (c *UploadController) upload(ctx context.Context, sessionID, name string, open Opener) (string, error) {
	if open == nil {
		return "", fmt.Errorf("no contents for %s", name)
	}
	rc, err := open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", name, err)
	}
	defer rc.Close()

	res, err := c.uploader.UploadDocument(ctx, sessionID, name, rc)
	if err != nil {
		return "", err
	}
	return res.Summary, nil
}

func (c *UploadController) settle(sessionID, placeholderID, content string) {
	c.store.EditMessage(sessionID, placeholderID, func(m *model.Message) {
		m.Content = content
		m.Pending = false
	})
}
