// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package controller

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stringOpener(s string) Opener {
	return func() (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(s)), nil
	}
}

func TestIsSupported(t *testing.T) {
	testCases := map[string]bool{
		"report.pdf":        true,
		"REPORT.PDF":        true,
		"data.Json":         true,
		"letter.docx":       true,
		"notes.txt":         true,
		"readme.md":         true,
		"feed.xml":          true,
		"notes.csv":         false,
		"archive.tar.gz":    false,
		"noextension":       false,
		"trailingdot.":      false,
		"dir.md/notes":      false,
		"version.1.2.docx":  true,
		"/tmp/path/file.md": true,
	}
	for name, want := range testCases {
		assert.Equal(t, want, IsSupported(name), name)
	}
}

func TestUpload_UnsupportedTypeMakesNoCall(t *testing.T) {
	store, id := newStore()
	up := &fakeUploader{}
	opened := false
	open := func() (io.ReadCloser, error) { opened = true; return nil, errors.New("unused") }

	turn, err := NewUploadController(store, up, nil).Submit(context.Background(), id, "notes.csv", open)
	require.NoError(t, err)
	assert.ErrorIs(t, turn.Err, ErrUnsupportedFile)
	assert.Zero(t, up.calls)
	assert.False(t, opened)

	sess, _ := store.Get(id)
	require.Len(t, sess.Messages, 2)
	assert.Equal(t, "File: notes.csv", sess.Messages[0].Content)
	reply := sess.Messages[1]
	assert.False(t, reply.Pending)
	assert.Contains(t, reply.Content, "notes.csv")
	for _, ext := range AllowedExtensions {
		assert.Contains(t, reply.Content, "."+ext)
	}
}

func TestUpload_Success(t *testing.T) {
	store, id := newStore()
	up := &fakeUploader{summary: "Three key points."}

	turn, err := NewUploadController(store, up, nil).Submit(context.Background(), id, "/home/u/Q3.PDF", stringOpener("%PDF"))
	require.NoError(t, err)
	assert.True(t, turn.Final)

	assert.Equal(t, 1, up.calls)
	assert.Equal(t, "Q3.PDF", up.name)
	assert.Equal(t, "%PDF", up.body)
	assert.Equal(t, id, up.chatID)

	sess, _ := store.Get(id)
	assert.Equal(t, "File: Q3.PDF", sess.Messages[0].Content)
	assert.Equal(t, "Three key points.", sess.Messages[1].Content)
	assert.Zero(t, sess.Tokens, "summaries are not metered")
	assert.Zero(t, sess.Cost)
	assert.Equal(t, "Chat 1", sess.Name, "uploads do not rename the session")
}

func TestUpload_Failure(t *testing.T) {
	store, id := newStore()
	up := &fakeUploader{err: errors.New("502")}

	turn, err := NewUploadController(store, up, nil).Submit(context.Background(), id, "a.txt", stringOpener("x"))
	require.NoError(t, err)
	assert.Error(t, turn.Err)
	assert.Equal(t, SummaryFailureText, turn.Content)
	assert.Equal(t, SummaryFailureText, lastMessage(t, store, id).Content)
}

func TestUpload_OpenFailure(t *testing.T) {
	store, id := newStore()
	up := &fakeUploader{}
	missing := filepath.Join(t.TempDir(), "gone.md")

	turn, err := NewUploadController(store, up, nil).Submit(context.Background(), id, missing, FileOpener(missing))
	require.NoError(t, err)
	assert.ErrorIs(t, turn.Err, os.ErrNotExist)
	assert.Zero(t, up.calls)
	assert.Equal(t, SummaryFailureText, lastMessage(t, store, id).Content)
}

func TestUpload_SharesGuardWithChat(t *testing.T) {
	store, id := newStore()
	guard := NewGuard()
	require.True(t, guard.TryAcquire())

	_, err := NewUploadController(store, &fakeUploader{}, guard).Submit(context.Background(), id, "a.md", stringOpener("x"))
	assert.ErrorIs(t, err, ErrTurnInFlight)
	sess, _ := store.Get(id)
	assert.Empty(t, sess.Messages)
}

func TestUpload_BusyGuardSkipsEcho(t *testing.T) {
	store, id := newStore()
	guard := NewGuard()
	require.True(t, guard.TryAcquire())
	up := &fakeUploader{}

	_, err := NewUploadController(store, up, guard).Submit(context.Background(), id, "notes.csv", nil)
	assert.ErrorIs(t, err, ErrTurnInFlight)
	assert.Zero(t, up.calls)
	sess, _ := store.Get(id)
	assert.Empty(t, sess.Messages, "a busy guard wins over the File: echo")

	guard.Release()
	turn, err := NewUploadController(store, up, guard).Submit(context.Background(), id, "notes.csv", nil)
	require.NoError(t, err)
	assert.ErrorIs(t, turn.Err, ErrUnsupportedFile)
	sess, _ = store.Get(id)
	require.Len(t, sess.Messages, 2)
	assert.Equal(t, "File: notes.csv", sess.Messages[0].Content)
}

func TestUpload_UnknownSession(t *testing.T) {
	store, _ := newStore()
	_, err := NewUploadController(store, &fakeUploader{}, nil).Submit(context.Background(), "nope", "a.md", stringOpener("x"))
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

// =============================================================================
// FEEDBACK
// =============================================================================

func TestFeedback_Submit(t *testing.T) {
	fb := &fakeFeedback{}
	status, err := NewFeedbackController(fb).Submit(context.Background(), "m-1", 5, "  great  ")
	require.NoError(t, err)
	assert.Equal(t, "Feedback received", status)
	assert.Equal(t, "m-1", fb.got.MessageID)
	assert.Equal(t, 5, fb.got.Rating)
	assert.Equal(t, "great", fb.got.Comment)
}

func TestFeedback_Validation(t *testing.T) {
	c := NewFeedbackController(&fakeFeedback{})
	_, err := c.Submit(context.Background(), "", 3, "")
	assert.ErrorIs(t, err, ErrNoMessageID)
	_, err = c.Submit(context.Background(), "m", 0, "")
	assert.ErrorIs(t, err, ErrInvalidRating)
	_, err = c.Submit(context.Background(), "m", 6, "")
	assert.ErrorIs(t, err, ErrInvalidRating)
}

func TestFeedback_BackendError(t *testing.T) {
	boom := errors.New("down")
	_, err := NewFeedbackController(&fakeFeedback{err: boom}).Submit(context.Background(), "m", 3, "")
	assert.ErrorIs(t, err, boom)
}
