// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/securechat-tui/internal/api"
	"github.com/jeranaias/securechat-tui/internal/config"
	"github.com/jeranaias/securechat-tui/internal/controller"
	"github.com/jeranaias/securechat-tui/internal/model"
	"github.com/jeranaias/securechat-tui/internal/session"
	"github.com/jeranaias/securechat-tui/internal/ui/components"
	"github.com/jeranaias/securechat-tui/internal/ui/styles"
)

// =============================================================================
// FAKES
// =============================================================================

type replayStream struct {
	events []api.Event
	i      int
}

func (s *replayStream) Next() (api.Event, bool) {
	if s.i >= len(s.events) {
		return api.Event{}, false
	}
	ev := s.events[s.i]
	s.i++
	return ev, true
}

func (s *replayStream) Close() error { return nil }

type fakeTransport struct {
	mu       sync.Mutex
	events   []api.Event
	requests []api.StreamRequest
}

func (f *fakeTransport) OpenStream(ctx context.Context, req api.StreamRequest) api.EventStream {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	return &replayStream{events: f.events}
}

type fakeUploader struct {
	name    string
	body    string
	summary string
}

func (f *fakeUploader) UploadDocument(ctx context.Context, chatID, filename string, r io.Reader) (api.UploadResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return api.UploadResult{}, err
	}
	f.name, f.body = filename, string(data)
	return api.UploadResult{Summary: f.summary}, nil
}

type fakeFeedback struct {
	got    api.FeedbackRequest
	status string
	err    error
}

func (f *fakeFeedback) SendFeedback(ctx context.Context, fb api.FeedbackRequest) (string, error) {
	f.got = fb
	return f.status, f.err
}

// =============================================================================
// HELPERS
// =============================================================================

type harness struct {
	store     *session.Store
	guard     *controller.Guard
	transport *fakeTransport
	uploader  *fakeUploader
	feedback  *fakeFeedback
	cfg       *config.Config
}

func newHarness(t *testing.T, events ...api.Event) (Model, *harness) {
	t.Helper()
	h := &harness{
		store:     session.NewStore(session.DefaultConfig(), nil),
		guard:     controller.NewGuard(),
		transport: &fakeTransport{events: events},
		uploader:  &fakeUploader{summary: "A short summary."},
		feedback:  &fakeFeedback{status: "Feedback received"},
		cfg:       config.Default(),
	}
	h.cfg.UI.Theme = styles.ModeDark
	h.cfg.UI.ExportDir = t.TempDir()

	m := New(Deps{
		Store:     h.store,
		Streaming: controller.NewStreamingController(h.store, h.transport, h.guard),
		Upload:    controller.NewUploadController(h.store, h.uploader, h.guard),
		Feedback:  controller.NewFeedbackController(h.feedback),
		Guard:     h.guard,
		User:      "jdoe",
		Config:    h.cfg,
	})
	m = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	return m, h
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

func updateCmd(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

func keyType(k tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: k} }

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

// drain delivers every queued store change to the model.
func drain(t *testing.T, m Model) Model {
	t.Helper()
	if len(m.changes) == 0 {
		return m
	}
	return update(t, m, listenForChanges(m.changes)())
}

// =============================================================================
// NAVIGATION
// =============================================================================

func TestModel_StartsOnOverview(t *testing.T) {
	m, h := newHarness(t)

	assert.Equal(t, pageOverview, m.page)
	assert.Equal(t, 0, h.store.Len())
	assert.Contains(t, m.View(), "SecureChat")
}

func TestModel_NewChat(t *testing.T) {
	m, h := newHarness(t)

	m = update(t, m, keyType(tea.KeyCtrlN))
	require.Equal(t, 1, h.store.Len())
	assert.Equal(t, pageChat, m.page)
	assert.Equal(t, h.store.Sessions()[0].ID, m.activeID)

	m = update(t, m, keyType(tea.KeyCtrlN))
	assert.Equal(t, 2, h.store.Len())
	assert.Equal(t, h.store.Sessions()[1].ID, m.activeID)
	assert.Contains(t, m.View(), "Chat 2")
}

func TestModel_EnterOnOverviewOpensLatestChat(t *testing.T) {
	m, h := newHarness(t)

	m = update(t, m, keyType(tea.KeyEnter))
	require.Equal(t, 1, h.store.Len())
	assert.Equal(t, pageChat, m.page)

	m = update(t, m, keyType(tea.KeyCtrlG))
	assert.Equal(t, pageOverview, m.page)
	m = update(t, m, keyType(tea.KeyCtrlG))
	assert.Equal(t, pageChat, m.page)
	assert.Equal(t, 1, h.store.Len(), "toggling back must reuse the session")
}

func TestModel_SidebarSelectsSession(t *testing.T) {
	m, h := newHarness(t)
	m = update(t, m, keyType(tea.KeyCtrlN))
	m = update(t, m, keyType(tea.KeyCtrlN))
	first := h.store.Sessions()[0].ID

	m = update(t, m, keyType(tea.KeyTab))
	require.Equal(t, focusSidebar, m.focus)
	assert.Equal(t, 1, m.cursor)

	m = update(t, m, keyType(tea.KeyUp))
	m = update(t, m, keyType(tea.KeyEnter))
	assert.Equal(t, first, m.activeID)
	assert.Equal(t, focusComposer, m.focus)
}

// =============================================================================
// SUBMISSION
// =============================================================================

func TestModel_SubmitStreamsReply(t *testing.T) {
	m, h := newHarness(t,
		api.ChunkEvent("Hi "),
		api.ChunkEvent("there"),
		api.FinalEvent(api.FinalPayload{Response: "Hi there", MessageID: "m-9", Tokens: 12, Cost: 0.5}),
		api.DoneEvent(),
	)
	m = update(t, m, keyType(tea.KeyCtrlN))
	m.composer.SetValue("Hello")

	m, cmd := updateCmd(t, m, keyType(tea.KeyEnter))
	require.NotNil(t, cmd)
	assert.Empty(t, m.composer.Value(), "composer clears on submit")

	m = update(t, m, cmd())
	m = drain(t, m)

	sess, ok := h.store.Get(m.activeID)
	require.True(t, ok)
	require.Len(t, sess.Messages, 2)
	assert.Equal(t, "Hello", sess.Messages[0].Content)
	assert.Equal(t, "Hi there", sess.Messages[1].Content)
	assert.Equal(t, "m-9", sess.Messages[1].MessageID)
	assert.False(t, sess.Messages[1].Pending)
	assert.Equal(t, int64(12), sess.Tokens)

	require.Len(t, h.transport.requests, 1)
	assert.Equal(t, m.activeID, h.transport.requests[0].ChatID)
	assert.Contains(t, m.View(), "Tokens: 12")
}

func TestModel_SubmitRejectedWhileBusy(t *testing.T) {
	m, h := newHarness(t)
	m = update(t, m, keyType(tea.KeyCtrlN))
	require.True(t, h.guard.TryAcquire())
	defer h.guard.Release()

	m.composer.SetValue("second question")
	m, cmd := updateCmd(t, m, keyType(tea.KeyEnter))

	assert.Nil(t, cmd)
	assert.Equal(t, "second question", m.composer.Value(), "text is kept for a retry")
	assert.Equal(t, 1, m.toasts.Len())
	assert.Empty(t, h.transport.requests)
}

func TestModel_BlankSubmitIgnored(t *testing.T) {
	m, _ := newHarness(t)
	m = update(t, m, keyType(tea.KeyCtrlN))
	m.composer.SetValue("   ")

	_, cmd := updateCmd(t, m, keyType(tea.KeyEnter))
	assert.Nil(t, cmd)
}

func TestModel_FailedTurnShowsToast(t *testing.T) {
	m, h := newHarness(t, api.ErrorEvent(fmt.Errorf("boom")))
	m = update(t, m, keyType(tea.KeyCtrlN))
	m.composer.SetValue("Hello")

	m, cmd := updateCmd(t, m, keyType(tea.KeyEnter))
	m = update(t, m, cmd())
	m = drain(t, m)

	sess, _ := h.store.Get(m.activeID)
	require.Len(t, sess.Messages, 2)
	assert.Equal(t, controller.FailureText, sess.Messages[1].Content)
	toast, ok := m.toasts.Current()
	require.True(t, ok)
	assert.Contains(t, toast.Message, "Unable to fetch response")
}

// =============================================================================
// NOT FOUND
// =============================================================================

func TestModel_DeletedActiveSessionRedirects(t *testing.T) {
	m, h := newHarness(t)
	m = update(t, m, keyType(tea.KeyCtrlN))
	id := m.activeID

	require.True(t, h.store.Delete(id))
	m, cmd := updateCmd(t, m, listenForChanges(m.changes)())
	require.NotNil(t, cmd)

	assert.Equal(t, id, m.notFoundID)
	assert.Contains(t, m.View(), "Chat not found")

	m = update(t, m, redirectMsg{SessionID: "someone-else"})
	assert.Equal(t, id, m.notFoundID, "a stale redirect is ignored")

	m = update(t, m, redirectMsg{SessionID: id})
	assert.Empty(t, m.notFoundID)
	assert.Equal(t, pageOverview, m.page)
}

// =============================================================================
// SCROLLING
// =============================================================================

func fill(t *testing.T, store *session.Store, id string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		msg := model.NewUserMessage(fmt.Sprintf("line %d", i))
		msg.IsNew = false
		require.True(t, store.AppendMessage(id, msg))
	}
}

func TestModel_TranscriptFollowsNewOutput(t *testing.T) {
	m, h := newHarness(t)
	m = update(t, m, keyType(tea.KeyCtrlN))
	fill(t, h.store, m.activeID, 40)

	m.frames.Reset()
	m.refreshTranscript()
	require.Greater(t, m.viewport.TotalLineCount(), m.viewport.Height)
	assert.True(t, m.viewport.AtBottom())
	assert.True(t, m.scroll.Pinned())

	fill(t, h.store, m.activeID, 1)
	m.refreshTranscript()
	assert.True(t, m.viewport.AtBottom(), "pinned transcript follows new lines")
}

func TestModel_ScrollingUpUnpins(t *testing.T) {
	m, h := newHarness(t)
	m = update(t, m, keyType(tea.KeyCtrlN))
	fill(t, h.store, m.activeID, 40)
	m.frames.Reset()
	m.refreshTranscript()

	m = update(t, m, keyType(tea.KeyPgUp))
	require.False(t, m.scroll.Pinned())
	offset := m.viewport.YOffset
	assert.Contains(t, m.View(), "more below")

	fill(t, h.store, m.activeID, 3)
	m.refreshTranscript()
	assert.Equal(t, offset, m.viewport.YOffset, "reading position is kept")

	m = update(t, m, keyType(tea.KeyCtrlEnd))
	assert.True(t, m.scroll.Pinned())
	assert.True(t, m.viewport.AtBottom())
}

func TestModel_SubmitRepinsTranscript(t *testing.T) {
	m, h := newHarness(t, api.FinalEvent(api.FinalPayload{Response: "ok", MessageID: "m-3"}), api.DoneEvent())
	m = update(t, m, keyType(tea.KeyCtrlN))
	fill(t, h.store, m.activeID, 40)
	m.frames.Reset()
	m.refreshTranscript()

	m = update(t, m, keyType(tea.KeyPgUp))
	require.False(t, m.scroll.Pinned())

	m.composer.SetValue("next question")
	m, cmd := updateCmd(t, m, keyType(tea.KeyEnter))
	require.NotNil(t, cmd)
	assert.True(t, m.scroll.Pinned(), "sending a message follows the new reply")
}

func TestViewportAdapter(t *testing.T) {
	m, h := newHarness(t)
	m = update(t, m, keyType(tea.KeyCtrlN))
	fill(t, h.store, m.activeID, 40)
	m.frames.Reset()
	m.refreshTranscript()

	vp := m.viewportAdapter()
	assert.Equal(t, m.viewport.TotalLineCount()-m.viewport.Height, vp.MaxOffset())
	vp.SetOffset(3)
	assert.Equal(t, 3, vp.Offset())
}

// =============================================================================
// REVEAL
// =============================================================================

func TestModel_RevealsNewAnswerGradually(t *testing.T) {
	m, h := newHarness(t)
	m = update(t, m, keyType(tea.KeyCtrlN))

	answer := model.Message{
		ID:        "msg_answer",
		Type:      model.TypeAssistant,
		Content:   strings.Repeat("word ", 40),
		Timestamp: time.Now(),
		IsNew:     true,
	}
	require.True(t, h.store.AppendMessage(m.activeID, answer))
	m, cmd := updateCmd(t, m, listenForChanges(m.changes)())
	require.NotNil(t, cmd)
	require.True(t, m.revealScheduled)

	m = update(t, m, revealTickMsg{})
	shown := m.revealed[answer.ID]
	assert.Greater(t, shown, 0)
	assert.Less(t, shown, len(answer.Content))
	assert.Contains(t, m.viewport.View(), styles.TypingCursor)

	for i := 0; i < 100; i++ {
		sess, _ := h.store.Get(m.activeID)
		if !sess.Messages[0].IsNew {
			break
		}
		m = update(t, m, revealTickMsg{})
	}
	sess, _ := h.store.Get(m.activeID)
	assert.False(t, sess.Messages[0].IsNew, "reveal finishes")
	assert.NotContains(t, m.revealed, answer.ID)
}

func TestModel_RevealDisabled(t *testing.T) {
	m, h := newHarness(t)
	h.cfg.UI.RevealIntervalMs = 0
	m = update(t, m, keyType(tea.KeyCtrlN))

	require.True(t, h.store.AppendMessage(m.activeID, model.Message{
		ID: "msg_x", Type: model.TypeAssistant, Content: "done", IsNew: true,
	}))
	m = drain(t, m)
	m = update(t, m, revealTickMsg{})

	sess, _ := h.store.Get(m.activeID)
	assert.False(t, sess.Messages[0].IsNew)
}

// =============================================================================
// OVERLAYS
// =============================================================================

func TestModel_Rename(t *testing.T) {
	m, h := newHarness(t)
	m = update(t, m, keyType(tea.KeyCtrlN))

	m = update(t, m, keyType(tea.KeyCtrlR))
	require.NotNil(t, m.overlay)
	assert.Equal(t, "Chat 1", m.overlay.input.Value())

	m.overlay.input.SetValue("   ")
	m = update(t, m, keyType(tea.KeyEnter))
	require.NotNil(t, m.overlay, "blank names are rejected")
	assert.NotEmpty(t, m.overlay.hint)

	m.overlay.input.SetValue("Budget review")
	m = update(t, m, keyType(tea.KeyEnter))
	assert.Nil(t, m.overlay)

	sess, _ := h.store.Get(m.activeID)
	assert.Equal(t, "Budget review", sess.Name)
}

func TestModel_DeleteNeedsConfirmation(t *testing.T) {
	m, h := newHarness(t)
	m = update(t, m, keyType(tea.KeyCtrlN))

	m = update(t, m, keyType(tea.KeyCtrlD))
	require.NotNil(t, m.overlay)
	assert.Contains(t, m.View(), "cannot be undone")

	m = update(t, m, runes("n"))
	assert.Nil(t, m.overlay)
	assert.Equal(t, 1, h.store.Len())

	m = update(t, m, keyType(tea.KeyCtrlD))
	m = update(t, m, keyType(tea.KeyEsc))
	assert.Equal(t, 1, h.store.Len())

	m = update(t, m, keyType(tea.KeyCtrlD))
	m = update(t, m, runes("y"))
	assert.Equal(t, 0, h.store.Len())
}

func rateableAnswer(t *testing.T, store *session.Store, id string) {
	t.Helper()
	require.True(t, store.AppendMessage(id, model.Message{
		ID: "msg_a", Type: model.TypeAssistant, Content: "An answer", MessageID: "m-1",
	}))
}

func TestModel_FeedbackOverlay(t *testing.T) {
	m, h := newHarness(t)
	m = update(t, m, keyType(tea.KeyCtrlN))
	rateableAnswer(t, h.store, m.activeID)

	m = update(t, m, keyType(tea.KeyCtrlF))
	require.NotNil(t, m.overlay)
	assert.Equal(t, "m-1", m.overlay.messageID)

	m, cmd := updateCmd(t, m, keyType(tea.KeyEnter))
	assert.Nil(t, cmd, "a rating is required")
	assert.NotEmpty(t, m.overlay.hint)

	m = update(t, m, runes("4"))
	assert.Equal(t, 4, m.overlay.rating)
	m = update(t, m, keyType(tea.KeyRight))
	m = update(t, m, keyType(tea.KeyRight))
	assert.Equal(t, 5, m.overlay.rating, "rating is capped")

	m = update(t, m, keyType(tea.KeyTab))
	m = update(t, m, runes("great"))
	assert.Equal(t, 5, m.overlay.rating, "digits typed in the comment do not rate")

	m, cmd = updateCmd(t, m, keyType(tea.KeyEnter))
	require.NotNil(t, cmd)
	m = update(t, m, cmd())

	assert.Nil(t, m.overlay)
	assert.Equal(t, api.FeedbackRequest{MessageID: "m-1", Rating: 5, Comment: "great"}, h.feedback.got)
	toast, ok := m.toasts.Current()
	require.True(t, ok)
	assert.Equal(t, "Feedback received", toast.Message)
}

func TestModel_FeedbackFailureKeepsOverlay(t *testing.T) {
	m, h := newHarness(t)
	h.feedback.err = fmt.Errorf("offline")
	m = update(t, m, keyType(tea.KeyCtrlN))
	rateableAnswer(t, h.store, m.activeID)

	m = update(t, m, keyType(tea.KeyCtrlF))
	m = update(t, m, runes("2"))
	m, cmd := updateCmd(t, m, keyType(tea.KeyEnter))
	m = update(t, m, cmd())

	require.NotNil(t, m.overlay)
	assert.False(t, m.overlay.sending)
	assert.Contains(t, m.overlay.hint, "offline")
}

func TestModel_FeedbackWithoutAnswer(t *testing.T) {
	m, _ := newHarness(t)
	m = update(t, m, keyType(tea.KeyCtrlN))

	m = update(t, m, keyType(tea.KeyCtrlF))
	assert.Nil(t, m.overlay)
	assert.Equal(t, 1, m.toasts.Len())
}

func TestModel_FeedbackPicksEarlierAnswer(t *testing.T) {
	m, h := newHarness(t)
	m = update(t, m, keyType(tea.KeyCtrlN))
	rateableAnswer(t, h.store, m.activeID)
	require.True(t, h.store.AppendMessage(m.activeID, model.NewUserMessage("follow up")))
	require.True(t, h.store.AppendMessage(m.activeID, model.Message{
		ID: "msg_b", Type: model.TypeAssistant, Content: "Second answer", MessageID: "m-2",
	}))

	m = update(t, m, keyType(tea.KeyCtrlF))
	require.NotNil(t, m.overlay)
	assert.Equal(t, "m-2", m.overlay.messageID, "newest answer is selected first")
	assert.Contains(t, m.View(), "Rate answer 2 of 2")

	m = update(t, m, keyType(tea.KeyUp))
	assert.Equal(t, "m-1", m.overlay.messageID)
	m = update(t, m, keyType(tea.KeyUp))
	assert.Equal(t, "m-1", m.overlay.messageID, "selection stops at the oldest answer")
	assert.Equal(t, 0, m.overlay.rating, "moving between answers does not rate")

	m = update(t, m, runes("3"))
	m, cmd := updateCmd(t, m, keyType(tea.KeyEnter))
	require.NotNil(t, cmd)
	m = update(t, m, cmd())
	assert.Nil(t, m.overlay)
	assert.Equal(t, api.FeedbackRequest{MessageID: "m-1", Rating: 3}, h.feedback.got)
}

// =============================================================================
// CLIPBOARD
// =============================================================================

func TestModel_CopyLastAnswer(t *testing.T) {
	m, h := newHarness(t)
	var copied []string
	m.deps.Clipboard = func(text string) error {
		copied = append(copied, text)
		return nil
	}
	m = update(t, m, keyType(tea.KeyCtrlN))

	m = update(t, m, keyType(tea.KeyCtrlY))
	assert.Empty(t, copied)
	toast, ok := m.toasts.Current()
	require.True(t, ok)
	assert.Equal(t, "No answer to copy yet", toast.Message)

	rateableAnswer(t, h.store, m.activeID)
	require.True(t, h.store.AppendMessage(m.activeID, model.NewUserMessage("again")))
	require.True(t, h.store.AppendMessage(m.activeID, model.Message{
		ID: "msg_f", Type: model.TypeAssistant, Content: controller.FailureText,
	}))
	require.True(t, h.store.AppendMessage(m.activeID, model.NewPlaceholder()))

	m = update(t, m, keyType(tea.KeyCtrlY))
	assert.Equal(t, []string{"An answer"}, copied, "pending replies and failures are skipped")
	toast, ok = m.toasts.Current()
	require.True(t, ok)
	assert.Equal(t, components.ToastSuccess, toast.Kind)
	assert.Contains(t, toast.Message, "Copied")
}

func TestModel_CopyFailureShowsError(t *testing.T) {
	m, h := newHarness(t)
	m.deps.Clipboard = func(string) error { return fmt.Errorf("no clipboard utility") }
	m = update(t, m, keyType(tea.KeyCtrlN))
	rateableAnswer(t, h.store, m.activeID)

	m = update(t, m, keyType(tea.KeyCtrlY))
	toast, ok := m.toasts.Current()
	require.True(t, ok)
	assert.Equal(t, components.ToastError, toast.Kind)
	assert.Contains(t, toast.Message, "no clipboard utility")
}

func TestModel_UploadSummarizesFile(t *testing.T) {
	m, h := newHarness(t)
	m = update(t, m, keyType(tea.KeyCtrlN))

	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("meeting notes"), 0o600))

	m = update(t, m, keyType(tea.KeyCtrlO))
	require.NotNil(t, m.overlay)
	m.overlay.input.SetValue(path)

	m, cmd := updateCmd(t, m, keyType(tea.KeyEnter))
	require.NotNil(t, cmd)
	assert.Nil(t, m.overlay)
	m = update(t, m, cmd())

	assert.Equal(t, "notes.txt", h.uploader.name)
	assert.Equal(t, "meeting notes", h.uploader.body)

	sess, _ := h.store.Get(m.activeID)
	require.Len(t, sess.Messages, 2)
	assert.Equal(t, "File: notes.txt", sess.Messages[0].Content)
	assert.Equal(t, "A short summary.", sess.Messages[1].Content)
}

func TestModel_Export(t *testing.T) {
	m, h := newHarness(t)
	m = update(t, m, keyType(tea.KeyCtrlN))
	rateableAnswer(t, h.store, m.activeID)

	m, cmd := updateCmd(t, m, keyType(tea.KeyCtrlE))
	require.NotNil(t, cmd)
	msg, ok := cmd().(exportDoneMsg)
	require.True(t, ok)
	require.NoError(t, msg.Err)
	assert.Equal(t, h.cfg.UI.ExportDir, filepath.Dir(msg.Path))

	data, err := os.ReadFile(msg.Path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "An answer")

	m = update(t, m, msg)
	assert.Equal(t, 1, m.toasts.Len())
}

func TestModel_ExportYAML(t *testing.T) {
	m, h := newHarness(t)
	h.cfg.UI.ExportFormat = "yaml"
	m = update(t, m, keyType(tea.KeyCtrlN))
	rateableAnswer(t, h.store, m.activeID)

	_, cmd := updateCmd(t, m, keyType(tea.KeyCtrlE))
	require.NotNil(t, cmd)
	msg, ok := cmd().(exportDoneMsg)
	require.True(t, ok)
	require.NoError(t, msg.Err)
	assert.Equal(t, ".yaml", filepath.Ext(msg.Path))
}

// =============================================================================
// PLUMBING
// =============================================================================

func TestListenForChanges_DrainsBurst(t *testing.T) {
	ch := make(chan session.Change, 8)
	for i := 0; i < 3; i++ {
		ch <- session.Change{Kind: session.ChangeMessages, SessionID: "a"}
	}

	msg, ok := listenForChanges(ch)().(storeChangedMsg)
	require.True(t, ok)
	assert.Len(t, msg.Changes, 3)
	assert.Empty(t, ch)
}

func TestModel_HelpToggle(t *testing.T) {
	m, _ := newHarness(t)

	m = update(t, m, keyType(tea.KeyF1))
	assert.True(t, m.showHelp)
	assert.Contains(t, m.View(), "Keyboard shortcuts")

	m = update(t, m, keyType(tea.KeyEsc))
	assert.False(t, m.showHelp)
}

func TestModel_Quit(t *testing.T) {
	m, _ := newHarness(t)
	_, cmd := updateCmd(t, m, keyType(tea.KeyCtrlC))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
