// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session provides the in-memory chat session store.
package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jeranaias/securechat-tui/internal/logger"
	"github.com/jeranaias/securechat-tui/internal/model"
)

// =============================================================================
// STORE CONFIGURATION
// =============================================================================

// Cleaner releases backend resources held for chat ids. It is advisory:
// local state never waits on it.
type Cleaner interface {
	CleanupChatSessions(ctx context.Context, chatIDs []string) error
}

// Config holds configuration for the session store.
type Config struct {
	// CleanupTimeout bounds each remote cleanup call (0 = no bound)
	CleanupTimeout time.Duration
}

// DefaultConfig returns the default store configuration.
func DefaultConfig() Config {
	return Config{
		CleanupTimeout: 10 * time.Second,
	}
}

// =============================================================================
// CHANGE NOTIFICATION
// =============================================================================

// ChangeKind says what a mutation touched.
type ChangeKind int

const (
	ChangeCreated ChangeKind = iota
	ChangeRenamed
	ChangeDeleted
	ChangeMessages
	ChangeUsage
)

// String returns the name of the change kind.
func (k ChangeKind) String() string {
	switch k {
	case ChangeCreated:
		return "created"
	case ChangeRenamed:
		return "renamed"
	case ChangeDeleted:
		return "deleted"
	case ChangeMessages:
		return "messages"
	case ChangeUsage:
		return "usage"
	default:
		return "unknown"
	}
}

// Change describes one committed mutation.
type Change struct {
	Kind      ChangeKind
	SessionID string
}

// Observer is called after every committed mutation, outside the store lock.
type Observer func(Change)

// =============================================================================
// STORE
// =============================================================================

// Store is the ordered collection of chat sessions. It is the only owner of
// session state. Every write builds a new slice with the touched session
// replaced by an edited clone, so slices returned by Sessions are never
// modified after they are handed out.
type Store struct {
	mu       sync.RWMutex
	sessions []model.ChatSession
	seq      int

	cfg       Config
	cleaner   Cleaner
	observers []Observer

	pending sync.WaitGroup
}

// NewStore creates an empty store. cleaner may be nil.
func NewStore(cfg Config, cleaner Cleaner) *Store {
	return &Store{
		sessions: []model.ChatSession{},
		cfg:      cfg,
		cleaner:  cleaner,
	}
}

// Observe registers fn to be called after each mutation.
func (s *Store) Observe(fn Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

func (s *Store) notify(c Change) {
	s.mu.RLock()
	observers := s.observers
	s.mu.RUnlock()

	for _, fn := range observers {
		fn(c)
	}
}

// =============================================================================
// READS
// =============================================================================

// Sessions returns the current snapshot. Callers must not modify it.
func (s *Store) Sessions() []model.ChatSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions
}

// Len returns the number of sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Get returns the session with the given id.
func (s *Store) Get(id string) (model.ChatSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.sessions[i], true
	}
	return model.ChatSession{}, false
}

// Exists reports whether a session with the id is present.
func (s *Store) Exists(id string) bool {
	_, ok := s.Get(id)
	return ok
}

// Totals sums tokens and cost over every session. Recomputed on each call.
func (s *Store) Totals() (tokens int64, cost float64) {
	for _, sess := range s.Sessions() {
		tokens += sess.Tokens
		cost += sess.Cost
	}
	return tokens, cost
}

func (s *Store) indexLocked(id string) int {
	for i := range s.sessions {
		if s.sessions[i].ID == id {
			return i
		}
	}
	return -1
}

// =============================================================================
// LIFECYCLE
// =============================================================================

// Create appends a new empty session and returns its id.
func (s *Store) Create() string {
	s.mu.Lock()
	s.seq++
	sess := model.NewChatSession(s.seq)
	next := make([]model.ChatSession, len(s.sessions), len(s.sessions)+1)
	copy(next, s.sessions)
	s.sessions = append(next, sess)
	s.mu.Unlock()

	logger.Logger.Debug().Str("chat_id", sess.ID).Str("name", sess.Name).Msg("SESSION_CREATED")
	s.notify(Change{Kind: ChangeCreated, SessionID: sess.ID})
	return sess.ID
}

// Ensure returns the most recent session id, creating a session when there are none.
func (s *Store) Ensure() string {
	s.mu.RLock()
	if n := len(s.sessions); n > 0 {
		id := s.sessions[n-1].ID
		s.mu.RUnlock()
		return id
	}
	s.mu.RUnlock()
	return s.Create()
}

// Rename sets the session name. Names that are blank after trimming are rejected.
func (s *Store) Rename(id, name string) bool {
	if strings.TrimSpace(name) == "" {
		return false
	}
	return s.Update(id, ChangeRenamed, func(sess *model.ChatSession) {
		sess.Name = name
	})
}

// Delete removes the session locally and schedules a best-effort remote
// cleanup. The caller is responsible for confirming with the user first.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	next := make([]model.ChatSession, 0, len(s.sessions)-1)
	next = append(next, s.sessions[:i]...)
	next = append(next, s.sessions[i+1:]...)
	s.sessions = next
	s.mu.Unlock()

	logger.Logger.Info().Str("chat_id", id).Msg("SESSION_DELETED")
	s.notify(Change{Kind: ChangeDeleted, SessionID: id})
	s.cleanupAsync([]string{id})
	return true
}

func (s *Store) cleanupAsync(ids []string) {
	if s.cleaner == nil || len(ids) == 0 {
		return
	}
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		ctx := context.Background()
		if s.cfg.CleanupTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.cfg.CleanupTimeout)
			defer cancel()
		}
		s.runCleanup(ctx, ids)
	}()
}

func (s *Store) runCleanup(ctx context.Context, ids []string) {
	if err := s.cleaner.CleanupChatSessions(ctx, ids); err != nil {
		logger.Logger.Warn().Err(err).Strs("chat_ids", ids).Msg("CLEANUP_FAILED")
		return
	}
	logger.Logger.Debug().Strs("chat_ids", ids).Msg("CLEANUP_OK")
}

// Wait blocks until every scheduled remote cleanup has finished.
func (s *Store) Wait() {
	s.pending.Wait()
}

// Shutdown sends one cleanup call covering every remaining session and waits
// for all outstanding cleanups, giving up when ctx is done.
func (s *Store) Shutdown(ctx context.Context) error {
	sessions := s.Sessions()
	if s.cleaner != nil && len(sessions) > 0 {
		ids := make([]string, 0, len(sessions))
		for _, sess := range sessions {
			ids = append(ids, sess.ID)
		}
		s.pending.Add(1)
		go func() {
			defer s.pending.Done()
			s.runCleanup(ctx, ids)
		}()
	}

	done := make(chan struct{})
	go func() {
		s.pending.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// =============================================================================
// MUTATION
// =============================================================================

// Update applies fn to a clone of the session and commits it. It returns
// false, without calling fn, when the session no longer exists.
func (s *Store) Update(id string, kind ChangeKind, fn func(sess *model.ChatSession)) bool {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	edited := s.sessions[i].Clone()
	fn(&edited)

	next := make([]model.ChatSession, len(s.sessions))
	copy(next, s.sessions)
	next[i] = edited
	s.sessions = next
	s.mu.Unlock()

	s.notify(Change{Kind: kind, SessionID: id})
	return true
}

// AppendMessage appends msg to the session.
func (s *Store) AppendMessage(id string, msg model.Message) bool {
	return s.Update(id, ChangeMessages, func(sess *model.ChatSession) {
		sess.Append(msg)
	})
}

// EditMessage applies fn to the message with the given local id. It returns
// false when either the session or the message is gone.
func (s *Store) EditMessage(id, messageID string, fn func(msg *model.Message)) bool {
	found := false
	ok := s.Update(id, ChangeMessages, func(sess *model.ChatSession) {
		if i := sess.IndexOf(messageID); i >= 0 {
			fn(&sess.Messages[i])
			found = true
		}
	})
	return ok && found
}

// MarkRevealed clears the reveal marker once the transcript has animated the message.
func (s *Store) MarkRevealed(id, messageID string) bool {
	return s.EditMessage(id, messageID, func(msg *model.Message) {
		msg.IsNew = false
	})
}
