// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// FRAME LIMITER
// =============================================================================

// defaultMaxFPS caps transcript rebuilds while a reply streams in.
const defaultMaxFPS = 30

// frameLimiter batches store changes into at most maxFPS transcript rebuilds
// per second. A chunk arriving inside the interval schedules one deferred
// frame instead of rebuilding immediately. Identical content is never pushed
// to the viewport twice.
//
// It is owned by the model and only used from Update.
type frameLimiter struct {
	minInterval time.Duration
	last        time.Time
	scheduled   bool
	lastContent string
	now         func() time.Time
}

func newFrameLimiter(maxFPS int) *frameLimiter {
	if maxFPS <= 0 || maxFPS > 60 {
		maxFPS = defaultMaxFPS
	}
	return &frameLimiter{
		minInterval: time.Second / time.Duration(maxFPS),
		now:         time.Now,
	}
}

// Request reports whether a rebuild may run now. When it may not, the
// returned command delivers a frameTickMsg once the interval has passed;
// at most one such command is outstanding.
func (f *frameLimiter) Request() (bool, tea.Cmd) {
	wait := f.minInterval - f.now().Sub(f.last)
	if wait <= 0 {
		return true, nil
	}
	if f.scheduled {
		return false, nil
	}
	f.scheduled = true
	return false, tea.Tick(wait, func(t time.Time) tea.Msg {
		return frameTickMsg{Time: t}
	})
}

// Tick clears the scheduled flag when a deferred frame arrives.
func (f *frameLimiter) Tick() {
	f.scheduled = false
}

// Changed records content and reports whether it differs from the last frame.
func (f *frameLimiter) Changed(content string) bool {
	f.last = f.now()
	if content == f.lastContent {
		return false
	}
	f.lastContent = content
	return true
}

// Reset forces the next frame through, e.g. after switching sessions.
func (f *frameLimiter) Reset() {
	f.last = time.Time{}
	f.lastContent = ""
}
