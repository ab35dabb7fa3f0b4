// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/securechat-tui/internal/ui/styles"
)

// =============================================================================
// TOAST TYPES
// =============================================================================

// ToastKind represents the type of toast notification.
type ToastKind int

const (
	ToastStatus ToastKind = iota
	ToastError
	ToastWarning
	ToastSuccess
)

// DefaultToastDuration is the auto-dismiss duration for status toasts.
const DefaultToastDuration = 4 * time.Second

// ErrorToastDuration is longer so errors can be read.
const ErrorToastDuration = 8 * time.Second

// ToastTickInterval is how often expired toasts are swept.
const ToastTickInterval = 250 * time.Millisecond

// Toast is a non-blocking notification shown in the status line.
type Toast struct {
	ID        int
	Message   string
	Kind      ToastKind
	CreatedAt time.Time
	Duration  time.Duration
}

// Expired reports whether the toast should be dismissed at now.
func (t Toast) Expired(now time.Time) bool {
	return now.Sub(t.CreatedAt) >= t.Duration
}

// Render renders the toast with its status indicator.
func (t Toast) Render() string {
	switch t.Kind {
	case ToastError:
		return styles.RenderError(t.Message)
	case ToastWarning:
		return styles.RenderWarning(t.Message)
	case ToastSuccess:
		return styles.RenderSuccess(t.Message)
	default:
		return styles.RenderInfo(t.Message)
	}
}

// =============================================================================
// TOAST MANAGER
// =============================================================================

// ToastManager keeps the active toasts, newest first. It is owned by the
// Bubble Tea model and only touched from Update, so it has no lock.
type ToastManager struct {
	toasts    []Toast
	nextID    int
	maxToasts int
	now       func() time.Time
}

// NewToastManager creates a toast manager.
func NewToastManager() *ToastManager {
	return &ToastManager{
		nextID:    1,
		maxToasts: 3,
		now:       time.Now,
	}
}

// Add queues a toast and returns its id.
func (m *ToastManager) Add(kind ToastKind, message string) int {
	d := DefaultToastDuration
	if kind == ToastError {
		d = ErrorToastDuration
	}
	t := Toast{
		ID:        m.nextID,
		Message:   message,
		Kind:      kind,
		CreatedAt: m.now(),
		Duration:  d,
	}
	m.nextID++

	m.toasts = append([]Toast{t}, m.toasts...)
	if len(m.toasts) > m.maxToasts {
		m.toasts = m.toasts[:m.maxToasts]
	}
	return t.ID
}

// Error adds an error toast.
func (m *ToastManager) Error(message string) int { return m.Add(ToastError, message) }

// Warning adds a warning toast.
func (m *ToastManager) Warning(message string) int { return m.Add(ToastWarning, message) }

// Status adds a status toast.
func (m *ToastManager) Status(message string) int { return m.Add(ToastStatus, message) }

// Success adds a success toast.
func (m *ToastManager) Success(message string) int { return m.Add(ToastSuccess, message) }

// Sweep drops expired toasts.
func (m *ToastManager) Sweep() {
	now := m.now()
	active := m.toasts[:0]
	for _, t := range m.toasts {
		if !t.Expired(now) {
			active = append(active, t)
		}
	}
	m.toasts = active
}

// Current returns the newest toast.
func (m *ToastManager) Current() (Toast, bool) {
	if len(m.toasts) == 0 {
		return Toast{}, false
	}
	return m.toasts[0], true
}

// Len returns the number of active toasts.
func (m *ToastManager) Len() int {
	return len(m.toasts)
}

// ToastTickMsg drives the expiry sweep.
type ToastTickMsg struct{ Time time.Time }

// ToastTick schedules the next sweep.
func ToastTick() tea.Cmd {
	return tea.Tick(ToastTickInterval, func(t time.Time) tea.Msg {
		return ToastTickMsg{Time: t}
	})
}
