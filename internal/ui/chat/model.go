// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/securechat-tui/internal/config"
	"github.com/jeranaias/securechat-tui/internal/controller"
	"github.com/jeranaias/securechat-tui/internal/logger"
	"github.com/jeranaias/securechat-tui/internal/model"
	"github.com/jeranaias/securechat-tui/internal/scroll"
	"github.com/jeranaias/securechat-tui/internal/session"
	"github.com/jeranaias/securechat-tui/internal/ui/components"
	"github.com/jeranaias/securechat-tui/internal/ui/styles"
)

// =============================================================================
// LAYOUT
// =============================================================================

const (
	headerHeight   = 2
	composerLines  = 3
	composerHeight = composerLines + 2
	statusHeight   = 1

	// changeBuffer bounds queued store notifications. A dropped notification
	// is harmless: a queued one will trigger a re-render from a newer snapshot.
	changeBuffer = 256

	loginTimeout = 15 * time.Second
)

// page is the screen shown right of the sidebar.
type page int

const (
	pageOverview page = iota
	pageChat
)

// focus is the component receiving keys.
type focus int

const (
	focusComposer focus = iota
	focusSidebar
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Deps are the collaborators the model drives.
type Deps struct {
	Store     *session.Store
	Streaming *controller.StreamingController
	Upload    *controller.UploadController
	Feedback  *controller.FeedbackController
	Guard     *controller.Guard

	// Login registers the user with the backend at startup. Optional.
	Login func(ctx context.Context) (string, error)

	// Clipboard writes copied answers. Defaults to the system clipboard.
	Clipboard func(text string) error

	// User is the display name shown in the sidebar.
	User string

	Config *config.Config

	// Context is the parent of every backend call. Defaults to Background.
	Context context.Context
}

// Model is the Bubble Tea model for the securechat TUI.
type Model struct {
	deps Deps
	cfg  *config.Config
	ctx  context.Context

	theme *styles.Theme
	keys  KeyMap
	help  help.Model

	width  int
	height int

	page      page
	focus     focus
	activeID  string
	cursor    int
	collapsed bool
	showHelp  bool

	// notFoundID is set while the notice for a vanished session is up.
	notFoundID string

	viewport viewport.Model
	overview viewport.Model
	scroll   *scroll.Coordinator
	composer textarea.Model
	spinner  spinner.Model
	md       *components.MarkdownRenderer
	toasts   *components.ToastManager
	frames   *frameLimiter

	overlay *overlay

	// revealed counts the runes shown so far per new assistant message.
	revealed        map[string]int
	revealScheduled bool

	changes chan session.Change
}

// New creates the model and subscribes it to store changes.
func New(deps Deps) Model {
	cfg := deps.Config
	if cfg == nil {
		cfg = config.Global()
	}
	ctx := deps.Context
	if ctx == nil {
		ctx = context.Background()
	}
	theme := styles.NewTheme(cfg.UI.Theme)
	keys := DefaultKeyMap()

	ta := textarea.New()
	ta.Placeholder = "Type your message..."
	ta.Prompt = ""
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetHeight(composerLines)
	ta.KeyMap.InsertNewline = keys.Newline
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.AssistantLabel

	vp := viewport.New(0, 0)
	vp.MouseWheelEnabled = true

	m := Model{
		deps:     deps,
		cfg:      cfg,
		ctx:      ctx,
		theme:    theme,
		keys:     keys,
		help:     help.New(),
		page:     pageOverview,
		viewport: vp,
		overview: viewport.New(0, 0),
		scroll:   scroll.New(cfg.UI.ScrollTolerance),
		composer: ta,
		spinner:  sp,
		md:       components.NewMarkdownRenderer(theme.GlamourStyle()),
		toasts:   components.NewToastManager(),
		frames:   newFrameLimiter(defaultMaxFPS),
		revealed: make(map[string]int),
		changes:  make(chan session.Change, changeBuffer),
	}

	ch := m.changes
	deps.Store.Observe(func(c session.Change) {
		select {
		case ch <- c:
		default:
		}
	})
	return m
}

// Init starts the timers, the store listener and the login call.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		textarea.Blink,
		m.spinner.Tick,
		components.ToastTick(),
		listenForChanges(m.changes),
	}
	if m.deps.Login != nil {
		cmds = append(cmds, loginCmd(m.ctx, m.deps.Login))
	}
	return tea.Batch(cmds...)
}

// =============================================================================
// COMMAND CREATORS
// =============================================================================

// listenForChanges waits for one store change, then drains whatever else is
// queued so a burst of chunks costs one message.
func listenForChanges(ch <-chan session.Change) tea.Cmd {
	return func() tea.Msg {
		c, ok := <-ch
		if !ok {
			return nil
		}
		changes := []session.Change{c}
		for {
			select {
			case c, ok := <-ch:
				if !ok {
					return storeChangedMsg{Changes: changes}
				}
				changes = append(changes, c)
			default:
				return storeChangedMsg{Changes: changes}
			}
		}
	}
}

func loginCmd(parent context.Context, login func(context.Context) (string, error)) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, loginTimeout)
		defer cancel()
		msg, err := login(ctx)
		return loginDoneMsg{Message: msg, Err: err}
	}
}

func (m Model) submitCmd(sessionID, text string) tea.Cmd {
	sc, ctx := m.deps.Streaming, m.ctx
	return func() tea.Msg {
		turn, err := sc.Submit(ctx, sessionID, text)
		return turnDoneMsg{Turn: turn, Err: err}
	}
}

func (m Model) redirectCmd(sessionID string) tea.Cmd {
	return tea.Tick(m.cfg.NotFoundRedirect(), func(time.Time) tea.Msg {
		return redirectMsg{SessionID: sessionID}
	})
}

// =============================================================================
// STATE HELPERS
// =============================================================================

// activeSession returns the session shown on the chat page.
func (m Model) activeSession() (model.ChatSession, bool) {
	if m.activeID == "" {
		return model.ChatSession{}, false
	}
	return m.deps.Store.Get(m.activeID)
}

// openChat shows the session with the given id.
func (m *Model) openChat(id string) {
	m.activeID = id
	m.page = pageChat
	m.notFoundID = ""
	m.scroll.Reset()
	m.frames.Reset()
	m.syncCursor()
	m.trackPending()
	m.refreshTranscript()
}

// goOverview leaves the chat page.
func (m *Model) goOverview() {
	m.page = pageOverview
	m.notFoundID = ""
	m.overlay = nil
	m.focus = focusComposer
	m.composer.Focus()
}

// syncCursor puts the sidebar cursor on the active session.
func (m *Model) syncCursor() {
	for i, s := range m.deps.Store.Sessions() {
		if s.ID == m.activeID {
			m.cursor = i
			return
		}
	}
	m.clampCursor()
}

func (m *Model) clampCursor() {
	n := m.deps.Store.Len()
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) sidebar() components.Sidebar {
	sessions := m.deps.Store.Sessions()
	items := make([]components.SidebarItem, 0, len(sessions))
	for _, s := range sessions {
		items = append(items, components.SidebarItem{ID: s.ID, Name: s.Name, Pending: s.HasPending()})
	}
	tokens, cost := m.deps.Store.Totals()
	user := m.deps.User
	if user == "" {
		user = "unknown"
	}
	return components.Sidebar{
		Title:     "SecureChat",
		User:      user,
		Items:     items,
		ActiveID:  m.activeID,
		Cursor:    m.cursor,
		Focused:   m.focus == focusSidebar,
		OnChat:    m.page == pageChat,
		Collapsed: m.collapsed,
		Tokens:    tokens,
		Cost:      cost,
	}
}

// resize lays the panes out for a new terminal size.
func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.theme.SetSize(width, height)

	mainW := m.mainWidth()
	m.viewport.Width = mainW
	m.viewport.Height = max(1, height-headerHeight-composerHeight-statusHeight)
	m.overview.Width = mainW
	m.overview.Height = max(1, height-statusHeight)
	m.composer.SetWidth(max(1, mainW-2))
	m.md.SetWidth(mainW - 4)
	m.help.Width = width

	m.overview.SetContent(m.md.Render(overviewMarkdown, true))
}

func (m Model) mainWidth() int {
	return max(1, m.width-m.sidebar().Width())
}

func logTransition(from, to string) {
	logger.Logger.Debug().Str("from", from).Str("to", to).Msg("PAGE_CHANGED")
}
