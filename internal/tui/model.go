// Package tui is the terminal presentation layer of the chat client: a
// conversation list, the selected thread and a composer. It renders
// service.Snapshot values and sends every state change through the messenger.
package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Tuhin-ninja/the-freelancer-frontend-sub001/internal/common"
	"github.com/Tuhin-ninja/the-freelancer-frontend-sub001/internal/domain"
	"github.com/Tuhin-ninja/the-freelancer-frontend-sub001/internal/service"
)

const sidebarWidth = 32

type focus int

const (
	focusList focus = iota
	focusComposer
	focusSearch
)

// Options configure the chat model
type Options struct {
	Messenger service.MessengerService
	// RefreshInterval enables periodic reloads; zero means manual refresh only
	RefreshInterval time.Duration
}

// Model bubbletea model of the chat view
type Model struct {
	ctx       context.Context
	messenger service.MessengerService
	every     time.Duration

	snap service.Snapshot

	focus    focus
	cursor   int
	composer textinput.Model
	search   textinput.Model
	thread   viewport.Model
	spin     spinner.Model

	results      []*domain.User
	resultCursor int
	lastQuery    string

	sending bool
	loading bool
	expired bool
	err     error

	width  int
	height int
}

// New creates the chat model. ctx bounds every backend call it issues.
func New(ctx context.Context, opts Options) Model {
	composer := textinput.New()
	composer.Placeholder = "Type a message..."
	composer.CharLimit = 2000
	composer.Width = 50

	search := textinput.New()
	search.Placeholder = "Search users by handle..."
	search.CharLimit = 64
	search.Width = 30

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	return Model{
		ctx:       ctx,
		messenger: opts.Messenger,
		every:     opts.RefreshInterval,
		composer:  composer,
		search:    search,
		thread:    viewport.New(80, 20),
		spin:      spin,
		loading:   true,
		width:     100,
		height:    30,
	}
}

// Expired reports whether the model quit because the session expired
func (m Model) Expired() bool { return m.expired }

// Init loads the conversation list
func (m Model) Init() tea.Cmd {
	return tea.Batch(mountCmd(m.ctx, m.messenger), m.spin.Tick, refreshTickCmd(m.every))
}

// Update handles input and backend results
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if !m.sending && !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		// the pending message appears while the send is still in flight
		m.sync()
		return m, cmd

	case loadedMsg:
		m.loading = false
		m.setErr(msg.err)
		m.sync()
		return m, m.quitIfExpired()

	case threadLoadedMsg:
		m.loading = false
		m.setErr(msg.err)
		m.sync()
		return m, m.quitIfExpired()

	case startedMsg:
		m.loading = false
		m.setErr(msg.err)
		m.sync()
		if msg.conv != nil {
			m.cursor = m.indexOf(msg.conv.ID)
			m.focusComposer()
		}
		return m, m.quitIfExpired()

	case sentMsg:
		m.sending = false
		m.setErr(msg.err)
		m.sync()
		if m.focus == focusComposer {
			m.composer.Focus()
		}
		return m, m.quitIfExpired()

	case searchResultsMsg:
		// only the latest query may fill the result list
		if msg.query != m.lastQuery {
			return m, nil
		}
		m.setErr(msg.err)
		m.results = msg.users
		m.resultCursor = 0
		return m, m.quitIfExpired()

	case refreshTickMsg:
		if m.sending {
			return m, refreshTickCmd(m.every)
		}
		return m, tea.Batch(refreshCmd(m.ctx, m.messenger), refreshTickCmd(m.every))
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "ctrl+r":
		m.loading = true
		return m, tea.Batch(refreshCmd(m.ctx, m.messenger), m.spin.Tick)
	case "tab":
		if m.focus == focusComposer {
			m.focusList()
		} else if m.focus == focusList {
			m.focusComposer()
		}
		return m, nil
	}

	switch m.focus {
	case focusComposer:
		return m.handleComposerKey(msg)
	case focusSearch:
		return m.handleSearchKey(msg)
	}
	return m.handleListKey(msg)
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.snap.Conversations)-1 {
			m.cursor++
		}
	case "pgup":
		m.thread.HalfViewUp()
	case "pgdown":
		m.thread.HalfViewDown()
	case "/":
		m.focus = focusSearch
		m.search.SetValue("")
		m.results = nil
		m.lastQuery = ""
		cmd := m.search.Focus()
		return m, cmd
	case "enter":
		if m.cursor < 0 || m.cursor >= len(m.snap.Conversations) {
			return m, nil
		}
		conv := m.snap.Conversations[m.cursor]
		if m.snap.Self != nil && !conv.IsUsable(m.snap.Self.ID) {
			m.err = common.ErrConversationUnusable
			return m, nil
		}
		m.loading = true
		m.err = nil
		m.focusComposer()
		return m, tea.Batch(selectCmd(m.ctx, m.messenger, conv.ID), m.spin.Tick)
	}
	return m, nil
}

func (m Model) handleComposerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.focusList()
		return m, nil
	case "enter":
		if m.sending {
			return m, nil
		}
		content := strings.TrimSpace(m.composer.Value())
		if content == "" {
			return m, nil
		}
		if !m.snap.HasSelection {
			m.err = common.ErrNoConversationSelected
			return m, nil
		}
		m.sending = true
		m.err = nil
		m.composer.Reset()
		m.composer.Blur()
		return m, tea.Batch(sendCmd(m.ctx, m.messenger, content), m.spin.Tick)
	}

	if m.sending {
		return m, nil
	}
	var cmd tea.Cmd
	m.composer, cmd = m.composer.Update(msg)
	return m, cmd
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.search.Blur()
		m.results = nil
		m.focus = focusList
		return m, nil
	case "up":
		if m.resultCursor > 0 {
			m.resultCursor--
		}
		return m, nil
	case "down":
		if m.resultCursor < len(m.results)-1 {
			m.resultCursor++
		}
		return m, nil
	case "enter":
		query := strings.TrimSpace(m.search.Value())
		if query != m.lastQuery || len(m.results) == 0 {
			m.lastQuery = query
			m.results = nil
			return m, searchCmd(m.ctx, m.messenger, query)
		}
		user := m.results[m.resultCursor]
		m.search.Blur()
		m.results = nil
		m.focus = focusList
		m.loading = true
		return m, tea.Batch(startCmd(m.ctx, m.messenger, user), m.spin.Tick)
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

// sync pulls a fresh snapshot from the messenger
func (m *Model) sync() {
	m.snap = m.messenger.Snapshot()
	if m.cursor >= len(m.snap.Conversations) {
		m.cursor = max(0, len(m.snap.Conversations)-1)
	}
	m.thread.SetContent(m.renderThread(m.thread.Width))
	m.thread.GotoBottom()
}

func (m *Model) setErr(err error) {
	if errors.Is(err, common.ErrSessionExpired) || errors.Is(err, common.ErrNoSession) {
		m.expired = true
	}
	m.err = err
}

func (m *Model) quitIfExpired() tea.Cmd {
	if m.expired {
		return tea.Quit
	}
	return nil
}

func (m *Model) focusComposer() {
	m.focus = focusComposer
	if !m.sending {
		m.composer.Focus()
	}
}

func (m *Model) focusList() {
	m.focus = focusList
	m.composer.Blur()
}

func (m *Model) indexOf(id domain.ConversationID) int {
	for i, c := range m.snap.Conversations {
		if c.ID == id {
			return i
		}
	}
	return 0
}

func (m *Model) resize() {
	threadWidth := max(20, m.width-sidebarWidth-4)
	m.thread.Width = threadWidth
	m.thread.Height = max(3, m.height-7)
	m.composer.Width = max(10, threadWidth-4)
	m.thread.SetContent(m.renderThread(threadWidth))
}
