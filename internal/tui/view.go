package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Tuhin-ninja/the-freelancer-frontend-sub001/internal/domain"
)

var (
	accentColor = lipgloss.Color("39")
	mutedColor  = lipgloss.Color("242")
	errorColor  = lipgloss.Color("203")
	selfColor   = lipgloss.Color("114")

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	mutedStyle    = lipgloss.NewStyle().Foreground(mutedColor)
	errorStyle    = lipgloss.NewStyle().Foreground(errorColor)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	badgeStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(accentColor).Padding(0, 1)
	selfStyle     = lipgloss.NewStyle().Bold(true).Foreground(selfColor)
	otherStyle    = lipgloss.NewStyle().Bold(true)

	paneStyle        = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(mutedColor).Padding(0, 1)
	focusedPaneStyle = paneStyle.BorderForeground(accentColor)
)

// View renders the sidebar, the thread and the status line
func (m Model) View() string {
	sidebar := m.renderSidebar()
	threadPane := m.renderMain()
	body := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, threadPane)
	return lipgloss.JoinVertical(lipgloss.Left, body, m.renderStatus())
}

func (m Model) renderSidebar() string {
	style := paneStyle
	if m.focus == focusList {
		style = focusedPaneStyle
	}
	innerW := sidebarWidth - 4
	height := max(3, m.height-3)

	lines := []string{titleStyle.Render("Conversations")}
	if m.focus == focusSearch {
		lines = append(lines, m.search.View())
		lines = append(lines, m.renderResults(innerW)...)
	} else if len(m.snap.Conversations) == 0 {
		lines = append(lines, mutedStyle.Render("No conversations yet"), mutedStyle.Render("/ to find someone"))
	}

	if m.focus != focusSearch {
		var selfID int64
		if m.snap.Self != nil {
			selfID = m.snap.Self.ID
		}
		for i, conv := range m.snap.Conversations {
			lines = append(lines, m.renderRow(i, conv, selfID, innerW)...)
		}
	}

	return style.Width(sidebarWidth - 2).Height(height).Render(strings.Join(lines, "\n"))
}

func (m Model) renderRow(i int, conv *domain.Conversation, selfID int64, width int) []string {
	name := domain.UnknownUserName
	other, usable := conv.OtherParticipant(selfID)
	if usable {
		name = other.DisplayName()
	}

	cursor := "  "
	nameStyle := otherStyle
	if i == m.cursor {
		cursor = "▸ "
		nameStyle = selectedStyle
	}
	if !usable {
		nameStyle = mutedStyle
	}
	if m.snap.HasSelection && conv.ID == m.snap.Selected {
		name += " •"
	}

	header := cursor + nameStyle.Render(truncate(name, width-8))
	if conv.UnreadCount > 0 {
		header += " " + badgeStyle.Render(fmt.Sprint(conv.UnreadCount))
	}
	preview := conv.Preview()
	if preview == "" && conv.ID.IsLocal() {
		preview = "new conversation"
	}
	return []string{header, "  " + mutedStyle.Render(truncate(oneLine(preview), width-2))}
}

func (m Model) renderResults(width int) []string {
	if len(m.results) == 0 {
		if m.lastQuery != "" {
			return []string{mutedStyle.Render("no matches")}
		}
		return []string{mutedStyle.Render("enter to search")}
	}
	lines := make([]string, 0, len(m.results))
	for i, u := range m.results {
		label := u.DisplayName()
		if u.Handle != "" {
			label += " @" + u.Handle
		}
		label = truncate(label, width-2)
		if i == m.resultCursor {
			lines = append(lines, selectedStyle.Render("▸ "+label))
		} else {
			lines = append(lines, "  "+label)
		}
	}
	return lines
}

func (m Model) renderMain() string {
	style := paneStyle
	if m.focus == focusComposer {
		style = focusedPaneStyle
	}

	title := "Select a conversation"
	if conv, ok := m.snap.SelectedConversation(); ok && m.snap.Self != nil {
		if other, ok := conv.OtherParticipant(m.snap.Self.ID); ok {
			title = other.DisplayName()
			if other.Role != "" {
				title += mutedStyle.Render(" · " + string(other.Role))
			}
		}
	}

	composer := m.composer.View()
	if m.sending {
		composer = m.spin.View() + mutedStyle.Render(" sending...")
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(title),
		m.thread.View(),
		composer,
	)
	return style.Width(max(20, m.width-sidebarWidth-2)).Height(max(3, m.height-3)).Render(content)
}

// renderThread formats the thread oldest first, marking pending messages
func (m Model) renderThread(width int) string {
	t := m.snap.Thread
	if !m.snap.HasSelection {
		return ""
	}
	if t.ConversationID != m.snap.Selected {
		// thread still belongs to the previous selection
		return mutedStyle.Render("Loading messages...")
	}
	if t.Err != nil {
		return errorStyle.Render("Could not load messages: " + t.Err.Error())
	}
	if len(t.Messages) == 0 {
		if t.Loading {
			return mutedStyle.Render("Loading messages...")
		}
		return mutedStyle.Render("No messages yet")
	}

	var selfID int64
	if m.snap.Self != nil {
		selfID = m.snap.Self.ID
	}
	names := map[int64]string{}
	if conv, ok := m.snap.SelectedConversation(); ok {
		for _, p := range conv.Participants {
			if p != nil {
				names[p.ID] = p.DisplayName()
			}
		}
	}

	var b strings.Builder
	for _, msg := range t.Messages {
		who := otherStyle.Render(names[msg.SenderID])
		if msg.SenderID == selfID {
			who = selfStyle.Render("You")
		} else if names[msg.SenderID] == "" {
			who = otherStyle.Render(domain.UnknownUserName)
		}
		stamp := ""
		if !msg.CreatedAt.IsZero() {
			stamp = mutedStyle.Render(msg.CreatedAt.Local().Format("15:04") + " ")
		}
		text := msg.Content
		if msg.IsPending() {
			text = mutedStyle.Render(text + " (sending)")
		}
		line := stamp + who + ": " + text
		b.WriteString(lipgloss.NewStyle().Width(max(10, width)).Render(line))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderStatus() string {
	if m.err != nil {
		return errorStyle.Render("error: " + m.err.Error())
	}
	if m.loading {
		return m.spin.View() + mutedStyle.Render(" loading")
	}
	hints := "↑/↓ move  enter open  tab composer  / search  ctrl+r refresh  esc quit"
	switch m.focus {
	case focusComposer:
		hints = "enter send  tab/esc conversations  ctrl+r refresh  ctrl+c quit"
	case focusSearch:
		hints = "enter search/start  ↑/↓ pick  esc back"
	}
	return mutedStyle.Render(hints)
}

func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
