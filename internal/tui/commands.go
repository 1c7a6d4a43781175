package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Tuhin-ninja/the-freelancer-frontend-sub001/internal/domain"
	"github.com/Tuhin-ninja/the-freelancer-frontend-sub001/internal/service"
)

// --- Messages ---

type loadedMsg struct {
	err error
}

type threadLoadedMsg struct {
	id  domain.ConversationID
	err error
}

type startedMsg struct {
	conv *domain.Conversation
	err  error
}

type sentMsg struct {
	err error
}

type searchResultsMsg struct {
	query string
	users []*domain.User
	err   error
}

type refreshTickMsg struct {
	now time.Time
}

// --- Commands ---

func mountCmd(ctx context.Context, m service.MessengerService) tea.Cmd {
	return func() tea.Msg {
		return loadedMsg{err: m.Mount(ctx)}
	}
}

func refreshCmd(ctx context.Context, m service.MessengerService) tea.Cmd {
	return func() tea.Msg {
		return loadedMsg{err: m.Refresh(ctx)}
	}
}

func selectCmd(ctx context.Context, m service.MessengerService, id domain.ConversationID) tea.Cmd {
	return func() tea.Msg {
		return threadLoadedMsg{id: id, err: m.SelectConversation(ctx, id)}
	}
}

func startCmd(ctx context.Context, m service.MessengerService, user *domain.User) tea.Cmd {
	return func() tea.Msg {
		conv, err := m.StartConversation(ctx, user)
		return startedMsg{conv: conv, err: err}
	}
}

func sendCmd(ctx context.Context, m service.MessengerService, content string) tea.Cmd {
	return func() tea.Msg {
		_, err := m.Send(ctx, content)
		return sentMsg{err: err}
	}
}

func searchCmd(ctx context.Context, m service.MessengerService, query string) tea.Cmd {
	return func() tea.Msg {
		users, err := m.SearchUsers(ctx, query)
		return searchResultsMsg{query: query, users: users, err: err}
	}
}

func refreshTickCmd(every time.Duration) tea.Cmd {
	if every <= 0 {
		return nil
	}
	return tea.Tick(every, func(ts time.Time) tea.Msg {
		return refreshTickMsg{now: ts}
	})
}
