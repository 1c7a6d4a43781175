package service

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/Tuhin-ninja/the-freelancer-frontend-sub001/internal/common"
	"github.com/Tuhin-ninja/the-freelancer-frontend-sub001/internal/domain"
	"github.com/Tuhin-ninja/the-freelancer-frontend-sub001/pkg/logger"
)

const defaultThreadPageSize = 50

// Thread the message history shown for one conversation, oldest first
type Thread struct {
	Err            error
	Messages       []*domain.Message
	ConversationID domain.ConversationID
	Loading        bool
}

// ThreadService loads and holds the thread of the selected conversation
type ThreadService interface {
	LoadThread(ctx context.Context, conv *domain.Conversation) error
	Current() Thread
	AppendPending(convID domain.ConversationID, msg *domain.Message) bool
	ReplacePending(convID domain.ConversationID, tempID domain.MessageID, confirmed *domain.Message) bool
	RemovePending(convID domain.ConversationID, tempID domain.MessageID) bool
	Clear()
}

type threadService struct {
	source   MessageSource
	users    CurrentUserProvider
	messages []*domain.Message
	err      error
	key      domain.ConversationID
	gen      uint64
	pageSize int
	loading  bool
	mu       sync.RWMutex
}

// NewThreadService creates a new ThreadService
func NewThreadService(source MessageSource, users CurrentUserProvider, pageSize int) ThreadService {
	if pageSize <= 0 {
		pageSize = defaultThreadPageSize
	}
	return &threadService{source: source, users: users, pageSize: pageSize}
}

// LoadThread fetches the history with the conversation's other participant.
// Switching conversations clears the previous thread immediately. A response
// that resolves after another load started is discarded with ErrStaleThread.
func (s *threadService) LoadThread(ctx context.Context, conv *domain.Conversation) error {
	if conv == nil {
		return common.ErrNoConversationSelected
	}
	self, err := s.users.CurrentUser()
	if err != nil {
		return err
	}
	other, ok := conv.OtherParticipant(self.ID)
	if !ok {
		return common.ErrConversationUnusable
	}

	s.mu.Lock()
	s.gen++
	gen := s.gen
	if s.key != conv.ID {
		s.key = conv.ID
		s.messages = nil
	}
	s.err = nil
	s.loading = true
	s.mu.Unlock()

	// nothing persisted yet
	if conv.ID.IsLocal() && conv.LastMessage == nil {
		s.mu.Lock()
		if s.gen == gen {
			s.loading = false
		}
		s.mu.Unlock()
		return nil
	}

	fetched, err := s.source.ConversationMessages(ctx, other.ID, 0, s.pageSize)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gen != gen || s.key != conv.ID {
		logger.GetLogger().Debug().Str("conversation_id", conv.ID.String()).Msg("discarding stale thread response")
		return fmt.Errorf("conversation %s: %w", conv.ID, common.ErrStaleThread)
	}
	s.loading = false

	pending := pendingOf(s.messages)
	if err != nil {
		s.messages = pending
		s.err = err
		return fmt.Errorf("load thread: %w", err)
	}

	s.messages = append(chronological(fetched, conv.ID), pending...)
	return nil
}

// chronological copies the backend's newest-first page into oldest-first order
func chronological(fetched []*domain.Message, convID domain.ConversationID) []*domain.Message {
	out := make([]*domain.Message, 0, len(fetched))
	for i := len(fetched) - 1; i >= 0; i-- {
		if fetched[i] == nil {
			continue
		}
		m := *fetched[i]
		if m.ConversationID.IsZero() {
			m.ConversationID = convID
		}
		out = append(out, &m)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func pendingOf(messages []*domain.Message) []*domain.Message {
	var out []*domain.Message
	for _, m := range messages {
		if m.IsPending() {
			out = append(out, m)
		}
	}
	return out
}

// Current returns a copy of the thread
func (s *threadService) Current() Thread {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t := Thread{
		ConversationID: s.key,
		Err:            s.err,
		Loading:        s.loading,
		Messages:       make([]*domain.Message, len(s.messages)),
	}
	for i, m := range s.messages {
		cp := *m
		t.Messages[i] = &cp
	}
	return t
}

// AppendPending adds a temporary message when the thread belongs to convID
func (s *threadService) AppendPending(convID domain.ConversationID, msg *domain.Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.key != convID || msg == nil {
		return false
	}
	m := *msg
	s.messages = append(s.messages, &m)
	return true
}

// ReplacePending swaps the temporary message for the confirmed one in place.
// If the confirmed message is already present (a reload fetched it first) the
// temporary entry is dropped instead.
func (s *threadService) ReplacePending(convID domain.ConversationID, tempID domain.MessageID, confirmed *domain.Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.key != convID || confirmed == nil {
		return false
	}

	idx := slices.IndexFunc(s.messages, func(m *domain.Message) bool { return m.ID == tempID })
	if idx < 0 {
		return false
	}
	if slices.ContainsFunc(s.messages, func(m *domain.Message) bool { return m.ID == confirmed.ID }) {
		s.messages = slices.Delete(s.messages, idx, idx+1)
		return true
	}
	m := *confirmed
	s.messages[idx] = &m
	return true
}

// RemovePending drops a temporary message
func (s *threadService) RemovePending(convID domain.ConversationID, tempID domain.MessageID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.key != convID {
		return false
	}
	idx := slices.IndexFunc(s.messages, func(m *domain.Message) bool { return m.ID == tempID })
	if idx < 0 {
		return false
	}
	s.messages = slices.Delete(s.messages, idx, idx+1)
	return true
}

// Clear forgets the thread; in-flight loads become stale
func (s *threadService) Clear() {
	s.mu.Lock()
	s.gen++
	s.key = domain.ConversationID{}
	s.messages = nil
	s.err = nil
	s.loading = false
	s.mu.Unlock()
}
