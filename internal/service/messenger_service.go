package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Tuhin-ninja/the-freelancer-frontend-sub001/internal/common"
	"github.com/Tuhin-ninja/the-freelancer-frontend-sub001/internal/domain"
	"github.com/Tuhin-ninja/the-freelancer-frontend-sub001/pkg/logger"
)

// Snapshot immutable view state for the presentation layer
type Snapshot struct {
	Self          *domain.User
	Err           error
	Conversations []*domain.Conversation
	Thread        Thread
	Selected      domain.ConversationID
	HasSelection  bool
	Sending       bool
}

// SelectedConversation returns the selected conversation from the snapshot
func (s Snapshot) SelectedConversation() (*domain.Conversation, bool) {
	if !s.HasSelection {
		return nil, false
	}
	for _, c := range s.Conversations {
		if c.ID == s.Selected {
			return c, true
		}
	}
	return nil, false
}

// MessengerDeps collaborators of a MessengerService
type MessengerDeps struct {
	Backend        Backend
	Users          CurrentUserProvider
	Now            func() time.Time
	ThreadPageSize int
	ResolveWorkers int
}

// MessengerService owns the messaging state of one view session
type MessengerService interface {
	Mount(ctx context.Context) error
	Refresh(ctx context.Context) error
	SelectConversation(ctx context.Context, id domain.ConversationID) error
	StartConversation(ctx context.Context, user *domain.User) (*domain.Conversation, error)
	SearchUsers(ctx context.Context, handle string) ([]*domain.User, error)
	Send(ctx context.Context, content string) (*domain.Message, error)
	Snapshot() Snapshot
	Reset(ctx context.Context) error
}

type messengerService struct {
	identity      IdentityService
	conversations ConversationService
	threads       ThreadService
	sender        SendService
	directory     UserDirectory
	users         CurrentUserProvider
	lastErr       error
	mu            sync.RWMutex
}

// NewMessengerService wires the identity resolver, conversation store, thread
// loader and send pipeline around one backend
func NewMessengerService(deps MessengerDeps) MessengerService {
	identity := NewIdentityService(deps.Backend)
	conversations := NewConversationService(deps.Backend, identity, deps.Users, deps.Now, deps.ResolveWorkers)
	threads := NewThreadService(deps.Backend, deps.Users, deps.ThreadPageSize)
	sender := NewSendService(deps.Backend, deps.Users, threads, conversations, deps.Now)

	return &messengerService{
		identity:      identity,
		conversations: conversations,
		threads:       threads,
		sender:        sender,
		directory:     deps.Backend,
		users:         deps.Users,
	}
}

// Mount loads the conversation list for a freshly opened view
func (s *messengerService) Mount(ctx context.Context) error {
	self, err := s.users.CurrentUser()
	if err != nil {
		return s.record(err)
	}
	s.identity.Prime(self)
	if err := s.conversations.LoadConversations(ctx); err != nil {
		return s.record(err)
	}
	log := logger.WithUserID(self.ID)
	log.Debug().Int("conversations", len(s.conversations.Conversations())).Msg("messenger mounted")
	return s.record(nil)
}

// Refresh reloads the conversation list and the open thread
func (s *messengerService) Refresh(ctx context.Context) error {
	if err := s.conversations.LoadConversations(ctx); err != nil {
		return s.record(err)
	}
	conv, ok := s.conversations.Selected()
	if !ok {
		return s.record(nil)
	}
	return s.record(s.loadThread(ctx, conv))
}

// SelectConversation selects a conversation and loads its thread
func (s *messengerService) SelectConversation(ctx context.Context, id domain.ConversationID) error {
	conv, err := s.conversations.Select(id)
	if err != nil {
		return s.record(err)
	}
	return s.record(s.loadThread(ctx, conv))
}

// StartConversation opens (or reuses) a conversation with user
func (s *messengerService) StartConversation(ctx context.Context, user *domain.User) (*domain.Conversation, error) {
	conv, err := s.conversations.StartConversation(user)
	if err != nil {
		return nil, s.record(err)
	}
	if err := s.loadThread(ctx, conv); err != nil {
		return conv, s.record(err)
	}
	return conv, s.record(nil)
}

// SearchUsers finds chat partners by handle, excluding the signed-in user
func (s *messengerService) SearchUsers(ctx context.Context, handle string) ([]*domain.User, error) {
	handle = strings.TrimPrefix(strings.TrimSpace(handle), "@")
	if handle == "" {
		return nil, nil
	}
	self, err := s.users.CurrentUser()
	if err != nil {
		return nil, s.record(err)
	}

	users, err := s.directory.SearchUsers(ctx, handle)
	if err != nil {
		return nil, s.record(fmt.Errorf("search users: %w", err))
	}

	out := make([]*domain.User, 0, len(users))
	for _, u := range users {
		if u == nil || u.ID == self.ID {
			continue
		}
		out = append(out, u)
	}
	s.identity.Prime(out...)
	return out, s.record(nil)
}

// Send sends content to the selected conversation
func (s *messengerService) Send(ctx context.Context, content string) (*domain.Message, error) {
	conv, ok := s.conversations.Selected()
	if !ok {
		return nil, s.record(common.ErrNoConversationSelected)
	}
	msg, err := s.sender.Send(ctx, conv, content)
	return msg, s.record(err)
}

// Snapshot returns the current view state
func (s *messengerService) Snapshot() Snapshot {
	snap := Snapshot{
		Conversations: s.conversations.Conversations(),
		Thread:        s.threads.Current(),
		Sending:       s.sender.Sending(),
	}
	if self, err := s.users.CurrentUser(); err == nil {
		snap.Self = self
	}
	if conv, ok := s.conversations.Selected(); ok {
		snap.Selected = conv.ID
		snap.HasSelection = true
	}
	s.mu.RLock()
	snap.Err = s.lastErr
	s.mu.RUnlock()
	return snap
}

// Reset performs a full reload: caches and state are dropped, then remounted
func (s *messengerService) Reset(ctx context.Context) error {
	s.identity.Reset()
	s.threads.Clear()
	s.conversations.Clear()
	return s.Mount(ctx)
}

func (s *messengerService) loadThread(ctx context.Context, conv *domain.Conversation) error {
	err := s.threads.LoadThread(ctx, conv)
	if errors.Is(err, common.ErrStaleThread) {
		return nil
	}
	return err
}

// record keeps err as the user-visible error state and returns it
func (s *messengerService) record(err error) error {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
	if err != nil {
		logger.GetLogger().Debug().Err(err).Msg("messenger operation failed")
	}
	return err
}
