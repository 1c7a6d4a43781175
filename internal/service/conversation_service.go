package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Tuhin-ninja/the-freelancer-frontend-sub001/internal/common"
	"github.com/Tuhin-ninja/the-freelancer-frontend-sub001/internal/domain"
	"github.com/Tuhin-ninja/the-freelancer-frontend-sub001/pkg/logger"
	"golang.org/x/sync/errgroup"
)

const defaultResolveWorkers = 4

// ConversationService holds the visible conversation list, including
// conversations that only exist locally
type ConversationService interface {
	LoadConversations(ctx context.Context) error
	StartConversation(other *domain.User) (*domain.Conversation, error)
	ApplySentMessage(msg *domain.Message) bool
	Select(id domain.ConversationID) (*domain.Conversation, error)
	Selected() (*domain.Conversation, bool)
	Conversations() []*domain.Conversation
	Get(id domain.ConversationID) (*domain.Conversation, bool)
	Clear()
}

type conversationService struct {
	source   ConversationSource
	identity IdentityService
	users    CurrentUserProvider
	now      func() time.Time
	list     []*domain.Conversation
	selected *domain.ConversationID
	workers  int
	mu       sync.RWMutex
}

// NewConversationService creates a new ConversationService
func NewConversationService(source ConversationSource, identity IdentityService, users CurrentUserProvider, now func() time.Time, workers int) ConversationService {
	if now == nil {
		now = time.Now
	}
	if workers <= 0 {
		workers = defaultResolveWorkers
	}
	return &conversationService{
		source:   source,
		identity: identity,
		users:    users,
		now:      now,
		workers:  workers,
	}
}

// LoadConversations replaces the list with the backend's recent conversations,
// keeping backend order. Local conversations with no backend counterpart yet are
// kept ahead of them. On failure the previous list stays in place.
func (s *conversationService) LoadConversations(ctx context.Context) error {
	self, err := s.users.CurrentUser()
	if err != nil {
		return err
	}

	summaries, err := s.source.RecentConversations(ctx)
	if err != nil {
		return fmt.Errorf("load conversations: %w", err)
	}

	present := summaries[:0:0]
	for _, summary := range summaries {
		if summary != nil {
			present = append(present, summary)
		}
	}

	convs := make([]*domain.Conversation, len(present))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, summary := range present {
		g.Go(func() error {
			convs[i] = s.fromSummary(gctx, self, summary)
			return nil
		})
	}
	_ = g.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()

	var prevOther int64
	if prev := s.findLocked(s.selected); prev != nil {
		if other, ok := prev.OtherParticipant(self.ID); ok {
			prevOther = other.ID
		}
	}
	wasSelected := s.selected
	previous := s.list

	s.list = convs
	s.selected = nil

	// local conversations the backend does not know yet stay at the head
	var pending []*domain.Conversation
	for _, c := range previous {
		if !c.ID.IsLocal() {
			continue
		}
		if other, ok := c.OtherParticipant(self.ID); ok && s.byOtherLocked(self.ID, other.ID) == nil {
			pending = append(pending, c)
		}
	}
	if len(pending) > 0 {
		s.list = append(pending, convs...)
	}
	if wasSelected != nil {
		if c := s.findLocked(wasSelected); c != nil {
			id := c.ID
			s.selected = &id
		} else if prevOther > 0 {
			// a local conversation that now exists on the backend
			if c := s.byOtherLocked(self.ID, prevOther); c != nil {
				id := c.ID
				s.selected = &id
			}
		}
	}

	logger.GetLogger().Debug().Int("count", len(convs)).Msg("conversations loaded")
	return nil
}

func (s *conversationService) fromSummary(ctx context.Context, self *domain.User, summary *domain.ConversationSummary) *domain.Conversation {
	otherID, err := summary.OtherUserID()
	var other *domain.User
	switch {
	case err != nil:
		logger.GetLogger().Warn().Err(err).Msg("conversation without a resolvable participant")
		other = domain.UnknownUser(0)
	case summary.KnownUser() != nil:
		other = summary.KnownUser()
		s.identity.Prime(other)
	default:
		other = s.identity.ResolveUser(ctx, otherID)
	}

	conv := domain.NewConversation(summary.ConversationIDFor(otherID), self, other, time.Time{})
	conv.UnreadCount = max(summary.UnreadCount, 0)

	if summary.LastMessage != nil {
		msg, err := summary.LastMessage.ToMessage()
		if err == nil {
			if msg.ConversationID.IsZero() {
				msg.ConversationID = conv.ID
			}
			conv.LastMessage = msg
			conv.CreatedAt = msg.CreatedAt
			conv.UpdatedAt = msg.UpdatedAt
		}
	}
	return conv
}

// StartConversation selects the existing conversation with other, or creates a
// local one at the head of the list. It never calls the backend.
func (s *conversationService) StartConversation(other *domain.User) (*domain.Conversation, error) {
	if other == nil || other.ID <= 0 {
		return nil, common.ErrInvalidID
	}
	self, err := s.users.CurrentUser()
	if err != nil {
		return nil, err
	}
	if other.ID == self.ID {
		return nil, fmt.Errorf("%w: cannot message yourself", common.ErrConversationUnusable)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing := s.byOtherLocked(self.ID, other.ID); existing != nil {
		id := existing.ID
		s.selected = &id
		return existing.Clone(), nil
	}

	now := s.now()
	id := domain.NewLocalConversationID(now)
	for s.findLocked(&id) != nil {
		now = now.Add(time.Millisecond)
		id = domain.NewLocalConversationID(now)
	}

	selfCopy, otherCopy := *self, *other
	conv := domain.NewConversation(id, &selfCopy, &otherCopy, now)
	s.list = append([]*domain.Conversation{conv}, s.list...)
	s.selected = &id
	s.identity.Prime(other)

	logger.GetLogger().Debug().Str("conversation_id", id.String()).Int64("other_user_id", other.ID).Msg("local conversation started")
	return conv.Clone(), nil
}

// ApplySentMessage records msg as the last message of its conversation.
// A conversation matches by id when it involves the message's participants,
// otherwise by its other participant being the receiver (first message of a
// local conversation). Unread counts are left alone.
func (s *conversationService) ApplySentMessage(msg *domain.Message) bool {
	if msg == nil {
		return false
	}
	self, err := s.users.CurrentUser()
	if err != nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var target *domain.Conversation
	for _, c := range s.list {
		if c.ID == msg.ConversationID && involves(c, self.ID, msg) {
			target = c
			break
		}
	}
	if target == nil {
		target = s.byOtherLocked(self.ID, msg.ReceiverID)
	}
	if target == nil {
		return false
	}

	m := *msg
	target.LastMessage = &m
	target.UpdatedAt = msg.CreatedAt
	if target.UpdatedAt.IsZero() {
		target.UpdatedAt = s.now()
	}
	return true
}

// Select marks a conversation selected and clears its unread badge.
// Conversations without a resolvable other participant cannot be selected.
func (s *conversationService) Select(id domain.ConversationID) (*domain.Conversation, error) {
	self, err := s.users.CurrentUser()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.findLocked(&id)
	if c == nil {
		return nil, common.ErrConversationNotFound
	}
	if !c.IsUsable(self.ID) {
		return nil, common.ErrConversationUnusable
	}
	s.selected = &id
	c.UnreadCount = 0
	return c.Clone(), nil
}

// Selected returns a copy of the selected conversation
func (s *conversationService) Selected() (*domain.Conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c := s.findLocked(s.selected)
	if c == nil {
		return nil, false
	}
	return c.Clone(), true
}

// Conversations returns copies of every conversation in display order
func (s *conversationService) Conversations() []*domain.Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Conversation, len(s.list))
	for i, c := range s.list {
		out[i] = c.Clone()
	}
	return out
}

// Get returns a copy of the conversation with id
func (s *conversationService) Get(id domain.ConversationID) (*domain.Conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c := s.findLocked(&id)
	if c == nil {
		return nil, false
	}
	return c.Clone(), true
}

// Clear empties the list and the selection
func (s *conversationService) Clear() {
	s.mu.Lock()
	s.list = nil
	s.selected = nil
	s.mu.Unlock()
}

func (s *conversationService) findLocked(id *domain.ConversationID) *domain.Conversation {
	if id == nil {
		return nil
	}
	for _, c := range s.list {
		if c.ID == *id {
			return c
		}
	}
	return nil
}

func (s *conversationService) byOtherLocked(selfID, otherID int64) *domain.Conversation {
	if otherID <= 0 {
		return nil
	}
	for _, c := range s.list {
		if other, ok := c.OtherParticipant(selfID); ok && other.ID == otherID {
			return c
		}
	}
	return nil
}

func involves(c *domain.Conversation, selfID int64, msg *domain.Message) bool {
	other, ok := c.OtherParticipant(selfID)
	if !ok {
		return false
	}
	return other.ID == msg.ReceiverID || other.ID == msg.SenderID
}
