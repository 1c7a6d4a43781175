package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Tuhin-ninja/the-freelancer-frontend-sub001/internal/common"
	"github.com/Tuhin-ninja/the-freelancer-frontend-sub001/internal/domain"
	"github.com/Tuhin-ninja/the-freelancer-frontend-sub001/pkg/logger"
)

// SendService optimistic send pipeline: a temporary message is shown at once
// and later replaced by the stored message, or removed when the send fails
type SendService interface {
	Send(ctx context.Context, conv *domain.Conversation, content string) (*domain.Message, error)
	Sending() bool
}

type sendService struct {
	sender        MessageSender
	users         CurrentUserProvider
	threads       ThreadService
	conversations ConversationService
	now           func() time.Time
	mu            sync.Mutex
	inFlight      bool
}

// NewSendService creates a new SendService
func NewSendService(sender MessageSender, users CurrentUserProvider, threads ThreadService, conversations ConversationService, now func() time.Time) SendService {
	if now == nil {
		now = time.Now
	}
	return &sendService{
		sender:        sender,
		users:         users,
		threads:       threads,
		conversations: conversations,
		now:           now,
	}
}

// Send posts content to the conversation's other participant. Only one send
// may be pending at a time.
func (s *sendService) Send(ctx context.Context, conv *domain.Conversation, content string) (*domain.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, common.ErrEmptyContent
	}
	if conv == nil {
		return nil, common.ErrNoConversationSelected
	}

	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return nil, common.ErrSendInFlight
	}
	s.inFlight = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.inFlight = false
		s.mu.Unlock()
	}()

	self, err := s.users.CurrentUser()
	if err != nil {
		return nil, err
	}
	other, ok := conv.OtherParticipant(self.ID)
	if !ok {
		return nil, common.ErrConversationUnusable
	}

	senderID, err := common.NormalizeID(self.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: sender: %v", common.ErrInvalidAddress, err)
	}
	receiverID, err := common.NormalizeID(other.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: receiver: %v", common.ErrInvalidAddress, err)
	}

	now := s.now()
	temp := &domain.Message{
		ID:             domain.NewTempMessageID(now),
		ConversationID: conv.ID,
		SenderID:       self.ID,
		ReceiverID:     other.ID,
		Content:        content,
		MessageType:    domain.MessageTypeText,
		CreatedAt:      now,
		UpdatedAt:      now,
		State:          domain.DeliveryPending,
	}
	s.threads.AppendPending(conv.ID, temp)

	msg, err := s.sender.SendMessage(ctx, &domain.SendMessageRequest{
		SenderID:    senderID,
		ReceiverID:  receiverID,
		Content:     content,
		MessageType: domain.MessageTypeText,
	})
	if err != nil {
		s.threads.RemovePending(conv.ID, temp.ID)
		logger.GetLogger().Warn().Err(err).
			Str("conversation_id", conv.ID.String()).
			Int64("receiver_id", other.ID).
			Msg("message send failed, rolled back")
		return nil, fmt.Errorf("send message: %w", err)
	}

	if msg.ConversationID.IsZero() {
		msg.ConversationID = conv.ID
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = temp.CreatedAt
		msg.UpdatedAt = temp.UpdatedAt
	}
	if msg.ReceiverID == 0 {
		msg.ReceiverID = other.ID
	}
	msg.State = domain.DeliveryConfirmed

	s.threads.ReplacePending(conv.ID, temp.ID, msg)
	s.conversations.ApplySentMessage(msg)

	logger.GetLogger().Debug().
		Str("message_id", msg.ID.String()).
		Str("conversation_id", conv.ID.String()).
		Msg("message confirmed")
	return msg, nil
}

// Sending reports whether a send is pending
func (s *sendService) Sending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight
}
