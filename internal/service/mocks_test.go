package service

import (
	"context"
	"time"

	"github.com/Tuhin-ninja/the-freelancer-frontend-sub001/internal/common"
	"github.com/Tuhin-ninja/the-freelancer-frontend-sub001/internal/domain"
	"github.com/stretchr/testify/mock"
)

// --- Mock Backend ---

type mockBackend struct {
	mock.Mock
}

func (m *mockBackend) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockBackend) SearchUsers(ctx context.Context, handle string) ([]*domain.User, error) {
	args := m.Called(ctx, handle)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.User), args.Error(1)
}

func (m *mockBackend) RecentConversations(ctx context.Context) ([]*domain.ConversationSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ConversationSummary), args.Error(1)
}

func (m *mockBackend) ConversationMessages(ctx context.Context, otherUserID int64, page, size int) ([]*domain.Message, error) {
	args := m.Called(ctx, otherUserID, page, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Message), args.Error(1)
}

func (m *mockBackend) SendMessage(ctx context.Context, req *domain.SendMessageRequest) (*domain.Message, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Message), args.Error(1)
}

// --- Fixtures ---

type staticUser struct {
	user *domain.User
}

func (s staticUser) CurrentUser() (*domain.User, error) {
	if s.user == nil {
		return nil, common.ErrNoSession
	}
	u := *s.user
	return &u, nil
}

var (
	me   = &domain.User{ID: 7, Name: "Me", Handle: "me", Role: domain.RoleClient}
	jane = &domain.User{ID: 42, Name: "Jane", Handle: "jane", Role: domain.RoleFreelancer}
	bob  = &domain.User{ID: 43, Name: "Bob", Handle: "bob", Role: domain.RoleFreelancer}

	t0 = time.Date(2023, 11, 14, 22, 13, 19, 0, time.UTC)
)

func fixedNow(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func rawID(v string) []byte { return []byte(v) }

func serverMessage(id int64, from, to int64, content string, at time.Time) *domain.Message {
	return &domain.Message{
		ID:          domain.ServerMessageID(id),
		SenderID:    from,
		ReceiverID:  to,
		Content:     content,
		MessageType: domain.MessageTypeText,
		CreatedAt:   at,
		UpdatedAt:   at,
	}
}

func persistedConversation(id int64, other *domain.User) *domain.Conversation {
	return domain.NewConversation(domain.PersistedConversationID(id), me, other, t0)
}
