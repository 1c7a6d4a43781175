package service

import (
	"context"

	"github.com/Tuhin-ninja/the-freelancer-frontend-sub001/internal/domain"
)

// --- Backend Interfaces ---

// UserDirectory looks up marketplace users
type UserDirectory interface {
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	SearchUsers(ctx context.Context, handle string) ([]*domain.User, error)
}

// ConversationSource lists the signed-in user's recent conversations
type ConversationSource interface {
	RecentConversations(ctx context.Context) ([]*domain.ConversationSummary, error)
}

// MessageSource fetches message history with one other participant, newest first
type MessageSource interface {
	ConversationMessages(ctx context.Context, otherUserID int64, page, size int) ([]*domain.Message, error)
}

// MessageSender posts a direct message and returns the stored copy
type MessageSender interface {
	SendMessage(ctx context.Context, req *domain.SendMessageRequest) (*domain.Message, error)
}

// Backend everything the messenger needs from the direct-message backend.
// *backend.Client satisfies it.
type Backend interface {
	UserDirectory
	ConversationSource
	MessageSource
	MessageSender
}

// --- Session Interfaces ---

// CurrentUserProvider exposes the signed-in user. *session.Manager satisfies it.
type CurrentUserProvider interface {
	CurrentUser() (*domain.User, error)
}
