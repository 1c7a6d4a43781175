package common

import "errors"

// Business logic errors
var (
	// General errors
	ErrNotFound  = errors.New("resource not found")
	ErrForbidden = errors.New("forbidden")

	// Id errors
	ErrInvalidID = errors.New("invalid id")

	// Auth / session errors
	ErrUnauthorized   = errors.New("unauthorized")
	ErrNoSession      = errors.New("no active session")
	ErrSessionExpired = errors.New("session expired")

	// Conversation errors
	ErrConversationUnusable   = errors.New("conversation has no resolvable other participant")
	ErrConversationNotFound   = errors.New("conversation not found")
	ErrNoConversationSelected = errors.New("no conversation selected")

	// Thread errors
	ErrStaleThread = errors.New("thread response discarded: conversation no longer selected")

	// Send errors
	ErrEmptyContent   = errors.New("message content is empty")
	ErrSendInFlight   = errors.New("a message is already being sent")
	ErrInvalidAddress = errors.New("sender or receiver id is not numeric")
)
