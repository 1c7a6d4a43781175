package domain

import (
	"encoding/json"
	"time"

	"github.com/Tuhin-ninja/the-freelancer-frontend-sub001/internal/common"
)

// Conversation a thread between the signed-in user and exactly one other participant
type Conversation struct {
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
	LastMessage    *Message       `json:"lastMessage,omitempty"`
	ParticipantIDs []int64        `json:"participantIds"`
	Participants   []*User        `json:"participants"`
	ID             ConversationID `json:"id"`
	UnreadCount    int            `json:"unreadCount"`
}

// OtherParticipant returns the participant distinct from selfID.
// The second result is false when no such participant exists.
func (c *Conversation) OtherParticipant(selfID int64) (*User, bool) {
	if c == nil {
		return nil, false
	}
	for _, p := range c.Participants {
		if p != nil && p.ID > 0 && p.ID != selfID {
			return p, true
		}
	}
	return nil, false
}

// IsUsable reports whether a thread can be opened for the conversation
func (c *Conversation) IsUsable(selfID int64) bool {
	_, ok := c.OtherParticipant(selfID)
	return ok
}

// Preview returns the last message text for list rows
func (c *Conversation) Preview() string {
	if c == nil || c.LastMessage == nil {
		return ""
	}
	return c.LastMessage.Content
}

// Clone returns a copy safe to hand to the presentation layer
func (c *Conversation) Clone() *Conversation {
	if c == nil {
		return nil
	}
	out := *c
	out.ParticipantIDs = append([]int64(nil), c.ParticipantIDs...)
	out.Participants = make([]*User, len(c.Participants))
	for i, p := range c.Participants {
		if p != nil {
			u := *p
			out.Participants[i] = &u
		}
	}
	if c.LastMessage != nil {
		m := *c.LastMessage
		out.LastMessage = &m
	}
	return &out
}

// NewConversation builds a conversation between self and other
func NewConversation(id ConversationID, self, other *User, now time.Time) *Conversation {
	return &Conversation{
		ID:             id,
		ParticipantIDs: []int64{self.ID, other.ID},
		Participants:   []*User{self, other},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// ConversationSummary one row of GET /api/direct-messages/recent
type ConversationSummary struct {
	ConversationID    json.RawMessage `json:"conversationId,omitempty"`
	UserID            json.RawMessage `json:"userId,omitempty"`
	OtherUserIDRaw    json.RawMessage `json:"otherUserId,omitempty"`
	User              *UserPayload    `json:"user,omitempty"`
	UserName          string          `json:"userName,omitempty"`
	ProfilePictureURL string          `json:"profilePictureUrl,omitempty"`
	LastMessage       *MessagePayload `json:"lastMessage,omitempty"`
	UnreadCount       int             `json:"unreadCount"`
}

// OtherUserID returns the normalized id of the other party
func (s *ConversationSummary) OtherUserID() (int64, error) {
	for _, raw := range []json.RawMessage{s.UserID, s.OtherUserIDRaw} {
		if len(raw) == 0 {
			continue
		}
		if id, err := common.NormalizeInt64(raw); err == nil {
			return id, nil
		}
	}
	if s.User != nil {
		u, err := s.User.ToUser()
		if err != nil {
			return 0, err
		}
		return u.ID, nil
	}
	return 0, common.ErrInvalidID
}

// KnownUser returns the profile embedded in the summary, if any
func (s *ConversationSummary) KnownUser() *User {
	if s.User != nil {
		if u, err := s.User.ToUser(); err == nil && u.Name != "" {
			return u
		}
	}
	if s.UserName == "" {
		return nil
	}
	id, err := s.OtherUserID()
	if err != nil {
		return nil
	}
	return &User{ID: id, Name: s.UserName, ProfilePictureURL: s.ProfilePictureURL}
}

// ConversationIDFor returns the conversation id of the summary; the backend keys
// recent conversations by participant, so the other user's id stands in when no
// conversation id is present.
func (s *ConversationSummary) ConversationIDFor(otherUserID int64) ConversationID {
	if id, err := common.NormalizeInt64(s.ConversationID); err == nil {
		return PersistedConversationID(id)
	}
	if s.LastMessage != nil {
		if id, err := common.NormalizeInt64(s.LastMessage.ConversationID); err == nil {
			return PersistedConversationID(id)
		}
	}
	return PersistedConversationID(otherUserID)
}
