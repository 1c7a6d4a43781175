package domain

import (
	"encoding/json"
	"time"

	"github.com/Tuhin-ninja/the-freelancer-frontend-sub001/internal/common"
)

// MessageType content kind of a direct message
type MessageType string

const (
	MessageTypeText  MessageType = "TEXT"
	MessageTypeImage MessageType = "IMAGE"
	MessageTypeFile  MessageType = "FILE"
)

// DeliveryState client-side lifecycle of a message
type DeliveryState int

const (
	// DeliveryConfirmed message carries a server id
	DeliveryConfirmed DeliveryState = iota
	// DeliveryPending message was rendered before the backend confirmed it
	DeliveryPending
)

// Message a direct message as shown in a thread
type Message struct {
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
	ID             MessageID      `json:"id"`
	ConversationID ConversationID `json:"conversationId"`
	Content        string         `json:"content"`
	MessageType    MessageType    `json:"messageType"`
	SenderID       int64          `json:"senderId"`
	ReceiverID     int64          `json:"receiverId"`
	IsRead         bool           `json:"isRead"`
	State          DeliveryState  `json:"-"`
}

// IsPending reports whether the message is still awaiting backend confirmation
func (m *Message) IsPending() bool {
	return m.State == DeliveryPending || m.ID.IsTemp()
}

// MessagePayload message object as returned by the direct-message service
type MessagePayload struct {
	ID             json.RawMessage `json:"id"`
	ConversationID json.RawMessage `json:"conversationId,omitempty"`
	SenderID       json.RawMessage `json:"senderId"`
	ReceiverID     json.RawMessage `json:"receiverId"`
	Content        string          `json:"content"`
	MessageType    MessageType     `json:"messageType"`
	CreatedAt      *time.Time      `json:"createdAt"`
	UpdatedAt      *time.Time      `json:"updatedAt,omitempty"`
	ReadAt         *time.Time      `json:"readAt"`
}

// ToMessage converts the payload into a confirmed Message
func (p *MessagePayload) ToMessage() (*Message, error) {
	var id MessageID
	if len(p.ID) > 0 {
		if err := json.Unmarshal(p.ID, &id); err != nil {
			return nil, err
		}
	}
	senderID, err := common.NormalizeInt64(p.SenderID)
	if err != nil {
		return nil, err
	}

	msg := &Message{
		ID:          id,
		SenderID:    senderID,
		Content:     p.Content,
		MessageType: p.MessageType,
		IsRead:      p.ReadAt != nil,
		State:       DeliveryConfirmed,
	}
	if receiverID, err := common.NormalizeInt64(p.ReceiverID); err == nil {
		msg.ReceiverID = receiverID
	}
	if convID, err := common.NormalizeInt64(p.ConversationID); err == nil {
		msg.ConversationID = PersistedConversationID(convID)
	}
	if msg.MessageType == "" {
		msg.MessageType = MessageTypeText
	}
	if p.CreatedAt != nil {
		msg.CreatedAt = *p.CreatedAt
	}
	msg.UpdatedAt = msg.CreatedAt
	if p.UpdatedAt != nil {
		msg.UpdatedAt = *p.UpdatedAt
	}
	return msg, nil
}

// MessagePage thread page; the backend uses either "messages" or a paginated "content"
type MessagePage struct {
	Messages []*MessagePayload `json:"messages"`
	Content  []*MessagePayload `json:"content"`
}

// Items returns whichever list the backend populated
func (p *MessagePage) Items() []*MessagePayload {
	if len(p.Messages) > 0 {
		return p.Messages
	}
	return p.Content
}

// SendMessageRequest body of POST /api/direct-messages.
// SenderID and ReceiverID are digits-only strings.
type SendMessageRequest struct {
	SenderID    string      `json:"senderId"`
	ReceiverID  string      `json:"receiverId"`
	Content     string      `json:"content"`
	MessageType MessageType `json:"messageType"`
	ReplyToID   *int64      `json:"replyToId,omitempty"`
	Attachments []string    `json:"attachments,omitempty"`
}
