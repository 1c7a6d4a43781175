package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TempMessagePrefix marks client-generated message ids
const TempMessagePrefix = "temp-"

// ConversationID identifies a conversation. Server ids are positive; local
// placeholders carry the negated creation time in milliseconds.
type ConversationID struct {
	n     int64
	local bool
}

// PersistedConversationID wraps a server-assigned id
func PersistedConversationID(n int64) ConversationID {
	return ConversationID{n: n}
}

// NewLocalConversationID creates a placeholder id for a conversation that only exists client-side
func NewLocalConversationID(at time.Time) ConversationID {
	ms := at.UnixMilli()
	if ms <= 0 {
		ms = 1
	}
	return ConversationID{n: -ms, local: true}
}

// IsLocal reports whether the conversation has not been persisted yet
func (c ConversationID) IsLocal() bool { return c.local }

// IsZero reports whether the id is unset
func (c ConversationID) IsZero() bool { return c.n == 0 }

// Int64 returns the numeric value (negative for local ids)
func (c ConversationID) Int64() int64 { return c.n }

func (c ConversationID) String() string { return strconv.FormatInt(c.n, 10) }

// ParseConversationID parses the String form back into an id
func ParseConversationID(s string) (ConversationID, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n == 0 {
		return ConversationID{}, fmt.Errorf("invalid conversation id %q", s)
	}
	if n < 0 {
		return ConversationID{n: n, local: true}, nil
	}
	return ConversationID{n: n}, nil
}

func (c ConversationID) MarshalJSON() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *ConversationID) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(bytes.TrimSpace(data), `"`)
	if len(data) == 0 || string(data) == "null" {
		*c = ConversationID{}
		return nil
	}
	id, err := ParseConversationID(string(data))
	if err != nil {
		return err
	}
	*c = id
	return nil
}

// MessageID identifies a message: either a server id or a temporary string id
type MessageID struct {
	temp string
	n    int64
}

// ServerMessageID wraps a server-assigned id
func ServerMessageID(n int64) MessageID {
	return MessageID{n: n}
}

// NewTempMessageID creates a temporary id for a pending message
func NewTempMessageID(at time.Time) MessageID {
	return MessageID{temp: TempMessagePrefix + strconv.FormatInt(at.UnixNano(), 10)}
}

// IsTemp reports whether the id was generated client-side
func (m MessageID) IsTemp() bool { return m.temp != "" }

// IsZero reports whether the id is unset
func (m MessageID) IsZero() bool { return m.temp == "" && m.n == 0 }

// Int64 returns the server id, 0 for temporary ids
func (m MessageID) Int64() int64 { return m.n }

func (m MessageID) String() string {
	if m.temp != "" {
		return m.temp
	}
	return strconv.FormatInt(m.n, 10)
}

func (m MessageID) MarshalJSON() ([]byte, error) {
	if m.temp != "" {
		return json.Marshal(m.temp)
	}
	return []byte(strconv.FormatInt(m.n, 10)), nil
}

func (m *MessageID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*m = MessageID{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if strings.HasPrefix(s, TempMessagePrefix) {
			*m = MessageID{temp: s}
			return nil
		}
		data = []byte(s)
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid message id %s", data)
	}
	*m = MessageID{n: n}
	return nil
}
