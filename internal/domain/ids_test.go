package domain

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestNewLocalConversationID(t *testing.T) {
	at := time.UnixMilli(1699999999000)
	id := NewLocalConversationID(at)

	if !id.IsLocal() {
		t.Fatal("expected local id")
	}
	if id.Int64() != -1699999999000 {
		t.Errorf("expected -1699999999000, got %d", id.Int64())
	}
	if id == PersistedConversationID(1699999999000) {
		t.Error("local id must not equal a persisted id")
	}
}

func TestParseConversationID(t *testing.T) {
	id, err := ParseConversationID("-1699999999000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !id.IsLocal() {
		t.Error("negative ids parse as local")
	}

	id, err = ParseConversationID("12")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != PersistedConversationID(12) {
		t.Errorf("expected persisted 12, got %v", id)
	}

	if _, err := ParseConversationID("abc"); err == nil {
		t.Error("expected error for non-numeric id")
	}
}

func TestMessageID_JSON(t *testing.T) {
	var id MessageID
	if err := json.Unmarshal([]byte(`4821`), &id); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.IsTemp() || id.Int64() != 4821 {
		t.Errorf("expected server id 4821, got %v", id)
	}

	if err := json.Unmarshal([]byte(`"4821"`), &id); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != ServerMessageID(4821) {
		t.Errorf("quoted numeric id should parse as server id, got %v", id)
	}

	temp := NewTempMessageID(time.Unix(0, 42))
	data, err := json.Marshal(temp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != `"temp-42"` {
		t.Errorf("expected \"temp-42\", got %s", data)
	}
	var back MessageID
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if back != temp {
		t.Errorf("expected %v, got %v", temp, back)
	}
}

func TestTempMessageIDNeverCollidesWithServerIDs(t *testing.T) {
	temp := NewTempMessageID(time.Unix(0, 4821))
	if !strings.HasPrefix(temp.String(), TempMessagePrefix) {
		t.Errorf("temp id must carry prefix, got %s", temp)
	}
	if temp == ServerMessageID(4821) {
		t.Error("temp id must not equal server id with same digits")
	}
}
