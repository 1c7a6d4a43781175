package main

import (
	"bufio"
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tuhin-ninja/the-freelancer-frontend-sub001/internal/domain"
	"github.com/Tuhin-ninja/the-freelancer-frontend-sub001/internal/service"
)

func TestPrintThread(t *testing.T) {
	me := &domain.User{ID: 7, Name: "Me"}
	jane := &domain.User{ID: 42, Name: "Jane"}
	at := time.Date(2023, 11, 14, 22, 13, 19, 0, time.UTC)
	conv := domain.NewConversation(domain.PersistedConversationID(3), me, jane, at)

	snap := service.Snapshot{
		Self:          me,
		Conversations: []*domain.Conversation{conv},
		Selected:      conv.ID,
		HasSelection:  true,
		Thread: service.Thread{Messages: []*domain.Message{
			{ID: domain.ServerMessageID(1), SenderID: 42, Content: "hello"},
			{ID: domain.ServerMessageID(2), SenderID: 7, Content: "hi Jane"},
			{ID: domain.ServerMessageID(3), SenderID: 99, Content: "who?"},
		}},
	}

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	printThread(cmd, snap)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Jane: hello", lines[0])
	assert.Equal(t, "You: hi Jane", lines[1])
	assert.Equal(t, domain.UnknownUserName+": who?", lines[2])
}

func TestPrintThread_Empty(t *testing.T) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	printThread(cmd, service.Snapshot{})

	assert.Equal(t, "No messages yet\n", out.String())
}

func TestPrompt(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("  jane@example.com \nsecret"))

	email, err := prompt(in, "Email: ")
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", email)

	password, err := prompt(in, "Password: ")
	require.NoError(t, err)
	assert.Equal(t, "secret", password)

	_, err = prompt(in, "Again: ")
	assert.Error(t, err)
}
