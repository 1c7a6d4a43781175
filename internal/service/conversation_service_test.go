package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Tuhin-ninja/the-freelancer-frontend-sub001/internal/common"
	"github.com/Tuhin-ninja/the-freelancer-frontend-sub001/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newConversationFixture() (*mockBackend, ConversationService) {
	backend := new(mockBackend)
	identity := NewIdentityService(backend)
	svc := NewConversationService(backend, identity, staticUser{user: me}, fixedNow(t0), 2)
	return backend, svc
}

func TestLoadConversations_KeepsBackendOrderAndResolves(t *testing.T) {
	backend, svc := newConversationFixture()

	backend.On("RecentConversations", mock.Anything).Return([]*domain.ConversationSummary{
		{UserID: rawID(`43`), UnreadCount: 1, LastMessage: &domain.MessagePayload{
			ID: rawID(`10`), SenderID: rawID(`43`), ReceiverID: rawID(`7`), Content: "newest",
		}},
		{UserID: rawID(`[42]`), UnreadCount: 0},
	}, nil)
	backend.On("GetUser", mock.Anything, int64(43)).Return(bob, nil)
	backend.On("GetUser", mock.Anything, int64(42)).Return(jane, nil)

	require.NoError(t, svc.LoadConversations(context.Background()))

	convs := svc.Conversations()
	require.Len(t, convs, 2)
	assert.Equal(t, domain.PersistedConversationID(43), convs[0].ID)
	assert.Equal(t, "newest", convs[0].Preview())
	assert.Equal(t, 1, convs[0].UnreadCount)
	other, ok := convs[1].OtherParticipant(me.ID)
	require.True(t, ok)
	assert.Equal(t, "Jane", other.Name)
}

func TestLoadConversations_EmbeddedProfileSkipsLookup(t *testing.T) {
	backend, svc := newConversationFixture()

	backend.On("RecentConversations", mock.Anything).Return([]*domain.ConversationSummary{
		{ConversationID: rawID(`3`), UserID: rawID(`42`), UserName: "Jane"},
	}, nil)

	require.NoError(t, svc.LoadConversations(context.Background()))

	convs := svc.Conversations()
	require.Len(t, convs, 1)
	assert.Equal(t, domain.PersistedConversationID(3), convs[0].ID)
	backend.AssertNotCalled(t, "GetUser", mock.Anything, mock.Anything)
}

func TestLoadConversations_LookupFailureDegrades(t *testing.T) {
	backend, svc := newConversationFixture()

	backend.On("RecentConversations", mock.Anything).Return([]*domain.ConversationSummary{
		{UserID: rawID(`42`)},
	}, nil)
	backend.On("GetUser", mock.Anything, int64(42)).Return(nil, common.ErrNotFound)

	require.NoError(t, svc.LoadConversations(context.Background()))

	conv := svc.Conversations()[0]
	other, ok := conv.OtherParticipant(me.ID)
	require.True(t, ok, "the participant id is still known, only the profile is missing")
	assert.Equal(t, domain.UnknownUserName, other.DisplayName())
}

func TestLoadConversations_FailureKeepsPreviousList(t *testing.T) {
	backend, svc := newConversationFixture()
	_, err := svc.StartConversation(jane)
	require.NoError(t, err)

	backend.On("RecentConversations", mock.Anything).Return(nil, errors.New("boom"))

	assert.Error(t, svc.LoadConversations(context.Background()))
	assert.Len(t, svc.Conversations(), 1)
}

func TestSelect_UnusableConversationRejected(t *testing.T) {
	backend, svc := newConversationFixture()

	backend.On("RecentConversations", mock.Anything).Return([]*domain.ConversationSummary{
		{ConversationID: rawID(`5`), UserID: rawID(`7`), UserName: "Me again"},
		{ConversationID: rawID(`6`), UnreadCount: 1},
	}, nil)
	require.NoError(t, svc.LoadConversations(context.Background()))

	for _, conv := range svc.Conversations() {
		_, err := svc.Select(conv.ID)
		assert.ErrorIs(t, err, common.ErrConversationUnusable, "conversation %s", conv.ID)
	}
	_, ok := svc.Selected()
	assert.False(t, ok)
}

func TestSelect_ClearsUnreadBadge(t *testing.T) {
	backend, svc := newConversationFixture()
	backend.On("RecentConversations", mock.Anything).Return([]*domain.ConversationSummary{
		{ConversationID: rawID(`3`), UserID: rawID(`42`), UserName: "Jane", UnreadCount: 4},
	}, nil)
	require.NoError(t, svc.LoadConversations(context.Background()))

	conv, err := svc.Select(domain.PersistedConversationID(3))
	require.NoError(t, err)
	assert.Equal(t, 0, conv.UnreadCount)

	_, err = svc.Select(domain.PersistedConversationID(99))
	assert.ErrorIs(t, err, common.ErrConversationNotFound)
}

func TestStartConversation_CreatesLocalAtHead(t *testing.T) {
	backend, svc := newConversationFixture()
	backend.On("RecentConversations", mock.Anything).Return([]*domain.ConversationSummary{
		{ConversationID: rawID(`3`), UserID: rawID(`43`), UserName: "Bob"},
	}, nil)
	require.NoError(t, svc.LoadConversations(context.Background()))

	conv, err := svc.StartConversation(jane)
	require.NoError(t, err)

	assert.True(t, conv.ID.IsLocal())
	assert.Equal(t, -t0.UnixMilli(), conv.ID.Int64())
	convs := svc.Conversations()
	require.Len(t, convs, 2)
	assert.Equal(t, conv.ID, convs[0].ID)
	selected, ok := svc.Selected()
	require.True(t, ok)
	assert.Equal(t, conv.ID, selected.ID)
	backend.AssertNumberOfCalls(t, "RecentConversations", 1)
}

func TestStartConversation_ReusesExisting(t *testing.T) {
	backend, svc := newConversationFixture()
	backend.On("RecentConversations", mock.Anything).Return([]*domain.ConversationSummary{
		{ConversationID: rawID(`3`), UserID: rawID(`42`), UserName: "Jane"},
	}, nil)
	require.NoError(t, svc.LoadConversations(context.Background()))

	first, err := svc.StartConversation(jane)
	require.NoError(t, err)
	second, err := svc.StartConversation(jane)
	require.NoError(t, err)

	assert.Equal(t, domain.PersistedConversationID(3), first.ID)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, svc.Conversations(), 1)
}

func TestStartConversation_Rejections(t *testing.T) {
	_, svc := newConversationFixture()

	_, err := svc.StartConversation(nil)
	assert.ErrorIs(t, err, common.ErrInvalidID)

	_, err = svc.StartConversation(me)
	assert.ErrorIs(t, err, common.ErrConversationUnusable)
}

func TestStartConversation_DistinctLocalIDs(t *testing.T) {
	_, svc := newConversationFixture()

	a, err := svc.StartConversation(jane)
	require.NoError(t, err)
	b, err := svc.StartConversation(bob)
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.True(t, b.ID.IsLocal())
}

func TestApplySentMessage_UpdatesLastMessageOnly(t *testing.T) {
	backend, svc := newConversationFixture()
	backend.On("RecentConversations", mock.Anything).Return([]*domain.ConversationSummary{
		{ConversationID: rawID(`3`), UserID: rawID(`42`), UserName: "Jane", UnreadCount: 2},
		{ConversationID: rawID(`42`), UserID: rawID(`43`), UserName: "Bob"},
	}, nil)
	require.NoError(t, svc.LoadConversations(context.Background()))

	msg := serverMessage(100, me.ID, jane.ID, "hello", t0)
	msg.ConversationID = domain.PersistedConversationID(3)
	require.True(t, svc.ApplySentMessage(msg))

	conv, ok := svc.Get(domain.PersistedConversationID(3))
	require.True(t, ok)
	assert.Equal(t, "hello", conv.Preview())
	assert.Equal(t, 2, conv.UnreadCount)

	bobConv, _ := svc.Get(domain.PersistedConversationID(42))
	assert.Empty(t, bobConv.Preview())
}

func TestApplySentMessage_LocalConversationByReceiver(t *testing.T) {
	_, svc := newConversationFixture()
	local, err := svc.StartConversation(jane)
	require.NoError(t, err)

	msg := serverMessage(4821, me.ID, jane.ID, "Hi Jane", t0)
	msg.ConversationID = domain.PersistedConversationID(900)

	require.True(t, svc.ApplySentMessage(msg))
	conv, ok := svc.Get(local.ID)
	require.True(t, ok)
	assert.Equal(t, "Hi Jane", conv.Preview())
}

func TestLoadConversations_LocalSelectionMovesToPersisted(t *testing.T) {
	backend, svc := newConversationFixture()
	local, err := svc.StartConversation(jane)
	require.NoError(t, err)
	require.True(t, local.ID.IsLocal())

	backend.On("RecentConversations", mock.Anything).Return([]*domain.ConversationSummary{
		{ConversationID: rawID(`3`), UserID: rawID(`42`), UserName: "Jane"},
	}, nil)
	require.NoError(t, svc.LoadConversations(context.Background()))

	selected, ok := svc.Selected()
	require.True(t, ok)
	assert.Equal(t, domain.PersistedConversationID(3), selected.ID)
	assert.Len(t, svc.Conversations(), 1)
}

func TestLoadConversations_NilSummarySkipped(t *testing.T) {
	backend, svc := newConversationFixture()

	backend.On("RecentConversations", mock.Anything).Return([]*domain.ConversationSummary{
		{ConversationID: rawID(`3`), UserID: rawID(`42`), UserName: "Jane"},
		nil,
	}, nil)

	require.NotPanics(t, func() {
		require.NoError(t, svc.LoadConversations(context.Background()))
	})
	require.Len(t, svc.Conversations(), 1)
}

func TestLoadConversations_KeepsLocalWithoutBackendCounterpart(t *testing.T) {
	backend, svc := newConversationFixture()
	local, err := svc.StartConversation(bob)
	require.NoError(t, err)

	backend.On("RecentConversations", mock.Anything).Return([]*domain.ConversationSummary{
		{ConversationID: rawID(`3`), UserID: rawID(`42`), UserName: "Jane"},
	}, nil)
	require.NoError(t, svc.LoadConversations(context.Background()))

	convs := svc.Conversations()
	require.Len(t, convs, 2)
	assert.Equal(t, local.ID, convs[0].ID, "local conversation stays at the head")
	assert.Equal(t, domain.PersistedConversationID(3), convs[1].ID)

	selected, ok := svc.Selected()
	require.True(t, ok)
	assert.Equal(t, local.ID, selected.ID)
}
