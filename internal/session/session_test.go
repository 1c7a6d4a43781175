package session

import (
	"context"
	"testing"

	"github.com/Tuhin-ninja/the-freelancer-frontend-sub001/internal/common"
	"github.com/Tuhin-ninja/the-freelancer-frontend-sub001/internal/domain"
	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestStore(t *testing.T) Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every pooled connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)
	store, err := NewGormStore(db)
	require.NoError(t, err)
	return store
}

func testToken(t *testing.T, userID int64) string {
	t.Helper()
	token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, gojwt.MapClaims{"userId": userID}).
		SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestStore_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)

	require.NoError(t, store.Put(ctx, "k", "v1"))
	require.NoError(t, store.Put(ctx, "k", "v2"))
	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v2", got)

	require.NoError(t, store.Delete(ctx, "k"))
	_, err = store.Get(ctx, "k")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestManager_RestoreAcrossInstances(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	first := NewManager(store)
	require.NoError(t, first.Start(ctx, Session{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		User:         &domain.User{ID: 7, Name: "Me"},
	}))

	second := NewManager(store)
	require.NoError(t, second.Restore(ctx))

	s, ok := second.Current()
	require.True(t, ok)
	assert.Equal(t, "access-1", s.AccessToken)
	assert.Equal(t, "refresh-1", s.RefreshToken)
	assert.Equal(t, int64(7), s.User.ID)
}

func TestManager_RestoreWithoutSession(t *testing.T) {
	m := NewManager(newTestStore(t))
	require.NoError(t, m.Restore(context.Background()))

	assert.Empty(t, m.AccessToken())
	_, err := m.CurrentUser()
	assert.ErrorIs(t, err, common.ErrNoSession)
}

func TestManager_UserDerivedFromToken(t *testing.T) {
	m := NewManager(newTestStore(t))
	require.NoError(t, m.Start(context.Background(), Session{AccessToken: testToken(t, 7)}))

	u, err := m.CurrentUser()
	require.NoError(t, err)
	assert.Equal(t, int64(7), u.ID)
}

func TestManager_UpdateTokensKeepsRefreshWhenEmpty(t *testing.T) {
	ctx := context.Background()
	m := NewManager(newTestStore(t))
	require.NoError(t, m.Start(ctx, Session{AccessToken: "a1", RefreshToken: "r1", User: &domain.User{ID: 7}}))

	require.NoError(t, m.UpdateTokens(ctx, "a2", ""))
	assert.Equal(t, "a2", m.AccessToken())
	assert.Equal(t, "r1", m.RefreshToken())
}

func TestManager_UpdateProfilePicture(t *testing.T) {
	ctx := context.Background()
	m := NewManager(newTestStore(t))
	require.NoError(t, m.Start(ctx, Session{AccessToken: "a1", User: &domain.User{ID: 7}}))

	require.NoError(t, m.UpdateProfilePicture(ctx, "https://cdn.example.com/me.png"))
	u, err := m.CurrentUser()
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/me.png", u.ProfilePictureURL)
}

func TestManager_ExpireClearsAndNotifies(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	m := NewManager(store)
	require.NoError(t, m.Start(ctx, Session{AccessToken: "a1", RefreshToken: "r1", User: &domain.User{ID: 7}}))

	called := 0
	m.OnExpired(func() { called++ })
	m.Expire(ctx)

	assert.Equal(t, 1, called)
	assert.Empty(t, m.AccessToken())
	_, err := store.Get(ctx, KeyAccessToken)
	assert.ErrorIs(t, err, common.ErrNotFound)
}
