package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/Tuhin-ninja/the-freelancer-frontend-sub001/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestResolveUser_NormalizesShapes(t *testing.T) {
	backend := new(mockBackend)
	svc := NewIdentityService(backend)

	backend.On("GetUser", mock.Anything, int64(42)).Return(&domain.User{ID: 42, Name: "Jane"}, nil).Once()

	for _, id := range []any{42, []any{42}, map[string]any{"a": 42}, json.RawMessage(`"42"`), "user-42"} {
		u := svc.ResolveUser(context.Background(), id)
		assert.Equal(t, "Jane", u.Name, "id %v", id)
		assert.Equal(t, int64(42), u.ID)
	}
	// cached after the first lookup
	backend.AssertNumberOfCalls(t, "GetUser", 1)
}

func TestResolveUser_FallbackNotCached(t *testing.T) {
	backend := new(mockBackend)
	svc := NewIdentityService(backend)

	backend.On("GetUser", mock.Anything, int64(42)).Return(nil, errors.New("network down")).Once()
	backend.On("GetUser", mock.Anything, int64(42)).Return(&domain.User{ID: 42, Name: "Jane"}, nil).Once()

	first := svc.ResolveUser(context.Background(), 42)
	assert.Equal(t, domain.UnknownUserName, first.Name)
	assert.Equal(t, int64(42), first.ID)
	assert.True(t, first.Placeholder)

	second := svc.ResolveUser(context.Background(), 42)
	assert.Equal(t, "Jane", second.Name)
	backend.AssertExpectations(t)
}

func TestResolveUser_UnnormalizableID(t *testing.T) {
	backend := new(mockBackend)
	svc := NewIdentityService(backend)

	u := svc.ResolveUser(context.Background(), map[string]any{"name": "x"})

	assert.Equal(t, domain.UnknownUserName, u.Name)
	backend.AssertNotCalled(t, "GetUser", mock.Anything, mock.Anything)
}

func TestResolveUser_ConcurrentLookupsShareCache(t *testing.T) {
	backend := new(mockBackend)
	svc := NewIdentityService(backend)

	backend.On("GetUser", mock.Anything, int64(42)).Return(&domain.User{ID: 42, Name: "Jane"}, nil)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, "Jane", svc.ResolveUser(context.Background(), 42).Name)
		}()
	}
	wg.Wait()

	assert.Equal(t, "Jane", svc.ResolveUser(context.Background(), 42).Name)
}

func TestPrime_SeedsCacheWithoutOverwriting(t *testing.T) {
	backend := new(mockBackend)
	svc := NewIdentityService(backend)

	svc.Prime(&domain.User{ID: 42, Name: "Jane"}, nil, domain.UnknownUser(9))
	svc.Prime(&domain.User{ID: 42, Name: "Someone Else"})

	assert.Equal(t, "Jane", svc.ResolveUser(context.Background(), 42).Name)
	backend.AssertNotCalled(t, "GetUser", mock.Anything, mock.Anything)
}

func TestReset_ClearsCache(t *testing.T) {
	backend := new(mockBackend)
	svc := NewIdentityService(backend)

	svc.Prime(&domain.User{ID: 42, Name: "Jane"})
	svc.Reset()
	backend.On("GetUser", mock.Anything, int64(42)).Return(&domain.User{ID: 42, Name: "Jane Doe"}, nil).Once()

	assert.Equal(t, "Jane Doe", svc.ResolveUser(context.Background(), 42).Name)
	backend.AssertExpectations(t)
}
