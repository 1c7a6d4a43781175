package service

import (
	"context"
	"strconv"
	"sync"

	"github.com/Tuhin-ninja/the-freelancer-frontend-sub001/internal/common"
	"github.com/Tuhin-ninja/the-freelancer-frontend-sub001/internal/domain"
	"github.com/Tuhin-ninja/the-freelancer-frontend-sub001/pkg/logger"
	"golang.org/x/sync/singleflight"
)

// IdentityService resolves user ids into displayable profiles
type IdentityService interface {
	// ResolveUser never fails; unresolvable ids yield an "Unknown User" placeholder
	ResolveUser(ctx context.Context, id any) *domain.User
	Prime(users ...*domain.User)
	Reset()
}

type identityService struct {
	dir   UserDirectory
	cache map[int64]*domain.User
	group singleflight.Group
	mu    sync.RWMutex
}

// NewIdentityService creates a new IdentityService
func NewIdentityService(dir UserDirectory) IdentityService {
	return &identityService{
		dir:   dir,
		cache: make(map[int64]*domain.User),
	}
}

// ResolveUser normalizes id (scalar, array or object shapes) and returns the
// cached or freshly looked-up profile
func (s *identityService) ResolveUser(ctx context.Context, id any) *domain.User {
	userID, err := common.NormalizeInt64(id)
	if err != nil {
		logger.GetLogger().Warn().Err(err).Interface("id", id).Msg("cannot normalize user id")
		return domain.UnknownUser(0)
	}

	if u, ok := s.cached(userID); ok {
		return u
	}

	v, err, _ := s.group.Do(strconv.FormatInt(userID, 10), func() (any, error) {
		if u, ok := s.cached(userID); ok {
			return u, nil
		}
		u, err := s.dir.GetUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		if u.ID == 0 {
			u.ID = userID
		}
		s.store(u)
		return u, nil
	})
	if err != nil {
		logger.GetLogger().Warn().Err(err).Int64("user_id", userID).Msg("user lookup failed, using placeholder")
		return domain.UnknownUser(userID)
	}

	u := *v.(*domain.User)
	return &u
}

// Prime seeds the cache with profiles that arrived in other payloads.
// Existing entries are kept.
func (s *identityService) Prime(users ...*domain.User) {
	for _, u := range users {
		if u == nil || u.ID <= 0 || u.Placeholder {
			continue
		}
		s.store(u)
	}
}

// Reset drops every cached profile (full reload)
func (s *identityService) Reset() {
	s.mu.Lock()
	s.cache = make(map[int64]*domain.User)
	s.mu.Unlock()
}

func (s *identityService) cached(id int64) (*domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.cache[id]
	if !ok {
		return nil, false
	}
	out := *u
	return &out, true
}

// store is append-only: a cached profile is never replaced
func (s *identityService) store(u *domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cache[u.ID]; ok {
		return
	}
	cp := *u
	s.cache[u.ID] = &cp
}
