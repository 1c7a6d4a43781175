// Package session holds the process-wide sign-in state: tokens and the current
// user. It is populated at login or restored from the persisted store at
// startup, and cleared at logout or on irrecoverable auth failure. Every
// consumer reads through a Manager instead of touching the store.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/Tuhin-ninja/the-freelancer-frontend-sub001/internal/common"
	"github.com/Tuhin-ninja/the-freelancer-frontend-sub001/internal/domain"
	"github.com/Tuhin-ninja/the-freelancer-frontend-sub001/pkg/jwt"
	"github.com/Tuhin-ninja/the-freelancer-frontend-sub001/pkg/logger"
)

// Persisted keys
const (
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
	KeyUser         = "user"
)

// Session signed-in state
type Session struct {
	User         *domain.User `json:"user,omitempty"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

// Manager single accessor for session state
type Manager struct {
	store     Store
	cur       *Session
	onExpired []func()
	mu        sync.RWMutex
}

// NewManager creates a Manager backed by store
func NewManager(store Store) *Manager {
	return &Manager{store: store}
}

// Restore loads a previously persisted session. A missing access token leaves
// the manager signed out without error.
func (m *Manager) Restore(ctx context.Context) error {
	access, err := m.store.Get(ctx, KeyAccessToken)
	if errors.Is(err, common.ErrNotFound) || access == "" {
		m.set(nil)
		return nil
	}
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}

	s := &Session{AccessToken: access}
	if refresh, err := m.store.Get(ctx, KeyRefreshToken); err == nil {
		s.RefreshToken = refresh
	}
	if raw, err := m.store.Get(ctx, KeyUser); err == nil && raw != "" {
		var u domain.User
		if err := json.Unmarshal([]byte(raw), &u); err == nil {
			s.User = &u
		}
	}
	if s.User == nil {
		s.User = userFromToken(access)
	}

	m.set(s)
	logger.GetLogger().Debug().Bool("has_user", s.User != nil).Msg("session restored")
	return nil
}

// Start stores a fresh session (after login)
func (m *Manager) Start(ctx context.Context, s Session) error {
	if s.AccessToken == "" {
		return common.ErrNoSession
	}
	if s.User == nil {
		s.User = userFromToken(s.AccessToken)
	}
	if err := m.persist(ctx, &s); err != nil {
		return err
	}
	m.set(&s)
	return nil
}

// Current returns a copy of the session
func (m *Manager) Current() (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.cur == nil {
		return Session{}, false
	}
	out := *m.cur
	if m.cur.User != nil {
		u := *m.cur.User
		out.User = &u
	}
	return out, true
}

// AccessToken returns the bearer token, empty when signed out
func (m *Manager) AccessToken() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.cur == nil {
		return ""
	}
	return m.cur.AccessToken
}

// RefreshToken returns the refresh token, empty when signed out
func (m *Manager) RefreshToken() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.cur == nil {
		return ""
	}
	return m.cur.RefreshToken
}

// CurrentUser returns the signed-in user
func (m *Manager) CurrentUser() (*domain.User, error) {
	s, ok := m.Current()
	if !ok {
		return nil, common.ErrNoSession
	}
	if s.User == nil || s.User.ID <= 0 {
		return nil, fmt.Errorf("%w: session has no user id", common.ErrInvalidID)
	}
	return s.User, nil
}

// UpdateTokens replaces the access token and, when non-empty, the refresh token
func (m *Manager) UpdateTokens(ctx context.Context, access, refresh string) error {
	m.mu.Lock()
	if m.cur == nil {
		m.mu.Unlock()
		return common.ErrNoSession
	}
	next := *m.cur
	next.AccessToken = access
	if refresh != "" {
		next.RefreshToken = refresh
	}
	m.cur = &next
	m.mu.Unlock()

	return m.persist(ctx, &next)
}

// UpdateProfilePicture changes the signed-in user's own picture, the only
// profile field the client may mutate.
func (m *Manager) UpdateProfilePicture(ctx context.Context, url string) error {
	m.mu.Lock()
	if m.cur == nil || m.cur.User == nil {
		m.mu.Unlock()
		return common.ErrNoSession
	}
	next := *m.cur
	u := *m.cur.User
	u.ProfilePictureURL = url
	next.User = &u
	m.cur = &next
	m.mu.Unlock()

	return m.persist(ctx, &next)
}

// Clear signs out and wipes persisted state
func (m *Manager) Clear(ctx context.Context) error {
	m.set(nil)
	return m.store.Delete(ctx, KeyAccessToken, KeyRefreshToken, KeyUser)
}

// OnExpired registers a callback fired by Expire (the login redirect)
func (m *Manager) OnExpired(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onExpired = append(m.onExpired, fn)
}

// Expire clears the session after an irrecoverable auth failure and notifies listeners
func (m *Manager) Expire(ctx context.Context) {
	if err := m.Clear(ctx); err != nil {
		logger.GetLogger().Warn().Err(err).Msg("failed to clear persisted session")
	}
	m.mu.RLock()
	hooks := append([]func(){}, m.onExpired...)
	m.mu.RUnlock()
	for _, fn := range hooks {
		fn()
	}
}

func (m *Manager) set(s *Session) {
	m.mu.Lock()
	m.cur = s
	m.mu.Unlock()
}

func (m *Manager) persist(ctx context.Context, s *Session) error {
	if err := m.store.Put(ctx, KeyAccessToken, s.AccessToken); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	if s.RefreshToken != "" {
		if err := m.store.Put(ctx, KeyRefreshToken, s.RefreshToken); err != nil {
			return fmt.Errorf("persist session: %w", err)
		}
	}
	if s.User != nil {
		raw, err := json.Marshal(s.User)
		if err != nil {
			return err
		}
		if err := m.store.Put(ctx, KeyUser, string(raw)); err != nil {
			return fmt.Errorf("persist session: %w", err)
		}
	}
	return nil
}

func userFromToken(token string) *domain.User {
	claims, err := jwt.ParseUnverified(token)
	if err != nil {
		return nil
	}
	id, err := claims.GetUserID()
	if err != nil {
		return nil
	}
	return &domain.User{ID: id, Handle: claims.Handle, Role: domain.Role(claims.Role)}
}
