package backend

import (
	"context"
	"errors"
	"net/http"

	"github.com/Tuhin-ninja/the-freelancer-frontend-sub001/internal/domain"
	"github.com/Tuhin-ninja/the-freelancer-frontend-sub001/internal/session"
)

// LoginRequest body of POST /api/auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest body of POST /api/auth/refresh
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// TokenResponse token pair returned by login and refresh
type TokenResponse struct {
	User         *domain.UserPayload `json:"user,omitempty"`
	AccessToken  string              `json:"accessToken"`
	RefreshToken string              `json:"refreshToken"`
}

// Login exchanges credentials for a session and starts it
func (c *Client) Login(ctx context.Context, email, password string) (*session.Session, error) {
	var resp TokenResponse
	if err := c.send(ctx, http.MethodPost, "/api/auth/login", nil, LoginRequest{Email: email, Password: password}, &resp, ""); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, errors.New("login response has no access token")
	}

	s := session.Session{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken}
	if resp.User != nil {
		if u, err := resp.User.ToUser(); err == nil {
			s.User = u
		}
	}
	if err := c.session.Start(ctx, s); err != nil {
		return nil, err
	}
	current, _ := c.session.Current()
	return &current, nil
}

// Logout clears the local session; the backend keeps no client state to revoke
func (c *Client) Logout(ctx context.Context) error {
	return c.session.Clear(ctx)
}
