package jwt

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/Tuhin-ninja/the-freelancer-frontend-sub001/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// AccessClaims payload of the marketplace access token.
// The auth service has used both "userId" and "sub" for the user id.
type AccessClaims struct {
	jwt.RegisteredClaims
	UserID json.RawMessage `json:"userId,omitempty"`
	Email  string          `json:"email,omitempty"`
	Handle string          `json:"handle,omitempty"`
	Role   string          `json:"role,omitempty"`
}

// GetUserID returns the normalized user id, checking both formats
func (c *AccessClaims) GetUserID() (int64, error) {
	if len(c.UserID) > 0 {
		if id, err := common.NormalizeInt64(c.UserID); err == nil {
			return id, nil
		}
	}
	return common.NormalizeInt64(c.Subject)
}

// ExpiresWithin reports whether the token expires before now+d.
// Tokens without an exp claim never expire.
func (c *AccessClaims) ExpiresWithin(d time.Duration, now time.Time) bool {
	if c.ExpiresAt == nil {
		return false
	}
	return !c.ExpiresAt.After(now.Add(d))
}

// ParseUnverified decodes the claims of an access token without checking its
// signature. The client never holds the signing key; the backend remains the
// only verifier.
func ParseUnverified(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
