package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Tuhin-ninja/the-freelancer-frontend-sub001/internal/common"
	"github.com/Tuhin-ninja/the-freelancer-frontend-sub001/pkg/jwt"
)

// BearerToken returns the token of an "Authorization: Bearer <token>" header
func BearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// RequireBearer rejects requests without a bearer token before they reach the
// backend. The token is not verified here; the backend owns the signing key.
func RequireBearer() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := BearerToken(c)
		if !ok {
			common.ErrorResponse(c, http.StatusUnauthorized, "Missing bearer token", nil)
			return
		}

		// best effort: lets the request log and per-user rate limit name the caller
		if claims, err := jwt.ParseUnverified(token); err == nil {
			if id, err := claims.GetUserID(); err == nil {
				c.Set("userID", id)
			}
		}

		c.Next()
	}
}

// GetUserID returns the caller id taken from the bearer token, or 0
func GetUserID(c *gin.Context) int64 {
	v, exists := c.Get("userID")
	if !exists {
		return 0
	}
	if id, ok := v.(int64); ok {
		return id
	}
	return 0
}
