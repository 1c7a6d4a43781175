package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupBearerRouter(reached *bool, gotID *int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequireBearer())
	r.GET("/api/direct-messages/recent", func(c *gin.Context) {
		*reached = true
		*gotID = GetUserID(c)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func TestRequireBearer(t *testing.T) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"userId": 7}).
		SignedString([]byte("test-secret-key-for-testing-only-32b!"))
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantID     int64
	}{
		{"no header", "", http.StatusUnauthorized, 0},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, 0},
		{"empty token", "Bearer ", http.StatusUnauthorized, 0},
		{"opaque token", "Bearer opaque", http.StatusOK, 0},
		{"access token", "Bearer " + signed, http.StatusOK, 7},
		{"lowercase scheme", "bearer " + signed, http.StatusOK, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var reached bool
			var gotID int64
			r := setupBearerRouter(&reached, &gotID)

			req := httptest.NewRequest(http.MethodGet, "/api/direct-messages/recent", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantStatus == http.StatusOK, reached)
			assert.Equal(t, tt.wantID, gotID)
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
			}
		})
	}
}
