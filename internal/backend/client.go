// Package backend is the JSON-over-HTTP client for the marketplace API.
// Every call carries the session's bearer token; a 401 triggers one token
// refresh and one retry, and a failed refresh expires the session.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Tuhin-ninja/the-freelancer-frontend-sub001/internal/common"
	"github.com/Tuhin-ninja/the-freelancer-frontend-sub001/internal/session"
	"github.com/Tuhin-ninja/the-freelancer-frontend-sub001/pkg/logger"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

const maxErrorBody = 64 << 10

// Options client settings
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client marketplace API client
type Client struct {
	baseURL      string
	httpClient   *http.Client
	session      *session.Manager
	refreshGroup singleflight.Group
}

// NewClient creates a new Client
func NewClient(opts Options, sess *session.Manager) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: httpClient,
		session:    sess,
	}
}

// APIError non-2xx backend response
type APIError struct {
	Code    string
	Message string
	Status  int
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend %d", e.Status)
}

// Is maps HTTP statuses onto the shared sentinel errors
func (e *APIError) Is(target error) bool {
	switch target {
	case common.ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case common.ErrForbidden:
		return e.Status == http.StatusForbidden
	case common.ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

// authorized performs an authenticated request with the refresh-once policy
func (c *Client) authorized(ctx context.Context, method, path string, query url.Values, body, out any) error {
	token := c.session.AccessToken()
	if token == "" {
		return common.ErrNoSession
	}

	err := c.send(ctx, method, path, query, body, out, token)
	if !errors.Is(err, common.ErrUnauthorized) {
		return err
	}

	fresh, err := c.refresh(ctx, token)
	if err != nil {
		return err
	}
	return c.send(ctx, method, path, query, body, out, fresh)
}

// refresh exchanges the refresh token once for all concurrent callers that
// saw a 401 with the same stale token.
func (c *Client) refresh(ctx context.Context, stale string) (string, error) {
	v, err, _ := c.refreshGroup.Do("refresh", func() (interface{}, error) {
		if cur := c.session.AccessToken(); cur != "" && cur != stale {
			return cur, nil
		}

		log := logger.GetLogger()
		refreshToken := c.session.RefreshToken()
		if refreshToken == "" {
			log.Warn().Msg("access token rejected and no refresh token stored")
			c.session.Expire(ctx)
			return "", common.ErrSessionExpired
		}

		var resp TokenResponse
		err := c.send(ctx, http.MethodPost, "/api/auth/refresh", nil, RefreshRequest{RefreshToken: refreshToken}, &resp, "")
		if err == nil && resp.AccessToken == "" {
			err = errors.New("refresh response has no access token")
		}
		if err != nil {
			log.Warn().Err(err).Msg("token refresh failed, clearing session")
			c.session.Expire(ctx)
			return "", fmt.Errorf("%w: %v", common.ErrSessionExpired, err)
		}

		if err := c.session.UpdateTokens(ctx, resp.AccessToken, resp.RefreshToken); err != nil {
			log.Warn().Err(err).Msg("failed to persist refreshed tokens")
		}
		log.Debug().Msg("access token refreshed")
		return resp.AccessToken, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, body, out any, token string) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return err
	}
	requestID := uuid.New().String()[:8]
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	log := logger.WithRequestID(requestID)
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("method", method).Str("path", path).Msg("backend request failed")
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("backend")

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var envelope struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
		Code    string          `json:"code"`
	}
	if json.Unmarshal(data, &envelope) == nil {
		apiErr.Message = envelope.Message
		apiErr.Code = envelope.Code
		var nested struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if len(envelope.Error) > 0 {
			if json.Unmarshal(envelope.Error, &nested) == nil {
				if nested.Code != "" {
					apiErr.Code = nested.Code
				}
				if nested.Message != "" {
					apiErr.Message = nested.Message
				}
			} else {
				var s string
				if json.Unmarshal(envelope.Error, &s) == nil && apiErr.Message == "" {
					apiErr.Message = s
				}
			}
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}

// decodeList accepts either a bare array or a paginated {"content": [...]} object.
// null elements are dropped.
func decodeList[T any](raw json.RawMessage) ([]*T, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var items []*T
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, err
		}
	} else {
		var page struct {
			Content []*T `json:"content"`
			Data    []*T `json:"data"`
		}
		if err := json.Unmarshal(raw, &page); err != nil {
			return nil, err
		}
		items = page.Content
		if len(items) == 0 {
			items = page.Data
		}
	}

	out := items[:0]
	for _, item := range items {
		if item != nil {
			out = append(out, item)
		}
	}
	return out, nil
}
