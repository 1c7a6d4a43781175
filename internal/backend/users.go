package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/Tuhin-ninja/the-freelancer-frontend-sub001/internal/domain"
)

// SearchUsers handles GET /api/auth/public/users/search?handle=
func (c *Client) SearchUsers(ctx context.Context, handle string) ([]*domain.User, error) {
	query := url.Values{}
	query.Set("handle", handle)

	var raw json.RawMessage
	if err := c.authorized(ctx, http.MethodGet, "/api/auth/public/users/search", query, nil, &raw); err != nil {
		return nil, err
	}
	payloads, err := decodeList[domain.UserPayload](raw)
	if err != nil {
		return nil, err
	}

	users := make([]*domain.User, 0, len(payloads))
	for _, p := range payloads {
		if u, err := p.ToUser(); err == nil {
			users = append(users, u)
		}
	}
	return users, nil
}

// GetUser handles GET /api/auth/public/users/{id}
func (c *Client) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	var resp domain.UserPayload
	if err := c.authorized(ctx, http.MethodGet, fmt.Sprintf("/api/auth/public/users/%d", id), nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.ToUser()
}
