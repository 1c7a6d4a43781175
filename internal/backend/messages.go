package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Tuhin-ninja/the-freelancer-frontend-sub001/internal/domain"
	"github.com/Tuhin-ninja/the-freelancer-frontend-sub001/pkg/logger"
)

// RecentConversations handles GET /api/direct-messages/recent
func (c *Client) RecentConversations(ctx context.Context) ([]*domain.ConversationSummary, error) {
	var raw json.RawMessage
	if err := c.authorized(ctx, http.MethodGet, "/api/direct-messages/recent", nil, nil, &raw); err != nil {
		return nil, err
	}
	return decodeList[domain.ConversationSummary](raw)
}

// ConversationMessages handles GET /api/direct-messages/conversations/{otherUserId}.
// Messages are returned in backend order (newest first).
func (c *Client) ConversationMessages(ctx context.Context, otherUserID int64, page, size int) ([]*domain.Message, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("size", strconv.Itoa(size))

	var resp domain.MessagePage
	path := fmt.Sprintf("/api/direct-messages/conversations/%d", otherUserID)
	if err := c.authorized(ctx, http.MethodGet, path, query, nil, &resp); err != nil {
		return nil, err
	}

	items := resp.Items()
	messages := make([]*domain.Message, 0, len(items))
	for _, p := range items {
		if p == nil {
			continue
		}
		msg, err := p.ToMessage()
		if err != nil {
			logger.GetLogger().Warn().Err(err).Int64("other_user_id", otherUserID).Msg("skipping malformed message")
			continue
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// SendMessage handles POST /api/direct-messages
func (c *Client) SendMessage(ctx context.Context, req *domain.SendMessageRequest) (*domain.Message, error) {
	var resp domain.MessagePayload
	if err := c.authorized(ctx, http.MethodPost, "/api/direct-messages", nil, req, &resp); err != nil {
		return nil, err
	}
	return resp.ToMessage()
}
