// Package swit sends messages through the Swit open API.
package swit

import (
	"context"
	"net/http"

	"asana-swit-backend/config"
	"asana-swit-backend/services/remote"
)

const service = "swit"

type messageRequest struct {
	ChannelID string `json:"channel_id"`
	Content   string `json:"content"`
	BodyType  string `json:"body_type"`
}

// Client calls the Swit API with a per-call access token.
type Client struct {
	cfg        *config.Config
	httpClient *http.Client
}

// NewClient creates a Client.
func NewClient(cfg *config.Config, httpClient *http.Client) *Client {
	return &Client{cfg: cfg, httpClient: httpClient}
}

// SendMessage posts a rich-text JSON string into channelID.
func (c *Client) SendMessage(ctx context.Context, token, channelID, content string) error {
	body := messageRequest{ChannelID: channelID, Content: content, BodyType: "json_string"}
	return remote.Do(ctx, c.httpClient, service, http.MethodPost, c.cfg.SwitEndpoint("v1/api/message.create"), token, body, nil)
}
