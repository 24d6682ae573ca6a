// Package authentication serves the Swit app-install entry point and both OAuth callbacks.
package authentication

import (
	"context"

	"asana-swit-backend/config"
	"asana-swit-backend/models"
	"asana-swit-backend/services/oauth"

	"github.com/gorilla/sessions"
)

const (
	// sessionName is the cookie that binds the Asana callback to the Swit callback.
	sessionName = "asana_oauth"
	stateKey    = "state"
)

// CodeExchanger is one provider's OAuth client.
type CodeExchanger interface {
	AuthCodeURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*oauth.Token, error)
}

// TokenWriter persists tokens obtained in the callbacks.
type TokenWriter interface {
	UpsertSwitTokens(ctx context.Context, userID, accessToken, refreshToken string) error
	UpdateAsanaTokens(ctx context.Context, userID, asanaUserID, accessToken, refreshToken string) error
}

// Resumer continues the action that started the consent flow.
type Resumer interface {
	Resume(ctx context.Context, state models.OAuthState) error
}

// Handler groups the OAuth endpoints.
type Handler struct {
	cfg      *config.Config
	swit     CodeExchanger
	asana    CodeExchanger
	store    TokenWriter
	resumer  Resumer
	sessions sessions.Store
}

// NewHandler creates a Handler.
func NewHandler(cfg *config.Config, swit, asana CodeExchanger, store TokenWriter, resumer Resumer, sessionStore sessions.Store) *Handler {
	return &Handler{cfg: cfg, swit: swit, asana: asana, store: store, resumer: resumer, sessions: sessionStore}
}
