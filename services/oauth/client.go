// Package oauth exchanges authorization codes and refresh tokens with Swit and Asana.
package oauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"asana-swit-backend/config"

	"golang.org/x/oauth2"
)

// ErrRefreshRejected means the provider refused the refresh token. The caller
// should send the user through the authorization-code flow again.
var ErrRefreshRejected = errors.New("refresh token rejected")

// ExchangeError is returned when the token endpoint rejects an authorization code.
type ExchangeError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *ExchangeError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s code exchange failed with status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s code exchange failed: %v", e.Provider, e.Err)
}

func (e *ExchangeError) Unwrap() error { return e.Err }

// Token is the part of a token response the service keeps.
type Token struct {
	AccessToken    string
	RefreshToken   string
	ProviderUserID string
	Expiry         time.Time
}

// Client talks to one provider's token endpoint.
type Client struct {
	provider   string
	cfg        *oauth2.Config
	httpClient *http.Client
	userID     func(*oauth2.Token) string
}

// NewClient builds a Client for an arbitrary provider.
func NewClient(provider string, cfg *oauth2.Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{provider: provider, cfg: cfg, httpClient: httpClient}
}

// NewSwitClient returns the Swit client configured from c.
func NewSwitClient(c *config.Config, httpClient *http.Client) *Client {
	return NewClient("swit", &oauth2.Config{
		ClientID:     c.SwitClientID,
		ClientSecret: c.SwitClientSecret,
		RedirectURL:  c.SwitRedirectURI,
		Scopes:       config.SwitScopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   c.SwitEndpoint("oauth/authorize"),
			TokenURL:  c.SwitEndpoint("oauth/token"),
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}, httpClient)
}

// NewAsanaClient returns the Asana client configured from c. The Asana user
// gid is read from the "data" object of the token response.
func NewAsanaClient(c *config.Config, httpClient *http.Client) *Client {
	client := NewClient("asana", &oauth2.Config{
		ClientID:     c.AsanaClientID,
		ClientSecret: c.AsanaClientSecret,
		RedirectURL:  c.AsanaRedirectURI,
		Scopes:       []string{"default"},
		Endpoint: oauth2.Endpoint{
			AuthURL:   c.AsanaAuthURL,
			TokenURL:  c.AsanaTokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}, httpClient)
	client.userID = asanaUserGID
	return client
}

// Provider returns the provider name used in errors and logs.
func (c *Client) Provider() string { return c.provider }

// AuthCodeURL returns the consent URL carrying state.
func (c *Client) AuthCodeURL(state string) string {
	return c.cfg.AuthCodeURL(state)
}

// ExchangeCode trades an authorization code for tokens.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*Token, error) {
	if code == "" {
		return nil, &ExchangeError{Provider: c.provider, Err: errors.New("empty authorization code")}
	}
	tok, err := c.cfg.Exchange(c.context(ctx), code)
	if err != nil {
		exErr := &ExchangeError{Provider: c.provider, Err: err}
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.Response != nil {
			exErr.StatusCode = re.Response.StatusCode
		}
		return nil, exErr
	}
	return c.convert(tok), nil
}

// Refresh trades a refresh token for a new access token. When the provider
// does not rotate refresh tokens the old one is returned.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*Token, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("%s: %w: no refresh token stored", c.provider, ErrRefreshRejected)
	}
	src := c.cfg.TokenSource(c.context(ctx), &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		if rejected(err) {
			return nil, fmt.Errorf("%s: %w: %v", c.provider, ErrRefreshRejected, err)
		}
		return nil, fmt.Errorf("%s refresh: %w", c.provider, err)
	}
	out := c.convert(tok)
	if out.RefreshToken == "" {
		out.RefreshToken = refreshToken
	}
	return out, nil
}

// rejected reports whether the token endpoint refused the grant itself.
// Server errors and timeouts are not a verdict on the refresh token.
func rejected(err error) bool {
	var re *oauth2.RetrieveError
	if !errors.As(err, &re) {
		return false
	}
	if re.ErrorCode == "invalid_grant" {
		return true
	}
	if re.Response == nil {
		return false
	}
	return re.Response.StatusCode == http.StatusBadRequest || re.Response.StatusCode == http.StatusUnauthorized
}

func (c *Client) context(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}

func (c *Client) convert(tok *oauth2.Token) *Token {
	out := &Token{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
	}
	if c.userID != nil {
		out.ProviderUserID = c.userID(tok)
	}
	return out
}

// asanaUserGID достаёт data.gid из ответа токен-эндпоинта Asana.
func asanaUserGID(tok *oauth2.Token) string {
	data, ok := tok.Extra("data").(map[string]interface{})
	if !ok {
		return ""
	}
	gid, _ := data["gid"].(string)
	return gid
}
