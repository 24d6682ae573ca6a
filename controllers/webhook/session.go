package webhook

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"asana-swit-backend/services/oauth"
	"asana-swit-backend/services/remote"
	"asana-swit-backend/services/tokenstore"
)

// ErrReauthorize means the user has to go through the consent flow again.
var ErrReauthorize = errors.New("reauthorization required")

// maxAttempts bounds remote calls per operation: the first try and one retry after a refresh.
const maxAttempts = 2

// tokenSession holds one provider's tokens for the duration of a request.
// It refreshes at most once.
type tokenSession struct {
	provider  string
	userID    string
	access    string
	refresh   string
	refreshed bool
	refresher Refresher
	persist   func(ctx context.Context, userID, accessToken, refreshToken string) error
	now       func() time.Time
}

// renew exchanges the refresh token and stores the result.
func (s *tokenSession) renew(ctx context.Context) error {
	if s.refreshed {
		return fmt.Errorf("%w: %s token rejected after refresh", ErrReauthorize, s.provider)
	}
	s.refreshed = true

	tok, err := s.refresher.Refresh(ctx, s.refresh)
	if err != nil {
		log.Printf("Не удалось обновить %s токен пользователя %s: %v", s.provider, s.userID, err)
		if errors.Is(err, oauth.ErrRefreshRejected) {
			// Отозванные токены больше не пригодны, очищаем запись.
			if perr := s.persist(ctx, s.userID, "", ""); perr != nil && !errors.Is(perr, tokenstore.ErrNotFound) {
				log.Printf("Не удалось очистить %s токены пользователя %s: %v", s.provider, s.userID, perr)
			}
			s.access, s.refresh = "", ""
		}
		return fmt.Errorf("%w: %v", ErrReauthorize, err)
	}

	if err := s.persist(ctx, s.userID, tok.AccessToken, tok.RefreshToken); err != nil {
		if errors.Is(err, tokenstore.ErrNotFound) {
			return fmt.Errorf("%w: user record missing", ErrReauthorize)
		}
		return fmt.Errorf("persist refreshed %s tokens: %w", s.provider, err)
	}
	s.access, s.refresh = tok.AccessToken, tok.RefreshToken
	return nil
}

// call runs fn with the session's access token: proactively refreshed when the
// JWT has expired, and retried once with a fresh token after a 401.
func call[T any](ctx context.Context, s *tokenSession, fn func(ctx context.Context, token string) (T, error)) (T, error) {
	var zero T
	if s.access == "" {
		return zero, fmt.Errorf("%w: no %s token", ErrReauthorize, s.provider)
	}
	if oauth.AccessTokenExpired(s.access, s.now()) {
		if err := s.renew(ctx); err != nil {
			return zero, err
		}
	}

	for attempt := 1; ; attempt++ {
		res, err := fn(ctx, s.access)
		if err == nil {
			return res, nil
		}
		if !errors.Is(err, remote.ErrUnauthorized) {
			return zero, err
		}
		if attempt == maxAttempts {
			return zero, fmt.Errorf("%w: %s rejected the refreshed token", ErrReauthorize, s.provider)
		}
		if err := s.renew(ctx); err != nil {
			return zero, err
		}
	}
}

// do is call for operations without a result.
func do(ctx context.Context, s *tokenSession, fn func(ctx context.Context, token string) error) error {
	_, err := call(ctx, s, func(ctx context.Context, token string) (struct{}, error) {
		return struct{}{}, fn(ctx, token)
	})
	return err
}
