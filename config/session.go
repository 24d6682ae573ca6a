package config

import (
	"crypto/sha256"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
)

// NewSessionStore returns the signed cookie store that carries the OAuth state
// from the Swit callback to the Asana callback. Without SESSION_KEY the key is
// derived from the signing key.
func NewSessionStore(c *Config) *sessions.CookieStore {
	key := []byte(c.SessionKey)
	if len(key) == 0 {
		sum := sha256.Sum256([]byte("session:" + c.SigningKey))
		key = sum[:]
	}

	store := sessions.NewCookieStore(key)
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   c.SessionCookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
	store.MaxAge(int(c.SessionMaxAge / time.Second))
	return store
}
