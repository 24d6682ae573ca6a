package oauth

import (
	"time"

	"github.com/dgrijalva/jwt-go"
)

// AccessTokenExpired reports whether a JWT access token's exp claim is in the
// past. The signature is not checked; only the provider can judge validity.
// Opaque tokens and tokens without exp are never considered expired.
func AccessTokenExpired(token string, now time.Time) bool {
	if token == "" {
		return false
	}
	claims := &jwt.StandardClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return false
	}
	if claims.ExpiresAt == 0 {
		return false
	}
	return now.Unix() >= claims.ExpiresAt
}
