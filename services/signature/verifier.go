// Package signature verifies that webhook requests were sent by Swit.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strconv"
	"time"
)

const (
	// TimestampHeader carries the request time in epoch seconds.
	TimestampHeader = "x-swit-request-timestamp"
	// SignatureHeader carries the versioned signature.
	SignatureHeader = "x-swit-signature"

	// Version prefixes every signature.
	Version = "s0="
	// DefaultMaxDelay is the allowed clock difference in either direction.
	DefaultMaxDelay = 5 * time.Minute
)

// Verifier checks HMAC-SHA256 signatures over "swit:<timestamp>:<body>".
type Verifier struct {
	key      []byte
	maxDelay time.Duration
	now      func() time.Time
}

// NewVerifier creates a Verifier. A non-positive maxDelay falls back to DefaultMaxDelay.
func NewVerifier(signingKey []byte, maxDelay time.Duration) *Verifier {
	if maxDelay <= 0 {
		maxDelay = DefaultMaxDelay
	}
	return &Verifier{key: signingKey, maxDelay: maxDelay, now: time.Now}
}

// WithClock replaces the time source, for tests.
func (v *Verifier) WithClock(now func() time.Time) *Verifier {
	v.now = now
	return v
}

// Sign returns the signature Swit would send for body at timestamp.
func (v *Verifier) Sign(body []byte, timestamp string) string {
	mac := hmac.New(sha256.New, v.key)
	mac.Write([]byte("swit:" + timestamp + ":"))
	mac.Write(body)
	return Version + hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether signature matches the raw body bytes and the
// timestamp falls inside the allowed window. It never panics on bad input.
func (v *Verifier) Verify(body []byte, timestamp, signature string) bool {
	if timestamp == "" || signature == "" {
		return false
	}
	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return false
	}
	delta := v.now().Unix() - ts
	if delta < 0 {
		delta = -delta
	}
	if delta > int64(v.maxDelay/time.Second) {
		return false
	}
	return hmac.Equal([]byte(v.Sign(body, timestamp)), []byte(signature))
}

// VerifyRequest reads the Swit headers and verifies body against them.
func (v *Verifier) VerifyRequest(h http.Header, body []byte) bool {
	return v.Verify(body, h.Get(TimestampHeader), h.Get(SignatureHeader))
}
