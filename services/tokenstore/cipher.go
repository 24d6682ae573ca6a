package tokenstore

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/nacl/secretbox"
)

const sealedPrefix = "enc:"

// Cipher seals tokens before they are written. A nil *Cipher stores plaintext.
type Cipher struct {
	key [32]byte
}

// NewCipher parses a 32 byte key given as hex or base64. An empty key returns
// a nil Cipher, which leaves values untouched.
func NewCipher(key string) (*Cipher, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, nil
	}

	raw, err := hex.DecodeString(key)
	if err != nil {
		raw, err = base64.StdEncoding.DecodeString(key)
	}
	if err != nil {
		return nil, errors.New("token encryption key must be hex or base64")
	}
	if len(raw) != 32 {
		return nil, fmt.Errorf("token encryption key must be 32 bytes, got %d", len(raw))
	}

	c := &Cipher{}
	copy(c.key[:], raw)
	return c, nil
}

// Seal encrypts value. Empty values stay empty so "no token" is still visible.
func (c *Cipher) Seal(value string) (string, error) {
	if c == nil || value == "" {
		return value, nil
	}
	var nonce [24]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("read nonce: %w", err)
	}
	sealed := secretbox.Seal(nonce[:], []byte(value), &nonce, &c.key)
	return sealedPrefix + base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Open decrypts a value produced by Seal. Values without the prefix are
// returned as stored.
func (c *Cipher) Open(value string) (string, error) {
	if !strings.HasPrefix(value, sealedPrefix) {
		return value, nil
	}
	if c == nil {
		return "", errors.New("sealed token found but no encryption key configured")
	}
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimPrefix(value, sealedPrefix))
	if err != nil || len(raw) < 24 {
		return "", errors.New("malformed sealed token")
	}
	var nonce [24]byte
	copy(nonce[:], raw[:24])
	plain, ok := secretbox.Open(nil, raw[24:], &nonce, &c.key)
	if !ok {
		return "", errors.New("sealed token failed authentication")
	}
	return string(plain), nil
}
