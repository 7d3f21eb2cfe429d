package internal

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
)

const csrfTokenRawSize = 32

// NewCSRFToken mints a random CSRF token value.
func NewCSRFToken() (string, error) {
	var raw [csrfTokenRawSize]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", err
	}
	// base64url, no padding, compact
	return base64.RawURLEncoding.EncodeToString(raw[:]), nil
}

// HashTokenKey maps an arbitrary-length bearer token to a fixed-size Redis
// key component. Bounding the key size keeps provider-issued JWTs (which can
// exceed a kilobyte) out of the keyspace while preserving one key per token.
func HashTokenKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
