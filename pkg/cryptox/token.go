package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// NonceSize is the entropy of a challenge nonce in bytes. Encoded it is 43
// base64url characters.
const NonceSize = 32

// GenerateToken returns size random bytes encoded as unpadded base64url.
func GenerateToken(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("token size must be positive, got %d", size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// NewNonce returns a random nonce value and the fingerprint it is stored
// under.
func NewNonce() (value, fingerprint string, err error) {
	value, err = GenerateToken(NonceSize)
	if err != nil {
		return "", "", err
	}
	return value, FingerprintToken(value), nil
}

// FingerprintToken is the unpadded base64url SHA-256 of token. Nonces are
// persisted by fingerprint so a database read never yields a redeemable
// value.
func FingerprintToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
