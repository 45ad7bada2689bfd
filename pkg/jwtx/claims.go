package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultSessionTTL is the lifetime of a bearer token and its session.
const DefaultSessionTTL = 24 * time.Hour

// Claims are the bearer-token claims. The registered "jti" doubles as the
// server-side session key, so every token maps to exactly one session row.
type Claims struct {
	jwt.RegisteredClaims

	// Wallet is the base58 address that completed the challenge.
	Wallet string `json:"wallet"`
}

// NewSessionClaims builds minimally-correct claims for a wallet session.
func NewSessionClaims(wallet, jti, issuer string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        jti,
		},
		Wallet: wallet,
	}
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}

	if c.Issuer != expected {
		return ErrIssuer
	}

	return nil
}

// ValidateSubject ensures the custom fields a session lookup depends on are present.
func (c *Claims) ValidateSubject() error {
	if c.Wallet == "" || c.ID == "" {
		return ErrInvalidClaim
	}
	return nil
}

// ExpiresAtTime returns exp as a time.Time, or the zero time when absent.
func (c *Claims) ExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}
