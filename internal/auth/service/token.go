package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aussiebroadwan/candor/pkg/jwtx"
)

// Issuer is the "iss" claim on every bearer token.
const Issuer = "candor"

// TokenService signs and parses session bearer tokens.
type TokenService struct {
	Codec jwtx.Codec
	TTL   time.Duration
	Now   func() time.Time
}

func (s *TokenService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *TokenService) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return jwtx.DefaultSessionTTL
}

// NewSessionID returns a fresh token id, used as both jti and session key.
func NewSessionID() string {
	return uuid.NewString()
}

// Issue signs a token for wallet bound to sessionID.
func (s *TokenService) Issue(wallet, sessionID string) (string, time.Time, error) {
	claims := jwtx.NewSessionClaims(wallet, sessionID, Issuer, s.ttl(), s.now())
	token, err := s.Codec.Sign(claims)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return token, claims.ExpiresAtTime(), nil
}

// Parse verifies signature, issuer and expiry and returns the claims.
func (s *TokenService) Parse(token string) (jwtx.Claims, error) {
	return s.Codec.Verify(token)
}
