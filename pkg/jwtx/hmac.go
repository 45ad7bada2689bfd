package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinHMACSecretSize is the shortest accepted HS256 secret, in bytes.
const MinHMACSecretSize = 32

// HMAC signs and verifies HS256 tokens with a shared secret.
type HMAC struct {
	secret []byte
	issuer string
	leeway time.Duration
}

var _ Codec = (*HMAC)(nil)

// NewHMAC creates an HS256 codec. Tokens it signs carry issuer and tokens it
// verifies must carry it too.
func NewHMAC(secret []byte, issuer string) (*HMAC, error) {
	if len(secret) < MinHMACSecretSize {
		return nil, fmt.Errorf("%w: need %d bytes, got %d", ErrWeakSecret, MinHMACSecretSize, len(secret))
	}

	// Keep our own copy so callers can't mutate the key underneath us
	key := make([]byte, len(secret))
	copy(key, secret)

	return &HMAC{secret: key, issuer: issuer}, nil
}

// WithLeeway returns a copy that tolerates clock skew when checking exp and iat.
func (h *HMAC) WithLeeway(d time.Duration) *HMAC {
	cp := *h
	cp.leeway = d
	return &cp
}

func (h *HMAC) Alg() string { return jwt.SigningMethodHS256.Alg() }

// Sign stamps the configured issuer onto claims and returns the compact JWT.
func (h *HMAC) Sign(claims Claims) (string, error) {
	if claims.Issuer == "" {
		claims.Issuer = h.issuer
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(h.secret)
}

// Verify validates the JWT string and returns its parsed Claims.
func (h *HMAC) Verify(tokenStr string) (Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(h.leeway),
	}
	if h.issuer != "" {
		opts = append(opts, jwt.WithIssuer(h.issuer))
	}

	var claims Claims
	token, err := jwt.NewParser(opts...).ParseWithClaims(tokenStr, &claims, func(*jwt.Token) (any, error) {
		return h.secret, nil
	})
	if err != nil {
		return Claims{}, fmt.Errorf("jwtx: parse or verify: %w", classify(err))
	}
	if !token.Valid {
		return Claims{}, ErrMalformed
	}

	// Now check all the claim requirements
	if err := claims.ValidateIssuer(h.issuer); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateSubject(); err != nil {
		return Claims{}, err
	}

	return claims, nil
}

// classify folds jwt library errors onto our sentinels, keeping the original
// message for logs.
func classify(err error) error {
	var sentinel error
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		sentinel = ErrMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		sentinel = ErrInvalidSig
	case errors.Is(err, jwt.ErrTokenExpired):
		sentinel = ErrExpired
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		sentinel = ErrIssuer
	case errors.Is(err, jwt.ErrTokenNotValidYet), errors.Is(err, jwt.ErrTokenUsedBeforeIssued):
		sentinel = ErrNotYetValid
	case errors.Is(err, jwt.ErrTokenRequiredClaimMissing), errors.Is(err, jwt.ErrTokenInvalidClaims):
		sentinel = ErrInvalidClaim
	default:
		sentinel = ErrMalformed
	}
	return fmt.Errorf("%w: %v", sentinel, err)
}
