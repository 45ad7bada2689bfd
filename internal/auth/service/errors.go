package service

import "errors"

// Verify failures. Handlers map these to flat OAuth-style error bodies.
var (
	ErrInvalidIdentity       = errors.New("invalid identity")
	ErrMalformedChallenge    = errors.New("malformed challenge message")
	ErrIdentityMismatch      = errors.New("message wallet does not match public key")
	ErrDomainMismatch        = errors.New("message domain does not match")
	ErrInvalidOrExpiredNonce = errors.New("invalid or expired nonce")
	ErrInvalidSignature      = errors.New("invalid signature")
)

// Nonce redemption outcomes. Callers outside this package only ever see
// ErrInvalidOrExpiredNonce; these exist for logs.
var (
	ErrNonceNotFound = errors.New("nonce not found")
	ErrNonceExpired  = errors.New("nonce expired")
	ErrNonceUsed     = errors.New("nonce already used")
)

// ErrUnauthorized covers every bearer token or session failure.
var ErrUnauthorized = errors.New("unauthorized")
