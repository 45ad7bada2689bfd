package domain

import "time"

// Nonce is a single-use challenge value. Only its fingerprint is stored.
type Nonce struct {
	ID        string
	Value     string // raw value, only populated when freshly issued
	Hash      string // deterministic fingerprint (base64url SHA-256)
	CreatedAt time.Time
	ExpiresAt time.Time
	Used      bool
	UsedBy    string // wallet that redeemed it
	UsedAt    *time.Time
}

// Expired reports whether the nonce can no longer be redeemed at now.
func (n Nonce) Expired(now time.Time) bool {
	return !now.Before(n.ExpiresAt)
}
