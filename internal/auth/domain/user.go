package domain

import "time"

// User is a wallet that has completed at least one sign-in.
type User struct {
	ID            string
	WalletAddress string // base58 Ed25519 public key, unique
	CreatedAt     time.Time
}
