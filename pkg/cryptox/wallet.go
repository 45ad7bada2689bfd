package cryptox

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"regexp"

	"github.com/mr-tron/base58"
)

var (
	// ErrInvalidWallet reports an address that is not a base58 Ed25519 public key.
	ErrInvalidWallet = errors.New("cryptox: invalid wallet address")
	// ErrInvalidSignatureEncoding reports a signature that is not valid base58.
	ErrInvalidSignatureEncoding = errors.New("cryptox: invalid signature encoding")
)

// walletPattern is the base58 alphabet (no 0, O, I, l) at Solana address lengths.
var walletPattern = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]{32,44}$`)

// IsWalletAddress reports whether s has the shape of a Solana address.
func IsWalletAddress(s string) bool {
	return walletPattern.MatchString(s)
}

// ParseWalletAddress decodes a base58 wallet address into its public key.
func ParseWalletAddress(s string) (ed25519.PublicKey, error) {
	if !IsWalletAddress(s) {
		return nil, ErrInvalidWallet
	}

	raw, err := base58.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWallet, err)
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("%w: decoded %d bytes", ErrInvalidWallet, len(raw))
	}

	return ed25519.PublicKey(raw), nil
}

// WalletAddress encodes a public key as a base58 wallet address.
func WalletAddress(pub ed25519.PublicKey) string {
	return base58.Encode(pub)
}

// DecodeSignature decodes a base58 signature. Length is left to the verifier.
func DecodeSignature(s string) ([]byte, error) {
	if s == "" {
		return nil, ErrInvalidSignatureEncoding
	}
	raw, err := base58.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignatureEncoding, err)
	}
	return raw, nil
}

// EncodeSignature encodes a signature as base58.
func EncodeSignature(sig []byte) string {
	return base58.Encode(sig)
}
