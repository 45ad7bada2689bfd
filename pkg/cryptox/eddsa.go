package cryptox

import (
	"crypto/ed25519"
)

// VerifyEd25519 reports whether signature is a valid detached Ed25519
// signature of message under publicKey. Inputs of the wrong length are
// rejected before any curve arithmetic.
func VerifyEd25519(message, signature, publicKey []byte) bool {
	if len(signature) != ed25519.SignatureSize {
		return false
	}
	if len(publicKey) != ed25519.PublicKeySize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(publicKey), message, signature)
}
