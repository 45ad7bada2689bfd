package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const (
	// SignatureHeader carries "sha256=<hex hmac of body>".
	SignatureHeader = "X-Candor-Signature"
	// EventHeader carries the event name, e.g. "alert.triggered".
	EventHeader = "X-Candor-Event"

	signaturePrefix = "sha256="
)

// Sign returns the hex HMAC-SHA256 of body under secret.
func Sign(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// SignatureHeaderValue formats the signature header for body.
func SignatureHeaderValue(secret, body []byte) string {
	return signaturePrefix + Sign(secret, body)
}

// VerifySignature checks a received signature header against body. Receivers
// should use this rather than comparing strings themselves.
func VerifySignature(secret, body []byte, header string) bool {
	hexSig, ok := strings.CutPrefix(header, signaturePrefix)
	if !ok {
		return false
	}
	got, err := hex.DecodeString(hexSig)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return hmac.Equal(got, mac.Sum(nil))
}
