package authsdk

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"

	"github.com/aussiebroadwan/candor/pkg/cryptox"
)

// ErrorResponse is the JSON body of every error response.
type ErrorResponse struct {
	// Error is the machine readable code (e.g. "invalid_grant")
	Error string `json:"error"`

	// ErrorDescription is a short human readable description
	ErrorDescription string `json:"error_description"`
}

// ============================================================================
// Sign-in Types
// ============================================================================

// NonceResponse is returned from GET /v1/auth/nonce.
type NonceResponse struct {
	// Nonce is embedded in the message the wallet signs
	Nonce string `json:"nonce"`

	// ExpiresAt is when the nonce can no longer be redeemed
	ExpiresAt time.Time `json:"expiresAt"`
}

// Signature is a detached Ed25519 signature. It marshals as base58 and
// unmarshals from either a base58 string or a JSON array of bytes, which is
// what browser wallets hand back from signMessage.
type Signature []byte

func (s Signature) MarshalJSON() ([]byte, error) {
	return json.Marshal(cryptox.EncodeSignature(s))
}

func (s *Signature) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return errors.New("signature is required")
	}

	if data[0] == '"' {
		var encoded string
		if err := json.Unmarshal(data, &encoded); err != nil {
			return err
		}
		raw, err := cryptox.DecodeSignature(encoded)
		if err != nil {
			return err
		}
		*s = raw
		return nil
	}

	// []uint8 would expect base64, so decode through ints
	var values []int
	if err := json.Unmarshal(data, &values); err != nil {
		return errors.New("signature must be a base58 string or a byte array")
	}
	raw := make([]byte, len(values))
	for i, v := range values {
		if v < 0 || v > 255 {
			return errors.New("signature byte out of range")
		}
		raw[i] = byte(v)
	}
	*s = raw
	return nil
}

// VerifyRequest is the body of POST /v1/auth/verify.
type VerifyRequest struct {
	// Message is the exact challenge text that was signed
	Message string `json:"message"`

	// Signature over Message
	Signature Signature `json:"signature" swaggertype:"string"`

	// PublicKey is the base58 wallet address
	PublicKey string `json:"publicKey"`
}

// VerifyResponse is returned from a successful sign-in.
type VerifyResponse struct {
	// Token is the bearer token for authenticated requests
	Token string `json:"token"`

	Wallet    string    `json:"wallet"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ============================================================================
// Session Types
// ============================================================================

// SessionResponse describes the session behind a bearer token.
type SessionResponse struct {
	Wallet    string    `json:"wallet"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// LogoutResponse is returned from DELETE /v1/auth/session.
type LogoutResponse struct {
	Success bool `json:"success"`
}

// CleanupDetails breaks a retention pass down by table.
type CleanupDetails struct {
	Nonces   int64 `json:"nonces"`
	Sessions int64 `json:"sessions"`
}

// CleanupResponse is returned from POST /v1/cleanup.
type CleanupResponse struct {
	// Cleaned is the total number of rows removed
	Cleaned int64          `json:"cleaned"`
	Details CleanupDetails `json:"details"`
}

// ============================================================================
// Alert Types
// ============================================================================

// AlertNotification is an alert that has already fired and should be sent
// to a webhook.
type AlertNotification struct {
	// WebhookURL is the receiving endpoint. Internal addresses are refused.
	WebhookURL string `json:"webhookUrl"`

	RuleID   string `json:"ruleId"`
	RuleName string `json:"ruleName"`

	AlertID   string `json:"alertId"`
	Message   string `json:"message"`
	Severity  string `json:"severity"`
	SessionID string `json:"sessionId"`
	EventID   string `json:"eventId,omitempty"`
}

// NotifyResponse acknowledges a queued notification.
type NotifyResponse struct {
	// ID of the queued message
	ID     string `json:"id"`
	Queued bool   `json:"queued"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse is returned from /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the state of each dependency.
type HealthChecks struct {
	Database string `json:"database"`
	Redis    string `json:"redis,omitempty"`
	Alerts   string `json:"alerts"`
}
