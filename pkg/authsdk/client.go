package authsdk

import (
	"context"
	"crypto/ed25519"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/aussiebroadwan/candor/pkg/cryptox"
	"github.com/aussiebroadwan/candor/pkg/siws"
)

// SDKClient is a client for the Candor authentication service. It covers the
// unauthenticated endpoints and creates Sessions.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a client for the service at baseURL.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// GetNonce requests a fresh challenge nonce.
func (c *SDKClient) GetNonce(ctx context.Context) (*NonceResponse, error) {
	var out NonceResponse
	if err := c.call(ctx, http.MethodGet, "/v1/auth/nonce", "", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Verify exchanges a signed challenge for a bearer token.
func (c *SDKClient) Verify(ctx context.Context, req VerifyRequest) (*VerifyResponse, error) {
	var out VerifyResponse
	if err := c.call(ctx, http.MethodPost, "/v1/auth/verify", "", req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// SignIn runs the full handshake for the wallet behind key: fetch a nonce,
// build the message for domain, sign it and verify it.
func (c *SDKClient) SignIn(ctx context.Context, domain string, key ed25519.PrivateKey) (*Session, error) {
	if len(key) != ed25519.PrivateKeySize {
		return nil, errors.New("authsdk: invalid ed25519 private key")
	}
	wallet := cryptox.WalletAddress(key.Public().(ed25519.PublicKey))

	nonce, err := c.GetNonce(ctx)
	if err != nil {
		return nil, err
	}

	message := siws.NewMessage(wallet, nonce.Nonce, domain)
	out, err := c.Verify(ctx, VerifyRequest{
		Message:   message,
		Signature: ed25519.Sign(key, []byte(message)),
		PublicKey: wallet,
	})
	if err != nil {
		return nil, err
	}

	return c.NewSessionFromToken(out.Token, out.Wallet, out.ExpiresAt), nil
}

// NewSessionFromToken wraps an existing bearer token.
func (c *SDKClient) NewSessionFromToken(token, wallet string, expiresAt time.Time) *Session {
	return &Session{
		client:    c,
		token:     token,
		wallet:    wallet,
		expiresAt: expiresAt,
	}
}
