/*
Package authsdk is a client for the Candor wallet authentication service.

# Overview

Candor authenticates a Solana wallet by having it sign a one-time challenge.
The SDK wraps the HTTP API and exposes the whole handshake as a single call:

	client := authsdk.NewSDKClient("https://auth.example.com")
	session, err := client.SignIn(ctx, "app.example.com", privateKey)

SignIn fetches a nonce, builds the challenge message, signs it with the
Ed25519 key and exchanges the signature for a bearer token. The returned
Session carries that token on every later request:

	info, err := session.GetSession(ctx)
	err = session.Logout(ctx)

Wallets that sign elsewhere (a browser extension, a hardware device) can run
the steps by hand with GetNonce and Verify, then wrap the token with
NewSessionFromToken.

# Errors

Every non-2xx response becomes an *APIError carrying the HTTP status, the
OAuth-style error code and, for 429 responses, the Retry-After delay:

	var apiErr *authsdk.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
		time.Sleep(apiErr.RetryAfter)
	}

The predefined values (ErrInvalidGrant, ErrInvalidToken, ...) also match with
errors.Is on their code.

# Thread Safety

SDKClient and Session are safe for concurrent use.
*/
package authsdk
