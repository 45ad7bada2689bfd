package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/candor/internal/auth/domain"
	"github.com/aussiebroadwan/candor/internal/auth/store"
	"github.com/aussiebroadwan/candor/pkg/cryptox"
	"github.com/aussiebroadwan/candor/pkg/idx"
	"github.com/aussiebroadwan/candor/pkg/siws"
	"github.com/aussiebroadwan/candor/pkg/slogx"
)

// Challenge is handed to a wallet before it signs in.
type Challenge struct {
	Nonce     string
	ExpiresAt time.Time
}

// VerifyRequest is a signed challenge submitted for a session.
type VerifyRequest struct {
	Message   string
	Signature []byte
	PublicKey string // base58 wallet address

	UserAgent string
	IPAddress string
}

// AuthResult is a freshly minted session.
type AuthResult struct {
	Token     string
	Wallet    string
	SessionID string
	ExpiresAt time.Time
}

// AuthService runs the wallet sign-in handshake.
type AuthService struct {
	Store  store.Store
	Nonces *NonceService
	Tokens *TokenService

	// Domain, when set, must match the domain in the signed message.
	Domain string

	Now func() time.Time
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// IssueChallenge issues a nonce for a client to embed in its message.
func (s *AuthService) IssueChallenge(ctx context.Context) (Challenge, error) {
	n, err := s.Nonces.Issue(ctx)
	if err != nil {
		return Challenge{}, err
	}
	return Challenge{Nonce: n.Value, ExpiresAt: n.ExpiresAt}, nil
}

// Verify checks a signed challenge and, on success, creates a session and
// returns its bearer token.
func (s *AuthService) Verify(ctx context.Context, req VerifyRequest) (AuthResult, error) {
	l := slogx.FromContext(ctx)

	// 1. Identity shape, before any I/O
	pub, err := cryptox.ParseWalletAddress(req.PublicKey)
	if err != nil {
		return AuthResult{}, ErrInvalidIdentity
	}
	wallet := req.PublicKey

	// 2. Message layout
	fields, ok := siws.ParseMessage(req.Message)
	if !ok {
		return AuthResult{}, ErrMalformedChallenge
	}

	// 3. The message must name the claimed wallet
	if fields.Wallet != wallet {
		return AuthResult{}, ErrIdentityMismatch
	}

	// 4. And our domain, when configured
	if s.Domain != "" && fields.Domain != s.Domain {
		l.Info("verify rejected: domain mismatch", slog.String("domain", fields.Domain))
		return AuthResult{}, ErrDomainMismatch
	}

	// 5. Burn the nonce
	if _, err := s.Nonces.Redeem(ctx, fields.Nonce, wallet); err != nil {
		switch {
		case errors.Is(err, ErrNonceNotFound), errors.Is(err, ErrNonceExpired), errors.Is(err, ErrNonceUsed):
			l.Info("verify rejected: nonce", slog.String("reason", err.Error()))
			return AuthResult{}, ErrInvalidOrExpiredNonce
		default:
			return AuthResult{}, err
		}
	}

	// 6. Signature over the exact bytes that were signed
	if !cryptox.VerifyEd25519([]byte(req.Message), req.Signature, pub) {
		l.Info("verify rejected: bad signature", slog.String("wallet", wallet))
		return AuthResult{}, ErrInvalidSignature
	}

	// 7. User and session in one transaction, token signed before commit
	now := s.now()
	jti := NewSessionID()
	var result AuthResult
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		user, err := tx.Users().UpsertUserByWallet(ctx, domain.User{
			ID:            idx.NewAt(now).String(),
			WalletAddress: wallet,
			CreatedAt:     now,
		})
		if err != nil {
			return fmt.Errorf("upsert user: %w", err)
		}

		token, expiresAt, err := s.Tokens.Issue(wallet, jti)
		if err != nil {
			return err
		}

		err = tx.Sessions().CreateSession(ctx, domain.Session{
			ID:           idx.NewAt(now).String(),
			JTI:          jti,
			UserID:       user.ID,
			Wallet:       wallet,
			IssuedAt:     now,
			ExpiresAt:    expiresAt,
			LastActiveAt: now,
			UserAgent:    req.UserAgent,
			IPAddress:    req.IPAddress,
		})
		if err != nil {
			return fmt.Errorf("create session: %w", err)
		}

		result = AuthResult{
			Token:     token,
			Wallet:    wallet,
			SessionID: jti,
			ExpiresAt: expiresAt,
		}
		return nil
	})
	if err != nil {
		return AuthResult{}, err
	}

	l.Info("wallet signed in", slog.String("wallet", wallet))
	return result, nil
}
