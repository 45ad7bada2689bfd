package jwtx_test

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/candor/pkg/jwtx"
)

const (
	exampleIssuer = "candor"
	exampleWallet = "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU"
)

var exampleSecret = []byte(strings.Repeat("s", 32))

func newCodec(t *testing.T) *jwtx.HMAC {
	t.Helper()
	h, err := jwtx.NewHMAC(exampleSecret, exampleIssuer)
	require.NoError(t, err)
	return h
}

func TestHMACSignAndVerify(t *testing.T) {
	h := newCodec(t)
	require.Equal(t, "HS256", h.Alg())

	now := time.Now().UTC()
	claims := jwtx.NewSessionClaims(exampleWallet, "jti-1", exampleIssuer, jwtx.DefaultSessionTTL, now)

	token, err := h.Sign(claims)
	require.NoError(t, err)
	require.Len(t, strings.Split(token, "."), 3)

	parsed, err := h.Verify(token)
	require.NoError(t, err)
	require.Equal(t, exampleWallet, parsed.Wallet)
	require.Equal(t, "jti-1", parsed.ID)
	require.Equal(t, exampleIssuer, parsed.Issuer)
	require.WithinDuration(t, now.Add(24*time.Hour), parsed.ExpiresAtTime(), time.Second)
}

func TestHMACSignFillsIssuer(t *testing.T) {
	h := newCodec(t)

	claims := jwtx.NewSessionClaims(exampleWallet, "jti-1", "", time.Hour, time.Now())
	token, err := h.Sign(claims)
	require.NoError(t, err)

	parsed, err := h.Verify(token)
	require.NoError(t, err)
	require.Equal(t, exampleIssuer, parsed.Issuer)
}

func TestNewHMACRejectsShortSecret(t *testing.T) {
	_, err := jwtx.NewHMAC([]byte(strings.Repeat("s", 31)), exampleIssuer)
	require.ErrorIs(t, err, jwtx.ErrWeakSecret)
}

func TestHMACVerifyFailures(t *testing.T) {
	h := newCodec(t)
	now := time.Now().UTC()

	other, err := jwtx.NewHMAC([]byte(strings.Repeat("o", 32)), exampleIssuer)
	require.NoError(t, err)
	wrongKey, err := other.Sign(jwtx.NewSessionClaims(exampleWallet, "jti", exampleIssuer, time.Hour, now))
	require.NoError(t, err)

	wrongIssuer, err := h.Sign(jwtx.NewSessionClaims(exampleWallet, "jti", "someone-else", time.Hour, now))
	require.NoError(t, err)

	expired, err := h.Sign(jwtx.NewSessionClaims(exampleWallet, "jti", exampleIssuer, time.Hour, now.Add(-2*time.Hour)))
	require.NoError(t, err)

	noWallet, err := h.Sign(jwtx.NewSessionClaims("", "jti", exampleIssuer, time.Hour, now))
	require.NoError(t, err)

	noJTI, err := h.Sign(jwtx.NewSessionClaims(exampleWallet, "", exampleIssuer, time.Hour, now))
	require.NoError(t, err)

	noExp := jwtx.NewSessionClaims(exampleWallet, "jti", exampleIssuer, time.Hour, now)
	noExp.ExpiresAt = nil
	noExpToken, err := h.Sign(noExp)
	require.NoError(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512,
		jwtx.NewSessionClaims(exampleWallet, "jti", exampleIssuer, time.Hour, now)).SignedString(exampleSecret)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"garbage", "not-a-jwt", jwtx.ErrMalformed},
		{"empty", "", jwtx.ErrMalformed},
		{"wrong key", wrongKey, jwtx.ErrInvalidSig},
		{"wrong algorithm", hs512, jwtx.ErrInvalidSig},
		{"wrong issuer", wrongIssuer, jwtx.ErrIssuer},
		{"expired", expired, jwtx.ErrExpired},
		{"missing exp", noExpToken, jwtx.ErrInvalidClaim},
		{"missing wallet", noWallet, jwtx.ErrInvalidClaim},
		{"missing jti", noJTI, jwtx.ErrInvalidClaim},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.Verify(tt.token)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestHMACVerifyTamperedPayload(t *testing.T) {
	h := newCodec(t)

	token, err := h.Sign(jwtx.NewSessionClaims(exampleWallet, "jti", exampleIssuer, time.Hour, time.Now()))
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	forged, err := h.Sign(jwtx.NewSessionClaims("attacker", "jti", exampleIssuer, time.Hour, time.Now()))
	require.NoError(t, err)
	parts[1] = strings.Split(forged, ".")[1]

	_, err = h.Verify(strings.Join(parts, "."))
	require.ErrorIs(t, err, jwtx.ErrInvalidSig)
}
