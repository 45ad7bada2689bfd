package webhook

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsAllowedURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://hooks.example.com/x", true},
		{"http://172.32.0.1/x", true},
		{"https://hooks.slack.com/services/T000/B000/XXX", true},
		{"http://203.0.113.10:8080/hook", true},

		{"http://127.0.0.1/x", false},
		{"http://127.0.0.2/x", false},
		{"http://localhost:3000/x", false},
		{"http://LOCALHOST/x", false},
		{"http://0.0.0.0/x", false},
		{"http://[::1]/x", false},
		{"http://[::ffff:127.0.0.1]/x", false},
		{"http://10.0.0.5/x", false},
		{"http://172.16.0.1/x", false},
		{"http://172.31.255.255/x", false},
		{"http://192.168.1.1/x", false},
		{"http://169.254.169.254/latest/meta-data", false},
		{"http://[fd00::1]/x", false},
		{"http://a.internal/x", false},
		{"http://printer.local/x", false},
		{"http://metadata.google.internal./x", false},
		{"ftp://x", false},
		{"file:///etc/passwd", false},
		{"javascript:alert(1)", false},
		{"https:///nohost", false},
		{"not a url", false},
		{"http://%zz", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			require.Equal(t, tt.want, IsAllowedURL(tt.url))
		})
	}
}

func TestSignature(t *testing.T) {
	body := []byte(`{"event":"alert.triggered"}`)
	secret := []byte("s3cret")

	sig := Sign(secret, body)
	require.Len(t, sig, 64)
	require.Equal(t, sig, Sign(secret, body))

	header := SignatureHeaderValue(secret, body)
	require.Equal(t, "sha256="+sig, header)
	require.True(t, VerifySignature(secret, body, header))

	require.False(t, VerifySignature([]byte("other"), body, header))
	require.False(t, VerifySignature(secret, []byte(`{}`), header))
	require.False(t, VerifySignature(secret, body, sig))
	require.False(t, VerifySignature(secret, body, "sha256=zz"))
}
