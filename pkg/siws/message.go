// Package siws builds and parses the Sign-In With Solana challenge message
// that wallets sign during authentication.
package siws

import (
	"regexp"
	"strings"
	"time"
)

// Statement is the human-readable line shown to the signer.
const Statement = "Sign in to Candor"

// Version of the message layout.
const Version = "1"

// IssuedAtLayout is ISO8601 with millisecond precision, always rendered in UTC.
const IssuedAtLayout = "2006-01-02T15:04:05.000Z07:00"

const (
	headerSuffix = " wants you to sign in with your Solana account:"
	noncePrefix  = "Nonce: "
	uriPrefix    = "URI: "
)

var headerPattern = regexp.MustCompile(`^(.+) wants you to sign in`)

// Fields are the values recovered from a challenge message.
type Fields struct {
	Domain string
	Wallet string
	Nonce  string
}

// BuildMessage renders the challenge for wallet, nonce and domain at issuedAt.
func BuildMessage(wallet, nonce, domain string, issuedAt time.Time) string {
	var b strings.Builder
	b.WriteString(domain)
	b.WriteString(headerSuffix)
	b.WriteString("\n")
	b.WriteString(wallet)
	b.WriteString("\n\n")
	b.WriteString(Statement)
	b.WriteString("\n\n")
	b.WriteString(uriPrefix + "https://" + domain + "\n")
	b.WriteString("Version: " + Version + "\n")
	b.WriteString(noncePrefix + nonce + "\n")
	b.WriteString("Issued At: " + issuedAt.UTC().Format(IssuedAtLayout))
	return b.String()
}

// NewMessage is BuildMessage stamped with the current time.
func NewMessage(wallet, nonce, domain string) string {
	return BuildMessage(wallet, nonce, domain, time.Now())
}

// ParseMessage extracts the domain, wallet and nonce from msg. It reports false
// when any of them is missing or the layout is ambiguous.
func ParseMessage(msg string) (Fields, bool) {
	if msg == "" {
		return Fields{}, false
	}

	lines := strings.Split(strings.ReplaceAll(msg, "\r\n", "\n"), "\n")
	if len(lines) < 2 {
		return Fields{}, false
	}

	m := headerPattern.FindStringSubmatch(lines[0])
	if m == nil {
		return Fields{}, false
	}
	domain := strings.TrimSpace(m[1])

	wallet := strings.TrimSpace(lines[1])
	if wallet == "" || strings.ContainsAny(wallet, " \t") || strings.Contains(wallet, ":") {
		return Fields{}, false
	}

	var nonce string
	var nonces, uris int
	for _, line := range lines[2:] {
		switch {
		case strings.HasPrefix(line, noncePrefix):
			nonces++
			nonce = strings.TrimSpace(strings.TrimPrefix(line, noncePrefix))
		case strings.HasPrefix(line, uriPrefix):
			uris++
		}
	}
	if nonces != 1 || uris > 1 || nonce == "" || domain == "" {
		return Fields{}, false
	}

	return Fields{Domain: domain, Wallet: wallet, Nonce: nonce}, true
}
