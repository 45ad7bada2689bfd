package domain

import "time"

// Session is the server-side record behind a bearer token. JTI matches the
// token's "jti" claim.
type Session struct {
	ID           string
	JTI          string
	UserID       string
	Wallet       string
	IssuedAt     time.Time
	ExpiresAt    time.Time
	LastActiveAt time.Time
	Revoked      bool
	UserAgent    string
	IPAddress    string
}

// Valid reports whether the session may still authenticate requests.
func (s Session) Valid(now time.Time) bool {
	return !s.Revoked && now.Before(s.ExpiresAt)
}
