package domain

// CleanupResult counts rows removed by a retention pass.
type CleanupResult struct {
	Nonces   int64
	Sessions int64
}

// Total is the number of rows removed across all tables.
func (r CleanupResult) Total() int64 { return r.Nonces + r.Sessions }
