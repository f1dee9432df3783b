package shares

import "time"

// ShareGrant is a tokenized public handle on a file. A grant is served
// until it expires, its access budget runs out, or it is deactivated;
// any of those flips Active to false permanently.
type ShareGrant struct {
	ID             string
	FileID         string
	ShareToken     string
	QRCode         []byte
	ExpiresAt      *time.Time
	MaxAccessCount *int
	AccessCount    int
	Active         bool
	CreatedAt      time.Time
}

// Expired reports whether the grant's deadline has passed. Grants with
// no deadline never expire.
func (g ShareGrant) Expired(now time.Time) bool {
	return g.ExpiresAt != nil && !now.Before(*g.ExpiresAt)
}

// Exhausted reports whether the access budget is used up. Grants with
// no budget are never exhausted.
func (g ShareGrant) Exhausted() bool {
	return g.MaxAccessCount != nil && g.AccessCount >= *g.MaxAccessCount
}
