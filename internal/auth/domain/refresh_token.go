package domain

import "time"

// RefreshToken is the stored record of an issued refresh token. Only the
// salted hash of the raw token is kept.
type RefreshToken struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

func (t RefreshToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
