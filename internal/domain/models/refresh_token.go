package models

import "time"

// RefreshToken's model. A token is single-use for rotation: every
// successful redemption revokes it and issues a successor.
type RefreshToken struct {
	ID        int64      `json:"id" db:"id"`
	Token     string     `json:"refresh_token" db:"token"`
	UserID    int64      `json:"user_id" db:"user_id"`
	ClientID  int64      `json:"client_id" db:"client_id"`
	SessionID int64      `json:"session_id" db:"session_id"`
	ExpiresAt time.Time  `json:"expires_at" db:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at" db:"revoked_at"`
}

// Revoked reports whether the token has been rotated away or revoked
func (t *RefreshToken) Revoked() bool {
	return t.RevokedAt != nil
}

// Expired reports whether the token's lifetime has passed
func (t *RefreshToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
