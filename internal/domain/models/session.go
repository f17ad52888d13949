package models

import "time"

// Session is an authenticated browser session, keyed by an opaque
// high-entropy token carried in a cookie.
type Session struct {
	ID        int64     `json:"id" db:"id"`
	Token     string    `json:"session_token" db:"session_token"`
	UserID    int64     `json:"user_id" db:"user_id"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
}
