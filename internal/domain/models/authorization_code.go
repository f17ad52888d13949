package models

import "time"

// AuthorizationCode model depends on RFC OAUTH2.1.
// UsedAt stays nil until the code is redeemed; once set every further
// redemption attempt fails.
type AuthorizationCode struct {
	ID                  int64      `json:"id" db:"id"`
	Code                string     `json:"code" db:"code"`
	UserID              int64      `json:"user_id" db:"user_id"`
	ClientID            int64      `json:"client_id" db:"client_id"`
	SessionID           int64      `json:"session_id" db:"session_id"`
	RedirectURI         string     `json:"redirect_uri" db:"redirect_uri"`
	CodeChallenge       string     `json:"code_challenge" db:"code_challenge"`
	CodeChallengeMethod string     `json:"code_challenge_method" db:"code_challenge_method"`
	ExpiresAt           time.Time  `json:"expires_at" db:"expires_at"`
	UsedAt              *time.Time `json:"used_at" db:"used_at"`
}

// Expired reports whether the code's lifetime has passed
func (c *AuthorizationCode) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
