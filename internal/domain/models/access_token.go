package models

import "time"

// AccessToken is the persisted audit record of a signed access token.
// Token holds the jti claim of the signed JWT, not the JWT itself.
// UserID and SessionID are nil for the client_credentials grant;
// the provenance links record which code or refresh token produced it.
type AccessToken struct {
	ID                   int64     `json:"id" db:"id"`
	Token                string    `json:"token" db:"token"`
	UserID               *int64    `json:"user_id" db:"user_id"`
	ClientID             int64     `json:"client_id" db:"client_id"`
	SessionID            *int64    `json:"session_id" db:"session_id"`
	Scope                string    `json:"scope" db:"scope"`
	ExpiresAt            time.Time `json:"expires_at" db:"expires_at"`
	AuthorizationCodeID  *int64    `json:"authorization_code_id" db:"authorization_code_id"`
	SourceRefreshTokenID *int64    `json:"source_refresh_token_id" db:"source_refresh_token_id"`
	CreatedAt            time.Time `json:"created_at" db:"created_at"`
}
