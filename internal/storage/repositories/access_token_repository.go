package repositories

import (
	"context"
	"fmt"
	"idp/internal/domain/models"
	"idp/internal/storage/postgres"
)

// AccessTokenRepository persists audit records of issued access tokens,
// keyed by the signed token's jti claim
type AccessTokenRepository struct {
	db *postgres.Storage
}

// NewAccessTokenRepository creates new instance of AccessTokenRepository
func NewAccessTokenRepository(db *postgres.Storage) *AccessTokenRepository {
	return &AccessTokenRepository{db: db}
}

// SaveAccessToken saves a models.AccessToken to db
func (r *AccessTokenRepository) SaveAccessToken(ctx context.Context, token *models.AccessToken) error {
	err := r.db.Pool.QueryRow(
		ctx,
		`INSERT INTO access_tokens(token, user_id, client_id, session_id, scope, expires_at, authorization_code_id, source_refresh_token_id)
		 VALUES($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		token.Token,
		token.UserID,
		token.ClientID,
		token.SessionID,
		token.Scope,
		token.ExpiresAt,
		token.AuthorizationCodeID,
		token.SourceRefreshTokenID,
	).Scan(&token.ID)
	if err != nil {
		return fmt.Errorf("failed to save access token: %w", err)
	}
	return nil
}
