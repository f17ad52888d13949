package repositories

import (
	"context"
	"errors"
	"fmt"
	"github.com/jackc/pgx/v5"
	"idp/internal/domain/models"
	"idp/internal/storage"
	"idp/internal/storage/postgres"
)

// RefreshTokenRepository reads/saves/revokes refresh tokens
type RefreshTokenRepository struct {
	db *postgres.Storage
}

// NewRefreshTokenRepository creates new instance of RefreshTokenRepository
func NewRefreshTokenRepository(db *postgres.Storage) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

// SaveRefreshToken persists a refresh token and fills in its assigned id
func (r *RefreshTokenRepository) SaveRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	err := r.db.Pool.QueryRow(
		ctx,
		`INSERT INTO refresh_tokens(token, user_id, client_id, session_id, expires_at)
		 VALUES($1, $2, $3, $4, $5) RETURNING id`,
		token.Token,
		token.UserID,
		token.ClientID,
		token.SessionID,
		token.ExpiresAt,
	).Scan(&token.ID)
	if err != nil {
		return fmt.Errorf("failed to save refresh token: %w", err)
	}
	return nil
}

// RefreshToken gets models.RefreshToken from db by its opaque value
func (r *RefreshTokenRepository) RefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	var rt models.RefreshToken
	err := r.db.Pool.QueryRow(
		ctx,
		`SELECT id, token, user_id, client_id, session_id, expires_at, revoked_at
		 FROM refresh_tokens WHERE token = $1`,
		token,
	).Scan(&rt.ID, &rt.Token, &rt.UserID, &rt.ClientID, &rt.SessionID, &rt.ExpiresAt, &rt.RevokedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to query refresh token: %w", err)
	}
	return &rt, nil
}

// RevokeRefreshToken sets revoked_at exactly once. A second concurrent
// rotation attempt on the same token value loses the conditional update
// and gets storage.ErrTokenRevoked.
func (r *RefreshTokenRepository) RevokeRefreshToken(ctx context.Context, token string) error {
	tag, err := r.db.Pool.Exec(
		ctx,
		`UPDATE refresh_tokens SET revoked_at = now() WHERE token = $1 AND revoked_at IS NULL`,
		token,
	)
	if err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrTokenRevoked
	}
	return nil
}
