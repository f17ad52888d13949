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

// AuthCodeRepository reads/saves auth code between endpoints: Authorize-Token
type AuthCodeRepository struct {
	db *postgres.Storage
}

// NewAuthCodeRepository creates new instance of AuthCodeRepository
func NewAuthCodeRepository(db *postgres.Storage) *AuthCodeRepository {
	return &AuthCodeRepository{db: db}
}

// SaveAuthCode saves a models.AuthorizationCode to db
func (r *AuthCodeRepository) SaveAuthCode(ctx context.Context, code *models.AuthorizationCode) error {
	var challenge, method *string
	if code.CodeChallenge != "" {
		challenge = &code.CodeChallenge
		method = &code.CodeChallengeMethod
	}
	err := r.db.Pool.QueryRow(
		ctx,
		`INSERT INTO authorization_codes(code, user_id, client_id, session_id, redirect_uri, code_challenge, code_challenge_method, expires_at)
		 VALUES($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		code.Code,
		code.UserID,
		code.ClientID,
		code.SessionID,
		code.RedirectURI,
		challenge,
		method,
		code.ExpiresAt,
	).Scan(&code.ID)
	if err != nil {
		return fmt.Errorf("failed to save authorization code: %w", err)
	}
	return nil
}

// AuthCode gets models.AuthorizationCode from db
func (r *AuthCodeRepository) AuthCode(ctx context.Context, code string) (*models.AuthorizationCode, error) {
	var authCode models.AuthorizationCode
	var challenge, method *string
	err := r.db.Pool.QueryRow(
		ctx,
		`SELECT id, code, user_id, client_id, session_id, redirect_uri, code_challenge, code_challenge_method, expires_at, used_at
		 FROM authorization_codes WHERE code = $1`,
		code,
	).Scan(
		&authCode.ID,
		&authCode.Code,
		&authCode.UserID,
		&authCode.ClientID,
		&authCode.SessionID,
		&authCode.RedirectURI,
		&challenge,
		&method,
		&authCode.ExpiresAt,
		&authCode.UsedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrCodeNotFound
		}
		return nil, fmt.Errorf("failed to query authorization code: %w", err)
	}
	if challenge != nil {
		authCode.CodeChallenge = *challenge
	}
	if method != nil {
		authCode.CodeChallengeMethod = *method
	}
	return &authCode, nil
}

// MarkCodeUsed sets used_at exactly once. The conditional predicate makes
// concurrent redemption attempts for the same code race safely: at most
// one caller observes success.
func (r *AuthCodeRepository) MarkCodeUsed(ctx context.Context, code string) error {
	tag, err := r.db.Pool.Exec(
		ctx,
		`UPDATE authorization_codes SET used_at = now() WHERE code = $1 AND used_at IS NULL`,
		code,
	)
	if err != nil {
		return fmt.Errorf("failed to mark authorization code used: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrCodeAlreadyUsed
	}
	return nil
}
