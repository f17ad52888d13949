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

// SocialIdentityRepository links (provider, provider_user_id) pairs to users
type SocialIdentityRepository struct {
	db *postgres.Storage
}

// NewSocialIdentityRepository creates new instance of SocialIdentityRepository
func NewSocialIdentityRepository(db *postgres.Storage) *SocialIdentityRepository {
	return &SocialIdentityRepository{db: db}
}

// UserBySocialIdentity resolves the owning user of a social identity in a
// single joined query
func (r *SocialIdentityRepository) UserBySocialIdentity(ctx context.Context, provider, providerUserID string) (*models.User, error) {
	var user models.User
	err := r.db.Pool.QueryRow(
		ctx,
		`SELECT u.id, u.public_id, u.email, u.pass_hash
		 FROM social_identities si
		 JOIN users u ON u.id = si.user_id
		 WHERE si.provider = $1 AND si.provider_user_id = $2`,
		provider,
		providerUserID,
	).Scan(&user.ID, &user.PublicID, &user.Email, &user.PassHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrIdentityNotFound
		}
		return nil, fmt.Errorf("failed to query social identity: %w", err)
	}
	return &user, nil
}

// CreateUserWithIdentity creates a user record and its linking social
// identity inside one transaction, so neither is observable without the
// other. Email may be empty: some providers' consent scopes omit it.
func (r *SocialIdentityRepository) CreateUserWithIdentity(ctx context.Context, provider, providerUserID, email string) (*models.User, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var user models.User
	err = tx.QueryRow(
		ctx,
		`INSERT INTO users(email) VALUES($1) RETURNING id, public_id`,
		email,
	).Scan(&user.ID, &user.PublicID)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	user.Email = email

	_, err = tx.Exec(
		ctx,
		`INSERT INTO social_identities(user_id, provider, provider_user_id) VALUES($1, $2, $3)`,
		user.ID,
		provider,
		providerUserID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create social identity: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit user creation: %w", err)
	}
	return &user, nil
}
