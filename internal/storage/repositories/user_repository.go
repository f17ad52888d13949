package repositories

import (
	"context"
	"errors"
	"fmt"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"idp/internal/domain/models"
	"idp/internal/storage"
	"idp/internal/storage/postgres"
)

// UserRepository reads/saves user accounts
type UserRepository struct {
	db *postgres.Storage
}

// NewUserRepository creates new instance of UserRepository
func NewUserRepository(db *postgres.Storage) *UserRepository {
	return &UserRepository{db: db}
}

// SaveUser saves user in data table 'users'
func (r *UserRepository) SaveUser(ctx context.Context, email string, passHash []byte) (int64, error) {
	var id int64
	err := r.db.Pool.QueryRow(
		ctx,
		`INSERT INTO users(email, pass_hash) VALUES($1, $2) RETURNING id`,
		email,
		passHash,
	).Scan(&id)
	if err != nil {
		var pgxError *pgconn.PgError
		if errors.As(err, &pgxError) && pgxError.Code == "23505" {
			return 0, storage.ErrUserExists
		}
		return 0, fmt.Errorf("failed to save user: %w", err)
	}
	return id, nil
}

// UserByID searches user in database by his internal ID
func (r *UserRepository) UserByID(ctx context.Context, userID int64) (*models.User, error) {
	var user models.User
	var email *string
	err := r.db.Pool.QueryRow(
		ctx,
		`SELECT id, public_id, email, pass_hash FROM users WHERE id = $1`,
		userID,
	).Scan(&user.ID, &user.PublicID, &email, &user.PassHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	if email != nil {
		user.Email = *email
	}
	return &user, nil
}

// UserByEmail searches user in database by email
func (r *UserRepository) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.Pool.QueryRow(
		ctx,
		`SELECT id, public_id, email, pass_hash FROM users WHERE email = $1`,
		email,
	).Scan(&user.ID, &user.PublicID, &user.Email, &user.PassHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &user, nil
}
