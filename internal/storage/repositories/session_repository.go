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

// SessionRepository reads/saves authenticated browser sessions
type SessionRepository struct {
	db *postgres.Storage
}

// NewSessionRepository creates new instance of SessionRepository
func NewSessionRepository(db *postgres.Storage) *SessionRepository {
	return &SessionRepository{db: db}
}

// SaveSession persists a session and fills in its assigned id
func (r *SessionRepository) SaveSession(ctx context.Context, session *models.Session) error {
	err := r.db.Pool.QueryRow(
		ctx,
		`INSERT INTO sessions(session_token, user_id, expires_at) VALUES($1, $2, $3) RETURNING id`,
		session.Token,
		session.UserID,
		session.ExpiresAt,
	).Scan(&session.ID)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// SessionByToken gets a session from db by its opaque token
func (r *SessionRepository) SessionByToken(ctx context.Context, token string) (*models.Session, error) {
	var session models.Session
	err := r.db.Pool.QueryRow(
		ctx,
		`SELECT id, session_token, user_id, expires_at FROM sessions WHERE session_token = $1`,
		token,
	).Scan(&session.ID, &session.Token, &session.UserID, &session.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to query session: %w", err)
	}
	return &session, nil
}

// RemoveSession deletes a session by token
func (r *SessionRepository) RemoveSession(ctx context.Context, token string) error {
	_, err := r.db.Pool.Exec(
		ctx,
		`DELETE FROM sessions WHERE session_token = $1`,
		token,
	)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
