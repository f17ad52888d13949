package session

import (
	"context"
	"fmt"
	"idp/internal/domain/models"
	jwtlib "idp/internal/lib/jwt"
	"log/slog"
	"time"
)

// SessionStorage perform db operations on sessions
type SessionStorage interface {
	SaveSession(ctx context.Context, session *models.Session) error
	SessionByToken(ctx context.Context, token string) (*models.Session, error)
	RemoveSession(ctx context.Context, token string) error
}

// Service issues and validates opaque browser sessions
type Service struct {
	log        *slog.Logger
	storage    SessionStorage
	sessionTTL time.Duration
}

// New returns a new instance of the session Service
func New(log *slog.Logger, storage SessionStorage, sessionTTL time.Duration) *Service {
	return &Service{log: log, storage: storage, sessionTTL: sessionTTL}
}

// Create issues a high-entropy opaque session token for the user
func (s *Service) Create(ctx context.Context, userID int64) (*models.Session, error) {
	const op = "session.Create"

	token, err := jwtlib.NewOpaqueToken()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	sess := &models.Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: time.Now().Add(s.sessionTTL),
	}
	if err = s.storage.SaveSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("session created", slog.String("op", op), slog.Int64("user_id", userID))
	return sess, nil
}

// Validate returns the live session for a token, or nil. Session absence
// is a normal outcome of the authorize flow, so unknown tokens and
// lookup failures both come back as "no session" rather than an error.
func (s *Service) Validate(ctx context.Context, token string) *models.Session {
	const op = "session.Validate"

	if token == "" {
		return nil
	}
	sess, err := s.storage.SessionByToken(ctx, token)
	if err != nil {
		s.log.Debug("session lookup failed", slog.String("op", op), slog.String("error", err.Error()))
		return nil
	}
	if time.Now().After(sess.ExpiresAt) {
		if err = s.storage.RemoveSession(ctx, sess.Token); err != nil {
			s.log.Warn("failed to remove expired session", slog.String("op", op))
		}
		return nil
	}
	return sess
}
