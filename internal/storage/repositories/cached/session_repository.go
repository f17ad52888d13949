package cached

import (
	"context"
	"idp/internal/domain/models"
	"idp/internal/storage/redis"
	"idp/internal/storage/repositories"
)

// SessionRepository is a read-through cache in front of the postgres
// session repository. Cache failures fall back to the database; the
// cache never serves as the source of truth.
type SessionRepository struct {
	db    *repositories.SessionRepository
	cache *redis.Cache
}

// NewSessionRepository creates new cached SessionRepository
func NewSessionRepository(db *repositories.SessionRepository, cache *redis.Cache) *SessionRepository {
	return &SessionRepository{db: db, cache: cache}
}

// SaveSession writes through to db, then populates the cache
func (r *SessionRepository) SaveSession(ctx context.Context, session *models.Session) error {
	if err := r.db.SaveSession(ctx, session); err != nil {
		return err
	}
	_ = r.cache.SetSession(ctx, session)
	return nil
}

// SessionByToken tries the cache first, then db
func (r *SessionRepository) SessionByToken(ctx context.Context, token string) (*models.Session, error) {
	session, err := r.cache.Session(ctx, token)
	if err == nil {
		return session, nil
	}
	session, err = r.db.SessionByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	_ = r.cache.SetSession(ctx, session)
	return session, nil
}

// RemoveSession deletes from db and invalidates the cache
func (r *SessionRepository) RemoveSession(ctx context.Context, token string) error {
	if err := r.db.RemoveSession(ctx, token); err != nil {
		return err
	}
	_ = r.cache.InvalidateSession(ctx, token)
	return nil
}
