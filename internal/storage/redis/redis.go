package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/redis/go-redis/v9"
	"idp/internal/config"
	"idp/internal/domain/models"
	"idp/internal/storage"
	"strconv"
	"time"
)

const sessionKeyPrefix = "session:"

// Cache using redis provides fast access to important and reusing data
type Cache struct {
	rdb        *redis.Client
	sessionTTL time.Duration
	enabled    bool
}

// NewCache creates new instance of redis client
func NewCache(conf *config.RedisConfig, enabled bool) (*Cache, error) {
	if !enabled {
		return &Cache{enabled: false}, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     conf.Host + ":" + strconv.Itoa(conf.Port),
		Password: conf.Password,
		DB:       conf.DB,
	})
	return &Cache{rdb: rdb, sessionTTL: conf.SessionTTL, enabled: true}, nil
}

// SetSession caches a session by its opaque token
func (c *Cache) SetSession(ctx context.Context, session *models.Session) error {
	if !c.enabled {
		return storage.InfoCacheDisabled
	}
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	ttl := c.sessionTTL
	if remaining := time.Until(session.ExpiresAt); remaining > 0 && remaining < ttl {
		ttl = remaining
	}
	if err = c.rdb.Set(ctx, sessionKeyPrefix+session.Token, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache session: %w", err)
	}
	return nil
}

// Session gets a cached session by token
func (c *Cache) Session(ctx context.Context, token string) (*models.Session, error) {
	if !c.enabled {
		return nil, storage.InfoCacheDisabled
	}
	data, err := c.rdb.Get(ctx, sessionKeyPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, storage.ErrKeyNotFound
		}
		return nil, fmt.Errorf("failed to get cached session: %w", err)
	}
	var session models.Session
	if err = json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached session: %w", err)
	}
	return &session, nil
}

// InvalidateSession drops a cached session
func (c *Cache) InvalidateSession(ctx context.Context, token string) error {
	if !c.enabled {
		return storage.InfoCacheDisabled
	}
	return c.rdb.Del(ctx, sessionKeyPrefix+token).Err()
}
