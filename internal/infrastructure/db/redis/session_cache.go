package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tuiter/tuiter-api/internal/core/domain"
)

// SessionCache keeps recently authenticated sessions in Redis so that the
// hot path of every request does not hit Postgres.
// Key format: session:<token>
type SessionCache struct {
	client *redis.Client
}

// NewSessionCache creates a SessionCache wrapping the given Redis client.
func NewSessionCache(client *redis.Client) *SessionCache {
	return &SessionCache{client: client}
}

// Get returns the cached session for the token, or nil on a miss.
func (c *SessionCache) Get(ctx context.Context, token string) (*domain.Session, error) {
	raw, err := c.client.Get(ctx, c.key(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session cache get: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("session cache decode: %w", err)
	}
	return &session, nil
}

// Set stores the session under its token for at most ttl. The entry never
// outlives the session itself.
func (c *SessionCache) Set(ctx context.Context, session *domain.Session, ttl time.Duration) error {
	if remaining := time.Until(session.ExpiresAt); remaining < ttl {
		ttl = remaining
	}
	if ttl <= 0 {
		return nil
	}

	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("session cache encode: %w", err)
	}
	return c.client.Set(ctx, c.key(session.Token), raw, ttl).Err()
}

// Invalidate drops the cached session, forcing the next lookup back to the
// store. Used on renewal and logout so stale expiries never linger.
func (c *SessionCache) Invalidate(ctx context.Context, token string) error {
	return c.client.Del(ctx, c.key(token)).Err()
}

func (c *SessionCache) key(token string) string {
	return fmt.Sprintf("session:%s", token)
}
