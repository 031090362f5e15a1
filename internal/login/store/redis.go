package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"portal/internal/login"
	"portal/pkg/platform/sentinel"
)

const keyPrefix = "portal:session:"

// RedisSessionStore keeps handoffs in Redis with a TTL matching the token.
type RedisSessionStore struct {
	client     redis.Cmdable
	defaultTTL time.Duration
	now        func() time.Time
}

func NewRedisSessionStore(client redis.Cmdable, defaultTTL time.Duration) *RedisSessionStore {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	return &RedisSessionStore{client: client, defaultTTL: defaultTTL, now: time.Now}
}

func (s *RedisSessionStore) Save(ctx context.Context, h login.Handoff) error {
	now := s.now()
	ttl, err := ttlFor(h, now, s.defaultTTL)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(record{User: h.User, ExpiresAt: now.Add(ttl)})
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.SetEx(ctx, keyPrefix+tokenKey(h.Token), payload, ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w: %w", sentinel.ErrUnavailable, err)
	}
	return nil
}

func (s *RedisSessionStore) Find(ctx context.Context, token string) (*login.Handoff, error) {
	raw, err := s.client.Get(ctx, keyPrefix+tokenKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find session: %w: %w", sentinel.ErrUnavailable, err)
	}
	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &login.Handoff{User: rec.User, Token: token, ExpiresAt: rec.ExpiresAt}, nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, keyPrefix+tokenKey(token)).Err(); err != nil {
		return fmt.Errorf("delete session: %w: %w", sentinel.ErrUnavailable, err)
	}
	return nil
}
