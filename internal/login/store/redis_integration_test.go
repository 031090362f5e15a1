//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"portal/internal/login"
	"portal/internal/marketplace"
	"portal/pkg/testutil/containers"
)

func TestRedisSessionStore_Integration(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	ctx := context.Background()
	require.NoError(t, rc.FlushAll(ctx))

	s := NewRedisSessionStore(rc.Client, time.Hour)
	h := login.Handoff{
		User:      marketplace.User{ID: "u-9", Role: "vendor"},
		Token:     "integration-token",
		ExpiresAt: time.Now().Add(time.Minute),
	}
	require.NoError(t, s.Save(ctx, h))

	got, err := s.Find(ctx, h.Token)
	require.NoError(t, err)
	require.Equal(t, h.User, got.User)

	ttl, err := rc.Client.TTL(ctx, keyPrefix+tokenKey(h.Token)).Result()
	require.NoError(t, err)
	require.LessOrEqual(t, ttl, time.Minute)
	require.Greater(t, ttl, time.Duration(0))
}
