// Package store persists login handoffs. Records are keyed by a hash of the
// token so the raw token never appears as a key.
package store

import (
	"encoding/hex"
	"time"

	"golang.org/x/crypto/blake2b"

	"portal/internal/login"
	"portal/internal/marketplace"
	"portal/pkg/platform/sentinel"
)

// DefaultTTL applies to tokens that carry no expiry.
const DefaultTTL = 24 * time.Hour

type record struct {
	User      marketplace.User `json:"user"`
	ExpiresAt time.Time        `json:"expires_at"`
}

func tokenKey(token string) string {
	sum := blake2b.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// ttlFor returns how long h should be kept, or sentinel.ErrExpired.
func ttlFor(h login.Handoff, now time.Time, fallback time.Duration) (time.Duration, error) {
	if h.ExpiresAt.IsZero() {
		return fallback, nil
	}
	ttl := h.ExpiresAt.Sub(now)
	if ttl <= 0 {
		return 0, sentinel.ErrExpired
	}
	return ttl, nil
}
