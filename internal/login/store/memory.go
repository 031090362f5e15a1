package store

import (
	"context"
	"sync"
	"time"

	"portal/internal/login"
	"portal/pkg/platform/sentinel"
)

// InMemorySessionStore keeps handoffs in process memory.
type InMemorySessionStore struct {
	mu         sync.RWMutex
	sessions   map[string]record
	defaultTTL time.Duration
	now        func() time.Time
}

type MemoryOption func(*InMemorySessionStore)

// WithMemoryClock overrides the time source.
func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(s *InMemorySessionStore) {
		s.now = now
	}
}

func NewInMemorySessionStore(defaultTTL time.Duration, opts ...MemoryOption) *InMemorySessionStore {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	s := &InMemorySessionStore{
		sessions:   make(map[string]record),
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *InMemorySessionStore) Save(_ context.Context, h login.Handoff) error {
	now := s.now()
	ttl, err := ttlFor(h, now, s.defaultTTL)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked(now)
	s.sessions[tokenKey(h.Token)] = record{User: h.User, ExpiresAt: now.Add(ttl)}
	return nil
}

// sweepLocked drops every expired record; the caller holds mu.
func (s *InMemorySessionStore) sweepLocked(now time.Time) {
	for key, rec := range s.sessions {
		if !now.Before(rec.ExpiresAt) {
			delete(s.sessions, key)
		}
	}
}

func (s *InMemorySessionStore) Find(_ context.Context, token string) (*login.Handoff, error) {
	key := tokenKey(token)
	s.mu.RLock()
	rec, ok := s.sessions[key]
	s.mu.RUnlock()
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if !s.now().Before(rec.ExpiresAt) {
		s.mu.Lock()
		delete(s.sessions, key)
		s.mu.Unlock()
		return nil, sentinel.ErrNotFound
	}
	return &login.Handoff{User: rec.User, Token: token, ExpiresAt: rec.ExpiresAt}, nil
}

func (s *InMemorySessionStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, tokenKey(token))
	return nil
}
