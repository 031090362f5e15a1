// Package registry keeps the open registration forms of this process, one
// isolated store and controller per draft.
package registry

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"portal/internal/platform/metrics"
	"portal/internal/registration/draft"
	"portal/internal/registration/submission"
	id "portal/pkg/domain"
	dErrors "portal/pkg/domain-errors"
	"portal/pkg/platform/sentinel"
)

// DefaultTTL is how long an untouched draft survives.
const DefaultTTL = 2 * time.Hour

// Form is one open registration: its draft store and submit controller.
type Form struct {
	ID         id.DraftID
	Store      *draft.Store
	Controller *submission.Controller
}

// Registry maps draft IDs to forms.
type Registry struct {
	mu        sync.RWMutex
	forms     map[id.DraftID]*Form
	registrar submission.Registrar
	ttl       time.Duration
	maxDocs   int
	logger    *slog.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

type Option func(*Registry)

func WithTTL(ttl time.Duration) Option {
	return func(r *Registry) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

// WithMaxDocuments caps attachments per draft. Zero or less lifts the cap.
func WithMaxDocuments(n int) Option {
	return func(r *Registry) {
		r.maxDocs = n
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Registry) {
		r.metrics = m
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

func New(registrar submission.Registrar, opts ...Option) *Registry {
	r := &Registry{
		forms:     make(map[id.DraftID]*Form),
		registrar: registrar,
		ttl:       DefaultTTL,
		maxDocs:   draft.DefaultMaxDocuments,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create opens a new form with a default draft. The form leaves the registry
// on its own once the backend accepts it.
func (r *Registry) Create() *Form {
	draftID := id.NewDraftID()
	store := draft.New(draft.WithClock(r.now), draft.WithMaxDocuments(r.maxDocs))
	controller := submission.New(store, r.registrar,
		submission.WithLogger(r.logger.With("draft_id", draftID.String())),
		submission.WithMetrics(r.metrics),
		submission.WithOnSuccess(func(context.Context) {
			r.Remove(draftID)
		}),
	)
	form := &Form{ID: draftID, Store: store, Controller: controller}

	r.mu.Lock()
	r.forms[draftID] = form
	r.mu.Unlock()

	r.metrics.IncrementDraftsCreated()
	return form
}

// Get returns the form for draftID.
func (r *Registry) Get(draftID id.DraftID) (*Form, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	form, ok := r.forms[draftID]
	if !ok {
		return nil, dErrors.Wrap(sentinel.ErrNotFound, dErrors.CodeNotFound, "registration draft not found")
	}
	return form, nil
}

// Remove drops a form and closes its controller so a response still in flight
// is discarded. It reports whether the form existed.
func (r *Registry) Remove(draftID id.DraftID) bool {
	r.mu.Lock()
	form, ok := r.forms[draftID]
	delete(r.forms, draftID)
	r.mu.Unlock()
	if !ok {
		return false
	}
	form.Controller.Close()
	r.metrics.DraftsRemoved(1, false)
	return true
}

// Len reports how many forms are open.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.forms)
}

// EvictIdleAt removes forms untouched for longer than the TTL as of now.
// Forms with a submission in flight are kept.
func (r *Registry) EvictIdleAt(now time.Time) int {
	cutoff := now.Add(-r.ttl)

	r.mu.Lock()
	var evicted []*Form
	for draftID, form := range r.forms {
		if form.Controller.State() == submission.StateSubmitting {
			continue
		}
		if form.Store.UpdatedAt().Before(cutoff) {
			delete(r.forms, draftID)
			evicted = append(evicted, form)
		}
	}
	r.mu.Unlock()

	for _, form := range evicted {
		form.Controller.Close()
	}
	if len(evicted) > 0 {
		r.metrics.DraftsRemoved(len(evicted), true)
		r.logger.Info("evicted idle registration drafts", "count", len(evicted))
	}
	return len(evicted)
}

// Run evicts idle forms every interval until ctx is cancelled.
func (r *Registry) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.EvictIdleAt(r.now())
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
