// Package login implements the role-gated sign-in form and the hand-off of an
// authenticated session to the caller.
package login

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/asaskevich/govalidator"

	"portal/internal/login/token"
	"portal/internal/marketplace"
	"portal/internal/platform/metrics"
	dErrors "portal/pkg/domain-errors"
)

// User-facing messages.
const (
	MsgSelectRole  = "Please select your role"
	MsgLoginFailed = "Login failed. Please check your credentials."
)

var (
	ErrLoginInFlight = dErrors.New(dErrors.CodeInvalidState, "login already in progress")
	ErrRoleRequired  = dErrors.New(dErrors.CodeValidation, MsgSelectRole)
)

// Authenticator is the backend login call.
type Authenticator interface {
	Login(ctx context.Context, payload marketplace.LoginPayload) (*marketplace.LoginEnvelope, error)
}

// SessionStore persists handoffs so later requests can resolve a token.
type SessionStore interface {
	Save(ctx context.Context, h Handoff) error
	Find(ctx context.Context, token string) (*Handoff, error)
	Delete(ctx context.Context, token string) error
}

// Credentials are the transient inputs of one login form.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"-"`
	Role     Role   `json:"role,omitempty"`
}

// Handoff is what survives a successful login.
type Handoff struct {
	User      marketplace.User `json:"user"`
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at,omitzero"`
}

// Gate holds the state of one login form.
type Gate struct {
	mu         sync.Mutex
	creds      Credentials
	submitting bool

	auth     Authenticator
	sessions SessionStore
	logger   *slog.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

type Option func(*Gate)

func WithLogger(logger *slog.Logger) Option {
	return func(g *Gate) {
		g.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Gate) {
		g.metrics = m
	}
}

// WithSessionStore saves each successful handoff.
func WithSessionStore(s SessionStore) Option {
	return func(g *Gate) {
		g.sessions = s
	}
}

func WithClock(now func() time.Time) Option {
	return func(g *Gate) {
		g.now = now
	}
}

func NewGate(auth Authenticator, opts ...Option) *Gate {
	g := &Gate{
		auth:   auth,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Gate) SetEmail(email string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.creds.Email = email
}

func (g *Gate) SetPassword(password string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.creds.Password = password
}

// SelectRole sets the role. An empty string clears it.
func (g *Gate) SelectRole(role string) error {
	if role == "" {
		g.mu.Lock()
		g.creds.Role = ""
		g.mu.Unlock()
		return nil
	}
	r, err := ParseRole(role)
	if err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.creds.Role = r
	return nil
}

// Credentials returns the current form contents.
func (g *Gate) Credentials() Credentials {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.creds
}

// Submit sends the credentials to the backend. Without a selected role no call
// is made. On failure the credentials stay in place for another attempt; on
// success they are wiped and only the handoff remains.
func (g *Gate) Submit(ctx context.Context) (*Handoff, error) {
	g.mu.Lock()
	if g.submitting {
		g.mu.Unlock()
		return nil, ErrLoginInFlight
	}
	creds := g.creds
	if creds.Role == "" {
		g.mu.Unlock()
		return nil, ErrRoleRequired
	}
	g.submitting = true
	g.mu.Unlock()

	handoff, err := g.exchange(ctx, creds)

	g.mu.Lock()
	defer g.mu.Unlock()
	g.submitting = false
	if err != nil {
		g.metrics.IncrementLogin("failed", string(creds.Role))
		return nil, err
	}
	g.creds = Credentials{}
	g.metrics.IncrementLogin("succeeded", string(creds.Role))
	return handoff, nil
}

func (g *Gate) exchange(ctx context.Context, creds Credentials) (*Handoff, error) {
	env, err := g.auth.Login(ctx, marketplace.LoginPayload{
		Email:    creds.Email,
		Password: creds.Password,
		Role:     creds.Role.Backend(),
	})
	if err != nil {
		g.logger.ErrorContext(ctx, "login request failed",
			"role", creds.Role,
			"category", marketplace.GetCategory(err),
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, MsgLoginFailed)
	}
	if env == nil || !env.Success || env.Data == nil || env.Data.Token == "" {
		msg := MsgLoginFailed
		if env != nil && env.Message != "" {
			msg = env.Message
		}
		g.logger.InfoContext(ctx, "login rejected", "role", creds.Role)
		return nil, dErrors.New(dErrors.CodeUnauthorized, msg)
	}

	user := env.Data.User
	user.Role = string(RoleFromBackend(user.Role))
	if !govalidator.IsEmail(user.Email) {
		g.logger.WarnContext(ctx, "backend returned user without a valid email", "user_id", user.ID)
	}

	h := Handoff{User: user, Token: env.Data.Token}
	if claims, err := token.Inspect(h.Token); err != nil {
		g.logger.WarnContext(ctx, "could not read token claims", "error", err)
	} else {
		h.ExpiresAt = claims.ExpiresAt
		if claims.Expired(g.now()) {
			g.logger.WarnContext(ctx, "backend issued an already expired token", "user_id", user.ID)
		}
	}

	if g.sessions != nil {
		if err := g.sessions.Save(ctx, h); err != nil {
			g.logger.ErrorContext(ctx, "failed to store session", "error", err)
			return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, MsgLoginFailed)
		}
	}

	g.logger.InfoContext(ctx, "login succeeded", "role", user.Role, "user_id", user.ID)
	return &h, nil
}
