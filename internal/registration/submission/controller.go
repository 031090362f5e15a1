// Package submission drives one registration draft from submit to outcome:
// validate, build the wire payload, call the backend, and map the response
// back into a single user-facing message.
package submission

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"portal/internal/marketplace"
	"portal/internal/platform/metrics"
	"portal/internal/registration/draft"
	"portal/internal/registration/validation"
	dErrors "portal/pkg/domain-errors"
)

// State is the controller's position in the submit lifecycle.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateSubmitting
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	for candidate := StateIdle; candidate <= StateFailed; candidate++ {
		if candidate.String() == string(text) {
			*s = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown submission state %q", text)
}

// OutcomeKind classifies how a submit attempt ended.
type OutcomeKind string

const (
	OutcomeSucceeded      OutcomeKind = "succeeded"
	OutcomeViolation      OutcomeKind = "violation"
	OutcomeRejected       OutcomeKind = "rejected"
	OutcomeTransportError OutcomeKind = "transport_error"
)

// User-facing messages.
const (
	MsgSubmitted = "Registration submitted successfully! Please wait for admin approval."
	MsgFallback  = "Registration failed. Please try again."
)

var (
	ErrSubmissionInFlight = dErrors.New(dErrors.CodeInvalidState, "submission already in progress")
	ErrAlreadySubmitted   = dErrors.New(dErrors.CodeInvalidState, "registration already submitted")
	ErrClosed             = dErrors.New(dErrors.CodeInvalidState, "registration form is closed")
)

// Registrar is the backend operation the controller delegates to.
type Registrar interface {
	Register(ctx context.Context, payload marketplace.RegisterPayload) (*marketplace.Envelope, error)
}

// Outcome is the result of one submit attempt, ready for rendering.
type Outcome struct {
	Kind        OutcomeKind              `json:"kind"`
	State       State                    `json:"state"`
	Message     string                   `json:"message"`
	Violation   *validation.Violation    `json:"violation,omitempty"`
	FieldErrors []marketplace.FieldError `json:"field_errors,omitempty"`
}

// SuccessFunc is called once after the backend accepts the registration.
type SuccessFunc func(ctx context.Context)

// Controller owns the submit state machine for one draft.
type Controller struct {
	mu        sync.Mutex
	state     State
	closed    bool
	store     *draft.Store
	registrar Registrar
	onSuccess SuccessFunc
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

type Option func(*Controller)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Controller) {
		c.metrics = m
	}
}

// WithOnSuccess registers the hand-back to the caller after acceptance.
func WithOnSuccess(fn SuccessFunc) Option {
	return func(c *Controller) {
		c.onSuccess = fn
	}
}

// New constructs a Controller in the Idle state.
func New(store *draft.Store, registrar Registrar, opts ...Option) *Controller {
	c := &Controller{
		state:     StateIdle,
		store:     store,
		registrar: registrar,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State reports the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Close tears the controller down. A response still in flight is discarded
// when it arrives.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// Submit runs validation and, when it passes, one backend registration call.
// A second call while one is in flight is rejected, not queued.
// Local and backend rejections are returned as an Outcome with a nil error;
// errors are reserved for calls the controller refuses to run.
func (c *Controller) Submit(ctx context.Context) (*Outcome, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	switch c.state {
	case StateValidating, StateSubmitting:
		c.mu.Unlock()
		return nil, ErrSubmissionInFlight
	case StateSucceeded:
		c.mu.Unlock()
		return nil, ErrAlreadySubmitted
	}

	c.state = StateValidating
	snapshot := c.store.FreezeSnapshot()
	if v := validation.Validate(snapshot); v != nil {
		c.state = StateIdle
		c.store.Thaw()
		c.mu.Unlock()
		c.metrics.IncrementSubmission(string(OutcomeViolation))
		return &Outcome{
			Kind:      OutcomeViolation,
			State:     StateIdle,
			Message:   v.Message,
			Violation: v,
		}, nil
	}

	c.state = StateSubmitting
	c.mu.Unlock()

	env, err := c.registrar.Register(ctx, BuildPayload(snapshot))

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		c.logger.InfoContext(ctx, "discarding registration response for closed form",
			"transport_error", err != nil,
		)
		return nil, ErrClosed
	}

	outcome := c.interpret(ctx, env, err)
	if outcome.Kind == OutcomeSucceeded {
		c.state = StateSucceeded
		c.store.Discard()
	} else {
		// Failed hands control straight back to the user.
		c.state = StateIdle
		c.store.Thaw()
	}
	onSuccess := c.onSuccess
	c.mu.Unlock()

	c.metrics.IncrementSubmission(string(outcome.Kind))
	if outcome.Kind == OutcomeSucceeded && onSuccess != nil {
		onSuccess(ctx)
	}
	return outcome, nil
}

func (c *Controller) interpret(ctx context.Context, env *marketplace.Envelope, err error) *Outcome {
	if err != nil {
		c.logger.ErrorContext(ctx, "registration request failed",
			"category", marketplace.GetCategory(err),
			"error", err,
		)
		return &Outcome{Kind: OutcomeTransportError, State: StateFailed, Message: MsgFallback}
	}
	if env == nil {
		c.logger.ErrorContext(ctx, "registration returned no envelope")
		return &Outcome{Kind: OutcomeTransportError, State: StateFailed, Message: MsgFallback}
	}

	if env.Success {
		c.logger.InfoContext(ctx, "registration submitted")
		return &Outcome{Kind: OutcomeSucceeded, State: StateSucceeded, Message: MsgSubmitted}
	}

	if len(env.Errors) > 0 {
		c.logger.InfoContext(ctx, "registration rejected with field errors",
			"field_error_count", len(env.Errors),
		)
		return &Outcome{
			Kind:        OutcomeRejected,
			State:       StateFailed,
			Message:     FormatFieldErrors(env.Errors),
			FieldErrors: env.Errors,
		}
	}

	c.logger.InfoContext(ctx, "registration rejected",
		"server_message", env.Message,
	)
	return &Outcome{Kind: OutcomeRejected, State: StateFailed, Message: MsgFallback}
}

// FormatFieldErrors renders one "field: message" line per error.
func FormatFieldErrors(errs []marketplace.FieldError) string {
	lines := make([]string, 0, len(errs))
	for _, fe := range errs {
		lines = append(lines, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return strings.Join(lines, "\n")
}
