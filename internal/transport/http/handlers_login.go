package httptransport

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"portal/internal/login"
	"portal/internal/platform/metrics"
	dErrors "portal/pkg/domain-errors"
	"portal/pkg/platform/httputil"
	"portal/pkg/platform/sentinel"
	"portal/pkg/requestcontext"
)

// LoginHandler runs one login form per request and resolves stored sessions.
type LoginHandler struct {
	auth     login.Authenticator
	sessions login.SessionStore
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewLoginHandler(auth login.Authenticator, sessions login.SessionStore, logger *slog.Logger, m *metrics.Metrics) *LoginHandler {
	return &LoginHandler{auth: auth, sessions: sessions, logger: logger, metrics: m}
}

// Register mounts the login and session routes.
func (h *LoginHandler) Register(r chi.Router) {
	r.Post("/v1/login", h.handleLogin)
	r.Get("/v1/session", h.handleGetSession)
	r.Delete("/v1/session", h.handleLogout)
}

func (h *LoginHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[LoginRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	gate := login.NewGate(h.auth,
		login.WithLogger(h.logger.With("request_id", requestID)),
		login.WithMetrics(h.metrics),
		login.WithSessionStore(h.sessions),
		login.WithClock(func() time.Time { return requestcontext.Now(ctx) }),
	)
	gate.SetEmail(req.Email)
	gate.SetPassword(req.Password)
	if err := gate.SelectRole(req.Role); err != nil {
		httputil.WriteError(w, err)
		return
	}

	handoff, err := gate.Submit(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, handoff)
}

func (h *LoginHandler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing bearer token"))
		return
	}
	handoff, err := h.sessions.Find(r.Context(), token)
	if err != nil {
		httputil.WriteError(w, h.sessionError(r, err))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, SessionResponse{User: handoff.User, ExpiresAt: handoff.ExpiresAt})
}

func (h *LoginHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing bearer token"))
		return
	}
	if err := h.sessions.Delete(r.Context(), token); err != nil {
		httputil.WriteError(w, h.sessionError(r, err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *LoginHandler) sessionError(r *http.Request, err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound), errors.Is(err, sentinel.ErrExpired):
		return dErrors.New(dErrors.CodeUnauthorized, "session not found")
	case errors.Is(err, sentinel.ErrUnavailable):
		h.logger.ErrorContext(r.Context(), "session store unavailable", "error", err)
		return dErrors.New(dErrors.CodeUnavailable, "session store unavailable")
	default:
		h.logger.ErrorContext(r.Context(), "session lookup failed", "error", err)
		return dErrors.Wrap(err, dErrors.CodeInternal, "session lookup failed")
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	token = strings.TrimSpace(token)
	return token, found && token != ""
}
