package httptransport

import (
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"portal/internal/login"
	loginmocks "portal/internal/login/mocks"
	"portal/internal/login/store"
	"portal/internal/marketplace"
	"portal/internal/platform/logger"
	"portal/internal/platform/metrics"
	"portal/internal/registration/registry"
	submissionmocks "portal/internal/registration/submission/mocks"
	"portal/pkg/platform/sentinel"
	tu "portal/pkg/testutil"
)

func newLoginRouter(t *testing.T, auth login.Authenticator, sessions login.SessionStore) http.Handler {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := logger.Discard()
	m := metrics.New(prometheus.NewRegistry())
	return NewRouter(
		RouterConfig{Logger: log},
		NewRegistrationHandler(registry.New(submissionmocks.NewMockRegistrar(ctrl)), log, 1<<20),
		NewLoginHandler(auth, sessions, log, m),
	)
}

func TestLogin_MissingRoleMakesNoCall(t *testing.T) {
	ctrl := gomock.NewController(t)
	auth := loginmocks.NewMockAuthenticator(ctrl)
	auth.EXPECT().Login(gomock.Any(), gomock.Any()).Times(0)
	router := newLoginRouter(t, auth, store.NewInMemorySessionStore(0))

	rr := tu.DoRequest(router, tu.NewJSONRequest(t, http.MethodPost, "/v1/login", LoginRequest{Email: "a@example.com", Password: "x"}))

	tu.AssertStatus(t, rr, http.StatusBadRequest)
	tu.AssertErrorDescription(t, rr, login.MsgSelectRole)
}

func TestLogin_RejectsMalformedCredentialsWithoutCall(t *testing.T) {
	tests := []struct {
		name    string
		req     LoginRequest
		message string
	}{
		{name: "empty email", req: LoginRequest{Password: "Secret1", Role: "admin"}, message: "a valid email is required"},
		{name: "not an email", req: LoginRequest{Email: "admin", Password: "Secret1", Role: "admin"}, message: "a valid email is required"},
		{name: "email too long", req: LoginRequest{Email: strings.Repeat("a", 250) + "@example.com", Password: "Secret1", Role: "admin"}, message: "a valid email is required"},
		{name: "empty password", req: LoginRequest{Email: "a@example.com", Role: "admin"}, message: "password is required"},
		{name: "password too long", req: LoginRequest{Email: "a@example.com", Password: strings.Repeat("x", 257), Role: "admin"}, message: "password is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			auth := loginmocks.NewMockAuthenticator(ctrl)
			auth.EXPECT().Login(gomock.Any(), gomock.Any()).Times(0)
			router := newLoginRouter(t, auth, store.NewInMemorySessionStore(0))

			rr := tu.DoRequest(router, tu.NewJSONRequest(t, http.MethodPost, "/v1/login", tt.req))

			tu.AssertStatusAndError(t, rr, http.StatusBadRequest, "validation_error")
			tu.AssertErrorDescription(t, rr, tt.message)
		})
	}
}

func TestLogin_UnknownRole(t *testing.T) {
	ctrl := gomock.NewController(t)
	auth := loginmocks.NewMockAuthenticator(ctrl)
	router := newLoginRouter(t, auth, store.NewInMemorySessionStore(0))

	rr := tu.DoRequest(router, tu.NewJSONRequest(t, http.MethodPost, "/v1/login", LoginRequest{Email: "a@example.com", Password: "x", Role: "guest"}))

	tu.AssertStatusAndError(t, rr, http.StatusBadRequest, "invalid_input")
}

func TestLogin_SuccessStoresSessionForLookup(t *testing.T) {
	ctrl := gomock.NewController(t)
	auth := loginmocks.NewMockAuthenticator(ctrl)
	sessions := store.NewInMemorySessionStore(time.Hour)
	router := newLoginRouter(t, auth, sessions)

	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(2 * time.Hour)),
	}).SignedString([]byte("k"))
	require.NoError(t, err)

	auth.EXPECT().Login(gomock.Any(), marketplace.LoginPayload{Email: "v@example.com", Password: "Secret1", Role: "VENDOR"}).
		Return(&marketplace.LoginEnvelope{
			Success: true,
			Data: &marketplace.LoginData{
				User:  marketplace.User{ID: "v-1", Email: "v@example.com", Role: "VENDOR"},
				Token: raw,
			},
		}, nil)

	rr := tu.DoRequest(router, tu.NewJSONRequest(t, http.MethodPost, "/v1/login", LoginRequest{Email: " v@example.com ", Password: "Secret1", Role: "vendor"}))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	handoff := tu.UnmarshalResponse[login.Handoff](t, rr)
	assert.Equal(t, "vendor", handoff.User.Role)
	assert.Equal(t, raw, handoff.Token)
	assert.False(t, handoff.ExpiresAt.IsZero())

	req := tu.NewRequest(t, http.MethodGet, "/v1/session")
	req.Header.Set("Authorization", "Bearer "+raw)
	rr = tu.DoRequest(router, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "v-1", tu.UnmarshalResponse[SessionResponse](t, rr).User.ID)

	req = tu.NewRequest(t, http.MethodDelete, "/v1/session")
	req.Header.Set("Authorization", "Bearer "+raw)
	tu.AssertStatus(t, tu.DoRequest(router, req), http.StatusNoContent)

	req = tu.NewRequest(t, http.MethodGet, "/v1/session")
	req.Header.Set("Authorization", "Bearer "+raw)
	tu.AssertStatusAndError(t, tu.DoRequest(router, req), http.StatusUnauthorized, "unauthorized")
}

func TestLogin_RejectionReturnsServerMessage(t *testing.T) {
	ctrl := gomock.NewController(t)
	auth := loginmocks.NewMockAuthenticator(ctrl)
	auth.EXPECT().Login(gomock.Any(), gomock.Any()).Return(&marketplace.LoginEnvelope{Message: "Invalid credentials"}, nil)
	router := newLoginRouter(t, auth, store.NewInMemorySessionStore(0))

	rr := tu.DoRequest(router, tu.NewJSONRequest(t, http.MethodPost, "/v1/login", LoginRequest{Email: "a@example.com", Password: "bad", Role: "admin"}))

	tu.AssertStatus(t, rr, http.StatusUnauthorized)
	tu.AssertErrorDescription(t, rr, "Invalid credentials")
}

func TestLogin_BackendDownUsesFallback(t *testing.T) {
	ctrl := gomock.NewController(t)
	auth := loginmocks.NewMockAuthenticator(ctrl)
	auth.EXPECT().Login(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection refused"))
	router := newLoginRouter(t, auth, store.NewInMemorySessionStore(0))

	rr := tu.DoRequest(router, tu.NewJSONRequest(t, http.MethodPost, "/v1/login", LoginRequest{Email: "a@example.com", Password: "x", Role: "center"}))

	tu.AssertStatus(t, rr, http.StatusServiceUnavailable)
	tu.AssertErrorDescription(t, rr, login.MsgLoginFailed)
}

func TestSession_MissingBearer(t *testing.T) {
	router := newLoginRouter(t, nil, store.NewInMemorySessionStore(0))

	rr := tu.DoRequest(router, tu.NewRequest(t, http.MethodGet, "/v1/session"))
	tu.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
}

func TestSession_StoreUnavailable(t *testing.T) {
	ctrl := gomock.NewController(t)
	sessions := loginmocks.NewMockSessionStore(ctrl)
	sessions.EXPECT().Find(gomock.Any(), "tok").Return(nil, sentinel.ErrUnavailable)
	router := newLoginRouter(t, nil, sessions)

	req := tu.NewRequest(t, http.MethodGet, "/v1/session")
	req.Header.Set("Authorization", "Bearer tok")

	tu.AssertStatusAndError(t, tu.DoRequest(router, req), http.StatusServiceUnavailable, "unavailable")
}

func TestBearerToken(t *testing.T) {
	req := tu.NewRequest(t, http.MethodGet, "/")
	_, ok := bearerToken(req)
	assert.False(t, ok)

	req.Header.Set("Authorization", "Bearer  abc ")
	token, ok := bearerToken(req)
	assert.True(t, ok)
	assert.Equal(t, "abc", token)

	req.Header.Set("Authorization", "Basic abc")
	_, ok = bearerToken(req)
	assert.False(t, ok)
}

