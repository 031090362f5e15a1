// Package httptransport is the browser-facing HTTP surface of the portal.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"portal/pkg/platform/middleware/metadata"
	"portal/pkg/platform/middleware/requestlog"
	"portal/pkg/platform/middleware/requesttime"
)

// RouterConfig collects what the router needs beyond the handlers.
type RouterConfig struct {
	Logger        *slog.Logger
	Gatherer      prometheus.Gatherer
	AllowedOrigin string
	RedisHealth   HealthCheck
}

// NewRouter wires every public route.
func NewRouter(cfg RouterConfig, registration *RegistrationHandler, login *LoginHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	r.Use(requestlog.Middleware(cfg.Logger))
	if cfg.AllowedOrigin != "" {
		r.Use(cors.Handler(corsOptions(cfg.AllowedOrigin)))
	}

	r.Get("/health", handleHealth(cfg.Logger, cfg.RedisHealth))
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Get("/v1/options", handleOptions)
	registration.Register(r)
	login.Register(r)
	return r
}

// corsOptions admits the single browser origin the portal is served from.
func corsOptions(origin string) cors.Options {
	return cors.Options{
		AllowedOrigins:       []string{origin},
		AllowedMethods:       []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:       []string{"Accept", "Authorization", "Content-Type", metadata.RequestIDHeader},
		ExposedHeaders:       []string{metadata.RequestIDHeader},
		MaxAge:               300,
		OptionsSuccessStatus: http.StatusNoContent,
	}
}
