package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"portal/internal/login"
	"portal/internal/registration/models"
	"portal/pkg/platform/httputil"
)

// HealthCheck probes an optional dependency.
type HealthCheck func(ctx context.Context) error

func handleOptions(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, OptionsResponse{
		Provinces: models.Provinces,
		Weekdays:  models.Weekdays,
		Services:  models.Services,
		Roles:     login.Roles,
	})
}

func handleHealth(logger *slog.Logger, redisCheck HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{Status: "ok"}
		if redisCheck == nil {
			httputil.WriteJSON(w, http.StatusOK, resp)
			return
		}
		if err := redisCheck(r.Context()); err != nil {
			logger.WarnContext(r.Context(), "redis health check failed", "error", err)
			resp.Status = "degraded"
			resp.Redis = "unavailable"
			httputil.WriteJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
		resp.Redis = "ok"
		httputil.WriteJSON(w, http.StatusOK, resp)
	}
}
