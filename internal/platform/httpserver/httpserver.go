package httpserver

import (
	"net/http"
	"time"
)

// New builds an HTTP server with the timeouts used across the service.
// WriteTimeout covers a full backend round trip plus upload handling.
func New(addr string, handler http.Handler, backendTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      backendTimeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
