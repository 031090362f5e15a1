package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"portal/internal/login"
	"portal/internal/login/store"
	"portal/internal/marketplace"
	"portal/internal/platform/config"
	"portal/internal/platform/httpserver"
	"portal/internal/platform/logger"
	"portal/internal/platform/metrics"
	"portal/internal/platform/redis"
	"portal/internal/registration/registry"
	httptransport "portal/internal/transport/http"
	"portal/pkg/platform/circuit"
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

// run wires dependencies and blocks until ctx is cancelled or a component fails.
func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	breaker := circuit.New("marketplace",
		circuit.WithFailureThreshold(cfg.Backend.BreakerThreshold),
		circuit.WithCooldown(cfg.Backend.BreakerCooldown),
	)
	client := marketplace.New(cfg.Backend.BaseURL, cfg.Backend.Timeout,
		marketplace.WithLogger(log),
		marketplace.WithMetrics(m),
		marketplace.WithBreaker(breaker),
	)

	sessions, redisHealth, closeSessions, err := buildSessionStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeSessions()

	drafts := registry.New(client,
		registry.WithTTL(cfg.Registration.DraftTTL),
		registry.WithMaxDocuments(cfg.Registration.MaxDocuments),
		registry.WithLogger(log),
		registry.WithMetrics(m),
	)

	router := httptransport.NewRouter(
		httptransport.RouterConfig{
			Logger:        log,
			Gatherer:      reg,
			AllowedOrigin: cfg.AllowedOrigin,
			RedisHealth:   redisHealth,
		},
		httptransport.NewRegistrationHandler(drafts, log, cfg.Registration.MaxUploadBytes),
		httptransport.NewLoginHandler(client, sessions, log, m),
	)
	srv := httpserver.New(cfg.Addr, router, cfg.Backend.Timeout)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting portal", "addr", cfg.Addr, "backend", cfg.Backend.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		err := drafts.Run(gctx, cfg.Registration.JanitorInterval)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// buildSessionStore picks Redis when configured and memory otherwise.
func buildSessionStore(ctx context.Context, cfg config.Server, log *slog.Logger) (login.SessionStore, httptransport.HealthCheck, func(), error) {
	rc, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, nil, err
	}
	if rc == nil {
		log.Info("redis not configured, keeping sessions in memory")
		return store.NewInMemorySessionStore(cfg.Session.DefaultTTL), nil, func() {}, nil
	}
	log.Info("using redis session store")
	closeFn := func() {
		if err := rc.Close(); err != nil {
			log.Warn("failed to close redis client", "error", err)
		}
	}
	return store.NewRedisSessionStore(rc.Client, cfg.Session.DefaultTTL), rc.Health, closeFn, nil
}
