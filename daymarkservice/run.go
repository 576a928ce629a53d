package daymarkservice

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/daymark/daymark/internal/api"
	"github.com/daymark/daymark/internal/config"
	"github.com/daymark/daymark/internal/health"
	"github.com/daymark/daymark/internal/logger"
	"github.com/daymark/daymark/internal/notify"
	"github.com/daymark/daymark/internal/scheduling"
	"github.com/daymark/daymark/internal/services"
	"github.com/daymark/daymark/internal/store"
	"github.com/daymark/daymark/internal/store/postgres"
	"github.com/daymark/daymark/internal/store/sqlite"
	"github.com/daymark/daymark/internal/tasks"
)

const healthProbeTimeout = 2 * time.Second

// Run starts the daymark service HTTP server and blocks until shutdown or error.
func Run() error {
	log := logger.New("daymark-service")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}
	log = logger.NewWithLevel("daymark-service", cfg.LogLevel)

	log.Info().
		Str("db_driver", cfg.DBDriver).
		Int("http_port", cfg.HTTPPort).
		Str("notifier_url", cfg.NotifierURL).
		Bool("notifications_enabled", cfg.NotificationsEnabled).
		Msg("Daymark service starting")

	// Create cancellable root context bound to SIGINT/SIGTERM
	ctx, stop := newServerContext()
	defer stop()

	// Initialize dependencies (store, notification provider)
	st, provider, err := initDependencies(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	// Background task runner; outlives request contexts, drained at shutdown
	runner := tasks.NewRunner(ctx, log)

	// Build router
	router := buildRouter(st, provider, runner, log)

	// Start health checkers and bind service health
	svcHealth := startHealthCheckers(ctx, cfg, log, st, provider)

	// Block startup until dependencies report healthy; fail fast otherwise
	if err := waitUntilHealthy(ctx, cfg, svcHealth); err != nil {
		log.Error().Stack().Err(err).Msg("startup health check failed")
		return err
	}

	// Optional embedded reconciler repairs notification drift in-process
	if cfg.ReconcileInterval > 0 {
		sched := scheduling.NewScheduler(provider, log)
		rec := scheduling.NewReconciler(st, sched, provider, log)
		runner.Go("reconciler", func(taskCtx context.Context) {
			_ = rec.Run(taskCtx, cfg.ReconcileInterval)
		})
	}

	// HTTP server and serve
	server := newHTTPServer(ctx, cfg, router)
	errCh := serveHTTP(server, log, cfg)

	// Graceful shutdown on context cancel or server error
	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Stack().Err(err).Msg("Server forced to shutdown")
			return err
		}
		if !runner.Drain(10 * time.Second) {
			log.Warn().Msg("background tasks still running at shutdown")
		}
		log.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		log.Error().Stack().Err(err).Msg("HTTP server failed")
		return err
	}
}

// initDependencies constructs required components and enforces fail-fast on missing deps.
func initDependencies(cfg *config.Config, log zerolog.Logger) (store.Store, notify.Provider, error) {
	st, err := openStore(cfg)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Store unavailable")
		return nil, nil, err
	}

	var provider notify.Provider
	if cfg.NotificationsEnabled {
		provider = notify.NewClient(cfg.NotifierURL)
	} else {
		log.Warn().Msg("notifications disabled; running with no-op provider")
		provider = notify.NewNoop()
	}
	return st, provider, nil
}

// openStore selects the storage backend from config.
func openStore(cfg *config.Config) (store.Store, error) {
	switch cfg.DBDriver {
	case "sqlite":
		return sqlite.Open(cfg.SQLitePath)
	case "postgres":
		return postgres.Open(cfg.PostgresDSN)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER: %s", cfg.DBDriver)
	}
}

// buildRouter wires the domain services and hands them to the API route table.
func buildRouter(st store.Store, provider notify.Provider, runner *tasks.Runner, log zerolog.Logger) *mux.Router {
	sched := scheduling.NewScheduler(provider, log)
	coord := scheduling.NewCoordinator(sched, st, log)

	eventSvc := services.NewEventService(st, coord, runner, log)
	reminderSvc := services.NewReminderService(st, sched)

	return api.NewRouter(eventSvc, reminderSvc)
}

// startHealthCheckers starts component checkers and service-level aggregator; binds health.
func startHealthCheckers(ctx context.Context, cfg *config.Config, log zerolog.Logger, st store.Store, provider notify.Provider) *health.ServiceHealthChecker {
	var checkers []health.HealthChecker

	storeChecker := store.NewStoreHealthChecker(st, log, healthProbeTimeout)
	go storeChecker.Start(ctx, cfg.HealthInterval)
	checkers = append(checkers, storeChecker)

	notifierChecker := notify.NewProviderHealthChecker(provider, log, healthProbeTimeout)
	go notifierChecker.Start(ctx, cfg.HealthInterval)
	checkers = append(checkers, notifierChecker)

	svcHealth := health.NewServiceHealthChecker(log, checkers...)
	go svcHealth.Start(ctx, cfg.HealthInterval)
	api.BindServiceHealth(svcHealth.IsHealthy)
	return svcHealth
}

func newHTTPServer(ctx context.Context, cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.GetHTTPAddr(),
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}

func serveHTTP(server *http.Server, log zerolog.Logger, cfg *config.Config) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	return errCh
}

// calculateStartupHealthTimeout returns the startup health timeout,
// calculated as interval*2 with a minimum of 60 seconds.
func calculateStartupHealthTimeout(interval time.Duration) time.Duration {
	timeout := 2 * interval
	if timeout < time.Minute {
		return time.Minute
	}
	return timeout
}

// waitUntilHealthy blocks until service health is healthy or the startup window expires.
func waitUntilHealthy(ctx context.Context, cfg *config.Config, svcHealth *health.ServiceHealthChecker) error {
	// Health checkers start unhealthy and need time to run their first probe.
	timeout := calculateStartupHealthTimeout(cfg.HealthInterval)
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		if svcHealth.IsHealthy() {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("startup aborted: dependencies not healthy within %s", timeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// newServerContext returns a cancellable context that is cancelled on SIGINT/SIGTERM.
func newServerContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
