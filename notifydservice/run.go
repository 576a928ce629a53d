package notifydservice

import (
	"context"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/daymark/daymark/internal/config"
	"github.com/daymark/daymark/internal/logger"
	"github.com/daymark/daymark/internal/notifyd"
)

// Run starts the notifyd daemon and blocks until shutdown or error.
func Run() error {
	log := logger.New("notifyd")

	cfg, err := config.NewNotifyd()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}
	log = logger.NewWithLevel("notifyd", cfg.LogLevel)

	log.Info().
		Int("http_port", cfg.HTTPPort).
		Str("data_dir", cfg.DataDir).
		Bool("in_memory", cfg.InMemory).
		Str("scan_spec", cfg.ScanSpec).
		Bool("grant_permission", cfg.GrantPermission).
		Msg("notifyd starting")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg, err := notifyd.OpenRegistry(notifyd.RegistryOptions{Dir: cfg.DataDir, InMemory: cfg.InMemory})
	if err != nil {
		log.Error().Stack().Err(err).Msg("registry unavailable")
		return err
	}
	defer func() { _ = reg.Close() }()

	engine := notifyd.NewEngine(reg, buildSinks(cfg, log), cfg.ScanSpec, log)
	if err := engine.Start(ctx); err != nil {
		log.Error().Stack().Err(err).Msg("delivery engine failed to start")
		return err
	}
	defer engine.Stop()

	apiLayer := notifyd.NewAPI(reg, cfg.GrantPermission, log)
	server := &http.Server{
		Addr:              cfg.GetHTTPAddr(),
		Handler:           apiLayer.Router(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down daemon")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Stack().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Daemon exited")
		return nil
	case err := <-errCh:
		log.Error().Stack().Err(err).Msg("HTTP server failed")
		return err
	}
}

// buildSinks assembles the delivery fan-out: always the log sink, plus a
// webhook when one is configured.
func buildSinks(cfg *config.NotifydConfig, log zerolog.Logger) []notifyd.Sink {
	sinks := []notifyd.Sink{notifyd.NewLogSink(log)}
	if cfg.WebhookURL != "" {
		sinks = append(sinks, notifyd.NewWebhookSink(cfg.WebhookURL))
	}
	return sinks
}
