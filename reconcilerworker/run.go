package reconcilerworker

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/daymark/daymark/internal/config"
	"github.com/daymark/daymark/internal/notify"
	"github.com/daymark/daymark/internal/scheduling"
	"github.com/daymark/daymark/internal/store"
	"github.com/daymark/daymark/internal/store/postgres"
	"github.com/daymark/daymark/internal/store/sqlite"
)

// defaultInterval applies when DAYMARK_RECONCILE_INTERVAL is unset; the
// standalone worker always loops.
const defaultInterval = 5 * time.Minute

// Run starts the reconciler worker and blocks until shutdown or error.
// With once set it performs a single pass and prints the stats as JSON.
func Run(once bool) error {
	cfg, err := config.New()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil && lvl != zerolog.NoLevel {
		zerolog.SetGlobalLevel(lvl)
	}

	st, err := openStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("store open")
	}
	defer func() { _ = st.Close() }()
	if err := st.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("store ping")
	}

	// Validate notifier readiness at startup
	provider := notify.NewClient(cfg.NotifierURL)
	if err := provider.Healthz(context.Background()); err != nil {
		return fmt.Errorf("notifier not ready: url=%s err=%w", cfg.NotifierURL, err)
	}

	sched := scheduling.NewScheduler(provider, log.Logger)
	rec := scheduling.NewReconciler(st, sched, provider, log.Logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if once {
		stats, err := rec.ReconcileOnce(ctx)
		if err != nil {
			log.Error().Err(err).Msg("reconcile pass failed")
			return err
		}
		out, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	interval := cfg.ReconcileInterval
	if interval <= 0 {
		interval = defaultInterval
	}
	if err := rec.Run(ctx, interval); err != nil && err != context.Canceled {
		log.Error().Err(err).Msg("reconciler worker exit")
		return err
	}
	return nil
}

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
