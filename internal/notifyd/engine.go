package notifyd

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Engine is the delivery loop. On every cron tick it scans the registry
// for due entries, pushes each through every sink, then removes one-shot
// entries and re-arms recurring ones. A fired one-shot is gone for good;
// a recurring entry stays registered until it is cancelled.
type Engine struct {
	reg    *Registry
	sinks  []Sink
	spec   string
	cron   *cron.Cron
	logger zerolog.Logger
	ctx    context.Context
}

// NewEngine builds an engine ticking on the given cron spec. The spec
// uses the six-field form with a seconds column, e.g. "*/15 * * * * *".
func NewEngine(reg *Registry, sinks []Sink, scanSpec string, logger zerolog.Logger) *Engine {
	return &Engine{
		reg:    reg,
		sinks:  sinks,
		spec:   scanSpec,
		cron:   cron.New(cron.WithSeconds()),
		logger: logger,
	}
}

// Start registers the scan job and begins ticking. The context bounds
// sink deliveries started by subsequent scans.
func (e *Engine) Start(ctx context.Context) error {
	e.ctx = ctx
	if _, err := e.cron.AddFunc(e.spec, e.tick); err != nil {
		return fmt.Errorf("invalid scan spec %q: %w", e.spec, err)
	}
	e.cron.Start()
	e.logger.Info().Str("spec", e.spec).Msg("delivery engine started")
	return nil
}

// Stop halts the ticker and waits for an in-flight scan to finish.
func (e *Engine) Stop() {
	<-e.cron.Stop().Done()
	e.logger.Info().Msg("delivery engine stopped")
}

func (e *Engine) tick() {
	e.ScanOnce(e.ctx, time.Now().UTC())
}

// ScanOnce runs a single due-scan at the given instant and returns the
// number of notifications fired. Errors are logged, never propagated;
// a bad entry must not wedge the loop.
func (e *Engine) ScanOnce(ctx context.Context, now time.Time) int {
	due, err := e.reg.Due(now)
	if err != nil {
		e.logger.Error().Err(err).Msg("due scan failed")
		return 0
	}
	for _, rec := range due {
		e.fire(ctx, rec, now)
	}
	if len(due) > 0 {
		e.logger.Debug().Int("fired", len(due)).Msg("scan complete")
	}
	return len(due)
}

func (e *Engine) fire(ctx context.Context, rec Record, now time.Time) {
	for _, s := range e.sinks {
		if err := s.Deliver(ctx, rec); err != nil {
			e.logger.Error().Err(err).
				Str("sink", s.Name()).
				Str("handle", rec.Handle).
				Msg("sink delivery failed")
		}
	}

	if rec.Trigger.Repeat == nil {
		if err := e.reg.Delete(rec.Handle); err != nil {
			e.logger.Error().Err(err).Str("handle", rec.Handle).Msg("failed to remove fired notification")
		}
		return
	}

	next, err := rec.Trigger.Repeat.NextAfter(now)
	if err != nil {
		// Unresolvable pattern; drop the entry rather than refire forever.
		e.logger.Error().Err(err).Str("handle", rec.Handle).Msg("failed to re-arm recurring notification")
		if derr := e.reg.Delete(rec.Handle); derr != nil {
			e.logger.Error().Err(derr).Str("handle", rec.Handle).Msg("failed to remove broken notification")
		}
		return
	}
	rec.NextFireAt = next
	if err := e.reg.Put(rec); err != nil {
		e.logger.Error().Err(err).Str("handle", rec.Handle).Msg("failed to re-arm recurring notification")
	}
}
