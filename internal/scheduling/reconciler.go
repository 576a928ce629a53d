package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/daymark/daymark/internal/milestone"
	"github.com/daymark/daymark/internal/model"
	"github.com/daymark/daymark/internal/notify"
	"github.com/daymark/daymark/internal/store"
)

// Reconciler repairs drift between the domain store and the external
// notification store: after the daemon's data is wiped (the "OS cleared
// the notification center" case) it re-registers every trigger that
// should exist. It never cancels anything; removal stays owned by the
// mutation paths.
type Reconciler struct {
	store    store.Store
	sched    *Scheduler
	provider notify.Provider
	logger   zerolog.Logger
}

func NewReconciler(st store.Store, sched *Scheduler, provider notify.Provider, logger zerolog.Logger) *Reconciler {
	return &Reconciler{store: st, sched: sched, provider: provider, logger: logger}
}

// Stats summarizes one reconcile pass.
type Stats struct {
	Events              int `json:"events"`
	MilestonesScheduled int `json:"milestonesScheduled"`
	RemindersScheduled  int `json:"remindersScheduled"`
	Skipped             int `json:"skipped"`
	Failures            int `json:"failures"`
}

// Run executes reconcile passes on the given interval until the context
// is cancelled. Pass errors are logged and the loop continues.
func (r *Reconciler) Run(ctx context.Context, interval time.Duration) error {
	r.logger.Info().Dur("interval", interval).Msg("reconciler starting")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info().Msg("reconciler stopping")
			return ctx.Err()
		case <-ticker.C:
			stats, err := r.ReconcileOnce(ctx)
			if err != nil {
				r.logger.Error().Err(err).Msg("reconcile pass failed")
				continue
			}
			if stats.MilestonesScheduled+stats.RemindersScheduled+stats.Failures > 0 {
				r.logger.Info().
					Int("events", stats.Events).
					Int("milestones_scheduled", stats.MilestonesScheduled).
					Int("reminders_scheduled", stats.RemindersScheduled).
					Int("failures", stats.Failures).
					Msg("reconcile pass complete")
			}
		}
	}
}

// ReconcileOnce lists the external store once, then schedules every
// unstamped future milestone and every due reminder that has no live
// correlated entry. Storage and list errors abort the pass; per-item
// scheduling failures are counted and the pass continues.
func (r *Reconciler) ReconcileOnce(ctx context.Context) (Stats, error) {
	var stats Stats

	live, err := r.provider.ListScheduled(ctx)
	if err != nil {
		return stats, fmt.Errorf("list scheduled notifications: %w", err)
	}
	liveMilestones := make(map[string]bool)
	liveReminders := make(map[string]bool)
	for _, entry := range live {
		switch entry.Correlation.Type {
		case notify.TypeMilestone:
			liveMilestones[entry.Correlation.MilestoneID] = true
		case notify.TypeReminder:
			liveReminders[entry.Correlation.ReminderID] = true
		}
	}

	events, err := r.store.Events().List(ctx)
	if err != nil {
		return stats, fmt.Errorf("list events: %w", err)
	}

	now := time.Now().UTC()
	for _, ev := range events {
		stats.Events++

		milestones, err := r.store.Milestones().List(ctx, ev.EventID)
		if err != nil {
			return stats, fmt.Errorf("list milestones for event %s: %w", ev.EventID, err)
		}
		for _, ms := range milestones {
			if ms.ReachedTime != nil || liveMilestones[ms.MilestoneID] {
				continue
			}
			if !milestone.TargetDate(ev.StartTime, ms.TargetAmount, ms.TargetUnit).After(now) {
				continue
			}
			stats.tally(r.sched.ScheduleMilestone(ctx, *ev, *ms), &stats.MilestonesScheduled)
		}

		reminders, err := r.store.Reminders().List(ctx, ev.EventID, true)
		if err != nil {
			return stats, fmt.Errorf("list reminders for event %s: %w", ev.EventID, err)
		}
		for _, rem := range reminders {
			if liveReminders[rem.ReminderID] {
				continue
			}
			if rem.Kind == model.ReminderOneOff && !rem.ScheduledTime.After(now) {
				continue
			}
			stats.tally(r.sched.ScheduleReminder(ctx, *ev, *rem), &stats.RemindersScheduled)
		}
	}
	return stats, nil
}

func (s *Stats) tally(res Result, scheduled *int) {
	switch res.Outcome {
	case OutcomeScheduled:
		*scheduled++
	case OutcomePastTrigger:
		s.Skipped++
	default:
		s.Failures++
	}
}
