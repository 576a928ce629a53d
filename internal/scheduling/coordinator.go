package scheduling

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/daymark/daymark/internal/model"
	"github.com/daymark/daymark/internal/store"
)

// Coordinator keeps external schedules consistent with domain mutations
// that are not direct reminder or milestone edits: event renames, event
// deletion, and the milestone burst at event creation.
type Coordinator struct {
	sched  *Scheduler
	store  store.Store
	logger zerolog.Logger
}

func NewCoordinator(sched *Scheduler, st store.Store, logger zerolog.Logger) *Coordinator {
	return &Coordinator{sched: sched, store: st, logger: logger}
}

// ScheduleMilestonesForNewEvent schedules one notification per
// milestone, sequentially so each failure stays isolated and loggable.
// Partial completion is terminal; the event is usable with whatever
// subset got scheduled.
func (c *Coordinator) ScheduleMilestonesForNewEvent(ctx context.Context, event model.Event, milestones []*model.Milestone) {
	for _, ms := range milestones {
		res := c.sched.ScheduleMilestone(ctx, event, *ms)
		c.logger.Debug().
			Str("event_id", event.EventID).
			Str("label", ms.Label).
			Str("outcome", string(res.Outcome)).
			Msg("milestone notification attempt")
	}
}

// RescheduleRemindersForRenamedEvent cancels and reschedules every
// reminder of the event so the new title is baked into the body text.
// Past one-off reminders are included in the read on purpose: they go
// through the same cancel-then-schedule pass for body consistency and
// the future-only precondition then skips them. Storage errors
// propagate; scheduling outcomes are only logged.
func (c *Coordinator) RescheduleRemindersForRenamedEvent(ctx context.Context, event model.Event) error {
	rems, err := c.store.Reminders().List(ctx, event.EventID, true)
	if err != nil {
		return fmt.Errorf("list reminders for event %s: %w", event.EventID, err)
	}
	for _, rem := range rems {
		res := c.sched.RescheduleReminder(ctx, event, *rem)
		c.logger.Info().
			Str("event_id", event.EventID).
			Str("reminder_id", rem.ReminderID).
			Str("outcome", string(res.Outcome)).
			Msg("reminder rescheduled after rename")
	}
	return nil
}

// CancelAllNotificationsForEvent is the pre-deletion sweep. Best effort:
// a provider failure is logged and the caller's deletion proceeds.
func (c *Coordinator) CancelAllNotificationsForEvent(ctx context.Context, eventID string) {
	n := c.sched.CancelEvent(ctx, eventID)
	c.logger.Info().
		Str("event_id", eventID).
		Int("cancelled", n).
		Msg("event notifications cancelled")
}
