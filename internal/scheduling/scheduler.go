// Package scheduling keeps the external notification store consistent
// with the domain: it turns milestones and reminders into notification
// triggers, cancels them when their owners go away, and repairs drift
// between the two stores. Notification failures degrade to logged
// outcomes; they never fail the domain operation that triggered them.
package scheduling

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/daymark/daymark/internal/elapsed"
	"github.com/daymark/daymark/internal/milestone"
	"github.com/daymark/daymark/internal/model"
	"github.com/daymark/daymark/internal/notify"
)

// Outcome classifies one schedule attempt.
type Outcome string

const (
	// OutcomeScheduled means the trigger is registered externally.
	OutcomeScheduled Outcome = "scheduled"
	// OutcomePastTrigger means the fire instant was not strictly in the
	// future; the attempt was skipped without contacting the provider.
	OutcomePastTrigger Outcome = "past_trigger"
	// OutcomePermissionDenied means the user (or daemon) refused
	// notification permission.
	OutcomePermissionDenied Outcome = "permission_denied"
	// OutcomeUnknownRule means the recurrence rule was not recognized.
	OutcomeUnknownRule Outcome = "unknown_rule"
	// OutcomeProviderError means the provider call itself failed.
	OutcomeProviderError Outcome = "provider_error"
)

// Result reports one schedule attempt. Any outcome short of scheduled
// leaves the domain records untouched; a later edit is the only retry.
type Result struct {
	Outcome Outcome `json:"outcome"`
	Handle  string  `json:"handle,omitempty"`
}

// Scheduled reports whether the attempt registered a trigger.
func (r Result) Scheduled() bool { return r.Outcome == OutcomeScheduled }

// Scheduler drives the notification provider. Per identity the external
// lifecycle is Unscheduled, then Scheduled, then Fired or Cancelled; the
// only record of that state is the provider's own store, so the
// scheduler holds no per-identity state at all. The one thing it caches
// is a permission grant: a grant lasts for the process lifetime, a
// denial is re-asked on the next attempt.
type Scheduler struct {
	provider notify.Provider
	logger   zerolog.Logger
	granted  atomic.Bool
}

// NewScheduler wires a scheduler to its provider.
func NewScheduler(provider notify.Provider, logger zerolog.Logger) *Scheduler {
	return &Scheduler{provider: provider, logger: logger}
}

// notificationBody renders the elapsed-time sentence as it will read at
// the given instant.
func notificationBody(event model.Event, at time.Time) string {
	return "It has been " + elapsed.Format(event.StartTime, event.DisplayUnit, at) + " since " + event.Title
}

// ScheduleMilestone registers a one-shot trigger at the milestone's
// calendar-correct target date. Targets not strictly in the future are
// skipped without contacting the provider.
func (s *Scheduler) ScheduleMilestone(ctx context.Context, event model.Event, ms model.Milestone) Result {
	target := milestone.TargetDate(event.StartTime, ms.TargetAmount, ms.TargetUnit).UTC()
	if !target.After(time.Now().UTC()) {
		s.logger.Debug().
			Str("milestone_id", ms.MilestoneID).
			Str("label", ms.Label).
			Time("target", target).
			Msg("milestone target not in the future, skipped")
		return Result{Outcome: OutcomePastTrigger}
	}
	req := notify.ScheduleRequest{
		Trigger: notify.OneShot(target),
		// Body is rendered at the target instant so it reads correctly
		// when the notification fires.
		Content: notify.Content{Title: ms.Label, Body: notificationBody(event, target)},
		Correlation: notify.Correlation{
			Type:        notify.TypeMilestone,
			EventID:     event.EventID,
			MilestoneID: ms.MilestoneID,
		},
	}
	return s.submit(ctx, req)
}

// ScheduleReminder registers a trigger for the reminder: a one-shot at
// its scheduled instant (strictly future, like milestones) or a
// recurrence pattern extracted from its anchor. Recurring bodies render
// elapsed time at schedule time, an accepted approximation since the
// true fire instants are open-ended.
func (s *Scheduler) ScheduleReminder(ctx context.Context, event model.Event, rem model.Reminder) Result {
	var req notify.ScheduleRequest
	switch rem.Kind {
	case model.ReminderOneOff:
		at := rem.ScheduledTime.UTC()
		if !at.After(time.Now().UTC()) {
			s.logger.Debug().
				Str("reminder_id", rem.ReminderID).
				Time("scheduled_at", at).
				Msg("reminder instant not in the future, skipped")
			return Result{Outcome: OutcomePastTrigger}
		}
		req = notify.ScheduleRequest{
			Trigger: notify.OneShot(at),
			Content: notify.Content{Title: event.Title, Body: notificationBody(event, at)},
		}
	case model.ReminderRecurring:
		rep, err := notify.RepeatFromAnchor(rem.Rule, rem.ScheduledTime)
		if err != nil {
			s.logger.Warn().
				Str("reminder_id", rem.ReminderID).
				Str("rule", string(rem.Rule)).
				Msg("unrecognized recurrence rule, reminder not scheduled")
			return Result{Outcome: OutcomeUnknownRule}
		}
		req = notify.ScheduleRequest{
			Trigger: notify.Recurring(rep),
			Content: notify.Content{Title: event.Title, Body: notificationBody(event, time.Now().UTC())},
		}
	default:
		s.logger.Warn().
			Str("reminder_id", rem.ReminderID).
			Str("kind", string(rem.Kind)).
			Msg("unrecognized reminder kind, not scheduled")
		return Result{Outcome: OutcomeUnknownRule}
	}
	req.Correlation = notify.Correlation{
		Type:       notify.TypeReminder,
		EventID:    event.EventID,
		ReminderID: rem.ReminderID,
	}
	return s.submit(ctx, req)
}

// submit runs the permission gate and the provider call. At most one
// permission request per attempt.
func (s *Scheduler) submit(ctx context.Context, req notify.ScheduleRequest) Result {
	if !s.granted.Load() {
		ok, err := s.provider.RequestPermission(ctx)
		if err != nil {
			s.logger.Error().Err(err).Msg("permission request failed")
			return Result{Outcome: OutcomeProviderError}
		}
		if !ok {
			s.logger.Info().
				Str("type", req.Correlation.Type).
				Str("event_id", req.Correlation.EventID).
				Msg("notification permission denied, not scheduled")
			return Result{Outcome: OutcomePermissionDenied}
		}
		s.granted.Store(true)
	}

	handle, err := s.provider.Schedule(ctx, req)
	if err != nil {
		s.logger.Error().Err(err).
			Str("type", req.Correlation.Type).
			Str("event_id", req.Correlation.EventID).
			Msg("notification schedule failed")
		return Result{Outcome: OutcomeProviderError}
	}
	s.logger.Info().
		Str("handle", handle).
		Str("type", req.Correlation.Type).
		Str("event_id", req.Correlation.EventID).
		Msg("notification scheduled")
	return Result{Outcome: OutcomeScheduled, Handle: handle}
}

// CancelMilestone cancels every live entry correlated to the milestone
// and returns how many it cancelled. No matches is a clean no-op, so
// repeated cancels converge on the same external state.
func (s *Scheduler) CancelMilestone(ctx context.Context, milestoneID string) int {
	return s.cancelMatching(ctx, "milestone_id", milestoneID, func(c notify.Correlation) bool {
		return c.MatchesMilestone(milestoneID)
	})
}

// CancelReminder cancels every live entry correlated to the reminder.
func (s *Scheduler) CancelReminder(ctx context.Context, reminderID string) int {
	return s.cancelMatching(ctx, "reminder_id", reminderID, func(c notify.Correlation) bool {
		return c.MatchesReminder(reminderID)
	})
}

// CancelEvent cancels every live entry belonging to the event,
// milestones and reminders alike.
func (s *Scheduler) CancelEvent(ctx context.Context, eventID string) int {
	return s.cancelMatching(ctx, "event_id", eventID, func(c notify.Correlation) bool {
		return c.MatchesEvent(eventID)
	})
}

func (s *Scheduler) cancelMatching(ctx context.Context, idKey, id string, match func(notify.Correlation) bool) int {
	live, err := s.provider.ListScheduled(ctx)
	if err != nil {
		s.logger.Error().Err(err).Str(idKey, id).Msg("list scheduled failed during cancel")
		return 0
	}
	cancelled := 0
	for _, entry := range live {
		if !match(entry.Correlation) {
			continue
		}
		if err := s.provider.Cancel(ctx, entry.Handle); err != nil {
			s.logger.Error().Err(err).
				Str("handle", entry.Handle).
				Str(idKey, id).
				Msg("notification cancel failed")
			continue
		}
		cancelled++
	}
	return cancelled
}

// RescheduleReminder cancels the reminder's live entries and then
// schedules it afresh. Cancel always completes (or is observed to fail
// in the log) before the new schedule goes out, so two live triggers
// never coexist for one identity.
func (s *Scheduler) RescheduleReminder(ctx context.Context, event model.Event, rem model.Reminder) Result {
	s.CancelReminder(ctx, rem.ReminderID)
	return s.ScheduleReminder(ctx, event, rem)
}
