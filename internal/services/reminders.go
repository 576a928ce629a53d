package services

import (
	"context"
	"fmt"

	"github.com/daymark/daymark/internal/model"
	"github.com/daymark/daymark/internal/scheduling"
	"github.com/daymark/daymark/internal/store"
)

// ReminderService orchestrates reminder use cases. Every mutation keeps
// the external notification schedule in step: create schedules, update
// reschedules, delete cancels. Scheduling outcomes ride alongside the
// result and are never errors.
type ReminderService struct {
	store store.Store
	sched *scheduling.Scheduler
}

func NewReminderService(st store.Store, sched *scheduling.Scheduler) *ReminderService {
	return &ReminderService{store: st, sched: sched}
}

// validateReminder enforces kind/rule consistency ahead of any writes.
func validateReminder(rem *model.Reminder) error {
	if !rem.Kind.Valid() {
		return fmt.Errorf("%w: unknown reminder kind %q", model.ErrValidation, rem.Kind)
	}
	if rem.ScheduledTime.IsZero() {
		return fmt.Errorf("%w: scheduledTime is required", model.ErrValidation)
	}
	switch rem.Kind {
	case model.ReminderRecurring:
		if !rem.Rule.Valid() {
			return fmt.Errorf("%w: recurring reminder needs a valid recurrence rule, got %q", model.ErrValidation, rem.Rule)
		}
	case model.ReminderOneOff:
		if rem.Rule != "" {
			return fmt.Errorf("%w: one_off reminder must not carry a recurrence rule", model.ErrValidation)
		}
	}
	return nil
}

// CreateReminder validates, verifies the event exists, persists, then
// schedules the notification. The scheduling result is returned with
// the reminder; only validation and storage problems are errors.
func (s *ReminderService) CreateReminder(ctx context.Context, rem *model.Reminder) (*model.Reminder, scheduling.Result, error) {
	if err := validateReminder(rem); err != nil {
		return nil, scheduling.Result{}, err
	}
	ev, err := s.store.Events().Get(ctx, rem.EventID)
	if err != nil {
		return nil, scheduling.Result{}, err
	}
	created, err := s.store.Reminders().Create(ctx, rem)
	if err != nil {
		return nil, scheduling.Result{}, err
	}
	res := s.sched.ScheduleReminder(ctx, *ev, *created)
	return created, res, nil
}

func (s *ReminderService) GetReminder(ctx context.Context, eventID, reminderID string) (*model.Reminder, error) {
	rem, err := s.store.Reminders().Get(ctx, reminderID)
	if err != nil {
		return nil, err
	}
	if rem.EventID != eventID {
		return nil, model.ErrNotFound
	}
	return rem, nil
}

// ListReminders lists the event's reminders, resolving the event first
// so an unknown event surfaces as not-found rather than an empty list.
func (s *ReminderService) ListReminders(ctx context.Context, eventID string, includePast bool) ([]*model.Reminder, error) {
	if _, err := s.store.Events().Get(ctx, eventID); err != nil {
		return nil, err
	}
	return s.store.Reminders().List(ctx, eventID, includePast)
}

// UpdateReminder validates, persists the new shape, then cancels and
// re-creates the external notification so exactly one live entry
// remains for the reminder.
func (s *ReminderService) UpdateReminder(ctx context.Context, rem *model.Reminder) (*model.Reminder, scheduling.Result, error) {
	if err := validateReminder(rem); err != nil {
		return nil, scheduling.Result{}, err
	}
	if _, err := s.GetReminder(ctx, rem.EventID, rem.ReminderID); err != nil {
		return nil, scheduling.Result{}, err
	}
	ev, err := s.store.Events().Get(ctx, rem.EventID)
	if err != nil {
		return nil, scheduling.Result{}, err
	}
	saved, err := s.store.Reminders().Update(ctx, rem)
	if err != nil {
		return nil, scheduling.Result{}, err
	}
	res := s.sched.RescheduleReminder(ctx, *ev, *saved)
	return saved, res, nil
}

// DeleteReminder cancels the reminder's notification best-effort, then
// deletes the row.
func (s *ReminderService) DeleteReminder(ctx context.Context, eventID, reminderID string) error {
	if _, err := s.GetReminder(ctx, eventID, reminderID); err != nil {
		return err
	}
	s.sched.CancelReminder(ctx, reminderID)
	return s.store.Reminders().Delete(ctx, reminderID)
}
