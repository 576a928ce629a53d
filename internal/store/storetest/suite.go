package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/daymark/daymark/internal/model"
	"github.com/daymark/daymark/internal/store"
)

// Run exercises a compliance suite against a store.Store implementation.
// Implementations should provide a clean, isolated store from makeStore.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	s := makeStore(t)
	ctx := context.Background()

	start := time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)
	desc := "left the old flat"

	// Events
	ev, err := s.Events().Create(ctx, &model.Event{
		Title:       "Moved to Berlin",
		Description: &desc,
		StartTime:   start,
		DisplayUnit: model.UnitDays,
	})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if ev.EventID == "" {
		t.Fatalf("CreateEvent: empty event id")
	}
	if ev.CreationTime.IsZero() || ev.UpdateTime.IsZero() {
		t.Fatalf("CreateEvent: zero timestamps: %+v", ev)
	}

	got, err := s.Events().Get(ctx, ev.EventID)
	if err != nil {
		t.Fatalf("GetEvent: %v", err)
	}
	if got.Title != "Moved to Berlin" || got.DisplayUnit != model.UnitDays || got.Pinned {
		t.Fatalf("GetEvent: got=%+v", got)
	}
	if !got.StartTime.Equal(start) {
		t.Fatalf("GetEvent start: got=%v want=%v", got.StartTime, start)
	}
	if got.Description == nil || *got.Description != desc {
		t.Fatalf("GetEvent description: got=%v", got.Description)
	}

	if _, err := s.Events().Get(ctx, "ev-"+uuid.New().String()); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("GetEvent missing: want ErrNotFound, got %v", err)
	}

	if lst, err := s.Events().List(ctx); err != nil || len(lst) == 0 {
		t.Fatalf("ListEvents: n=%d err=%v", len(lst), err)
	}

	// Duplicate primary key surfaces as a conflict.
	if _, err := s.Events().Create(ctx, &model.Event{
		EventID:     ev.EventID,
		Title:       "dup",
		StartTime:   start,
		DisplayUnit: model.UnitDays,
	}); !errors.Is(err, model.ErrConflict) {
		t.Fatalf("CreateEvent duplicate: want ErrConflict, got %v", err)
	}

	// Update
	got.Title = "Moved to Munich"
	got.Pinned = true
	got.DisplayUnit = model.UnitWeeks
	upd, err := s.Events().Update(ctx, got)
	if err != nil {
		t.Fatalf("UpdateEvent: %v", err)
	}
	if upd.Title != "Moved to Munich" || !upd.Pinned || upd.DisplayUnit != model.UnitWeeks {
		t.Fatalf("UpdateEvent: got=%+v", upd)
	}
	if !upd.CreationTime.Equal(ev.CreationTime) {
		t.Fatalf("UpdateEvent must not change creation time: got=%v want=%v", upd.CreationTime, ev.CreationTime)
	}

	if _, err := s.Events().Update(ctx, &model.Event{EventID: "ev-" + uuid.New().String(), Title: "x", StartTime: start, DisplayUnit: model.UnitDays}); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("UpdateEvent missing: want ErrNotFound, got %v", err)
	}

	// Milestones
	defs := []model.MilestoneDefinition{
		{Label: "1 Week", Amount: 7, Unit: model.UnitDays},
		{Label: "1 Month", Amount: 30.44, Unit: model.UnitDays},
		{Label: "100 Days", Amount: 100, Unit: model.UnitDays},
	}
	created, err := s.Milestones().CreateBatch(ctx, ev.EventID, defs)
	if err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}
	if len(created) != len(defs) {
		t.Fatalf("CreateBatch: n=%d want=%d", len(created), len(defs))
	}
	for i, ms := range created {
		if ms.MilestoneID == "" || ms.EventID != ev.EventID {
			t.Fatalf("CreateBatch[%d]: %+v", i, ms)
		}
		if ms.Label != defs[i].Label {
			t.Fatalf("CreateBatch order: got=%q want=%q", ms.Label, defs[i].Label)
		}
	}

	listed, err := s.Milestones().List(ctx, ev.EventID)
	if err != nil {
		t.Fatalf("ListMilestones: %v", err)
	}
	if len(listed) != len(defs) {
		t.Fatalf("ListMilestones: n=%d want=%d", len(listed), len(defs))
	}
	for i, ms := range listed {
		if ms.Label != defs[i].Label || ms.ReachedTime != nil {
			t.Fatalf("ListMilestones[%d]: %+v", i, ms)
		}
	}

	// StampReached records once and keeps the first stamp.
	reached := start.AddDate(0, 0, 7)
	if err := s.Milestones().StampReached(ctx, created[0].MilestoneID, reached); err != nil {
		t.Fatalf("StampReached: %v", err)
	}
	if err := s.Milestones().StampReached(ctx, created[0].MilestoneID, reached.AddDate(0, 0, 30)); err != nil {
		t.Fatalf("StampReached second: %v", err)
	}
	listed, err = s.Milestones().List(ctx, ev.EventID)
	if err != nil {
		t.Fatalf("ListMilestones after stamp: %v", err)
	}
	if listed[0].ReachedTime == nil || !listed[0].ReachedTime.Equal(reached) {
		t.Fatalf("StampReached must keep the first stamp: got=%v want=%v", listed[0].ReachedTime, reached)
	}
	if listed[1].ReachedTime != nil {
		t.Fatalf("StampReached leaked onto another row: %+v", listed[1])
	}
	if err := s.Milestones().StampReached(ctx, "ms-"+uuid.New().String(), reached); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("StampReached missing: want ErrNotFound, got %v", err)
	}

	// Reminders
	now := time.Now().UTC()
	pastOneOff, err := s.Reminders().Create(ctx, &model.Reminder{
		EventID:       ev.EventID,
		Kind:          model.ReminderOneOff,
		ScheduledTime: now.AddDate(0, 0, -3),
	})
	if err != nil {
		t.Fatalf("CreateReminder past: %v", err)
	}
	futureOneOff, err := s.Reminders().Create(ctx, &model.Reminder{
		EventID:       ev.EventID,
		Kind:          model.ReminderOneOff,
		ScheduledTime: now.AddDate(0, 0, 3),
	})
	if err != nil {
		t.Fatalf("CreateReminder future: %v", err)
	}
	weekly, err := s.Reminders().Create(ctx, &model.Reminder{
		EventID:       ev.EventID,
		Kind:          model.ReminderRecurring,
		ScheduledTime: now.AddDate(0, 0, -10),
		Rule:          model.RuleWeekly,
	})
	if err != nil {
		t.Fatalf("CreateReminder recurring: %v", err)
	}
	if pastOneOff.ReminderID == "" || futureOneOff.ReminderID == "" || weekly.ReminderID == "" {
		t.Fatalf("CreateReminder: empty reminder id")
	}

	if all, err := s.Reminders().List(ctx, ev.EventID, true); err != nil || len(all) != 3 {
		t.Fatalf("ListReminders includePast: n=%d err=%v", len(all), err)
	}

	// Without includePast the elapsed one-off drops out but the
	// recurring reminder stays even with an old anchor.
	upcoming, err := s.Reminders().List(ctx, ev.EventID, false)
	if err != nil {
		t.Fatalf("ListReminders upcoming: %v", err)
	}
	if len(upcoming) != 2 {
		t.Fatalf("ListReminders upcoming: n=%d want=2", len(upcoming))
	}
	for _, rem := range upcoming {
		if rem.ReminderID == pastOneOff.ReminderID {
			t.Fatalf("ListReminders upcoming returned a past one-off: %+v", rem)
		}
	}

	gotRem, err := s.Reminders().Get(ctx, weekly.ReminderID)
	if err != nil {
		t.Fatalf("GetReminder: %v", err)
	}
	if gotRem.Kind != model.ReminderRecurring || gotRem.Rule != model.RuleWeekly {
		t.Fatalf("GetReminder: got=%+v", gotRem)
	}
	if !gotRem.ScheduledTime.Equal(weekly.ScheduledTime) {
		t.Fatalf("GetReminder scheduled: got=%v want=%v", gotRem.ScheduledTime, weekly.ScheduledTime)
	}
	if _, err := s.Reminders().Get(ctx, "rem-"+uuid.New().String()); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("GetReminder missing: want ErrNotFound, got %v", err)
	}

	// Update reschedules in place.
	gotRem.ScheduledTime = now.AddDate(0, 0, 14)
	gotRem.Rule = model.RuleMonthly
	updRem, err := s.Reminders().Update(ctx, gotRem)
	if err != nil {
		t.Fatalf("UpdateReminder: %v", err)
	}
	if updRem.Rule != model.RuleMonthly || !updRem.ScheduledTime.Equal(gotRem.ScheduledTime) {
		t.Fatalf("UpdateReminder: got=%+v", updRem)
	}
	if _, err := s.Reminders().Update(ctx, &model.Reminder{ReminderID: "rem-" + uuid.New().String(), Kind: model.ReminderOneOff, ScheduledTime: now}); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("UpdateReminder missing: want ErrNotFound, got %v", err)
	}

	if err := s.Reminders().Delete(ctx, pastOneOff.ReminderID); err != nil {
		t.Fatalf("DeleteReminder: %v", err)
	}
	if err := s.Reminders().Delete(ctx, pastOneOff.ReminderID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("DeleteReminder twice: want ErrNotFound, got %v", err)
	}

	// Deleting the event removes its milestones and reminders with it.
	if err := s.Events().Delete(ctx, ev.EventID); err != nil {
		t.Fatalf("DeleteEvent: %v", err)
	}
	if _, err := s.Events().Get(ctx, ev.EventID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("GetEvent after delete: want ErrNotFound, got %v", err)
	}
	if ms, err := s.Milestones().List(ctx, ev.EventID); err != nil || len(ms) != 0 {
		t.Fatalf("ListMilestones after delete: n=%d err=%v", len(ms), err)
	}
	if rs, err := s.Reminders().List(ctx, ev.EventID, true); err != nil || len(rs) != 0 {
		t.Fatalf("ListReminders after delete: n=%d err=%v", len(rs), err)
	}
	if err := s.Events().Delete(ctx, ev.EventID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("DeleteEvent twice: want ErrNotFound, got %v", err)
	}

	if err := s.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}
