package notify

import (
	"testing"
	"time"

	"github.com/daymark/daymark/internal/model"
)

func TestTriggerValidate(t *testing.T) {
	at := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)

	if err := OneShot(at).Validate(); err != nil {
		t.Fatalf("one-shot should validate: %v", err)
	}
	if err := Recurring(Repeat{Rule: model.RuleDaily, Hour: 9}).Validate(); err != nil {
		t.Fatalf("recurring should validate: %v", err)
	}

	var empty Trigger
	if err := empty.Validate(); err == nil {
		t.Fatalf("empty trigger should fail")
	}

	both := Trigger{At: &at, Repeat: &Repeat{Rule: model.RuleDaily, Hour: 9}}
	if err := both.Validate(); err == nil {
		t.Fatalf("trigger with both sides should fail")
	}

	badRepeat := Recurring(Repeat{Rule: model.RuleWeekly, Weekday: 9, Hour: 9})
	if err := badRepeat.Validate(); err == nil {
		t.Fatalf("invalid repeat should fail trigger validation")
	}
}

func TestCorrelationValidate(t *testing.T) {
	good := []Correlation{
		{Type: TypeMilestone, EventID: "e1", MilestoneID: "m1"},
		{Type: TypeReminder, EventID: "e1", ReminderID: "r1"},
	}
	for _, c := range good {
		if err := c.Validate(); err != nil {
			t.Fatalf("%+v should validate: %v", c, err)
		}
	}

	bad := []Correlation{
		{Type: "alarm", EventID: "e1"},
		{Type: TypeMilestone, EventID: "e1"},
		{Type: TypeMilestone, MilestoneID: "m1"},
		{Type: TypeReminder, EventID: "e1"},
	}
	for _, c := range bad {
		if err := c.Validate(); err == nil {
			t.Fatalf("%+v should fail validation", c)
		}
	}
}

func TestCorrelationMatchers(t *testing.T) {
	m := Correlation{Type: TypeMilestone, EventID: "e1", MilestoneID: "m1"}
	r := Correlation{Type: TypeReminder, EventID: "e1", ReminderID: "r1"}

	if !m.MatchesMilestone("m1") || m.MatchesMilestone("m2") {
		t.Fatalf("milestone matcher wrong")
	}
	if m.MatchesReminder("m1") {
		t.Fatalf("milestone correlation must not match reminders")
	}
	if !r.MatchesReminder("r1") || r.MatchesReminder("r2") {
		t.Fatalf("reminder matcher wrong")
	}
	if !m.MatchesEvent("e1") || !r.MatchesEvent("e1") || m.MatchesEvent("e2") {
		t.Fatalf("event matcher wrong")
	}
}
