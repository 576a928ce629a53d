package notify

import (
	"testing"
	"time"

	"github.com/daymark/daymark/internal/model"
)

// June 15 2025 is a Sunday.
var after = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func TestRepeatFromAnchor(t *testing.T) {
	anchor := time.Date(2025, 6, 16, 8, 30, 0, 0, time.UTC) // Monday

	cases := []struct {
		rule model.RecurrenceRule
		want Repeat
	}{
		{model.RuleDaily, Repeat{Rule: model.RuleDaily, Hour: 8, Minute: 30}},
		{model.RuleWeekly, Repeat{Rule: model.RuleWeekly, Weekday: 2, Hour: 8, Minute: 30}},
		{model.RuleMonthly, Repeat{Rule: model.RuleMonthly, Day: 16, Hour: 8, Minute: 30}},
		{model.RuleYearly, Repeat{Rule: model.RuleYearly, Month: 6, Day: 16, Hour: 8, Minute: 30}},
	}
	for _, c := range cases {
		got, err := RepeatFromAnchor(c.rule, anchor)
		if err != nil {
			t.Fatalf("RepeatFromAnchor(%s): %v", c.rule, err)
		}
		if got != c.want {
			t.Fatalf("RepeatFromAnchor(%s) = %+v, want %+v", c.rule, got, c.want)
		}
	}
}

func TestRepeatFromAnchorSundayIsOne(t *testing.T) {
	sunday := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)
	r, err := RepeatFromAnchor(model.RuleWeekly, sunday)
	if err != nil {
		t.Fatalf("RepeatFromAnchor: %v", err)
	}
	if r.Weekday != 1 {
		t.Fatalf("sunday weekday = %d, want 1", r.Weekday)
	}
}

func TestRepeatFromAnchorUnknownRule(t *testing.T) {
	if _, err := RepeatFromAnchor(model.RecurrenceRule("hourly"), after); err == nil {
		t.Fatalf("expected error for unknown rule")
	}
}

func TestNextAfter(t *testing.T) {
	cases := []struct {
		name string
		r    Repeat
		want time.Time
	}{
		{
			"daily later today",
			Repeat{Rule: model.RuleDaily, Hour: 18, Minute: 0},
			time.Date(2025, 6, 15, 18, 0, 0, 0, time.UTC),
		},
		{
			"daily time already passed",
			Repeat{Rule: model.RuleDaily, Hour: 9, Minute: 30},
			time.Date(2025, 6, 16, 9, 30, 0, 0, time.UTC),
		},
		{
			"weekly next monday",
			Repeat{Rule: model.RuleWeekly, Weekday: 2, Hour: 9, Minute: 0},
			time.Date(2025, 6, 16, 9, 0, 0, 0, time.UTC),
		},
		{
			"weekly same weekday wraps a week",
			Repeat{Rule: model.RuleWeekly, Weekday: 1, Hour: 9, Minute: 0},
			time.Date(2025, 6, 22, 9, 0, 0, 0, time.UTC),
		},
		{
			"monthly day 31 skips june",
			Repeat{Rule: model.RuleMonthly, Day: 31, Hour: 8, Minute: 0},
			time.Date(2025, 7, 31, 8, 0, 0, 0, time.UTC),
		},
		{
			"monthly same day time passed",
			Repeat{Rule: model.RuleMonthly, Day: 15, Hour: 10, Minute: 0},
			time.Date(2025, 7, 15, 10, 0, 0, 0, time.UTC),
		},
		{
			"yearly date behind wraps a year",
			Repeat{Rule: model.RuleYearly, Month: 3, Day: 14, Hour: 9, Minute: 0},
			time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
		},
		{
			"yearly date ahead stays this year",
			Repeat{Rule: model.RuleYearly, Month: 6, Day: 20, Hour: 9, Minute: 0},
			time.Date(2025, 6, 20, 9, 0, 0, 0, time.UTC),
		},
		{
			"exact instant is excluded",
			Repeat{Rule: model.RuleDaily, Hour: 12, Minute: 0},
			time.Date(2025, 6, 16, 12, 0, 0, 0, time.UTC),
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := c.r.NextAfter(after)
			if err != nil {
				t.Fatalf("NextAfter: %v", err)
			}
			if !got.Equal(c.want) {
				t.Fatalf("NextAfter = %s, want %s", got, c.want)
			}
		})
	}
}

func TestRepeatValidate(t *testing.T) {
	bad := []Repeat{
		{Rule: model.RecurrenceRule("hourly"), Hour: 9},
		{Rule: model.RuleWeekly, Weekday: 0, Hour: 9},
		{Rule: model.RuleWeekly, Weekday: 8, Hour: 9},
		{Rule: model.RuleMonthly, Day: 0, Hour: 9},
		{Rule: model.RuleMonthly, Day: 32, Hour: 9},
		{Rule: model.RuleYearly, Month: 13, Day: 14, Hour: 9},
		{Rule: model.RuleYearly, Month: 0, Day: 14, Hour: 9},
		{Rule: model.RuleDaily, Hour: 24},
		{Rule: model.RuleDaily, Hour: 9, Minute: 60},
	}
	for i, r := range bad {
		if err := r.Validate(); err == nil {
			t.Fatalf("case %d: expected validation error for %+v", i, r)
		}
	}

	good := Repeat{Rule: model.RuleYearly, Month: 2, Day: 29, Hour: 0, Minute: 0}
	if err := good.Validate(); err != nil {
		t.Fatalf("leap-day yearly pattern should validate: %v", err)
	}
}

func TestNextAfterLeapDayYearly(t *testing.T) {
	r := Repeat{Rule: model.RuleYearly, Month: 2, Day: 29, Hour: 9, Minute: 0}
	got, err := r.NextAfter(after)
	if err != nil {
		t.Fatalf("NextAfter: %v", err)
	}
	want := time.Date(2028, 2, 29, 9, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("leap-day next = %s, want %s", got, want)
	}
}
