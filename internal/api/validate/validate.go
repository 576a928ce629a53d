// Package validate holds request-shape checks used by the HTTP handlers:
// required fields, length limits, timestamp parsing and enum membership.
// Semantic rules that need storage context live in the services.
package validate

import (
	"fmt"
	"time"

	"github.com/daymark/daymark/internal/model"
)

const maxTitleLen = 120

// NonEmpty rejects empty required string fields.
func NonEmpty(field, v string) error {
	if v == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}

// MaxLen bounds optional string fields.
func MaxLen(field string, v *string, limit int) error {
	if v == nil {
		return nil
	}
	if len(*v) > limit {
		return fmt.Errorf("%s exceeds %d characters", field, limit)
	}
	return nil
}

// RFC3339 parses a required timestamp field.
func RFC3339(field, v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, fmt.Errorf("%s is required", field)
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be RFC3339, got %q", field, v)
	}
	return t.UTC(), nil
}

// Unit checks display-unit enum membership.
func Unit(v string) error {
	if !model.Unit(v).Valid() {
		return fmt.Errorf("displayUnit must be one of days, weeks, months, years; got %q", v)
	}
	return nil
}

// ReminderKind checks reminder-kind enum membership.
func ReminderKind(v string) error {
	if !model.ReminderKind(v).Valid() {
		return fmt.Errorf("kind must be one_off or recurring; got %q", v)
	}
	return nil
}

// RecurrenceRule checks rule enum membership. Empty is allowed here;
// kind/rule consistency is a service concern.
func RecurrenceRule(v string) error {
	if v == "" {
		return nil
	}
	if !model.RecurrenceRule(v).Valid() {
		return fmt.Errorf("recurrenceRule must be one of daily, weekly, monthly, yearly; got %q", v)
	}
	return nil
}

// -------- Request specific helpers ----------

// Event validates the shared shape of create and update requests and
// returns the parsed start instant.
func Event(title string, description *string, startTime, displayUnit string) (time.Time, error) {
	if err := NonEmpty("title", title); err != nil {
		return time.Time{}, err
	}
	if len(title) > maxTitleLen {
		return time.Time{}, fmt.Errorf("title exceeds %d characters", maxTitleLen)
	}
	if err := MaxLen("description", description, 500); err != nil {
		return time.Time{}, err
	}
	start, err := RFC3339("startTime", startTime)
	if err != nil {
		return time.Time{}, err
	}
	if err := Unit(displayUnit); err != nil {
		return time.Time{}, err
	}
	return start, nil
}

// Reminder validates the shared shape of reminder create and update
// requests and returns the parsed scheduled instant.
func Reminder(kind, scheduledTime, rule string) (time.Time, error) {
	if err := ReminderKind(kind); err != nil {
		return time.Time{}, err
	}
	at, err := RFC3339("scheduledTime", scheduledTime)
	if err != nil {
		return time.Time{}, err
	}
	if err := RecurrenceRule(rule); err != nil {
		return time.Time{}, err
	}
	return at, nil
}
