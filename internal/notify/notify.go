// Package notify defines the contract with the external notification
// capability: a durable store of future triggers that can be scheduled
// into, cancelled from and listed. Delivery is best-effort and
// fire-and-forget; the engine never treats the store as a source of
// truth for what should exist.
package notify

import (
	"context"
	"fmt"
	"time"
)

// Correlation types embedded in scheduled notifications.
const (
	TypeMilestone = "milestone"
	TypeReminder  = "reminder"
)

// Correlation maps a scheduled notification back to its domain identity.
type Correlation struct {
	Type        string `json:"type"`
	EventID     string `json:"eventId"`
	MilestoneID string `json:"milestoneId,omitempty"`
	ReminderID  string `json:"reminderId,omitempty"`
}

// Validate checks the type tag and the identity fields it requires.
func (c Correlation) Validate() error {
	switch c.Type {
	case TypeMilestone:
		if c.EventID == "" || c.MilestoneID == "" {
			return fmt.Errorf("milestone correlation requires eventId and milestoneId")
		}
	case TypeReminder:
		if c.EventID == "" || c.ReminderID == "" {
			return fmt.Errorf("reminder correlation requires eventId and reminderId")
		}
	default:
		return fmt.Errorf("unknown correlation type %q", c.Type)
	}
	return nil
}

// MatchesMilestone reports whether c refers to the given milestone.
func (c Correlation) MatchesMilestone(milestoneID string) bool {
	return c.Type == TypeMilestone && c.MilestoneID == milestoneID
}

// MatchesReminder reports whether c refers to the given reminder.
func (c Correlation) MatchesReminder(reminderID string) bool {
	return c.Type == TypeReminder && c.ReminderID == reminderID
}

// MatchesEvent reports whether c belongs to the given event, either kind.
func (c Correlation) MatchesEvent(eventID string) bool {
	return c.EventID == eventID
}

// Content is the user-visible notification payload.
type Content struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Trigger is either a one-shot instant or a recurrence pattern; exactly
// one side is set.
type Trigger struct {
	At     *time.Time `json:"at,omitempty"`
	Repeat *Repeat    `json:"repeat,omitempty"`
}

// OneShot builds a single-fire trigger at the given instant.
func OneShot(at time.Time) Trigger {
	t := at.UTC()
	return Trigger{At: &t}
}

// Recurring builds a pattern trigger.
func Recurring(r Repeat) Trigger {
	return Trigger{Repeat: &r}
}

// Validate rejects triggers with neither or both sides set.
func (t Trigger) Validate() error {
	if (t.At == nil) == (t.Repeat == nil) {
		return fmt.Errorf("trigger requires exactly one of at or repeat")
	}
	if t.Repeat != nil {
		return t.Repeat.Validate()
	}
	return nil
}

// ScheduleRequest registers one trigger with its payload and correlation.
type ScheduleRequest struct {
	Trigger     Trigger     `json:"trigger"`
	Content     Content     `json:"content"`
	Correlation Correlation `json:"correlation"`
}

// Scheduled is a live entry in the external store.
type Scheduled struct {
	Handle      string      `json:"handle"`
	Correlation Correlation `json:"correlation"`
	Content     Content     `json:"content"`
	NextFireAt  time.Time   `json:"nextFireAt"`
}

// Provider is the consumed notification capability. Schedule durably
// registers the trigger until it fires or is cancelled; it survives the
// calling process but not a wipe of the provider's own store.
type Provider interface {
	// RequestPermission asks for delivery permission. A denial is an
	// answer, not an error.
	RequestPermission(ctx context.Context) (bool, error)
	// Schedule registers a trigger and returns its opaque handle.
	Schedule(ctx context.Context, req ScheduleRequest) (string, error)
	// Cancel removes a scheduled entry. Unknown handles are a no-op.
	Cancel(ctx context.Context, handle string) error
	// ListScheduled returns every live entry with its correlation data.
	ListScheduled(ctx context.Context) ([]Scheduled, error)
}
