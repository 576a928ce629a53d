package model

import "time"

// Unit is a display unit for elapsed time.
type Unit string

const (
	UnitDays   Unit = "days"
	UnitWeeks  Unit = "weeks"
	UnitMonths Unit = "months"
	UnitYears  Unit = "years"
)

// Valid reports whether u is one of the four supported units.
func (u Unit) Valid() bool {
	switch u {
	case UnitDays, UnitWeeks, UnitMonths, UnitYears:
		return true
	}
	return false
}

// ReminderKind distinguishes single-fire reminders from recurring ones.
type ReminderKind string

const (
	ReminderOneOff    ReminderKind = "one_off"
	ReminderRecurring ReminderKind = "recurring"
)

// Valid reports whether k is a supported reminder kind.
func (k ReminderKind) Valid() bool {
	return k == ReminderOneOff || k == ReminderRecurring
}

// RecurrenceRule is the repeat cadence of a recurring reminder.
type RecurrenceRule string

const (
	RuleDaily   RecurrenceRule = "daily"
	RuleWeekly  RecurrenceRule = "weekly"
	RuleMonthly RecurrenceRule = "monthly"
	RuleYearly  RecurrenceRule = "yearly"
)

// Valid reports whether r is a supported recurrence rule.
func (r RecurrenceRule) Valid() bool {
	switch r {
	case RuleDaily, RuleWeekly, RuleMonthly, RuleYearly:
		return true
	}
	return false
}

// Event is a user-tracked occurrence with a start instant and display unit.
// StartTime may lie in the past or the future; all instants are UTC.
type Event struct {
	EventID      string    `json:"eventId"`
	Title        string    `json:"title"`
	Description  *string   `json:"description,omitempty"`
	StartTime    time.Time `json:"startTime"`
	DisplayUnit  Unit      `json:"displayUnit"`
	Pinned       bool      `json:"pinned"`
	CreationTime time.Time `json:"creationTime"`
	UpdateTime   time.Time `json:"updateTime"`
}

// MilestoneDefinition is a stateless milestone template instantiated per event.
type MilestoneDefinition struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
	Unit   Unit    `json:"unit"`
}

// Milestone is a persisted elapsed-time target for an event. ReachedTime is
// stamped once when the target is first observed as passed and never unset.
type Milestone struct {
	MilestoneID  string     `json:"milestoneId"`
	EventID      string     `json:"eventId"`
	Label        string     `json:"label"`
	TargetAmount float64    `json:"targetAmount"`
	TargetUnit   Unit       `json:"targetUnit"`
	ReachedTime  *time.Time `json:"reachedTime,omitempty"`
	CreationTime time.Time  `json:"creationTime"`
}

// Reminder is a user-configured notification tied to an event. ScheduledTime
// is the fire instant for one_off reminders and the time-of-day/weekday/
// day-of-month anchor for recurring ones; Rule is empty for one_off.
type Reminder struct {
	ReminderID    string         `json:"reminderId"`
	EventID       string         `json:"eventId"`
	Kind          ReminderKind   `json:"kind"`
	ScheduledTime time.Time      `json:"scheduledTime"`
	Rule          RecurrenceRule `json:"recurrenceRule,omitempty"`
	CreationTime  time.Time      `json:"creationTime"`
	UpdateTime    time.Time      `json:"updateTime"`
}
