package notify

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/daymark/daymark/internal/model"
)

// Repeat is a recurrence pattern. Weekday runs 1..7 with 1 = Sunday
// (the scheduler's day one is the first day of the week). Fields the
// rule does not use stay zero.
type Repeat struct {
	Rule    model.RecurrenceRule `json:"rule"`
	Weekday int                  `json:"weekday,omitempty"`
	Day     int                  `json:"day,omitempty"`
	Month   int                  `json:"month,omitempty"`
	Hour    int                  `json:"hour"`
	Minute  int                  `json:"minute"`
}

// rruleWeekdays maps scheduler numbering (1 = Sunday) to rrule weekdays.
var rruleWeekdays = [...]rrule.Weekday{rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA}

// RepeatFromAnchor extracts the pattern fields a rule needs from the
// anchor instant: daily keeps the time of day, weekly adds the weekday,
// monthly the day of month, yearly the month and day.
func RepeatFromAnchor(rule model.RecurrenceRule, anchor time.Time) (Repeat, error) {
	a := anchor.UTC()
	r := Repeat{Rule: rule, Hour: a.Hour(), Minute: a.Minute()}
	switch rule {
	case model.RuleDaily:
	case model.RuleWeekly:
		r.Weekday = int(a.Weekday()) + 1
	case model.RuleMonthly:
		r.Day = a.Day()
	case model.RuleYearly:
		r.Month = int(a.Month())
		r.Day = a.Day()
	default:
		return Repeat{}, fmt.Errorf("unrecognized recurrence rule %q", rule)
	}
	return r, nil
}

// Validate checks the rule tag and the field ranges it uses.
func (r Repeat) Validate() error {
	if !r.Rule.Valid() {
		return fmt.Errorf("unrecognized recurrence rule %q", r.Rule)
	}
	if r.Hour < 0 || r.Hour > 23 || r.Minute < 0 || r.Minute > 59 {
		return fmt.Errorf("time of day %02d:%02d out of range", r.Hour, r.Minute)
	}
	switch r.Rule {
	case model.RuleWeekly:
		if r.Weekday < 1 || r.Weekday > 7 {
			return fmt.Errorf("weekday %d out of range 1..7", r.Weekday)
		}
	case model.RuleMonthly:
		if r.Day < 1 || r.Day > 31 {
			return fmt.Errorf("day of month %d out of range 1..31", r.Day)
		}
	case model.RuleYearly:
		if r.Month < 1 || r.Month > 12 {
			return fmt.Errorf("month %d out of range 1..12", r.Month)
		}
		if r.Day < 1 || r.Day > 31 {
			return fmt.Errorf("day of month %d out of range 1..31", r.Day)
		}
	}
	return nil
}

// NextAfter returns the first fire instant strictly after t. Patterns
// that never land on a real date (monthly day 31 in a 30-day month)
// skip forward, matching calendar-trigger behavior.
func (r Repeat) NextAfter(t time.Time) (time.Time, error) {
	if err := r.Validate(); err != nil {
		return time.Time{}, err
	}

	opt := rrule.ROption{
		Dtstart:  t.UTC().Add(-48 * time.Hour).Truncate(time.Second),
		Byhour:   []int{r.Hour},
		Byminute: []int{r.Minute},
		Bysecond: []int{0},
	}
	switch r.Rule {
	case model.RuleDaily:
		opt.Freq = rrule.DAILY
	case model.RuleWeekly:
		opt.Freq = rrule.WEEKLY
		opt.Byweekday = []rrule.Weekday{rruleWeekdays[r.Weekday-1]}
	case model.RuleMonthly:
		opt.Freq = rrule.MONTHLY
		opt.Bymonthday = []int{r.Day}
	case model.RuleYearly:
		opt.Freq = rrule.YEARLY
		opt.Bymonth = []int{r.Month}
		opt.Bymonthday = []int{r.Day}
	}

	rule, err := rrule.NewRRule(opt)
	if err != nil {
		return time.Time{}, fmt.Errorf("build recurrence rule: %w", err)
	}
	next := rule.After(t.UTC(), false)
	if next.IsZero() {
		return time.Time{}, fmt.Errorf("no next occurrence for rule %q", r.Rule)
	}
	return next, nil
}
