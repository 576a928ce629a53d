// Package milestone derives milestone targets and reachability for an
// event start instant.
//
// Two kinds of date math live here on purpose and intentionally disagree:
// ToDays uses fixed average ratios (30.44 days per month, 365.25 per year)
// and exists only for sorting and reachability comparison; TargetDate uses
// calendar arithmetic and is what actually gets scheduled. Neither may be
// substituted for the other.
package milestone

import (
	"sort"
	"time"

	"github.com/daymark/daymark/internal/elapsed"
	"github.com/daymark/daymark/internal/model"
)

const (
	daysPerWeek  = 7
	daysPerMonth = 30.44
	daysPerYear  = 365.25
)

// Defaults returns the milestone set instantiated for every new event:
// the time-based ladder from one week to ten years plus the round
// day-count marks.
func Defaults() []model.MilestoneDefinition {
	return []model.MilestoneDefinition{
		{Label: "1 Week", Amount: 1, Unit: model.UnitWeeks},
		{Label: "1 Month", Amount: 1, Unit: model.UnitMonths},
		{Label: "3 Months", Amount: 3, Unit: model.UnitMonths},
		{Label: "6 Months", Amount: 6, Unit: model.UnitMonths},
		{Label: "1 Year", Amount: 1, Unit: model.UnitYears},
		{Label: "2 Years", Amount: 2, Unit: model.UnitYears},
		{Label: "5 Years", Amount: 5, Unit: model.UnitYears},
		{Label: "10 Years", Amount: 10, Unit: model.UnitYears},
		{Label: "100 Days", Amount: 100, Unit: model.UnitDays},
		{Label: "500 Days", Amount: 500, Unit: model.UnitDays},
		{Label: "1000 Days", Amount: 1000, Unit: model.UnitDays},
		{Label: "1500 Days", Amount: 1500, Unit: model.UnitDays},
		{Label: "2000 Days", Amount: 2000, Unit: model.UnitDays},
	}
}

// ToDays converts a target to its approximate day count. Comparison and
// sorting only; never used to compute a schedulable date.
func ToDays(amount float64, unit model.Unit) float64 {
	switch unit {
	case model.UnitWeeks:
		return amount * daysPerWeek
	case model.UnitMonths:
		return amount * daysPerMonth
	case model.UnitYears:
		return amount * daysPerYear
	default:
		return amount
	}
}

// IsReached reports whether the target has been passed: whole days since
// start (floored) measured against the approximate target day count.
// Exactly 100 days reaches a 100-day target; 365 days does not reach one
// year (365.25).
func IsReached(def model.MilestoneDefinition, start, now time.Time) bool {
	return float64(elapsed.DaysBetween(start, now)) >= ToDays(def.Amount, def.Unit)
}

// TargetDate returns the calendar-correct instant a target is reached:
// days and weeks as fixed spans, months and years by calendar-field
// increment, with Go's normalization absorbing month-length and leap
// overflow. Fractional amounts truncate toward zero.
func TargetDate(start time.Time, amount float64, unit model.Unit) time.Time {
	n := int(amount)
	switch unit {
	case model.UnitWeeks:
		return start.AddDate(0, 0, daysPerWeek*n)
	case model.UnitMonths:
		return start.AddDate(0, n, 0)
	case model.UnitYears:
		return start.AddDate(n, 0, 0)
	default:
		return start.AddDate(0, 0, n)
	}
}

// Sort orders milestones ascending by approximate target days, stable on
// ties so insertion order survives.
func Sort(ms []*model.Milestone) {
	sort.SliceStable(ms, func(i, j int) bool {
		return ToDays(ms[i].TargetAmount, ms[i].TargetUnit) < ToDays(ms[j].TargetAmount, ms[j].TargetUnit)
	})
}
