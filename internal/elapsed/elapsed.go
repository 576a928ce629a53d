// Package elapsed renders the time since an event start as a human
// string in a chosen display unit.
//
// Format produces the compound forms: weeks and months carry an integer
// remainder in days joined with "and" ("1 week and 3 days"), while years
// carry remaining months with no conjunction ("1 year 2 months"). The
// asymmetry is deliberate and must not be normalized. FormatApprox is the
// compact one-decimal variant ("1.4 weeks").
//
// All functions take "now" explicitly; nothing here reads the clock.
package elapsed

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/daymark/daymark/internal/model"
)

// daysPerMonth is the fixed average used for the month decomposition.
// It matches the comparison ratio in the milestone calculator.
const daysPerMonth = 30.44

// DaysBetween returns the number of whole days from start to now,
// floored (a start 47 hours ago is 1 day, never 2).
func DaysBetween(start, now time.Time) int {
	return int(math.Floor(now.Sub(start).Seconds() / 86400))
}

// YearsMonthsBetween returns calendar-aware whole years and remaining
// months (0-11) from start to now. The day of month gates a month from
// counting until it has fully elapsed.
func YearsMonthsBetween(start, now time.Time) (int, int) {
	months := (now.Year()-start.Year())*12 + int(now.Month()) - int(start.Month())
	if now.Day() < start.Day() {
		months--
	}
	return months / 12, months % 12
}

// Format renders the elapsed time from start to now in the given unit.
// Unknown units fall back to days.
func Format(start time.Time, unit model.Unit, now time.Time) string {
	days := DaysBetween(start, now)
	switch unit {
	case model.UnitWeeks:
		return formatWeeks(days)
	case model.UnitMonths:
		return formatMonths(days)
	case model.UnitYears:
		years, months := YearsMonthsBetween(start, now)
		return formatYearsMonths(years, months)
	default:
		return plural(days, "day")
	}
}

// FormatApprox renders the compact single-number form: weeks and months
// as the day count divided by 7 or 30.44, rounded half-up to one decimal.
// Days and years render as in Format.
func FormatApprox(start time.Time, unit model.Unit, now time.Time) string {
	days := DaysBetween(start, now)
	switch unit {
	case model.UnitWeeks:
		return pluralDecimal(roundHalfUp1(float64(days)/7), "week")
	case model.UnitMonths:
		return pluralDecimal(roundHalfUp1(float64(days)/daysPerMonth), "month")
	case model.UnitYears:
		years, months := YearsMonthsBetween(start, now)
		return formatYearsMonths(years, months)
	default:
		return plural(days, "day")
	}
}

func formatWeeks(days int) string {
	weeks, rem := days/7, days%7
	switch {
	case weeks == 0 && rem == 0:
		return "0 weeks"
	case weeks == 0:
		return plural(rem, "day")
	case rem == 0:
		return plural(weeks, "week")
	}
	return plural(weeks, "week") + " and " + plural(rem, "day")
}

func formatMonths(days int) string {
	months := int(float64(days) / daysPerMonth)
	rem := int(float64(days) - float64(months)*daysPerMonth)
	switch {
	case months == 0 && rem == 0:
		return "0 months"
	case months == 0:
		return plural(rem, "day")
	case rem == 0:
		return plural(months, "month")
	}
	return plural(months, "month") + " and " + plural(rem, "day")
}

// formatYearsMonths joins the two terms with a space only; the missing
// "and" mirrors the weeks/months forms on purpose.
func formatYearsMonths(years, months int) string {
	switch {
	case months == 0:
		return plural(years, "year")
	case years == 0:
		return plural(months, "month")
	}
	return plural(years, "year") + " " + plural(months, "month")
}

func plural(n int, word string) string {
	if n == 1 || n == -1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

func pluralDecimal(v float64, word string) string {
	s := strconv.FormatFloat(v, 'f', 1, 64)
	if v == 1 || v == -1 {
		return s + " " + word
	}
	return s + " " + word + "s"
}

func roundHalfUp1(x float64) float64 {
	return math.Floor(x*10+0.5) / 10
}
