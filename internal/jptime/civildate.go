package jptime

import (
	"fmt"
	"time"
)

// CivilDate is one calendar day in the UTC+9 calendar. Day matching goes
// through typed comparison instead of string-prefix checks on formatted
// timestamps.
type CivilDate struct {
	Year  int
	Month time.Month
	Day   int
}

// NewCivilDate builds a CivilDate from numeric parts.
func NewCivilDate(year, month, day int) CivilDate {
	return CivilDate{Year: year, Month: time.Month(month), Day: day}
}

// ParseCivilDate reads a "YYYY-MM-DD" string.
func ParseCivilDate(s string) (CivilDate, error) {
	t, err := time.ParseInLocation("2006-01-02", s, JST)
	if err != nil {
		return CivilDate{}, fmt.Errorf("parse civil date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// DateOf truncates an instant to its JST calendar day.
func DateOf(t time.Time) CivilDate {
	y, m, d := t.In(JST).Date()
	return CivilDate{Year: y, Month: m, Day: d}
}

// Contains reports whether the optional instant falls on this civil day.
// A nil instant never matches.
func (d CivilDate) Contains(t *time.Time) bool {
	if t == nil {
		return false
	}
	return DateOf(*t) == d
}

// Midnight returns 00:00:00 UTC on the calendar day, used to derive the
// inclusive fetch window bounds.
func (d CivilDate) Midnight() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// AddDays shifts the date by a number of calendar days.
func (d CivilDate) AddDays(n int) CivilDate {
	return DateOf(time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, JST).AddDate(0, 0, n))
}

// String formats as "YYYY-MM-DD".
func (d CivilDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MonthKey is the 4-digit year + 2-digit month provisioning lookup key.
func (d CivilDate) MonthKey() string {
	return MonthKey(d.Year, int(d.Month))
}

// DayTab is the two-digit day string naming the spreadsheet tab.
func (d CivilDate) DayTab() string {
	return fmt.Sprintf("%02d", d.Day)
}

// MonthKey concatenates a year and month into the provisioning lookup key.
func MonthKey(year, month int) string {
	return fmt.Sprintf("%04d%02d", year, month)
}

// DaysInMonth returns the number of calendar days in the given month.
func DaysInMonth(year, month int) int {
	// day 0 of the next month is the last day of this one
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
