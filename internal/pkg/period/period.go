// Package period implements the date arithmetic behind week and month
// reconciliation: ISO week boundaries, month boundaries and week parity.
// Everything here is pure; callers own input validation beyond range checks.
package period

import (
	"fmt"
	"time"
)

type Kind string

const (
	KindWeek  Kind = "week"
	KindMonth Kind = "month"
)

// Period is a derived value, never persisted. Start is midnight on the
// first day, End is the last nanosecond of the last day.
type Period struct {
	Kind  Kind
	Year  int
	Week  int        // set when Kind == KindWeek
	Month time.Month // set when Kind == KindMonth
	Start time.Time
	End   time.Time
}

// WeekRange returns the period for an ISO week. ISO week 1 is the
// Monday-start week containing January 4th. Weeks run 1..53 and are not
// clamped; out-of-range weeks simply land in the adjacent year.
func WeekRange(year, week int) Period {
	// January 4th is always in ISO week 1.
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	week1Monday := startOfISOWeek(jan4)

	start := week1Monday.AddDate(0, 0, (week-1)*7)
	end := endOfDay(start.AddDate(0, 0, 6))

	return Period{
		Kind:  KindWeek,
		Year:  year,
		Week:  week,
		Start: start,
		End:   end,
	}
}

// MonthRange returns the period for a one-indexed calendar month (1..12).
func MonthRange(year int, month time.Month) Period {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := endOfDay(start.AddDate(0, 1, -1))

	return Period{
		Kind:  KindMonth,
		Year:  year,
		Month: month,
		Start: start,
		End:   end,
	}
}

// IsEvenWeek reports which of a contract's two hour vectors is active.
func IsEvenWeek(week int) bool {
	return week%2 == 0
}

// Contains reports whether t falls within [Start, End].
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && !t.After(p.End)
}

// Days yields every calendar day of the period, at midnight UTC.
func (p Period) Days() []time.Time {
	var days []time.Time
	for d := p.Start; !d.After(p.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// Label returns the cache-key descriptor, e.g. "2025-W17" or "2025-M04".
func (p Period) Label() string {
	if p.Kind == KindWeek {
		return fmt.Sprintf("%04d-W%02d", p.Year, p.Week)
	}
	return fmt.Sprintf("%04d-M%02d", p.Year, int(p.Month))
}

// Previous returns the temporally adjacent earlier period of the same kind.
func (p Period) Previous() Period {
	if p.Kind == KindWeek {
		// Step through the calendar so 52/53-week years stay correct.
		y, w := p.Start.AddDate(0, 0, -7).ISOWeek()
		return WeekRange(y, w)
	}
	if p.Month == time.January {
		return MonthRange(p.Year-1, time.December)
	}
	return MonthRange(p.Year, p.Month-1)
}

// Next returns the temporally adjacent later period of the same kind.
func (p Period) Next() Period {
	if p.Kind == KindWeek {
		y, w := p.Start.AddDate(0, 0, 7).ISOWeek()
		return WeekRange(y, w)
	}
	if p.Month == time.December {
		return MonthRange(p.Year+1, time.January)
	}
	return MonthRange(p.Year, p.Month+1)
}

// IsWorkday reports whether t falls Monday through Friday.
func IsWorkday(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// WeekdayIndex maps Monday..Friday to 0..4. Callers must check IsWorkday
// first; weekends return -1.
func WeekdayIndex(t time.Time) int {
	switch t.Weekday() {
	case time.Monday:
		return 0
	case time.Tuesday:
		return 1
	case time.Wednesday:
		return 2
	case time.Thursday:
		return 3
	case time.Friday:
		return 4
	}
	return -1
}

func startOfISOWeek(t time.Time) time.Time {
	// time.Weekday has Sunday == 0; shift so Monday == 0.
	offset := (int(t.Weekday()) + 6) % 7
	d := t.AddDate(0, 0, -offset)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC)
}
