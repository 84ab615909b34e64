package contract

import "time"

// WeekdayHours holds contracted hours for Monday through Friday.
type WeekdayHours [5]float64

// Total returns the summed hours of the five weekdays.
func (w WeekdayHours) Total() float64 {
	var total float64
	for _, h := range w {
		total += h
	}
	return total
}

// Contract mirrors a Gripp contract record. A contract belongs to exactly
// one employee and is valid over [StartDate, EndDate]; EndDate is nil for
// contracts still running. An employee may hold multiple overlapping
// contracts (renewals split across records); their hours are summed when
// reconciling, never replaced.
type Contract struct {
	ID         int64
	EmployeeID int64
	StartDate  time.Time
	EndDate    *time.Time

	// Two parallel weekly schedules, selected by ISO week parity.
	EvenHours WeekdayHours
	OddHours  WeekdayHours

	SyncedAt time.Time
}

// HoursFor returns the schedule active in an even or odd ISO week.
func (c Contract) HoursFor(evenWeek bool) WeekdayHours {
	if evenWeek {
		return c.EvenHours
	}
	return c.OddHours
}

// OverlapsRange reports whether the contract's validity interval
// intersects [start, end].
func (c Contract) OverlapsRange(start, end time.Time) bool {
	if c.StartDate.After(end) {
		return false
	}
	if c.EndDate != nil && c.EndDate.Before(start) {
		return false
	}
	return true
}

// ActiveOn reports whether the contract is valid on the given day.
func (c Contract) ActiveOn(day time.Time) bool {
	return c.OverlapsRange(day, day)
}

// PeriodLabel renders the validity interval for display, e.g.
// "2025-01-01 / ongoing".
func (c Contract) PeriodLabel() string {
	start := c.StartDate.Format("2006-01-02")
	if c.EndDate == nil {
		return start + " / ongoing"
	}
	return start + " / " + c.EndDate.Format("2006-01-02")
}
