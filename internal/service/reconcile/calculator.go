package reconcile

import (
	"time"

	"github.com/bureauhq/gripp-backend-go/internal/domain/absence"
	"github.com/bureauhq/gripp-backend-go/internal/domain/contract"
	"github.com/bureauhq/gripp-backend-go/internal/domain/employee"
	"github.com/bureauhq/gripp-backend-go/internal/domain/holiday"
	"github.com/bureauhq/gripp-backend-go/internal/domain/hours"
	"github.com/bureauhq/gripp-backend-go/internal/domain/stats"
	"github.com/bureauhq/gripp-backend-go/internal/pkg/period"
)

// Calculator reconciles per-employee contract schedules, the holiday
// calendar and absence lines into expected-vs-actual hour figures. Pure:
// no I/O, no state.
type Calculator struct{}

func NewCalculator() *Calculator {
	return &Calculator{}
}

// Reconcile computes one employee's stats for one period. Missing inputs
// (no contract, no holidays, no absences) are zero contributions, never
// errors.
//
// Week periods follow the upstream semantics: every contract intersecting
// the week contributes its full five-day vector for the week's parity.
// Month periods are computed day by day with each day's own ISO-week
// parity, so months spanning both parities come out right for
// alternating contracts.
func (c *Calculator) Reconcile(
	emp employee.Employee,
	contracts []contract.Contract,
	holidays []holiday.Holiday,
	absenceLines []absence.Line,
	hourEntries []hours.Entry,
	p period.Period,
) stats.EmployeeStats {
	result := stats.EmployeeStats{
		EmployeeID: emp.ID,
		Name:       emp.Name,
		Function:   emp.Function,
	}

	var matching []contract.Contract
	for _, con := range contracts {
		if con.EmployeeID == emp.ID && con.OverlapsRange(p.Start, p.End) {
			matching = append(matching, con)
		}
	}

	if len(matching) == 0 {
		result.ContractPeriod = stats.NoContract
		return result
	}

	result.ContractPeriod = joinPeriodLabels(matching)

	holidayDates := holidayDateSet(holidays)

	if p.Kind == period.KindWeek {
		c.contractHoursWeek(&result, matching, holidays, p)
	} else {
		c.contractHoursMonth(&result, matching, holidayDates, p)
	}

	result.ExpectedHours = result.ContractHours - result.HolidayHours
	if result.ExpectedHours < 0 {
		result.ExpectedHours = 0
	}

	// Leave: approved or pending weekday lines inside the period,
	// excluding holiday dates. Overlapping lines for the same day are
	// summed as delivered; half-day pairs are legitimate upstream.
	for _, line := range absenceLines {
		if line.EmployeeID != emp.ID || !line.Counted() {
			continue
		}
		if !p.Contains(line.Date) || !period.IsWorkday(line.Date) {
			continue
		}
		if _, isHoliday := holidayDates[dateKey(line.Date)]; isHoliday {
			continue
		}
		result.LeaveHours += line.Hours
	}

	// Actual hours count every entry in the period, linked to a project
	// or not.
	for _, entry := range hourEntries {
		if entry.EmployeeID == emp.ID && p.Contains(entry.Date) {
			result.ActualHours += entry.Amount
		}
	}

	return result
}

// contractHoursWeek sums each matching contract's full parity vector and
// adds holiday hours for in-week weekday holidays.
func (c *Calculator) contractHoursWeek(
	result *stats.EmployeeStats,
	matching []contract.Contract,
	holidays []holiday.Holiday,
	p period.Period,
) {
	even := period.IsEvenWeek(p.Week)
	for _, con := range matching {
		vec := con.HoursFor(even)
		result.ContractHours += vec.Total()

		for _, h := range holidays {
			if !p.Contains(h.Date) || !h.OnWorkday() {
				continue
			}
			result.HolidayHours += vec[period.WeekdayIndex(h.Date)]
		}
	}
}

// contractHoursMonth walks the month's weekdays; each day picks its
// contract vector from its own ISO week's parity and only contracts
// valid on that day contribute.
func (c *Calculator) contractHoursMonth(
	result *stats.EmployeeStats,
	matching []contract.Contract,
	holidayDates map[string]struct{},
	p period.Period,
) {
	for _, day := range p.Days() {
		if !period.IsWorkday(day) {
			continue
		}
		_, week := day.ISOWeek()
		even := period.IsEvenWeek(week)
		idx := period.WeekdayIndex(day)
		_, isHoliday := holidayDates[dateKey(day)]

		for _, con := range matching {
			if !con.ActiveOn(day) {
				continue
			}
			dayHours := con.HoursFor(even)[idx]
			result.ContractHours += dayHours
			if isHoliday {
				result.HolidayHours += dayHours
			}
		}
	}
}

func joinPeriodLabels(contracts []contract.Contract) string {
	var label string
	seen := make(map[string]struct{})
	for _, con := range contracts {
		l := con.PeriodLabel()
		if _, dup := seen[l]; dup {
			continue
		}
		seen[l] = struct{}{}
		if label != "" {
			label += "; "
		}
		label += l
	}
	return label
}

func holidayDateSet(holidays []holiday.Holiday) map[string]struct{} {
	set := make(map[string]struct{}, len(holidays))
	for _, h := range holidays {
		set[dateKey(h.Date)] = struct{}{}
	}
	return set
}

func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
