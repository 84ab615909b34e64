package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bureauhq/gripp-backend-go/internal/domain/absence"
	"github.com/bureauhq/gripp-backend-go/internal/domain/contract"
	"github.com/bureauhq/gripp-backend-go/internal/domain/employee"
	"github.com/bureauhq/gripp-backend-go/internal/domain/holiday"
	"github.com/bureauhq/gripp-backend-go/internal/domain/hours"
	"github.com/bureauhq/gripp-backend-go/internal/domain/stats"
	"github.com/bureauhq/gripp-backend-go/internal/pkg/period"
)

var (
	fortyHours = contract.WeekdayHours{8, 8, 8, 8, 8}
	zeroHours  = contract.WeekdayHours{}
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func fullYearContract(employeeID int64, weekly contract.WeekdayHours) contract.Contract {
	end := date(2025, time.December, 31)
	return contract.Contract{
		ID:         1,
		EmployeeID: employeeID,
		StartDate:  date(2025, time.January, 1),
		EndDate:    &end,
		EvenHours:  weekly,
		OddHours:   weekly,
	}
}

func testEmployee() employee.Employee {
	return employee.Employee{ID: 7, Name: "A. de Vries", Function: "Developer", Active: true}
}

func TestReconcile_NoContractIsZeroNotError(t *testing.T) {
	t.Parallel()
	calc := NewCalculator()

	got := calc.Reconcile(testEmployee(), nil, nil, nil, nil, period.WeekRange(2025, 17))

	assert.Equal(t, stats.NoContract, got.ContractPeriod)
	assert.Zero(t, got.ContractHours)
	assert.Zero(t, got.HolidayHours)
	assert.Zero(t, got.ExpectedHours)
	assert.Zero(t, got.LeaveHours)
	assert.Zero(t, got.ActualHours)
}

func TestReconcile_FullYearContractExpectedEqualsContract(t *testing.T) {
	t.Parallel()
	calc := NewCalculator()
	emp := testEmployee()
	contracts := []contract.Contract{fullYearContract(emp.ID, fortyHours)}

	for week := 2; week <= 52; week++ {
		got := calc.Reconcile(emp, contracts, nil, nil, nil, period.WeekRange(2025, week))
		assert.Equal(t, 40.0, got.ContractHours, "week %d", week)
		assert.Equal(t, got.ContractHours, got.ExpectedHours, "week %d", week)
	}
}

func TestReconcile_WeekParitySelectsVector(t *testing.T) {
	t.Parallel()
	calc := NewCalculator()
	emp := testEmployee()
	con := fullYearContract(emp.ID, zeroHours)
	con.EvenHours = fortyHours
	con.OddHours = contract.WeekdayHours{4, 4, 4, 4, 4}
	contracts := []contract.Contract{con}

	odd := calc.Reconcile(emp, contracts, nil, nil, nil, period.WeekRange(2025, 17))
	assert.Equal(t, 20.0, odd.ContractHours)

	even := calc.Reconcile(emp, contracts, nil, nil, nil, period.WeekRange(2025, 18))
	assert.Equal(t, 40.0, even.ContractHours)

	// Same parity two weeks later, same vector.
	oddAgain := calc.Reconcile(emp, contracts, nil, nil, nil, period.WeekRange(2025, 19))
	assert.Equal(t, odd.ContractHours, oddAgain.ContractHours)
}

func TestReconcile_HolidayAndLeaveWeek(t *testing.T) {
	t.Parallel()
	calc := NewCalculator()
	emp := testEmployee()
	contracts := []contract.Contract{fullYearContract(emp.ID, fortyHours)}

	// Week 17 of 2025 runs Monday April 21 through Sunday April 27.
	holidays := []holiday.Holiday{{Date: date(2025, time.April, 21), Name: "Easter Monday"}}
	lines := []absence.Line{{
		EmployeeID: emp.ID,
		Date:       date(2025, time.April, 22),
		Hours:      8,
		Status:     absence.StatusApproved,
	}}

	got := calc.Reconcile(emp, contracts, holidays, lines, nil, period.WeekRange(2025, 17))

	assert.Equal(t, 40.0, got.ContractHours)
	assert.Equal(t, 8.0, got.HolidayHours)
	assert.Equal(t, 32.0, got.ExpectedHours)
	assert.Equal(t, 8.0, got.LeaveHours)
}

func TestReconcile_OverlappingContractsSum(t *testing.T) {
	t.Parallel()
	calc := NewCalculator()
	emp := testEmployee()

	first := fullYearContract(emp.ID, contract.WeekdayHours{4, 4, 4, 4, 4}) // 20h
	second := fullYearContract(emp.ID, contract.WeekdayHours{3, 3, 3, 3, 3}) // 15h
	second.ID = 2

	got := calc.Reconcile(emp, []contract.Contract{first, second}, nil, nil, nil, period.WeekRange(2025, 17))

	assert.Equal(t, 35.0, got.ContractHours)
}

func TestReconcile_WeekendHolidayContributesNothing(t *testing.T) {
	t.Parallel()
	calc := NewCalculator()
	emp := testEmployee()
	contracts := []contract.Contract{fullYearContract(emp.ID, fortyHours)}

	// April 26, 2025 is a Saturday inside week 17.
	holidays := []holiday.Holiday{{Date: date(2025, time.April, 26), Name: "Weekend holiday"}}

	got := calc.Reconcile(emp, contracts, holidays, nil, nil, period.WeekRange(2025, 17))

	assert.Zero(t, got.HolidayHours)
	assert.Equal(t, 40.0, got.ExpectedHours)
}

func TestReconcile_ExpectedNeverNegative(t *testing.T) {
	t.Parallel()
	calc := NewCalculator()
	emp := testEmployee()
	con := fullYearContract(emp.ID, contract.WeekdayHours{4, 0, 0, 0, 0})

	// Two holiday rows on the same Monday double the deduction past the
	// contracted total.
	holidays := []holiday.Holiday{
		{Date: date(2025, time.April, 21), Name: "Easter Monday"},
		{Date: date(2025, time.April, 21), Name: "Duplicate row"},
	}

	got := calc.Reconcile(emp, []contract.Contract{con}, holidays, nil, nil, period.WeekRange(2025, 17))

	assert.Equal(t, 4.0, got.ContractHours)
	assert.Equal(t, 8.0, got.HolidayHours)
	assert.Zero(t, got.ExpectedHours)
}

func TestReconcile_LeaveStatusFiltering(t *testing.T) {
	t.Parallel()
	calc := NewCalculator()
	emp := testEmployee()
	contracts := []contract.Contract{fullYearContract(emp.ID, fortyHours)}

	lines := []absence.Line{
		{EmployeeID: emp.ID, Date: date(2025, time.April, 22), Hours: 8, Status: absence.StatusApproved},
		{EmployeeID: emp.ID, Date: date(2025, time.April, 23), Hours: 4, Status: absence.StatusPending},
		{EmployeeID: emp.ID, Date: date(2025, time.April, 24), Hours: 8, Status: absence.StatusRejected},
		// Belongs to somebody else.
		{EmployeeID: 99, Date: date(2025, time.April, 22), Hours: 8, Status: absence.StatusApproved},
		// Saturday: weekends never count.
		{EmployeeID: emp.ID, Date: date(2025, time.April, 26), Hours: 8, Status: absence.StatusApproved},
	}

	got := calc.Reconcile(emp, contracts, nil, lines, nil, period.WeekRange(2025, 17))

	assert.Equal(t, 12.0, got.LeaveHours)
}

func TestReconcile_LeaveOnHolidayExcluded(t *testing.T) {
	t.Parallel()
	calc := NewCalculator()
	emp := testEmployee()
	contracts := []contract.Contract{fullYearContract(emp.ID, fortyHours)}

	holidays := []holiday.Holiday{{Date: date(2025, time.April, 21), Name: "Easter Monday"}}
	lines := []absence.Line{
		{EmployeeID: emp.ID, Date: date(2025, time.April, 21), Hours: 8, Status: absence.StatusApproved},
	}

	got := calc.Reconcile(emp, contracts, holidays, lines, nil, period.WeekRange(2025, 17))

	assert.Zero(t, got.LeaveHours)
	assert.Equal(t, 8.0, got.HolidayHours)
}

func TestReconcile_OverlappingLeaveLinesSum(t *testing.T) {
	t.Parallel()
	calc := NewCalculator()
	emp := testEmployee()
	contracts := []contract.Contract{fullYearContract(emp.ID, fortyHours)}

	// Two half-day lines on the same day both contribute in full.
	lines := []absence.Line{
		{EmployeeID: emp.ID, Date: date(2025, time.April, 22), Hours: 4, Status: absence.StatusApproved},
		{EmployeeID: emp.ID, Date: date(2025, time.April, 22), Hours: 4, Status: absence.StatusPending},
	}

	got := calc.Reconcile(emp, contracts, nil, lines, nil, period.WeekRange(2025, 17))

	assert.Equal(t, 8.0, got.LeaveHours)
}

func TestReconcile_ActualHoursIgnoreProjectLink(t *testing.T) {
	t.Parallel()
	calc := NewCalculator()
	emp := testEmployee()
	contracts := []contract.Contract{fullYearContract(emp.ID, fortyHours)}

	project := int64(31)
	entries := []hours.Entry{
		{EmployeeID: emp.ID, Date: date(2025, time.April, 21), Amount: 7.5, ProjectID: &project},
		{EmployeeID: emp.ID, Date: date(2025, time.April, 22), Amount: 8, ProjectID: nil},
		// Outside the period.
		{EmployeeID: emp.ID, Date: date(2025, time.April, 14), Amount: 8, ProjectID: nil},
		// Somebody else.
		{EmployeeID: 99, Date: date(2025, time.April, 21), Amount: 8, ProjectID: nil},
	}

	got := calc.Reconcile(emp, contracts, nil, nil, entries, period.WeekRange(2025, 17))

	assert.Equal(t, 15.5, got.ActualHours)
}

func TestReconcile_MonthUsesPerWeekParity(t *testing.T) {
	t.Parallel()
	calc := NewCalculator()
	emp := testEmployee()

	con := fullYearContract(emp.ID, zeroHours)
	con.EvenHours = fortyHours // 8h weekdays in even weeks
	con.OddHours = zeroHours   // off in odd weeks

	got := calc.Reconcile(emp, []contract.Contract{con}, nil, nil, nil, period.MonthRange(2025, time.April))

	// April 2025 weekday count by ISO week: W14 (even) Apr 1-4 = 4 days,
	// W15 (odd) 5 days, W16 (even) 5 days, W17 (odd) 5 days,
	// W18 (even) Apr 28-30 = 3 days. Even-week weekdays: 4+5+3 = 12.
	assert.Equal(t, 96.0, got.ContractHours)
}

func TestReconcile_MonthRespectsContractValidityPerDay(t *testing.T) {
	t.Parallel()
	calc := NewCalculator()
	emp := testEmployee()

	end := date(2025, time.December, 31)
	con := contract.Contract{
		ID:         1,
		EmployeeID: emp.ID,
		StartDate:  date(2025, time.April, 15), // Tuesday in W16
		EndDate:    &end,
		EvenHours:  fortyHours,
		OddHours:   fortyHours,
	}

	got := calc.Reconcile(emp, []contract.Contract{con}, nil, nil, nil, period.MonthRange(2025, time.April))

	// Weekdays April 15-30: 4 in W16, 5 in W17, 3 in W18 = 12 days.
	assert.Equal(t, 96.0, got.ContractHours)
}

func TestReconcile_OpenEndedContract(t *testing.T) {
	t.Parallel()
	calc := NewCalculator()
	emp := testEmployee()

	con := contract.Contract{
		ID:         1,
		EmployeeID: emp.ID,
		StartDate:  date(2020, time.January, 1),
		EndDate:    nil,
		EvenHours:  fortyHours,
		OddHours:   fortyHours,
	}

	got := calc.Reconcile(emp, []contract.Contract{con}, nil, nil, nil, period.WeekRange(2025, 17))

	assert.Equal(t, 40.0, got.ContractHours)
	assert.Equal(t, "2020-01-01 / ongoing", got.ContractPeriod)
}

func TestMergeStats(t *testing.T) {
	t.Parallel()

	a := stats.EmployeeStats{
		EmployeeID: 7, Name: "A. de Vries",
		ContractHours: 20, HolidayHours: 4, ExpectedHours: 16, LeaveHours: 8, ActualHours: 18,
		ContractPeriod: "2025-01-01 / 2025-06-30",
	}
	b := stats.EmployeeStats{
		EmployeeID: 7, Name: "A. de Vries",
		ContractHours: 15, ExpectedHours: 15,
		ContractPeriod: "2025-07-01 / ongoing",
	}

	a.Merge(b)

	assert.Equal(t, 35.0, a.ContractHours)
	assert.Equal(t, 4.0, a.HolidayHours)
	assert.Equal(t, 31.0, a.ExpectedHours)
	assert.Equal(t, 8.0, a.LeaveHours)
	assert.Equal(t, 18.0, a.ActualHours)
	assert.Equal(t, "2025-01-01 / 2025-06-30; 2025-07-01 / ongoing", a.ContractPeriod)

	// Merging the same label twice does not repeat it.
	a.Merge(stats.EmployeeStats{ContractPeriod: "2025-07-01 / ongoing"})
	assert.Equal(t, "2025-01-01 / 2025-06-30; 2025-07-01 / ongoing", a.ContractPeriod)
}

func TestMergeStats_NoContractReplaced(t *testing.T) {
	t.Parallel()

	a := stats.EmployeeStats{EmployeeID: 7, ContractPeriod: stats.NoContract}
	a.Merge(stats.EmployeeStats{ContractHours: 20, ExpectedHours: 20, ContractPeriod: "2025-01-01 / ongoing"})

	assert.Equal(t, 20.0, a.ContractHours)
	assert.Equal(t, "2025-01-01 / ongoing", a.ContractPeriod)
}

func TestReconcile_RequireWeekModel(t *testing.T) {
	t.Parallel()
	// Sanity-pin the calendar assumptions the month tests rest on.
	p := period.WeekRange(2025, 17)
	require.Equal(t, date(2025, time.April, 21), p.Start)
	_, w := date(2025, time.April, 1).ISOWeek()
	require.Equal(t, 14, w)
}
