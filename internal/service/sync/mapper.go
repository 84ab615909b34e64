package sync

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/bureauhq/gripp-backend-go/internal/domain/absence"
	"github.com/bureauhq/gripp-backend-go/internal/domain/contract"
	"github.com/bureauhq/gripp-backend-go/internal/domain/employee"
	"github.com/bureauhq/gripp-backend-go/internal/domain/holiday"
	"github.com/bureauhq/gripp-backend-go/internal/domain/hours"
)

// grippDate tolerates the two date encodings the API uses: a plain
// "2006-01-02" string and a nested {"date": "2006-01-02 15:04:05..."}
// object.
type grippDate struct {
	time.Time
}

func (d *grippDate) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	var s string
	if data[0] == '{' {
		var nested struct {
			Date string `json:"date"`
		}
		if err := json.Unmarshal(data, &nested); err != nil {
			return err
		}
		s = nested.Date
	} else if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	if len(s) > 10 {
		s = s[:10]
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return fmt.Errorf("invalid date %q", s)
	}
	d.Time = t
	return nil
}

// grippFloat tolerates numeric fields delivered as JSON strings ("8.00").
type grippFloat float64

func (f *grippFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid number %q", s)
		}
		*f = grippFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = grippFloat(v)
	return nil
}

// idRef is the {"id": n, "searchname": "..."} reference shape.
type idRef struct {
	ID int64 `json:"id"`
}

type employeeRow struct {
	ID         int64  `json:"id"`
	Searchname string `json:"searchname"`
	Function   string `json:"function"`
	Active     bool   `json:"active"`
}

func mapEmployee(raw json.RawMessage) (employee.Employee, error) {
	var row employeeRow
	if err := json.Unmarshal(raw, &row); err != nil {
		return employee.Employee{}, err
	}
	if row.ID == 0 {
		return employee.Employee{}, fmt.Errorf("employee row without id")
	}
	return employee.Employee{
		ID:       row.ID,
		Name:     row.Searchname,
		Function: row.Function,
		Active:   row.Active,
	}, nil
}

type contractRow struct {
	ID        int64      `json:"id"`
	Employee  idRef      `json:"employee"`
	Startdate grippDate  `json:"startdate"`
	Enddate   *grippDate `json:"enddate"`

	MonEven grippFloat `json:"hours_monday_even"`
	TueEven grippFloat `json:"hours_tuesday_even"`
	WedEven grippFloat `json:"hours_wednesday_even"`
	ThuEven grippFloat `json:"hours_thursday_even"`
	FriEven grippFloat `json:"hours_friday_even"`
	MonOdd  grippFloat `json:"hours_monday_odd"`
	TueOdd  grippFloat `json:"hours_tuesday_odd"`
	WedOdd  grippFloat `json:"hours_wednesday_odd"`
	ThuOdd  grippFloat `json:"hours_thursday_odd"`
	FriOdd  grippFloat `json:"hours_friday_odd"`
}

func mapContract(raw json.RawMessage) (contract.Contract, error) {
	var row contractRow
	if err := json.Unmarshal(raw, &row); err != nil {
		return contract.Contract{}, err
	}
	if row.ID == 0 || row.Employee.ID == 0 {
		return contract.Contract{}, fmt.Errorf("contract row without id or employee")
	}
	if row.Startdate.IsZero() {
		return contract.Contract{}, fmt.Errorf("contract %d without start date", row.ID)
	}

	c := contract.Contract{
		ID:         row.ID,
		EmployeeID: row.Employee.ID,
		StartDate:  row.Startdate.Time,
		EvenHours: contract.WeekdayHours{
			float64(row.MonEven), float64(row.TueEven), float64(row.WedEven),
			float64(row.ThuEven), float64(row.FriEven),
		},
		OddHours: contract.WeekdayHours{
			float64(row.MonOdd), float64(row.TueOdd), float64(row.WedOdd),
			float64(row.ThuOdd), float64(row.FriOdd),
		},
	}
	if row.Enddate != nil && !row.Enddate.IsZero() {
		end := row.Enddate.Time
		c.EndDate = &end
	}
	return c, nil
}

type holidayRow struct {
	ID   int64     `json:"id"`
	Date grippDate `json:"date"`
	Name string    `json:"name"`
}

func mapHoliday(raw json.RawMessage) (holiday.Holiday, error) {
	var row holidayRow
	if err := json.Unmarshal(raw, &row); err != nil {
		return holiday.Holiday{}, err
	}
	if row.Date.IsZero() {
		return holiday.Holiday{}, fmt.Errorf("holiday row without date")
	}
	return holiday.Holiday{
		ID:   row.ID,
		Date: row.Date.Time,
		Name: row.Name,
	}, nil
}

type absenceRequestRow struct {
	ID       int64            `json:"id"`
	Employee idRef            `json:"employee"`
	Lines    []absenceLineRow `json:"absencerequestline"`
}

type absenceLineRow struct {
	ID     int64      `json:"id"`
	Date   grippDate  `json:"date"`
	Amount grippFloat `json:"amount"`
	Status idRef      `json:"absencerequeststatus"`
}

// mapAbsenceLines flattens a request row into its line items, attributing
// each line to the request's employee.
func mapAbsenceLines(raw json.RawMessage) ([]absence.Line, error) {
	var row absenceRequestRow
	if err := json.Unmarshal(raw, &row); err != nil {
		return nil, err
	}
	if row.Employee.ID == 0 {
		return nil, fmt.Errorf("absence request %d without employee", row.ID)
	}

	var lines []absence.Line
	for _, l := range row.Lines {
		if l.Date.IsZero() {
			return nil, fmt.Errorf("absence request %d has a line without date", row.ID)
		}
		lines = append(lines, absence.Line{
			ID:         l.ID,
			RequestID:  row.ID,
			EmployeeID: row.Employee.ID,
			Date:       l.Date.Time,
			Hours:      float64(l.Amount),
			Status:     int(l.Status.ID),
		})
	}
	return lines, nil
}

type hourRow struct {
	ID       int64      `json:"id"`
	Employee idRef      `json:"employee"`
	Date     grippDate  `json:"date"`
	Amount   grippFloat `json:"amount"`
	Project  *idRef     `json:"offerprojectbase"`
}

func mapHourEntry(raw json.RawMessage) (hours.Entry, error) {
	var row hourRow
	if err := json.Unmarshal(raw, &row); err != nil {
		return hours.Entry{}, err
	}
	if row.Employee.ID == 0 || row.Date.IsZero() {
		return hours.Entry{}, fmt.Errorf("hour row %d without employee or date", row.ID)
	}

	e := hours.Entry{
		ID:         row.ID,
		EmployeeID: row.Employee.ID,
		Date:       row.Date.Time,
		Amount:     float64(row.Amount),
	}
	if row.Project != nil && row.Project.ID != 0 {
		id := row.Project.ID
		e.ProjectID = &id
	}
	return e, nil
}
