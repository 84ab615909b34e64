package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/bureauhq/gripp-backend-go/internal/domain/absence"
	"github.com/bureauhq/gripp-backend-go/internal/domain/contract"
	"github.com/bureauhq/gripp-backend-go/internal/domain/employee"
	"github.com/bureauhq/gripp-backend-go/internal/domain/holiday"
	"github.com/bureauhq/gripp-backend-go/internal/domain/hours"
)

// API is the slice of the Gripp client the orchestrator needs.
type API interface {
	FetchAll(ctx context.Context, method string, filters []interface{}) ([]json.RawMessage, error)
}

// Transactor runs fn inside a store transaction carried on the context.
type Transactor interface {
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// CacheInvalidator is notified after a completed sync so stale reconciled
// figures get recomputed on the next read.
type CacheInvalidator interface {
	ClearCache()
}

// Result reports one sync run. Counts holds rows written per entity
// type; Errors holds entity types that failed and were skipped (partial
// sync is an accepted outcome, not an abort).
type Result struct {
	RunID      uuid.UUID      `json:"run_id"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Counts     map[string]int `json:"counts"`
	Errors     []string       `json:"errors,omitempty"`
}

// Service pulls employees, contracts, holidays, absences and hour
// entries from the upstream API and replaces the local mirror, one
// atomic transaction per entity type.
type Service struct {
	api          API
	tx           Transactor
	employeeRepo employee.Repository
	contractRepo contract.Repository
	holidayRepo  holiday.Repository
	absenceRepo  absence.Repository
	hoursRepo    hours.Repository
	invalidator  CacheInvalidator
}

func NewService(
	api API,
	tx Transactor,
	employeeRepo employee.Repository,
	contractRepo contract.Repository,
	holidayRepo holiday.Repository,
	absenceRepo absence.Repository,
	hoursRepo hours.Repository,
	invalidator CacheInvalidator,
) *Service {
	return &Service{
		api:          api,
		tx:           tx,
		employeeRepo: employeeRepo,
		contractRepo: contractRepo,
		holidayRepo:  holidayRepo,
		absenceRepo:  absenceRepo,
		hoursRepo:    hoursRepo,
		invalidator:  invalidator,
	}
}

// Run syncs every entity type for the given date range. Entity types are
// processed in dependency order; one failing type is recorded and skipped
// without rolling back types already committed.
func (s *Service) Run(ctx context.Context, start, end time.Time) (*Result, error) {
	result := &Result{
		RunID:     uuid.New(),
		StartedAt: time.Now(),
		Counts:    make(map[string]int),
	}
	slog.Info("sync started", "run_id", result.RunID,
		"range_start", start.Format("2006-01-02"), "range_end", end.Format("2006-01-02"))

	steps := []struct {
		name string
		fn   func(ctx context.Context) (int, error)
	}{
		{"employees", func(ctx context.Context) (int, error) { return s.syncEmployees(ctx) }},
		{"contracts", func(ctx context.Context) (int, error) { return s.syncContracts(ctx, start, end) }},
		{"holidays", func(ctx context.Context) (int, error) { return s.syncHolidays(ctx) }},
		{"absences", func(ctx context.Context) (int, error) { return s.syncAbsences(ctx, start, end) }},
		{"hours", func(ctx context.Context) (int, error) { return s.syncHours(ctx, start, end) }},
	}

	committed := 0
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", step.name, err))
			break
		}
		count, err := step.fn(ctx)
		if err != nil {
			slog.Error("sync step failed", "run_id", result.RunID, "entity", step.name, "error", err)
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", step.name, err))
			continue
		}
		result.Counts[step.name] = count
		committed++
	}

	if committed > 0 && s.invalidator != nil {
		s.invalidator.ClearCache()
	}

	result.FinishedAt = time.Now()
	slog.Info("sync finished", "run_id", result.RunID,
		"duration", result.FinishedAt.Sub(result.StartedAt),
		"counts", result.Counts, "failed_steps", len(result.Errors))
	return result, nil
}

func (s *Service) syncEmployees(ctx context.Context) (int, error) {
	rows, err := s.api.FetchAll(ctx, "employee.get", nil)
	if err != nil {
		return 0, fmt.Errorf("fetch employees: %w", err)
	}

	var employees []employee.Employee
	for _, raw := range rows {
		e, err := mapEmployee(raw)
		if err != nil {
			slog.Warn("skipping malformed employee row", "error", err)
			continue
		}
		employees = append(employees, e)
	}

	err = s.tx.InTransaction(ctx, func(ctx context.Context) error {
		return s.employeeRepo.ReplaceAll(ctx, employees)
	})
	if err != nil {
		return 0, fmt.Errorf("store employees: %w", err)
	}
	return len(employees), nil
}

func (s *Service) syncContracts(ctx context.Context, start, end time.Time) (int, error) {
	rows, err := s.api.FetchAll(ctx, "contract.get", rangeFilters("contract.startdate", "contract.enddate", start, end))
	if err != nil {
		return 0, fmt.Errorf("fetch contracts: %w", err)
	}

	var contracts []contract.Contract
	for _, raw := range rows {
		c, err := mapContract(raw)
		if err != nil {
			slog.Warn("skipping malformed contract row", "error", err)
			continue
		}
		contracts = append(contracts, c)
	}

	err = s.tx.InTransaction(ctx, func(ctx context.Context) error {
		return s.contractRepo.ReplaceAll(ctx, contracts)
	})
	if err != nil {
		return 0, fmt.Errorf("store contracts: %w", err)
	}
	return len(contracts), nil
}

func (s *Service) syncHolidays(ctx context.Context) (int, error) {
	rows, err := s.api.FetchAll(ctx, "holiday.get", nil)
	if err != nil {
		return 0, fmt.Errorf("fetch holidays: %w", err)
	}

	var holidays []holiday.Holiday
	for _, raw := range rows {
		h, err := mapHoliday(raw)
		if err != nil {
			slog.Warn("skipping malformed holiday row", "error", err)
			continue
		}
		holidays = append(holidays, h)
	}

	err = s.tx.InTransaction(ctx, func(ctx context.Context) error {
		return s.holidayRepo.ReplaceAll(ctx, holidays)
	})
	if err != nil {
		return 0, fmt.Errorf("store holidays: %w", err)
	}
	return len(holidays), nil
}

func (s *Service) syncAbsences(ctx context.Context, start, end time.Time) (int, error) {
	rows, err := s.api.FetchAll(ctx, "absencerequest.get",
		betweenFilter("absencerequestline.date", start, end))
	if err != nil {
		return 0, fmt.Errorf("fetch absence requests: %w", err)
	}

	var lines []absence.Line
	for _, raw := range rows {
		requestLines, err := mapAbsenceLines(raw)
		if err != nil {
			slog.Warn("skipping malformed absence request row", "error", err)
			continue
		}
		lines = append(lines, requestLines...)
	}

	err = s.tx.InTransaction(ctx, func(ctx context.Context) error {
		return s.absenceRepo.ReplaceAll(ctx, lines)
	})
	if err != nil {
		return 0, fmt.Errorf("store absence lines: %w", err)
	}
	return len(lines), nil
}

func (s *Service) syncHours(ctx context.Context, start, end time.Time) (int, error) {
	rows, err := s.api.FetchAll(ctx, "hour.get", betweenFilter("hour.date", start, end))
	if err != nil {
		return 0, fmt.Errorf("fetch hour entries: %w", err)
	}

	var entries []hours.Entry
	for _, raw := range rows {
		e, err := mapHourEntry(raw)
		if err != nil {
			slog.Warn("skipping malformed hour row", "error", err)
			continue
		}
		entries = append(entries, e)
	}

	err = s.tx.InTransaction(ctx, func(ctx context.Context) error {
		return s.hoursRepo.ReplaceAll(ctx, entries)
	})
	if err != nil {
		return 0, fmt.Errorf("store hour entries: %w", err)
	}
	return len(entries), nil
}

func betweenFilter(field string, start, end time.Time) []interface{} {
	return []interface{}{
		map[string]interface{}{
			"field":    field,
			"operator": "between",
			"value":    start.Format("2006-01-02"),
			"value2":   end.Format("2006-01-02"),
		},
	}
}

// rangeFilters selects records whose validity interval touches the sync
// range: started on or before the range end, not ended before the range
// start.
func rangeFilters(startField, endField string, start, end time.Time) []interface{} {
	return []interface{}{
		map[string]interface{}{
			"field":    startField,
			"operator": "lessequals",
			"value":    end.Format("2006-01-02"),
		},
		map[string]interface{}{
			"field":    endField,
			"operator": "greaterequals",
			"value":    start.Format("2006-01-02"),
			"ornull":   true,
		},
	}
}
