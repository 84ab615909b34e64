package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/bureauhq/gripp-backend-go/internal/domain/absence"
	"github.com/bureauhq/gripp-backend-go/internal/domain/contract"
	"github.com/bureauhq/gripp-backend-go/internal/domain/employee"
	"github.com/bureauhq/gripp-backend-go/internal/domain/holiday"
	"github.com/bureauhq/gripp-backend-go/internal/domain/hours"
	"github.com/bureauhq/gripp-backend-go/internal/domain/stats"
	"github.com/bureauhq/gripp-backend-go/internal/pkg/cache"
	"github.com/bureauhq/gripp-backend-go/internal/pkg/period"
)

// Service is the server-resident query surface: a TTL+LRU cache in front
// of the reconciliation calculator and the mirrored store.
type Service struct {
	employeeRepo employee.Repository
	contractRepo contract.Repository
	holidayRepo  holiday.Repository
	absenceRepo  absence.Repository
	hoursRepo    hours.Repository
	calc         *Calculator
	cache        *cache.Cache
}

func NewService(
	employeeRepo employee.Repository,
	contractRepo contract.Repository,
	holidayRepo holiday.Repository,
	absenceRepo absence.Repository,
	hoursRepo hours.Repository,
	statsCache *cache.Cache,
) *Service {
	return &Service{
		employeeRepo: employeeRepo,
		contractRepo: contractRepo,
		holidayRepo:  holidayRepo,
		absenceRepo:  absenceRepo,
		hoursRepo:    hoursRepo,
		calc:         NewCalculator(),
		cache:        statsCache,
	}
}

// GetWeekStats returns reconciled stats for every active employee over an
// ISO week.
func (s *Service) GetWeekStats(ctx context.Context, year, week int, forceRefresh bool) (stats.BatchResult, error) {
	if err := stats.ValidateWeek(year, week); err != nil {
		return stats.BatchResult{}, err
	}
	return s.getStats(ctx, period.WeekRange(year, week), "employeeWeek", forceRefresh)
}

// GetMonthStats returns reconciled stats for every active employee over a
// calendar month. Months are one-indexed.
func (s *Service) GetMonthStats(ctx context.Context, year, month int, forceRefresh bool) (stats.BatchResult, error) {
	if err := stats.ValidateMonth(year, month); err != nil {
		return stats.BatchResult{}, err
	}
	return s.getStats(ctx, period.MonthRange(year, time.Month(month)), "employeeMonth", forceRefresh)
}

// ClearCache drops the server-side stats cache; called by the sync
// orchestrator after a completed sync and by the force-refresh endpoint.
func (s *Service) ClearCache() {
	s.cache.Clear()
}

func (s *Service) CacheStats() cache.Stats {
	return s.cache.Stats()
}

func (s *Service) getStats(ctx context.Context, p period.Period, kind string, forceRefresh bool) (stats.BatchResult, error) {
	key := kind + ":" + p.Label()

	if !forceRefresh {
		if cached, ok := s.cache.Get(key); ok {
			result := cached.(stats.BatchResult).Clone()
			result.FromCache = true
			return result, nil
		}
	}

	result, err := s.computeBatch(ctx, p)
	if err != nil {
		return stats.BatchResult{}, err
	}

	// The cache keeps its own copy so callers cannot mutate it through
	// the returned slice.
	s.cache.Set(key, result.Clone())
	return result, nil
}

// computeBatch loads the period's slice of the mirror and reconciles each
// employee. A failure for one employee becomes a warning; only store
// unavailability fails the batch.
func (s *Service) computeBatch(ctx context.Context, p period.Period) (stats.BatchResult, error) {
	employees, err := s.employeeRepo.GetAll(ctx, true)
	if err != nil {
		return stats.BatchResult{}, fmt.Errorf("load employees: %w", err)
	}
	contracts, err := s.contractRepo.GetByRange(ctx, p.Start, p.End)
	if err != nil {
		return stats.BatchResult{}, fmt.Errorf("load contracts: %w", err)
	}
	holidays, err := s.holidayRepo.GetAll(ctx)
	if err != nil {
		return stats.BatchResult{}, fmt.Errorf("load holidays: %w", err)
	}
	absenceLines, err := s.absenceRepo.GetLinesByRange(ctx, p.Start, p.End)
	if err != nil {
		return stats.BatchResult{}, fmt.Errorf("load absence lines: %w", err)
	}
	hourEntries, err := s.hoursRepo.GetByRange(ctx, p.Start, p.End)
	if err != nil {
		return stats.BatchResult{}, fmt.Errorf("load hour entries: %w", err)
	}

	result := stats.BatchResult{}
	merged := make(map[int64]int) // employee id -> index into result.Data

	for _, emp := range employees {
		empStats, warn := s.reconcileOne(emp, contracts, holidays, absenceLines, hourEntries, p)
		if warn != "" {
			result.Warnings = append(result.Warnings, warn)
			continue
		}

		// Upstream pagination sometimes repeats employee rows; merge by
		// id, summing numerics.
		if idx, dup := merged[emp.ID]; dup {
			result.Data[idx].Merge(empStats)
			continue
		}
		merged[emp.ID] = len(result.Data)
		result.Data = append(result.Data, empStats)
	}

	sort.Slice(result.Data, func(i, j int) bool {
		return result.Data[i].Name < result.Data[j].Name
	})
	return result, nil
}

// reconcileOne guards a single employee's reconciliation so one bad
// record cannot fail the whole batch.
func (s *Service) reconcileOne(
	emp employee.Employee,
	contracts []contract.Contract,
	holidays []holiday.Holiday,
	absenceLines []absence.Line,
	hourEntries []hours.Entry,
	p period.Period,
) (result stats.EmployeeStats, warning string) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("reconciliation failed for employee",
				"employee_id", emp.ID, "period", p.Label(), "panic", r)
			warning = fmt.Sprintf("employee %d (%s): reconciliation failed", emp.ID, emp.Name)
		}
	}()

	result = s.calc.Reconcile(emp, contracts, holidays, absenceLines, hourEntries, p)
	return result, ""
}
