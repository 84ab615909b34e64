package stats

import "strings"

// NoContract marks a stats record for an employee without any contract
// intersecting the requested period. All numeric fields are zero; this is
// a valid result, not an error.
const NoContract = "No contract"

// EmployeeStats is the reconciled expected-vs-actual figure set for one
// employee over one period.
type EmployeeStats struct {
	EmployeeID int64   `json:"employee_id"`
	Name       string  `json:"name"`
	Function   string  `json:"function"`

	ContractHours  float64 `json:"contract_hours"`
	HolidayHours   float64 `json:"holiday_hours"`
	ExpectedHours  float64 `json:"expected_hours"`
	LeaveHours     float64 `json:"leave_hours"`
	ActualHours    float64 `json:"actual_hours"`
	ContractPeriod string  `json:"contract_period"`
}

// Merge folds other into s: numeric fields are summed and distinct
// contract-period labels concatenated. Used when upstream delivers
// duplicated contract rows for the same employee; identical duplicate ids
// are not deduplicated here.
func (s *EmployeeStats) Merge(other EmployeeStats) {
	s.ContractHours += other.ContractHours
	s.HolidayHours += other.HolidayHours
	s.ExpectedHours += other.ExpectedHours
	s.LeaveHours += other.LeaveHours
	s.ActualHours += other.ActualHours

	if other.ContractPeriod != "" && other.ContractPeriod != s.ContractPeriod {
		if s.ContractPeriod == "" || s.ContractPeriod == NoContract {
			s.ContractPeriod = other.ContractPeriod
		} else if !containsLabel(s.ContractPeriod, other.ContractPeriod) {
			s.ContractPeriod += "; " + other.ContractPeriod
		}
	}
}

func containsLabel(joined, label string) bool {
	for _, part := range strings.Split(joined, "; ") {
		if part == label {
			return true
		}
	}
	return false
}

// BatchResult is the public query result: stats for every employee plus
// per-employee warnings. One failing employee never fails the batch.
type BatchResult struct {
	Data      []EmployeeStats `json:"data"`
	Warnings  []string        `json:"warnings,omitempty"`
	FromCache bool            `json:"from_cache"`
}

// Clone returns a copy that shares no slices with b. Cached batches are
// handed out by value, so without this a caller mutating Data would
// mutate the cache entry behind every later reader.
func (b BatchResult) Clone() BatchResult {
	out := b
	if b.Data != nil {
		out.Data = append([]EmployeeStats(nil), b.Data...)
	}
	if b.Warnings != nil {
		out.Warnings = append([]string(nil), b.Warnings...)
	}
	return out
}
