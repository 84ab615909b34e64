package absence

import "time"

// Gripp absence line status codes.
const (
	StatusApproved = 1
	StatusPending  = 2
	StatusRejected = 3
)

// Line is one day of an absence request. A line is attributable to exactly
// one employee via its parent request; the employee id is denormalized
// here by sync so reconciliation needs no join.
type Line struct {
	ID         int64
	RequestID  int64
	EmployeeID int64
	Date       time.Time
	Hours      float64
	Status     int

	SyncedAt time.Time
}

// Counted reports whether the line contributes to leave hours. Only
// approved and pending lines count; rejected lines are excluded.
func (l Line) Counted() bool {
	return l.Status == StatusApproved || l.Status == StatusPending
}
