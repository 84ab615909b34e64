package hours

import "time"

// Entry is a raw time-booking record, used only to compute actual
// (written) hours. ProjectID is optional; unlinked entries count all the
// same.
type Entry struct {
	ID         int64
	EmployeeID int64
	Date       time.Time
	Amount     float64
	ProjectID  *int64

	SyncedAt time.Time
}
