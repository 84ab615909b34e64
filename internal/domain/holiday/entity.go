package holiday

import "time"

// Holiday is a global calendar date, not employee-specific. Only holidays
// falling on a contracted weekday reduce expected hours; weekend holidays
// never contribute.
type Holiday struct {
	ID   int64
	Date time.Time
	Name string

	SyncedAt time.Time
}

// OnWorkday reports whether the holiday falls Monday through Friday.
func (h Holiday) OnWorkday() bool {
	wd := h.Date.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}
