package employee

import "time"

// Employee mirrors a Gripp employee record. Identity is immutable; the
// active flag is toggled by sync.
type Employee struct {
	ID       int64
	Name     string
	Function string
	Active   bool

	SyncedAt time.Time
}
