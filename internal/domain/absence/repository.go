package absence

import (
	"context"
	"time"
)

type Repository interface {
	// GetLinesByRange returns absence lines dated within [start, end],
	// regardless of status; reconciliation filters on Counted().
	GetLinesByRange(ctx context.Context, start, end time.Time) ([]Line, error)
	ReplaceAll(ctx context.Context, lines []Line) error
}
