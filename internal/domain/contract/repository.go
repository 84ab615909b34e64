package contract

import (
	"context"
	"time"
)

type Repository interface {
	// GetByRange returns contracts whose validity interval intersects
	// [start, end].
	GetByRange(ctx context.Context, start, end time.Time) ([]Contract, error)
	ReplaceAll(ctx context.Context, contracts []Contract) error
}
