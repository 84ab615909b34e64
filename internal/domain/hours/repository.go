package hours

import (
	"context"
	"time"
)

type Repository interface {
	GetByRange(ctx context.Context, start, end time.Time) ([]Entry, error)
	ReplaceAll(ctx context.Context, entries []Entry) error
}
