package cron

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bureauhq/gripp-backend-go/internal/config"
)

func TestSyncWindow(t *testing.T) {
	t.Parallel()
	jobs := NewSyncJobs(nil, config.SyncConfig{
		RangeMonthsBack:    3,
		RangeMonthsForward: 1,
	})

	now := time.Date(2025, time.April, 17, 14, 30, 0, 0, time.UTC)
	start, end := jobs.Window(now)

	assert.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, time.May, 31, 0, 0, 0, 0, time.UTC), end)
}

func TestSyncWindowCrossesYearBoundary(t *testing.T) {
	t.Parallel()
	jobs := NewSyncJobs(nil, config.SyncConfig{
		RangeMonthsBack:    3,
		RangeMonthsForward: 1,
	})

	now := time.Date(2025, time.January, 2, 0, 0, 0, 0, time.UTC)
	start, end := jobs.Window(now)

	assert.Equal(t, time.Date(2024, time.October, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC), end)
}
