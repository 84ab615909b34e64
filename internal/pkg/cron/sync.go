package cron

import (
	"context"
	"time"

	"github.com/bureauhq/gripp-backend-go/internal/config"
	syncsvc "github.com/bureauhq/gripp-backend-go/internal/service/sync"
)

// SyncJobs owns the periodic mirror refresh.
type SyncJobs struct {
	syncService *syncsvc.Service
	cfg         config.SyncConfig
}

func NewSyncJobs(syncService *syncsvc.Service, cfg config.SyncConfig) *SyncJobs {
	return &SyncJobs{syncService: syncService, cfg: cfg}
}

func (j *SyncJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("sync_gripp_mirror", j.cfg.Interval, j.RunSync)
}

// RunSync refreshes the mirror for the configured window around today.
// A partial result is not an error here; failed entity types are already
// logged by the sync service.
func (j *SyncJobs) RunSync(ctx context.Context) error {
	start, end := j.Window(time.Now())
	_, err := j.syncService.Run(ctx, start, end)
	return err
}

// Window returns the sync date range around now: the first day of the
// month RangeMonthsBack months ago through the last day of the month
// RangeMonthsForward months ahead.
func (j *SyncJobs) Window(now time.Time) (time.Time, time.Time) {
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	start := firstOfMonth.AddDate(0, -j.cfg.RangeMonthsBack, 0)
	end := firstOfMonth.AddDate(0, j.cfg.RangeMonthsForward+1, -1)
	return start, end
}
