package http

import (
	"net/http"
	"time"

	"github.com/bureauhq/gripp-backend-go/internal/handler/http/response"
	"github.com/bureauhq/gripp-backend-go/internal/pkg/cron"
	syncsvc "github.com/bureauhq/gripp-backend-go/internal/service/sync"
)

type SyncHandler interface {
	// TriggerSync runs a full mirror refresh and reports the result
	TriggerSync(w http.ResponseWriter, r *http.Request)
}

type syncHandlerImpl struct {
	syncService *syncsvc.Service
	jobs        *cron.SyncJobs
}

func NewSyncHandler(syncService *syncsvc.Service, jobs *cron.SyncJobs) SyncHandler {
	return &syncHandlerImpl{syncService: syncService, jobs: jobs}
}

// TriggerSync handles POST /sync. The run is synchronous; partial
// results come back with per-entity errors listed.
func (h *syncHandlerImpl) TriggerSync(w http.ResponseWriter, r *http.Request) {
	start, end := h.jobs.Window(time.Now())
	result, err := h.syncService.Run(r.Context(), start, end)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if len(result.Errors) > 0 {
		response.Accepted(w, "Sync finished with failed entity types", result)
		return
	}
	response.Success(w, result)
}
