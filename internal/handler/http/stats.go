package http

import (
	"net/http"
	"strconv"

	"github.com/bureauhq/gripp-backend-go/internal/handler/http/response"
	"github.com/bureauhq/gripp-backend-go/internal/service/reconcile"
)

type StatsHandler interface {
	// GetEmployeeStats returns reconciled hour figures for one period
	GetEmployeeStats(w http.ResponseWriter, r *http.Request)
	// GetCacheStats returns the server-side stats cache contents
	GetCacheStats(w http.ResponseWriter, r *http.Request)
	// ClearCache drops every cached period
	ClearCache(w http.ResponseWriter, r *http.Request)
}

type statsHandlerImpl struct {
	reconcileService *reconcile.Service
}

func NewStatsHandler(reconcileService *reconcile.Service) StatsHandler {
	return &statsHandlerImpl{reconcileService: reconcileService}
}

// GetEmployeeStats handles GET /stats/employees?year=2025&week=17 or
// ?year=2025&month=4. Exactly one of week and month selects the period
// kind; refresh=true bypasses the cache.
func (h *statsHandlerImpl) GetEmployeeStats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	year, err := strconv.Atoi(q.Get("year"))
	if err != nil {
		response.BadRequest(w, "year is required and must be a number", nil)
		return
	}

	weekParam := q.Get("week")
	monthParam := q.Get("month")
	if (weekParam == "") == (monthParam == "") {
		response.BadRequest(w, "exactly one of week and month is required", nil)
		return
	}
	forceRefresh := q.Get("refresh") == "true"

	if weekParam != "" {
		week, err := strconv.Atoi(weekParam)
		if err != nil {
			response.BadRequest(w, "week must be a number", nil)
			return
		}
		result, err := h.reconcileService.GetWeekStats(r.Context(), year, week, forceRefresh)
		if err != nil {
			response.HandleError(w, err)
			return
		}
		response.Success(w, result)
		return
	}

	month, err := strconv.Atoi(monthParam)
	if err != nil {
		response.BadRequest(w, "month must be a number", nil)
		return
	}
	result, err := h.reconcileService.GetMonthStats(r.Context(), year, month, forceRefresh)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// GetCacheStats handles GET /cache/stats
func (h *statsHandlerImpl) GetCacheStats(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.reconcileService.CacheStats())
}

// ClearCache handles DELETE /cache
func (h *statsHandlerImpl) ClearCache(w http.ResponseWriter, r *http.Request) {
	h.reconcileService.ClearCache()
	response.SuccessWithMessage(w, "Cache cleared", nil)
}
