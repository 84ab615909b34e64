package dashclient

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bureauhq/gripp-backend-go/internal/domain/stats"
)

type requestLog struct {
	mu       sync.Mutex
	requests []string
}

func (l *requestLog) add(r *http.Request) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.requests = append(l.requests, r.Method+" "+r.URL.RequestURI())
}

func (l *requestLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.requests...)
}

func (l *requestLog) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.requests)
}

func newStatsServer(t *testing.T) (*httptest.Server, *requestLog) {
	t.Helper()
	log := &requestLog{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.add(r)
		if r.Method == http.MethodDelete {
			fmt.Fprint(w, `{"success": true, "message": "Cache cleared"}`)
			return
		}
		week := r.URL.Query().Get("week")
		month := r.URL.Query().Get("month")
		fmt.Fprintf(w, `{"success": true, "data": {"data": [
			{"employee_id": 7, "name": "A. de Vries", "contract_hours": 40,
			 "holiday_hours": 0, "expected_hours": 40, "leave_hours": 0,
			 "actual_hours": 38.5, "contract_period": "2025-01-01 / ongoing"}
		], "from_cache": false, "week": %q, "month": %q}}`, week, month)
	}))
	t.Cleanup(server.Close)
	return server, log
}

func TestGetWeekStats_SecondCallHitsCache(t *testing.T) {
	t.Parallel()
	server, log := newStatsServer(t)
	client := New(server.URL, Options{DisablePreload: true})

	first, err := client.GetWeekStats(context.Background(), 2025, 17)
	require.NoError(t, err)
	require.Len(t, first.Data, 1)
	assert.False(t, first.FromCache)
	assert.Equal(t, 38.5, first.Data[0].ActualHours)

	second, err := client.GetWeekStats(context.Background(), 2025, 17)
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, 1, log.count())
}

func TestGetWeekStats_ValidatesBeforeFetching(t *testing.T) {
	t.Parallel()
	server, log := newStatsServer(t)
	client := New(server.URL, Options{DisablePreload: true})

	_, err := client.GetWeekStats(context.Background(), 2025, 54)
	var verr *stats.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 0, log.count())
}

func TestPreloadWarmsAdjacentWeeks(t *testing.T) {
	t.Parallel()
	server, log := newStatsServer(t)
	client := New(server.URL, Options{})

	_, err := client.GetWeekStats(context.Background(), 2025, 17)
	require.NoError(t, err)
	client.waitForPreloads()

	// The requested week plus its two neighbours, and nothing beyond:
	// preloads never spawn preloads of their own.
	requests := log.snapshot()
	assert.Len(t, requests, 3)
	assert.Contains(t, requests, "GET /api/v1/stats/employees?year=2025&week=17")
	assert.Contains(t, requests, "GET /api/v1/stats/employees?year=2025&week=16")
	assert.Contains(t, requests, "GET /api/v1/stats/employees?year=2025&week=18")

	// A preloaded neighbour is then a cache hit.
	result, err := client.GetWeekStats(context.Background(), 2025, 18)
	require.NoError(t, err)
	assert.True(t, result.FromCache)
	// ...and a hit does not schedule new preloads.
	client.waitForPreloads()
	assert.Equal(t, 3, log.count())
}

func TestPreloadCrossesYearBoundary(t *testing.T) {
	t.Parallel()
	server, log := newStatsServer(t)
	client := New(server.URL, Options{})

	_, err := client.GetWeekStats(context.Background(), 2025, 1)
	require.NoError(t, err)
	client.waitForPreloads()

	// 2024 is a 52-week year, so W1's predecessor is 2024-W52.
	assert.Contains(t, log.snapshot(), "GET /api/v1/stats/employees?year=2024&week=52")
}

func TestMonthStatsCachedSeparatelyFromWeeks(t *testing.T) {
	t.Parallel()
	server, _ := newStatsServer(t)
	client := New(server.URL, Options{DisablePreload: true})

	_, err := client.GetMonthStats(context.Background(), 2025, 4)
	require.NoError(t, err)
	_, err = client.GetWeekStats(context.Background(), 2025, 17)
	require.NoError(t, err)

	cs := client.CacheStats()
	assert.Equal(t, 2, cs.Total)
	assert.Equal(t, 1, cs.ByKind["employeeWeek"])
	assert.Equal(t, 1, cs.ByKind["employeeMonth"])
}

func TestForceRefreshClearsServerCacheFirst(t *testing.T) {
	t.Parallel()
	server, log := newStatsServer(t)
	client := New(server.URL, Options{DisablePreload: true})

	// Prime the local cache, then force.
	_, err := client.GetWeekStats(context.Background(), 2025, 17)
	require.NoError(t, err)

	result, err := client.ForceRefresh(context.Background(), 2025, 17)
	require.NoError(t, err)
	assert.False(t, result.FromCache)

	requests := log.snapshot()
	require.Len(t, requests, 3)
	assert.Equal(t, "DELETE /api/v1/cache", requests[1])
	assert.Equal(t, "GET /api/v1/stats/employees?year=2025&week=17&refresh=true", requests[2])
}

func TestServerErrorSurfaces(t *testing.T) {
	t.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"success": false, "error": {"code": "INTERNAL_SERVER_ERROR", "message": "boom"}}`)
	}))
	t.Cleanup(server.Close)
	client := New(server.URL, Options{DisablePreload: true})

	_, err := client.GetWeekStats(context.Background(), 2025, 17)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INTERNAL_SERVER_ERROR")

	// Failures are not cached.
	assert.Equal(t, 0, client.CacheStats().Total)
}

func TestClientClearCacheIsLocalOnly(t *testing.T) {
	t.Parallel()
	server, log := newStatsServer(t)
	client := New(server.URL, Options{DisablePreload: true})

	_, err := client.GetWeekStats(context.Background(), 2025, 17)
	require.NoError(t, err)
	client.ClearCache()

	assert.Equal(t, 0, client.CacheStats().Total)
	assert.Equal(t, 1, log.count())

	_, err = client.GetWeekStats(context.Background(), 2025, 17)
	require.NoError(t, err)
	assert.Equal(t, 2, log.count())
}
