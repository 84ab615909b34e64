// Package dashclient is a Go client for the dashboard API with a
// client-resident stats cache and adjacent-period preloading.
package dashclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/bureauhq/gripp-backend-go/internal/domain/stats"
	"github.com/bureauhq/gripp-backend-go/internal/pkg/cache"
	"github.com/bureauhq/gripp-backend-go/internal/pkg/period"
)

// Options tune the client; the zero value gives production defaults.
type Options struct {
	// CacheTTL and CacheMaxSize size the client-resident cache.
	CacheTTL     time.Duration
	CacheMaxSize int
	// HTTPClient overrides the default 30s-timeout client.
	HTTPClient *http.Client
	// DisablePreload turns off adjacent-period preloading.
	DisablePreload bool
}

// Client caches period stats locally and warms the neighbouring periods
// in the background after every miss.
type Client struct {
	baseURL string
	http    *http.Client
	cache   *cache.Cache
	preload bool

	mu         sync.Mutex
	preloading map[string]bool
	preloadWG  sync.WaitGroup
}

func New(baseURL string, opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    baseURL,
		http:       httpClient,
		cache:      cache.New(opts.CacheTTL, opts.CacheMaxSize),
		preload:    !opts.DisablePreload,
		preloading: make(map[string]bool),
	}
}

// GetWeekStats returns reconciled stats for one ISO week, served from the
// local cache when fresh. A miss fetches from the server and kicks off
// background preloads of the previous and next week.
func (c *Client) GetWeekStats(ctx context.Context, year, week int) (stats.BatchResult, error) {
	if err := stats.ValidateWeek(year, week); err != nil {
		return stats.BatchResult{}, err
	}
	return c.getStats(ctx, period.WeekRange(year, week), false)
}

// GetMonthStats is GetWeekStats for a calendar month; month is
// one-indexed.
func (c *Client) GetMonthStats(ctx context.Context, year, month int) (stats.BatchResult, error) {
	if err := stats.ValidateMonth(year, month); err != nil {
		return stats.BatchResult{}, err
	}
	return c.getStats(ctx, period.MonthRange(year, time.Month(month)), false)
}

// ForceRefresh drops the server-side cache, then refetches the given
// week bypassing both caches.
func (c *Client) ForceRefresh(ctx context.Context, year, week int) (stats.BatchResult, error) {
	if err := stats.ValidateWeek(year, week); err != nil {
		return stats.BatchResult{}, err
	}
	if err := c.clearServerCache(ctx); err != nil {
		return stats.BatchResult{}, err
	}
	return c.getStats(ctx, period.WeekRange(year, week), true)
}

// ClearCache drops the client-resident cache only.
func (c *Client) ClearCache() {
	c.cache.Clear()
}

// CacheStats exposes the client-resident cache contents.
func (c *Client) CacheStats() cache.Stats {
	return c.cache.Stats()
}

func cacheKey(p period.Period) string {
	if p.Kind == period.KindWeek {
		return "employeeWeek:" + p.Label()
	}
	return "employeeMonth:" + p.Label()
}

func (c *Client) getStats(ctx context.Context, p period.Period, forceRefresh bool) (stats.BatchResult, error) {
	key := cacheKey(p)
	if !forceRefresh {
		if cached, ok := c.cache.Get(key); ok {
			result := cached.(stats.BatchResult).Clone()
			result.FromCache = true
			return result, nil
		}
	}

	result, err := c.fetch(ctx, p, forceRefresh)
	if err != nil {
		return stats.BatchResult{}, err
	}
	c.cache.Set(key, result.Clone())

	if c.preload {
		c.preloadAdjacent(p)
	}
	return result, nil
}

// preloadAdjacent warms the previous and next period in the background.
// The guard map keeps a preload from spawning preloads of its own and
// from being scheduled twice.
func (c *Client) preloadAdjacent(p period.Period) {
	for _, adjacent := range []period.Period{p.Previous(), p.Next()} {
		key := cacheKey(adjacent)
		if _, ok := c.cache.Get(key); ok {
			continue
		}

		c.mu.Lock()
		if c.preloading[key] {
			c.mu.Unlock()
			continue
		}
		c.preloading[key] = true
		c.mu.Unlock()

		c.preloadWG.Add(1)
		go func(adjacent period.Period, key string) {
			defer c.preloadWG.Done()
			defer func() {
				c.mu.Lock()
				delete(c.preloading, key)
				c.mu.Unlock()
			}()

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			result, err := c.fetch(ctx, adjacent, false)
			if err != nil {
				// Preloads are best-effort; the period loads on demand
				// if it is ever requested.
				return
			}
			c.cache.Set(key, result)
		}(adjacent, key)
	}
}

func (c *Client) fetch(ctx context.Context, p period.Period, forceRefresh bool) (stats.BatchResult, error) {
	url := fmt.Sprintf("%s/api/v1/stats/employees?year=%d", c.baseURL, p.Year)
	if p.Kind == period.KindWeek {
		url += fmt.Sprintf("&week=%d", p.Week)
	} else {
		url += fmt.Sprintf("&month=%d", int(p.Month))
	}
	if forceRefresh {
		url += "&refresh=true"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return stats.BatchResult{}, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return stats.BatchResult{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return stats.BatchResult{}, err
	}

	var envelope struct {
		Success bool              `json:"success"`
		Data    stats.BatchResult `json:"data"`
		Error   *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return stats.BatchResult{}, fmt.Errorf("decode stats response: %w", err)
	}
	if !envelope.Success {
		if envelope.Error != nil {
			return stats.BatchResult{}, fmt.Errorf("stats request failed: %s: %s", envelope.Error.Code, envelope.Error.Message)
		}
		return stats.BatchResult{}, fmt.Errorf("stats request failed: HTTP %d", resp.StatusCode)
	}
	return envelope.Data, nil
}

func (c *Client) clearServerCache(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/api/v1/cache", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cache clear failed: HTTP %d", resp.StatusCode)
	}
	return nil
}

// waitForPreloads blocks until in-flight preloads settle. Test hook.
func (c *Client) waitForPreloads() {
	c.preloadWG.Wait()
}
