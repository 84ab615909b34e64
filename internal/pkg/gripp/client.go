package gripp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/bureauhq/gripp-backend-go/internal/config"
)

// MaxRetryAttempts bounds dispatches per request. The bound travels with
// the request, so the policy stays at the call-site rather than inside
// the queue.
const MaxRetryAttempts = 5

// DefaultPageSize is the row count requested per page on list calls.
const DefaultPageSize = 250

// Request is the RPC-style envelope accepted by the upstream API.
type Request struct {
	ID     int64         `json:"id"`
	Method string        `json:"method"`
	Params []interface{} `json:"params"`
}

// Result is the success variant of an upstream response. Rows is left raw
// so entity mappers own their own decoding.
type Result struct {
	Rows      json.RawMessage `json:"rows"`
	Count     int             `json:"count"`
	Start     int             `json:"start"`
	Limit     int             `json:"limit"`
	MoreItems bool            `json:"more_items_in_collection"`
}

// response is the wire shape: exactly one of Result and Error is set.
type response struct {
	ID     int64           `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *responseError  `json:"error"`
}

type responseError struct {
	Message string `json:"message"`
}

// Client talks to the Gripp API through the serialized request queue.
type Client struct {
	baseURL  string
	apiKey   string
	http     *http.Client
	queue    *Queue
	pageSize int
	nextID   atomic.Int64
}

// NewClient builds a client plus its owned queue. queueOpts tune the
// queue for tests; pass the zero value in production.
func NewClient(cfg config.GrippConfig, queueOpts QueueOptions) *Client {
	c := &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		pageSize: DefaultPageSize,
	}
	c.queue = NewQueue(c.do, queueOpts)
	return c
}

// Close stops the underlying queue.
func (c *Client) Close() {
	c.queue.Close()
}

// Execute runs a single API call through the queue. Transient and
// rate-limit failures are retried by the queue up to MaxRetryAttempts;
// upstream application errors surface as *APIError without retry.
func (c *Client) Execute(ctx context.Context, method string, params []interface{}) (*Result, error) {
	if method == "" {
		return nil, &ValidationError{Message: "method is required"}
	}
	req := Request{
		ID:     c.nextID.Add(1),
		Method: method,
		Params: params,
	}
	return c.queue.Enqueue(ctx, req, MaxRetryAttempts)
}

// FetchAll pages through a list call and returns every row. A response
// without rows, or a page shorter than the page size, ends the loop.
func (c *Client) FetchAll(ctx context.Context, method string, filters []interface{}) ([]json.RawMessage, error) {
	var all []json.RawMessage
	first := 0

	for {
		options := map[string]interface{}{
			"paging": map[string]interface{}{
				"firstresult": first,
				"maxresults":  c.pageSize,
			},
		}
		result, err := c.Execute(ctx, method, []interface{}{filters, options})
		if err != nil {
			return nil, err
		}

		if len(result.Rows) == 0 {
			break
		}
		var rows []json.RawMessage
		if err := json.Unmarshal(result.Rows, &rows); err != nil {
			return nil, fmt.Errorf("decode %s rows: %w", method, err)
		}
		if len(rows) == 0 {
			break
		}
		all = append(all, rows...)

		if len(rows) < c.pageSize && !result.MoreItems {
			break
		}
		first += len(rows)
	}

	slog.Debug("gripp fetch complete", "method", method, "rows", len(all))
	return all, nil
}

// do performs one HTTP round trip and classifies the outcome into the
// queue's error taxonomy. It is the queue's Executor.
func (c *Client) do(ctx context.Context, req Request) (*Result, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &TransientError{Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusServiceUnavailable:
		return nil, &TransientError{StatusCode: resp.StatusCode}
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &RateLimitedError{RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	case resp.StatusCode >= 400:
		return nil, &APIError{Method: req.Method, Message: fmt.Sprintf("HTTP %d", resp.StatusCode)}
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransientError{Err: err}
	}

	var envelope response
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, &APIError{Method: req.Method, Message: "malformed response: " + err.Error()}
	}
	if envelope.Error != nil {
		return nil, &APIError{Method: req.Method, Message: envelope.Error.Message}
	}

	var result Result
	if len(envelope.Result) > 0 {
		if err := json.Unmarshal(envelope.Result, &result); err != nil {
			return nil, &APIError{Method: req.Method, Message: "malformed result: " + err.Error()}
		}
	}
	return &result, nil
}

// parseRetryAfter understands the delta-seconds form of the header; an
// HTTP-date or garbage value falls back to zero, letting the exponential
// backoff decide.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(value)
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
