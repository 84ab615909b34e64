package gripp

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"
)

// Executor performs a single dispatched request. It must classify
// failures into the gripp error taxonomy: *TransientError and
// *RateLimitedError are retried by the queue, everything else is
// surfaced to the caller as-is.
type Executor func(ctx context.Context, req Request) (*Result, error)

// QueueOptions carries the queue's timing knobs. Zero values fall back to
// the production defaults; tests shrink them to microseconds.
type QueueOptions struct {
	MaxConcurrent int           // in-flight cap, default 2
	MinInterval   time.Duration // spacing between dispatches, default 500ms
	RetryDelay    time.Duration // fixed delay before a transient retry, default 1s
	BaseDelay     time.Duration // rate-limit backoff base, default 3s
	MaxJitter     time.Duration // random jitter added to backoff, default 1s
}

const (
	defaultMaxConcurrent = 2
	defaultMinInterval   = 500 * time.Millisecond
	defaultRetryDelay    = 1 * time.Second
	defaultBaseDelay     = 3 * time.Second
	defaultMaxJitter     = 1 * time.Second
)

func (o QueueOptions) withDefaults() QueueOptions {
	if o.MaxConcurrent <= 0 {
		o.MaxConcurrent = defaultMaxConcurrent
	}
	if o.MinInterval <= 0 {
		o.MinInterval = defaultMinInterval
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = defaultRetryDelay
	}
	if o.BaseDelay <= 0 {
		o.BaseDelay = defaultBaseDelay
	}
	if o.MaxJitter <= 0 {
		o.MaxJitter = defaultMaxJitter
	}
	return o
}

// requestState is the per-request lifecycle: Idle on enqueue, Waiting
// while scheduled for a (re)dispatch, Dispatched during execution, then
// one of the terminal states.
type requestState int

const (
	stateIdle requestState = iota
	stateWaiting
	stateDispatched
	stateRetrying
	stateSucceeded
	stateFailed
)

func (s requestState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateWaiting:
		return "waiting"
	case stateDispatched:
		return "dispatched"
	case stateRetrying:
		return "retrying"
	case stateSucceeded:
		return "succeeded"
	case stateFailed:
		return "failed"
	}
	return "unknown"
}

type outcome struct {
	result *Result
	err    error
}

type pendingRequest struct {
	req         Request
	ctx         context.Context
	maxAttempts int
	attempts    int // dispatches so far
	notBefore   time.Time
	state       requestState
	done        chan outcome
}

// Queue serializes outbound Gripp calls: FIFO dispatch under a
// concurrency cap, minimum inter-request spacing, transparent retry of
// transient and rate-limit failures. A retried request re-enters at the
// head of the pending list so it runs before anything enqueued after it.
type Queue struct {
	opts QueueOptions
	exec Executor

	mu           sync.Mutex
	pending      []*pendingRequest
	inFlight     int
	lastDispatch time.Time
	closed       bool

	wake   chan struct{}
	stop   chan struct{}
	stopWG sync.WaitGroup
}

func NewQueue(exec Executor, opts QueueOptions) *Queue {
	q := &Queue{
		opts: opts.withDefaults(),
		exec: exec,
		wake: make(chan struct{}, 1),
		stop: make(chan struct{}),
	}
	q.stopWG.Add(1)
	go q.dispatchLoop()
	return q
}

// Enqueue appends the request and blocks until it completes, fails, or
// ctx is cancelled. Cancellation while queued (including mid-backoff)
// rejects immediately. maxAttempts bounds dispatches of this request,
// covering transient and rate-limit retries; values below 1 mean 1.
func (q *Queue) Enqueue(ctx context.Context, req Request, maxAttempts int) (*Result, error) {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	p := &pendingRequest{
		req:         req,
		ctx:         ctx,
		maxAttempts: maxAttempts,
		state:       stateIdle,
		done:        make(chan outcome, 1),
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil, ErrQueueClosed
	}
	p.state = stateWaiting
	q.pending = append(q.pending, p)
	q.mu.Unlock()
	q.signal()

	select {
	case out := <-p.done:
		return out.result, out.err
	case <-ctx.Done():
		q.remove(p)
		return nil, ctx.Err()
	}
}

// Close stops the dispatcher. Requests still pending are rejected;
// in-flight requests run to completion.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	rejected := q.pending
	q.pending = nil
	q.mu.Unlock()

	for _, p := range rejected {
		p.state = stateFailed
		p.done <- outcome{err: ErrQueueClosed}
	}
	close(q.stop)
	q.stopWG.Wait()
}

func (q *Queue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// remove drops a cancelled request from the pending list, if it is still
// there. Dispatched requests are left alone; their executor sees the
// same context and aborts on its own.
func (q *Queue) remove(p *pendingRequest) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, cand := range q.pending {
		if cand == p {
			q.pending = append(q.pending[:i], q.pending[i+1:]...)
			p.state = stateFailed
			break
		}
	}
	// Re-evaluate: the cancelled request may have been the head holding
	// up a backoff timer.
	q.signal()
}

func (q *Queue) dispatchLoop() {
	defer q.stopWG.Done()

	for {
		q.mu.Lock()

		// Drop queued requests whose context is already gone.
		kept := q.pending[:0]
		for _, p := range q.pending {
			if p.ctx.Err() != nil {
				p.state = stateFailed
				select {
				case p.done <- outcome{err: p.ctx.Err()}:
				default:
				}
				continue
			}
			kept = append(kept, p)
		}
		q.pending = kept

		var wait time.Duration
		ready := false

		if len(q.pending) > 0 && q.inFlight < q.opts.MaxConcurrent {
			head := q.pending[0]
			now := time.Now()

			wait = q.opts.MinInterval - now.Sub(q.lastDispatch)
			if until := head.notBefore.Sub(now); until > wait {
				wait = until
			}
			if wait <= 0 {
				// Dispatch the head request.
				q.pending = q.pending[1:]
				q.inFlight++
				q.lastDispatch = now
				head.state = stateDispatched
				head.attempts++
				q.mu.Unlock()
				go q.run(head)
				continue
			}
			ready = true
		}
		q.mu.Unlock()

		if ready {
			timer := time.NewTimer(wait)
			select {
			case <-timer.C:
			case <-q.wake:
				timer.Stop()
			case <-q.stop:
				timer.Stop()
				return
			}
			continue
		}

		select {
		case <-q.wake:
		case <-q.stop:
			return
		}
	}
}

func (q *Queue) run(p *pendingRequest) {
	result, err := q.exec(p.ctx, p.req)

	q.mu.Lock()
	// In-flight count drops on completion regardless of outcome.
	q.inFlight--

	switch failure := err.(type) {
	case nil:
		p.state = stateSucceeded
		q.mu.Unlock()
		p.done <- outcome{result: result}

	case *TransientError:
		if q.closed {
			// The dispatcher is gone; requeueing would strand the caller.
			p.state = stateFailed
			q.mu.Unlock()
			p.done <- outcome{err: ErrQueueClosed}
			break
		}
		if p.attempts >= p.maxAttempts || p.ctx.Err() != nil {
			p.state = stateFailed
			q.mu.Unlock()
			p.done <- outcome{err: wrapExhausted(p, err)}
			break
		}
		slog.Warn("gripp request transient failure, requeueing",
			"method", p.req.Method, "attempt", p.attempts, "error", err)
		p.state = stateRetrying
		p.notBefore = time.Now().Add(q.opts.RetryDelay)
		q.requeueHeadLocked(p)
		q.mu.Unlock()

	case *RateLimitedError:
		if q.closed {
			p.state = stateFailed
			q.mu.Unlock()
			p.done <- outcome{err: ErrQueueClosed}
			break
		}
		if p.attempts >= p.maxAttempts || p.ctx.Err() != nil {
			p.state = stateFailed
			q.mu.Unlock()
			p.done <- outcome{err: wrapExhausted(p, err)}
			break
		}
		delay := q.backoffDelay(p.attempts - 1)
		if failure.RetryAfter > delay {
			delay = failure.RetryAfter
		}
		slog.Warn("gripp rate limited, backing off",
			"method", p.req.Method, "attempt", p.attempts, "delay", delay)
		p.state = stateRetrying
		p.notBefore = time.Now().Add(delay)
		q.requeueHeadLocked(p)
		q.mu.Unlock()

	default:
		// Application-level and store errors are the caller's problem.
		p.state = stateFailed
		q.mu.Unlock()
		p.done <- outcome{err: err}
	}

	q.signal()
}

// requeueHeadLocked re-inserts a retried request at the head of the
// pending list, preserving its position ahead of later arrivals.
func (q *Queue) requeueHeadLocked(p *pendingRequest) {
	p.state = stateWaiting
	q.pending = append([]*pendingRequest{p}, q.pending...)
}

// backoffDelay is BaseDelay doubled per prior retry, plus random jitter.
func (q *Queue) backoffDelay(retryCount int) time.Duration {
	delay := q.opts.BaseDelay
	for i := 0; i < retryCount; i++ {
		delay *= 2
	}
	if q.opts.MaxJitter > 0 {
		delay += time.Duration(rand.Int63n(int64(q.opts.MaxJitter)))
	}
	return delay
}

func wrapExhausted(p *pendingRequest, err error) error {
	if p.attempts >= p.maxAttempts {
		return &exhaustedError{attempts: p.attempts, last: err}
	}
	return err
}

type exhaustedError struct {
	attempts int
	last     error
}

func (e *exhaustedError) Error() string {
	return fmt.Sprintf("%s after %d attempts: %v", ErrAttemptsExhausted, e.attempts, e.last)
}

func (e *exhaustedError) Unwrap() error { return e.last }

func (e *exhaustedError) Is(target error) bool { return target == ErrAttemptsExhausted }
