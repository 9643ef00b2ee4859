package invoker

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/ragforge/llminvoke/config"
	"github.com/ragforge/llminvoke/limiter"
	"github.com/ragforge/llminvoke/log"
	"github.com/ragforge/llminvoke/tokens"
)

const baseRetryWait = time.Second

// RateLimitedInvoker wraps a delegate with token/request budgeting, a global
// concurrency bound, and retry with exponential-jitter backoff.
//
// Per call: input tokens are counted, the concurrency slot is acquired once
// for the whole retry loop, each attempt acquires the limiter before the
// delegate call, transient failures back off and retry up to the attempt
// bound, and response tokens are charged to the limiter after the fact. An
// InvocationResult describing the completed call goes to the OnInvoke
// callback.
type RateLimitedInvoker struct {
	delegate  Invoker
	operation string

	counter *tokens.Counter
	lim     limiter.Limiter
	sem     *semaphore.Weighted

	maxRetries   int
	maxRetryWait time.Duration
	sleepOnHint  bool
	classifier   Classifier

	onInvoke func(*InvocationResult)
	logger   log.Logger
}

var _ Invoker = (*RateLimitedInvoker)(nil)

// RateLimitOption configures a RateLimitedInvoker
type RateLimitOption func(*RateLimitedInvoker)

// WithTokenCounter enables token accounting. Without a counter, token counts
// are reported as -1 and the limiter is never asked for token permits.
func WithTokenCounter(counter *tokens.Counter) RateLimitOption {
	return func(r *RateLimitedInvoker) { r.counter = counter }
}

// WithLimiter sets the rate limiter
func WithLimiter(lim limiter.Limiter) RateLimitOption {
	return func(r *RateLimitedInvoker) { r.lim = lim }
}

// WithConcurrency bounds the number of in-flight calls; n <= 0 leaves
// concurrency unbounded.
func WithConcurrency(n int) RateLimitOption {
	return func(r *RateLimitedInvoker) {
		if n > 0 {
			r.sem = semaphore.NewWeighted(int64(n))
		}
	}
}

// WithMaxRetries bounds the attempts per call
func WithMaxRetries(n int) RateLimitOption {
	return func(r *RateLimitedInvoker) {
		if n > 0 {
			r.maxRetries = n
		}
	}
}

// WithMaxRetryWait caps the backoff between attempts
func WithMaxRetryWait(d time.Duration) RateLimitOption {
	return func(r *RateLimitedInvoker) {
		if d > 0 {
			r.maxRetryWait = d
		}
	}
}

// WithClassifier sets the error classifier. The default retries nothing.
func WithClassifier(c Classifier) RateLimitOption {
	return func(r *RateLimitedInvoker) { r.classifier = c }
}

// WithSleepOnRateLimitRecommendation toggles honoring provider sleep hints
// carried by rate-limit errors. The retry loop's own backoff applies either
// way, so an honored hint adds to it.
func WithSleepOnRateLimitRecommendation(enabled bool) RateLimitOption {
	return func(r *RateLimitedInvoker) { r.sleepOnHint = enabled }
}

// WithInvokeCallback sets the metrics callback, invoked once per completed
// top-level call.
func WithInvokeCallback(fn func(*InvocationResult)) RateLimitOption {
	return func(r *RateLimitedInvoker) { r.onInvoke = fn }
}

// WithRetryLogger sets the logger
func WithRetryLogger(logger log.Logger) RateLimitOption {
	return func(r *RateLimitedInvoker) { r.logger = logger }
}

// NewRateLimitedInvoker wraps delegate. operation names the kind of call and
// is reported in metrics and exhaustion errors.
func NewRateLimitedInvoker(delegate Invoker, operation string, opts ...RateLimitOption) *RateLimitedInvoker {
	r := &RateLimitedInvoker{
		delegate:     delegate,
		operation:    operation,
		maxRetries:   config.DefaultMaxRetries,
		maxRetryWait: config.DefaultMaxRetryWait,
		sleepOnHint:  true,
		classifier:   NeverRetry(),
		logger:       log.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewRateLimitedInvokerFromConfig builds the invoker from a model
// configuration: limiter budgets, retry bounds, and concurrency all follow
// cfg. Additional options are applied on top.
func NewRateLimitedInvokerFromConfig(delegate Invoker, operation string, cfg *config.ModelConfig, opts ...RateLimitOption) *RateLimitedInvoker {
	base := []RateLimitOption{
		WithLimiter(limiter.FromConfig(cfg)),
		WithMaxRetries(cfg.ResolvedMaxRetries()),
		WithMaxRetryWait(cfg.ResolvedMaxRetryWait()),
		WithConcurrency(cfg.ResolvedConcurrentRequests()),
		WithSleepOnRateLimitRecommendation(cfg.ResolvedSleepOnRateLimitRecommendation()),
	}
	return NewRateLimitedInvoker(delegate, operation, append(base, opts...)...)
}

// Invoke runs the full pipeline for one call.
func (r *RateLimitedInvoker) Invoke(ctx context.Context, req *Request) (*Response, error) {
	inputTokens := -1
	if r.counter != nil {
		n, err := r.counter.CountInput(req.Input)
		if err != nil {
			return nil, err
		}
		inputTokens = n
	}

	// The concurrency slot is held across the whole retry loop: queued
	// callers wait for a slot once, not once per attempt.
	if r.sem != nil {
		if err := r.sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	resp, attempts, callTimes, err := r.invokeWithRetry(ctx, req, inputTokens)

	if r.sem != nil {
		r.sem.Release(1)
	}
	if err != nil {
		return nil, err
	}

	// Response tokens also consume budget; they are unknown beforehand,
	// so they are charged after the fact.
	outputTokens := -1
	if r.counter != nil {
		n, err := r.counter.CountOutput(resp.Output)
		if err != nil {
			return nil, err
		}
		outputTokens = n
		if r.lim != nil && n > 0 {
			if err := r.lim.Acquire(ctx, n); err != nil {
				return nil, err
			}
		}
	}

	r.report(&InvocationResult{
		ID:           uuid.NewString(),
		Operation:    r.operation,
		Name:         req.Name,
		NumRetries:   attempts - 1,
		TotalTime:    time.Since(start),
		CallTimes:    callTimes,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
	})
	return resp, nil
}

// invokeWithRetry runs the bounded attempt loop, returning the response, the
// attempt count, and every attempt's duration.
func (r *RateLimitedInvoker) invokeWithRetry(ctx context.Context, req *Request, inputTokens int) (*Response, int, []time.Duration, error) {
	callTimes := make([]time.Duration, 0, 1)
	var lastErr error

	for attempt := 1; attempt <= r.maxRetries; attempt++ {
		if r.lim != nil && inputTokens > 0 {
			if err := r.lim.Acquire(ctx, inputTokens); err != nil {
				return nil, attempt, callTimes, err
			}
		}

		callStart := time.Now()
		resp, err := r.delegate.Invoke(ctx, req)
		callTimes = append(callTimes, time.Since(callStart))

		if err == nil {
			return resp, attempt, callTimes, nil
		}
		lastErr = err

		if r.classifier.rateLimit(err) {
			if hint := r.classifier.sleepHint(err); hint > 0 && r.sleepOnHint {
				r.logger.Warn("%s rate limited, honoring recommended sleep of %v", r.callName(req), hint)
				if serr := sleepContext(ctx, hint); serr != nil {
					return nil, attempt, callTimes, serr
				}
			}
		}

		if !r.classifier.retryable(err) {
			return nil, attempt, callTimes, err
		}

		if attempt == r.maxRetries {
			break
		}

		wait := r.backoff(attempt)
		r.logger.Warn("%s attempt %d/%d failed, retrying in %v: %v",
			r.callName(req), attempt, r.maxRetries, wait, err)
		if serr := sleepContext(ctx, wait); serr != nil {
			return nil, attempt, callTimes, serr
		}
	}

	return nil, r.maxRetries, callTimes, &RetriesExhaustedError{
		Name:       r.callName(req),
		NumRetries: r.maxRetries,
		cause:      lastErr,
	}
}

func (r *RateLimitedInvoker) callName(req *Request) string {
	if req.Name != "" {
		return req.Name
	}
	return r.operation
}

// backoff computes the exponential-jitter wait after the given attempt,
// capped at maxRetryWait.
func (r *RateLimitedInvoker) backoff(attempt int) time.Duration {
	wait := time.Duration(float64(baseRetryWait) * math.Pow(2, float64(attempt-1)))
	if wait > r.maxRetryWait {
		wait = r.maxRetryWait
	}

	// ±25% jitter, clamped to the cap
	//nolint:gosec // weak RNG is fine for jitter
	jitter := time.Duration(float64(wait) * 0.25 * (2*rand.Float64() - 1))
	wait += jitter
	if wait > r.maxRetryWait {
		wait = r.maxRetryWait
	}
	if wait < 0 {
		wait = 0
	}
	return wait
}

// report invokes the metrics callback, recovering a panic so a faulty
// observer cannot mask a successful call.
func (r *RateLimitedInvoker) report(result *InvocationResult) {
	if r.onInvoke == nil {
		return
	}
	defer func() {
		if p := recover(); p != nil {
			r.logger.Warn("invocation callback panicked for %s: %v", result.Operation, p)
		}
	}()
	r.onInvoke(result)
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
