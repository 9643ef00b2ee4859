package limiter

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/ragforge/llminvoke/config"
)

// Limiter enforces a rate budget by blocking acquisition. Acquire suspends
// the caller until the budget admits the request or the context is done.
type Limiter interface {
	// NeedsTokenCount reports whether this limiter makes use of the token
	// count passed to Acquire. Callers can skip token counting entirely
	// when it returns false.
	NeedsTokenCount() bool

	// Acquire blocks until numTokens units are admitted.
	Acquire(ctx context.Context, numTokens int) error
}

// Noop is a pass-through limiter.
type Noop struct{}

// NeedsTokenCount always reports false
func (Noop) NeedsTokenCount() bool { return false }

// Acquire returns immediately
func (Noop) Acquire(ctx context.Context, numTokens int) error { return nil }

// TokenAndRequest enforces independent tokens-per-minute and
// requests-per-minute budgets. Either bucket may be nil, disabling that axis.
// Acquire waits for the token bucket to admit the requested units and for the
// request bucket to admit one request before returning.
type TokenAndRequest struct {
	tokens   *rate.Limiter
	requests *rate.Limiter
}

// NewTokenAndRequest builds a limiter from per-minute budgets.
// A budget of 0 disables that axis.
func NewTokenAndRequest(tokensPerMinute, requestsPerMinute int) *TokenAndRequest {
	l := &TokenAndRequest{}
	if tokensPerMinute > 0 {
		l.tokens = rate.NewLimiter(rate.Limit(tokensPerMinute)/60, tokensPerMinute)
	}
	if requestsPerMinute > 0 {
		l.requests = rate.NewLimiter(rate.Limit(requestsPerMinute)/60, requestsPerMinute)
	}
	return l
}

// NeedsTokenCount reports whether a token bucket is configured
func (l *TokenAndRequest) NeedsTokenCount() bool {
	return l.tokens != nil
}

// Acquire waits for both configured buckets
func (l *TokenAndRequest) Acquire(ctx context.Context, numTokens int) error {
	if l.tokens != nil {
		if err := l.tokens.WaitN(ctx, numTokens); err != nil {
			return fmt.Errorf("acquire %d tokens: %w", numTokens, err)
		}
	}
	if l.requests != nil {
		if err := l.requests.WaitN(ctx, 1); err != nil {
			return fmt.Errorf("acquire request slot: %w", err)
		}
	}
	return nil
}

// Composite chains limiters. Acquisition is strictly sequential in the
// declared order: later limiters are only asked to admit a request that
// earlier limiters already admitted.
type Composite struct {
	limiters []Limiter
}

// NewComposite builds a composite over the given limiters
func NewComposite(limiters ...Limiter) *Composite {
	return &Composite{limiters: limiters}
}

// NeedsTokenCount reports whether any child needs a token count
func (c *Composite) NeedsTokenCount() bool {
	for _, l := range c.limiters {
		if l.NeedsTokenCount() {
			return true
		}
	}
	return false
}

// Acquire acquires from each child in order
func (c *Composite) Acquire(ctx context.Context, numTokens int) error {
	for _, l := range c.limiters {
		if err := l.Acquire(ctx, numTokens); err != nil {
			return err
		}
	}
	return nil
}

// FromConfig builds the limiter for a model configuration. Unset budgets fall
// back to the defaults; explicit zeros disable an axis. With both axes
// disabled the result is a Noop.
func FromConfig(cfg *config.ModelConfig) Limiter {
	tpm := config.DefaultTokensPerMinute
	rpm := config.DefaultRequestsPerMinute
	if cfg != nil {
		tpm = cfg.ResolvedTokensPerMinute()
		rpm = cfg.ResolvedRequestsPerMinute()
	}
	if tpm == 0 && rpm == 0 {
		return Noop{}
	}
	return NewTokenAndRequest(tpm, rpm)
}
