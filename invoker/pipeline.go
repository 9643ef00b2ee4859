package invoker

import (
	"context"

	"github.com/ragforge/llminvoke/cache"
)

// Stage wraps a delegate with one pipeline concern.
type Stage func(Invoker) Invoker

// Pipeline composes an ordered list of stages around a terminal delegate.
// The first-listed stage is outermost, so
//
//	NewPipeline(delegate, CachingStage(store, "chat"), RateLimitingStage("chat", opts...))
//
// puts caching outside rate limiting: a cache hit never touches the limiter
// or the network. The stack stays introspectable through Stages and Delegate
// rather than being buried in anonymous wrappers.
type Pipeline struct {
	delegate Invoker
	stages   []Stage
	composed Invoker
}

var _ Invoker = (*Pipeline)(nil)

// NewPipeline composes stages around delegate
func NewPipeline(delegate Invoker, stages ...Stage) *Pipeline {
	composed := delegate
	for i := len(stages) - 1; i >= 0; i-- {
		composed = stages[i](composed)
	}
	return &Pipeline{
		delegate: delegate,
		stages:   stages,
		composed: composed,
	}
}

// Invoke runs the composed stack
func (p *Pipeline) Invoke(ctx context.Context, req *Request) (*Response, error) {
	return p.composed.Invoke(ctx, req)
}

// Stages returns the stage list, outermost first
func (p *Pipeline) Stages() []Stage {
	return p.stages
}

// Delegate returns the terminal invoker
func (p *Pipeline) Delegate() Invoker {
	return p.delegate
}

// CachingStage returns a Stage applying NewCachingInvoker
func CachingStage(store cache.Cache, operation string, opts ...CachingOption) Stage {
	return func(next Invoker) Invoker {
		return NewCachingInvoker(next, store, operation, opts...)
	}
}

// RateLimitingStage returns a Stage applying NewRateLimitedInvoker
func RateLimitingStage(operation string, opts ...RateLimitOption) Stage {
	return func(next Invoker) Invoker {
		return NewRateLimitedInvoker(next, operation, opts...)
	}
}
