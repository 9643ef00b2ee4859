package invoker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ragforge/llminvoke/cache"
	"github.com/ragforge/llminvoke/log"
)

// CacheCallback observes cache hits and misses. name is the request's name
// tag, empty when untagged.
type CacheCallback func(key, name string)

// CachingInvoker wraps a delegate with a content-addressed cache. It sits
// outermost in the pipeline so a hit skips rate limiting and the network call
// entirely.
//
// A cache hit returns the stored output with no History attached: a cached
// response cannot transparently continue a multi-turn conversation. Callers
// that need conversational state must reconstruct it themselves.
type CachingInvoker struct {
	delegate  Invoker
	store     cache.Cache
	operation string
	onHit     CacheCallback
	onMiss    CacheCallback
	logger    log.Logger
}

var _ Invoker = (*CachingInvoker)(nil)

// CachingOption configures a CachingInvoker
type CachingOption func(*CachingInvoker)

// WithCacheHitCallback sets the hit callback
func WithCacheHitCallback(fn CacheCallback) CachingOption {
	return func(c *CachingInvoker) { c.onHit = fn }
}

// WithCacheMissCallback sets the miss callback. It fires before the delegate
// call, so consumers can start timing or logging before the network round trip.
func WithCacheMissCallback(fn CacheCallback) CachingOption {
	return func(c *CachingInvoker) { c.onMiss = fn }
}

// WithCacheLogger sets the logger
func WithCacheLogger(logger log.Logger) CachingOption {
	return func(c *CachingInvoker) { c.logger = logger }
}

// NewCachingInvoker wraps delegate with store. operation names the kind of
// call ("chat", "embedding") and prefixes every cache key.
func NewCachingInvoker(delegate Invoker, store cache.Cache, operation string, opts ...CachingOption) *CachingInvoker {
	c := &CachingInvoker{
		delegate:  delegate,
		store:     store,
		operation: operation,
		logger:    log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CacheKey returns the key this invoker would use for req.
func (c *CachingInvoker) CacheKey(req *Request) string {
	return cache.CreateKey(c.operation, promptString(req.Input), req.Parameters, req.History, req.Name)
}

// Invoke checks the cache, delegating and populating it on a miss. Delegate
// errors propagate uncached.
func (c *CachingInvoker) Invoke(ctx context.Context, req *Request) (*Response, error) {
	key := c.CacheKey(req)

	value, found, err := c.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("cache lookup for %s: %w", key, err)
	}

	if found {
		c.logger.Debug("cache hit for %s", key)
		c.notify(c.onHit, key, req.Name)
		return &Response{Output: value}, nil
	}

	c.logger.Debug("cache miss for %s", key)
	c.notify(c.onMiss, key, req.Name)

	resp, err := c.delegate.Invoke(ctx, req)
	if err != nil {
		return nil, err
	}

	if resp.Output != nil {
		debug := map[string]any{
			"input":      req.Input,
			"parameters": req.Parameters,
			"history":    req.History,
		}
		if err := c.store.Set(ctx, key, resp.Output, debug); err != nil {
			return nil, fmt.Errorf("cache store for %s: %w", key, err)
		}
	}
	return resp, nil
}

// notify invokes a cache callback, recovering a panic so a faulty observer
// cannot corrupt the call's outcome.
func (c *CachingInvoker) notify(fn CacheCallback, key, name string) {
	if fn == nil {
		return
	}
	defer func() {
		if p := recover(); p != nil {
			c.logger.Warn("cache callback panicked for %s: %v", key, p)
		}
	}()
	fn(key, name)
}

// promptString renders the request input into the text that gets hashed.
func promptString(input any) string {
	switch v := input.(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(data)
	}
}
