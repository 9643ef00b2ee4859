// Package invoker implements the layered language model invocation pipeline:
// caller → caching → rate limiting/retry → provider delegate.
//
// Each layer implements the Invoker interface and wraps a delegate.
// CachingInvoker deduplicates identical calls through a content-addressed
// cache and sits outermost, so a hit skips everything below it.
// RateLimitedInvoker coordinates concurrent calls under tokens-per-minute and
// requests-per-minute budgets, bounds in-flight calls with a semaphore, and
// retries transient failures with exponential-jitter backoff. The terminal
// delegate is a provider adapter; see the llms subpackages.
//
// Compose the stack explicitly with Pipeline:
//
//	p := invoker.NewPipeline(delegate,
//		invoker.CachingStage(store, "chat"),
//		invoker.RateLimitingStage("chat",
//			invoker.WithTokenCounter(counter),
//			invoker.WithLimiter(lim),
//			invoker.WithClassifier(openai.Classifier()),
//		),
//	)
//	resp, err := p.Invoke(ctx, &invoker.Request{Input: "hello"})
package invoker
