// llminvoke - Rate-limited, cached, retrying LLM invocation for Go
//
// llminvoke is the invocation core of a retrieval-augmented-generation
// pipeline: it coordinates concurrent language model calls under
// tokens-per-minute and requests-per-minute budgets, deduplicates identical
// calls through a content-addressed cache, and retries transient provider
// failures with exponential-jitter backoff.
//
// # Quick Start
//
// Install the package:
//
//	go get github.com/ragforge/llminvoke
//
// Basic example:
//
//	package main
//
//	import (
//		"context"
//		"fmt"
//
//		"github.com/ragforge/llminvoke/cache/file"
//		"github.com/ragforge/llminvoke/invoker"
//		"github.com/ragforge/llminvoke/limiter"
//		"github.com/ragforge/llminvoke/llms/openai"
//		"github.com/ragforge/llminvoke/tokens"
//	)
//
//	func main() {
//		registry := openai.NewRegistry()
//		defer registry.Close()
//
//		client := registry.Client(openai.ClientConfig{APIKey: "sk-..."})
//		counter, _ := tokens.NewCounter("gpt-4o")
//		store, _ := file.New(".cache")
//
//		p := invoker.NewPipeline(
//			openai.NewChatInvoker(client, "gpt-4o"),
//			invoker.CachingStage(store, "chat"),
//			invoker.RateLimitingStage("chat",
//				invoker.WithTokenCounter(counter),
//				invoker.WithLimiter(limiter.NewTokenAndRequest(50_000, 10_000)),
//				invoker.WithClassifier(openai.Classifier()),
//			),
//		)
//
//		resp, err := p.Invoke(context.Background(), &invoker.Request{
//			Input: "Summarize the token bucket algorithm in one sentence.",
//		})
//		if err != nil {
//			panic(err)
//		}
//		fmt.Println(resp.Output)
//	}
//
// # Architecture
//
// A call flows caller → caching → rate limiting/retry → provider delegate.
// Caching sits outermost so a hit skips rate limiting and the network
// entirely. Each layer is an invoker.Invoker; the stack is composed
// explicitly with invoker.NewPipeline and stays introspectable.
//
// # Packages
//
//   - invoker: the pipeline stages and their callbacks/metrics
//   - limiter: token and request budgets (token buckets, composition)
//   - tokens: tiktoken-backed token counting for budget accounting
//   - cache: cache interface and deterministic hash-key builder
//   - cache/memory, cache/file, cache/redis, cache/sqlite, cache/postgres: backends
//   - llms/openai, llms/langchain: provider delegates
//   - config: YAML model configuration with budget/retry defaults
//   - log: leveled logging used across the pipeline
package llminvoke
