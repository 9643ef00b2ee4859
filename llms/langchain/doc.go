// Package langchain adapts langchaingo models to the invocation pipeline, so
// an existing llms.Model can terminate the caching/rate-limiting stack
// without a provider-specific delegate.
package langchain
