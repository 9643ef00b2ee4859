// Package tokens counts tokens for rate-limit accounting.
//
// A Counter wraps a tiktoken encoding resolved from a model name. Beyond plain
// strings it can measure the structured request and response shapes the
// invocation pipeline passes around: string lists, chat message lists, and
// embedding vectors (which count as zero).
package tokens
