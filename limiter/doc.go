// Package limiter enforces tokens-per-minute and requests-per-minute budgets
// for language model calls.
//
// A Limiter blocks in Acquire until the budget admits the request. The
// TokenAndRequest implementation wraps two independent token buckets
// (golang.org/x/time/rate); Composite chains several limiters with strict
// sequential acquisition, and Noop passes everything through.
package limiter
