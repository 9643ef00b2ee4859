// Package cache defines the content-addressed cache consumed by the caching
// invoker, plus the deterministic hash-key builder.
//
// Backends live in subpackages: memory (in-process map), file (JSON file per
// key), redis (go-redis), sqlite, and postgres (pgx). All of them persist the
// same Entry envelope, so a corpus cached by one backend can be inspected or
// migrated with another.
package cache
