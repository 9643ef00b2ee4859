// Package redis provides a Redis-backed invocation cache.
//
// Use it when several indexing processes share one cache, or when cache
// contents should survive process restarts without touching the local disk.
// Entries are stored as JSON under a configurable key prefix and may carry a
// TTL:
//
//	c := redis.New(redis.Options{
//		Addr:   "localhost:6379",
//		Prefix: "ragforge:",
//		TTL:    24 * time.Hour,
//	})
package redis
