// Package sqlite provides a SQLite-backed invocation cache: a single local
// file, no server, optional TTL expiry. A good default for one-machine
// indexing runs that are re-executed often.
package sqlite
