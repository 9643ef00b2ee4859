// Package postgres provides a PostgreSQL-backed invocation cache.
//
// Entries are stored in a single table with JSONB result and debug columns,
// which keeps cached outputs queryable with plain SQL. The schema is created
// on construction. The DBPool interface allows the cache to be tested with
// pgxmock.
package postgres
