// Package schema gathers table metadata from a database and resolves each
// column to an adapter.
//
// Results are deterministic: tables are ordered by name (binary collation)
// and columns by their declared position, so generated code and listings
// are stable across runs.
//
// # Database Configuration
//
// The SQLite gatherer opens the database with:
//   - query_only=ON: gathering never writes
//   - busy_timeout=5000: wait for locks held by other writers
//   - a single connection, as SQLite serializes access anyway
package schema
