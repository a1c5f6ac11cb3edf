// Package queue persists analysis requests in SQLite and exposes helpers for
// driving their lifecycle.
//
// The Store manages database connections, schema initialization, stats
// queries, heartbeat tracking, and stuck-item recovery. Queue items capture
// the ticker symbol, script logs, produced artifact paths, and progress so
// stages can coordinate without additional state.
//
// The database is treated as transient storage for in-flight jobs rather than
// a long-term archive. Schema changes bump the version in schema.go; users
// clear the database to adopt the new schema.
package queue
