// Package sqlite stores cards and ledger events in a single SQLite database.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. One Store serves both ports through wrapper types:
//
//   - CardStore: current card version per identifier (table cards)
//   - Ledger: append-only events ordered by an autoincrement sequence (table events)
//
// # Schema
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory. Triggers reject UPDATE and DELETE on events.
//
// # Thread Safety
//
// All operations are safe for concurrent use. The store relies on SQLite
// locking in WAL mode with a busy timeout.
package sqlite
