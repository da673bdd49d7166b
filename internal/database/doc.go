// Package database provides SQLite-based storage for wikirace.
//
// This package implements the GameDB, which stores:
//   - Game sessions with their page pairing, click count, and lifecycle state
//   - Per-user aggregate statistics maintained transactionally
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Sufficient performance for our use case
// 4. WAL mode provides good concurrent read performance
//
// Aggregate stats live in their own table rather than being recomputed
// from game rows on every read. Finished games are swept after a
// retention window, so the aggregates must survive the rows they were
// derived from.
package database
