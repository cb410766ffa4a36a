// Package sqlite provides the persistent vector index.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. Chunks and their embeddings are stored
// in vectors.db inside the index directory. Queries are exact: every stored
// vector is compared to the query by cosine distance.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Readiness
//
// An index is ready once index.json exists next to the database. The manifest
// is written only after a full Replace commits, so an interrupted build never
// looks ready.
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
