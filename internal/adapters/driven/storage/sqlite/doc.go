// Package sqlite persists the built vector index in a single SQLite file.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
// index_meta holds the model, dimensions and corpus fingerprint of the
// snapshot; index_documents holds each document with its embedding as a
// little-endian float32 blob, in insertion order.
//
// # Data Location
//
// By default, the database is stored at ./data/index.db
//
// # Thread Safety
//
// Save replaces the snapshot in one transaction, so Load never observes a
// partially written index. The database runs in WAL mode.
package sqlite
