// Package remote is a reference implementation of the remote authority the
// sync engine pushes to.
//
// It accepts outbox batches on POST /sync, applies them in array order so the
// last change to an entity wins, and keeps tombstones for deletes. Storage is
// sqlx over SQLite or PostgreSQL.
package remote
