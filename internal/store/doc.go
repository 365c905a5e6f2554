// Package store provides SQLite-backed durable storage for tenant records
// and the pending-operation outbox.
//
// Entity tables (products, sales, users, customers, journal_entries,
// attendance, leave_requests, documents, roles) keep each record as JSON in a
// data column and copy the indexed fields into columns for lookup. The outbox
// is an AUTOINCREMENT table, so reading it ORDER BY id yields insertion order.
//
// # Atomicity
//
//   - BulkPut validates every key before writing and commits all or nothing.
//   - Transaction scopes a body to declared tables; writes elsewhere fail.
//   - RecordChange writes the entity and appends its outbox entry together.
//   - Acknowledge deletes sent entries and flips sync flags together.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Reads return empty slices rather than nil when nothing matches.
package store
