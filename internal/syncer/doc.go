// Package syncer pushes the local outbox to the remote authority.
//
// One attempt reads the whole outbox in insertion order, sends it as a
// single batch for the session's tenant and, only when the authority
// acknowledges it, deletes the sent operations and flips their entities to
// synced in one store transaction. Operations are never reordered, merged or
// dropped.
//
// Attempts are triggered by an offline to online transition, by a periodic
// timer and by SyncNow. Without a configured authority the engine runs
// local-only and leaves the outbox alone.
package syncer
