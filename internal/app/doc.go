// Package app wires the reducer to the durable store.
//
// An App holds the one live State. Every dispatch is diffed against the
// previous state and the resulting record writes are queued for a single
// writer goroutine:
//
//   - products, sales and customers are written and queued in the outbox
//   - purchase invoices and POS settings are queued without a local table
//   - users, journal entries, roles and HR records are written locally only
//
// App also serves as the sync engine's session provider and turns failed sync
// attempts into error notifications.
package app
