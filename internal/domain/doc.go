// Package domain defines the entity shapes shared by the local store, the
// sync engine and the reducer.
//
// Records carry their tenant in CompanyID. Monetary amounts and quantities
// are decimal.Decimal so ledger sums balance exactly.
//
// Identity and time are injected through IDGenerator and Clock so that every
// consumer can be driven deterministically in tests.
package domain
