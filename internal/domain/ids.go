package domain

import "github.com/google/uuid"

// IDGenerator produces entity identifiers.
type IDGenerator interface {
	NewID(prefix string) string
}

// UUIDv7Generator generates time-sortable UUIDv7 identifiers.
//
// A non-empty prefix is joined with an underscore ("sp_0190...") so ids stay
// readable in logs and outbox payloads.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// NewID returns a fresh identifier. Panics if the system entropy source fails.
func (UUIDv7Generator) NewID(prefix string) string {
	id := uuid.Must(uuid.NewV7()).String()
	if prefix == "" {
		return id
	}
	return prefix + "_" + id
}
