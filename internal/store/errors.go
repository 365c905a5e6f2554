package store

import "errors"

var (
	// ErrMissingKey is returned when a record has no non-empty "id".
	ErrMissingKey = errors.New("record has no primary key")

	// ErrUnknownTable is returned for a table name outside the schema.
	ErrUnknownTable = errors.New("unknown table")

	// ErrUnknownIndex is returned when querying a field that is not indexed.
	ErrUnknownIndex = errors.New("unknown index")

	// ErrTableNotInScope is returned when a transaction body writes to a
	// table it did not declare.
	ErrTableNotInScope = errors.New("table not declared in transaction scope")
)
