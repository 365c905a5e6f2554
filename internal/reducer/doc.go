// Package reducer is the state-mutation core: a pure function from the
// current application State and one Action to the next State.
//
// Actions are typed values decoded from {"type", "payload"} envelopes.
// Compound actions update every record they touch in one reduction: paying a
// purchase invoice marks it paid, posts a balanced journal entry and charges
// the cash drawer together. Every stock change appends a StockMovement whose
// signed quantity matches the delta.
//
// States are never edited in place. Unchanged branches of the object graph
// are shared with the previous State, and an action that changes nothing
// returns its input pointer, so callers can detect change by identity.
package reducer
