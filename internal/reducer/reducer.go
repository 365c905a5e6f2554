package reducer

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/roach88/procount/internal/domain"
)

// Kind is the wire name of an action.
type Kind string

// Action is one domain event. The set of actions is closed: only types in
// this package implement it.
type Action interface {
	Kind() Kind
	apply(r *Reducer, s *State) *State
}

// Unrecognized is an action whose kind this reducer does not know. Reducing
// it returns the input state.
type Unrecognized struct {
	Type string
}

func (u Unrecognized) Kind() Kind { return Kind(u.Type) }
func (Unrecognized) apply(_ *Reducer, s *State) *State { return s }

// Reducer applies actions to a State.
//
// Reduce performs no I/O. Every id and timestamp it creates comes from the
// injected generator and clock, so the same state, action and generator
// sequence always yield the same result.
type Reducer struct {
	ids   domain.IDGenerator
	clock domain.Clock
}

// New creates a reducer. Nil arguments fall back to UUIDv7 ids and the system clock.
func New(ids domain.IDGenerator, clock domain.Clock) *Reducer {
	if ids == nil {
		ids = domain.UUIDv7Generator{}
	}
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &Reducer{ids: ids, clock: clock}
}

// Reduce returns the state after a. The input state is never modified; an
// action that changes nothing returns s itself.
func (r *Reducer) Reduce(s *State, a Action) *State {
	if s == nil {
		s = NewState()
	}
	if a == nil {
		return s
	}
	return a.apply(r, s)
}

func (r *Reducer) newID(prefix string) string {
	return r.ids.NewID(prefix)
}

// idOr returns id, or a fresh one when id is empty.
func (r *Reducer) idOr(id, prefix string) string {
	if id != "" {
		return id
	}
	return r.newID(prefix)
}

func (r *Reducer) now() time.Time {
	return r.clock.Now()
}

// timeOr returns t, or the current time when t is zero.
func (r *Reducer) timeOr(t time.Time) time.Time {
	if t.IsZero() {
		return r.now()
	}
	return t
}

func currentUserID(s *State) string {
	if s.CurrentUser == nil {
		return ""
	}
	return s.CurrentUser.ID
}

func currentBranchID(s *State) string {
	if s.CurrentUser == nil {
		return ""
	}
	return s.CurrentUser.BranchID
}

// transfer builds the two lines moving amount from credit to debit.
func transfer(debit, credit string, amount decimal.Decimal) []domain.JournalLine {
	return []domain.JournalLine{
		{AccountID: debit, Debit: amount, Credit: decimal.Zero},
		{AccountID: credit, Debit: decimal.Zero, Credit: amount},
	}
}

func journal(id, companyID string, date time.Time, desc, branchID, ref string, lines ...[]domain.JournalLine) domain.JournalEntry {
	e := domain.JournalEntry{
		ID:          id,
		CompanyID:   companyID,
		Date:        date,
		Description: desc,
		BranchID:    branchID,
		ReferenceID: ref,
	}
	for _, l := range lines {
		e.Lines = append(e.Lines, l...)
	}
	return e
}
