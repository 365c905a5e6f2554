package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Tx is a write transaction scoped to a declared set of tables.
// It is only valid inside the body passed to Store.Transaction.
type Tx struct {
	ctx   context.Context
	tx    *sql.Tx
	store *Store
	scope map[Table]bool
}

// Transaction runs body in a single SQLite transaction.
//
// Writes to a table not listed in tables fail with ErrTableNotInScope, and
// any error returned by body rolls back every write made through tx. Include
// TableOutbox in tables to append pending operations.
func (s *Store) Transaction(ctx context.Context, tables []Table, body func(tx *Tx) error) error {
	scope := make(map[Table]bool, len(tables))
	for _, t := range tables {
		if t != TableOutbox {
			if _, err := indexesFor(t); err != nil {
				return fmt.Errorf("transaction: %w", err)
			}
		}
		scope[t] = true
	}

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("transaction: begin tx: %w", err)
	}
	defer sqlTx.Rollback() // No-op if committed

	if err := body(&Tx{ctx: ctx, tx: sqlTx, store: s, scope: scope}); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("transaction: commit: %w", err)
	}
	return nil
}

func (t *Tx) check(table Table) error {
	if !t.scope[table] {
		return fmt.Errorf("%w: %s", ErrTableNotInScope, table)
	}
	return nil
}

// Put upserts a record within the transaction.
func (t *Tx) Put(table Table, rec any) error {
	if err := t.check(table); err != nil {
		return err
	}
	r, err := encodeRecord(rec)
	if err != nil {
		return fmt.Errorf("put %s: %w", table, err)
	}
	if err := putRecord(t.ctx, t.tx, table, r); err != nil {
		return fmt.Errorf("put %s: %w", table, err)
	}
	return nil
}

// Delete removes a record within the transaction.
func (t *Tx) Delete(table Table, id string) error {
	if err := t.check(table); err != nil {
		return err
	}
	if err := deleteRecord(t.ctx, t.tx, table, id); err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	return nil
}
