package store

import (
	"context"
	"fmt"
	"strings"
)

// Put inserts or replaces a record by primary key.
// Only key presence is validated; the record body is stored as given.
func (s *Store) Put(ctx context.Context, table Table, rec any) error {
	r, err := encodeRecord(rec)
	if err != nil {
		return fmt.Errorf("put %s: %w", table, err)
	}
	if err := putRecord(ctx, s.db, table, r); err != nil {
		return fmt.Errorf("put %s: %w", table, err)
	}
	return nil
}

// BulkPut writes all records or none.
//
// Every record is validated before the transaction opens, so a batch with a
// missing key is rejected without touching the table.
func (s *Store) BulkPut(ctx context.Context, table Table, recs []any) error {
	if _, err := indexesFor(table); err != nil {
		return fmt.Errorf("bulk put %s: %w", table, err)
	}

	encoded := make([]record, 0, len(recs))
	for i, rec := range recs {
		r, err := encodeRecord(rec)
		if err != nil {
			return fmt.Errorf("bulk put %s: record %d: %w", table, i, err)
		}
		encoded = append(encoded, r)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("bulk put %s: begin tx: %w", table, err)
	}
	defer tx.Rollback() // No-op if committed

	for i, r := range encoded {
		if err := putRecord(ctx, tx, table, r); err != nil {
			return fmt.Errorf("bulk put %s: record %d: %w", table, i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("bulk put %s: commit: %w", table, err)
	}
	return nil
}

// Records adapts a typed slice for BulkPut.
func Records[T any](items []T) []any {
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}

// Delete removes a record by primary key. Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, table Table, id string) error {
	if err := deleteRecord(ctx, s.db, table, id); err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	return nil
}

// putRecord upserts r into table, refreshing every index column.
func putRecord(ctx context.Context, ex execer, table Table, r record) error {
	idx, err := indexesFor(table)
	if err != nil {
		return err
	}
	data, err := r.data()
	if err != nil {
		return err
	}

	cols := make([]string, 0, len(idx)+2)
	args := make([]any, 0, len(idx)+2)
	cols = append(cols, "id")
	args = append(args, r.id)
	for _, i := range idx {
		cols = append(cols, i.column)
		args = append(args, columnValue(r.fields[i.field]))
	}
	cols = append(cols, "data")
	args = append(args, data)

	updates := make([]string, 0, len(cols)-1)
	for _, c := range cols[1:] {
		updates = append(updates, fmt.Sprintf("%s = excluded.%s", c, c))
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT(id) DO UPDATE SET %s",
		table,
		strings.Join(cols, ", "),
		strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", "),
		strings.Join(updates, ", "),
	)
	if _, err := ex.ExecContext(ctx, query, args...); err != nil {
		return err
	}
	return nil
}

func deleteRecord(ctx context.Context, ex execer, table Table, id string) error {
	if _, err := indexesFor(table); err != nil {
		return err
	}
	_, err := ex.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", table), id)
	return err
}
