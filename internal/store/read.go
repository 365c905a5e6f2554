package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// Filter selects records by a secondary index.
// An empty Index selects every record. Limit <= 0 means no limit.
type Filter struct {
	Index  string
	Value  any
	Limit  int
	Offset int
}

// Get returns the stored JSON of a record, or found=false when no record has id.
func (s *Store) Get(ctx context.Context, table Table, id string) (json.RawMessage, bool, error) {
	if _, err := indexesFor(table); err != nil {
		return nil, false, fmt.Errorf("get %s: %w", table, err)
	}
	var data string
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT data FROM %s WHERE id = ?", table), id,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", table, err)
	}
	return json.RawMessage(data), true, nil
}

// Query returns the records matching f, ordered by the index column then id.
//
// Returns an empty slice (not nil) when nothing matches.
func (s *Store) Query(ctx context.Context, table Table, f Filter) ([]json.RawMessage, error) {
	if _, err := indexesFor(table); err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}

	query := fmt.Sprintf("SELECT data FROM %s", table)
	var args []any
	order := "id COLLATE BINARY ASC"
	if f.Index != "" {
		col, err := columnFor(table, f.Index)
		if err != nil {
			return nil, fmt.Errorf("query %s: %w", table, err)
		}
		query += fmt.Sprintf(" WHERE %s = ?", col)
		args = append(args, columnValue(f.Value))
		if col != "id" {
			order = col + " ASC, " + order
		}
	}
	query += " ORDER BY " + order + limitClause(f)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	out := []json.RawMessage{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		out = append(out, json.RawMessage(data))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", table, err)
	}
	return out, nil
}

// Count returns the number of rows in a table, including the outbox.
func (s *Store) Count(ctx context.Context, table Table) (int, error) {
	if table != TableOutbox {
		if _, err := indexesFor(table); err != nil {
			return 0, fmt.Errorf("count %s: %w", table, err)
		}
	}
	var n int
	if err := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

// GetAs decodes a record into T.
func GetAs[T any](ctx context.Context, s *Store, table Table, id string) (T, bool, error) {
	var zero T
	raw, found, err := s.Get(ctx, table, id)
	if err != nil || !found {
		return zero, found, err
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return zero, false, fmt.Errorf("decode %s %q: %w", table, id, err)
	}
	return v, true, nil
}

// QueryAs decodes Query results into T.
func QueryAs[T any](ctx context.Context, s *Store, table Table, f Filter) ([]T, error) {
	raws, err := s.Query(ctx, table, f)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(raws))
	for _, raw := range raws {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("decode %s: %w", table, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func limitClause(f Filter) string {
	if f.Limit <= 0 && f.Offset <= 0 {
		return ""
	}
	limit := f.Limit
	if limit <= 0 {
		limit = -1
	}
	return fmt.Sprintf(" LIMIT %d OFFSET %d", limit, f.Offset)
}
