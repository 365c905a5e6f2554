package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/roach88/procount/internal/domain"
)

// RecordChange writes rec and appends the matching pending operation.
//
// For a DELETE the record is removed from table; otherwise it is upserted,
// and for data types that track sync status its syncStatus is forced to
// pending. An empty table queues the operation without a local write, which
// is how invoices and settings reach the remote authority.
//
// Returns the id of the appended outbox entry.
func (t *Tx) RecordChange(table Table, rec any, action domain.ActionType, dt domain.DataType) (int64, error) {
	if err := t.check(TableOutbox); err != nil {
		return 0, err
	}
	if table != "" {
		if err := t.check(table); err != nil {
			return 0, err
		}
	}
	if !action.Valid() {
		return 0, fmt.Errorf("record change: invalid action type %q", action)
	}
	if !dt.Valid() {
		return 0, fmt.Errorf("record change: invalid data type %q", dt)
	}

	r, err := encodeRecord(rec)
	if err != nil {
		return 0, fmt.Errorf("record change: %w", err)
	}

	if table != "" {
		if action == domain.ActionDelete {
			if err := deleteRecord(t.ctx, t.tx, table, r.id); err != nil {
				return 0, fmt.Errorf("record change: %w", err)
			}
		} else {
			if dt.TracksSyncStatus() {
				r.fields["syncStatus"] = string(domain.SyncStatusPending)
			}
			if err := putRecord(t.ctx, t.tx, table, r); err != nil {
				return 0, fmt.Errorf("record change: %w", err)
			}
		}
	}

	return t.enqueue(domain.PendingOperation{
		ActionType: action,
		DataType:   dt,
		EntityID:   r.id,
		TenantID:   r.tenant(),
	}, r.fields)
}

// Enqueue appends a pending operation whose payload is v.
// EntityID and TenantID must be set by the caller.
func (t *Tx) Enqueue(op domain.PendingOperation, v any) (int64, error) {
	if err := t.check(TableOutbox); err != nil {
		return 0, err
	}
	if !op.ActionType.Valid() || !op.DataType.Valid() {
		return 0, fmt.Errorf("enqueue: invalid operation %s/%s", op.ActionType, op.DataType)
	}
	if op.EntityID == "" {
		return 0, fmt.Errorf("enqueue: %w", ErrMissingKey)
	}
	return t.enqueue(op, v)
}

func (t *Tx) enqueue(op domain.PendingOperation, payload any) (int64, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("enqueue: marshal payload: %w", err)
	}
	digest, err := domain.Digest(domain.DomainOutboxPayload, json.RawMessage(raw))
	if err != nil {
		return 0, fmt.Errorf("enqueue: digest: %w", err)
	}
	ts := op.Timestamp
	if ts.IsZero() {
		ts = t.store.clock.Now()
	}

	res, err := t.tx.ExecContext(t.ctx, `
		INSERT INTO outbox (action_type, data_type, entity_id, tenant_id, payload, digest, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		string(op.ActionType),
		string(op.DataType),
		op.EntityID,
		op.TenantID,
		string(raw),
		digest,
		ts.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("enqueue: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("enqueue: last insert id: %w", err)
	}
	return id, nil
}

// RecordChange is the single-table form of Tx.RecordChange.
func (s *Store) RecordChange(ctx context.Context, table Table, rec any, action domain.ActionType, dt domain.DataType) (int64, error) {
	scope := []Table{TableOutbox}
	if table != "" {
		scope = append(scope, table)
	}
	var id int64
	err := s.Transaction(ctx, scope, func(tx *Tx) error {
		var err error
		id, err = tx.RecordChange(table, rec, action, dt)
		return err
	})
	return id, err
}

// PendingOperations returns the whole outbox in insertion order.
//
// Returns an empty slice (not nil) when the outbox is empty.
func (s *Store) PendingOperations(ctx context.Context) ([]domain.PendingOperation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, action_type, data_type, entity_id, tenant_id, payload, digest, timestamp
		FROM outbox
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query outbox: %w", err)
	}
	defer rows.Close()

	ops := []domain.PendingOperation{}
	for rows.Next() {
		var (
			op      domain.PendingOperation
			action  string
			dt      string
			payload string
			ts      string
		)
		if err := rows.Scan(&op.ID, &action, &dt, &op.EntityID, &op.TenantID, &payload, &op.Digest, &ts); err != nil {
			return nil, fmt.Errorf("scan outbox: %w", err)
		}
		op.ActionType = domain.ActionType(action)
		op.DataType = domain.DataType(dt)
		op.Payload = json.RawMessage(payload)
		if op.Timestamp, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, fmt.Errorf("parse outbox timestamp %q: %w", ts, err)
		}
		ops = append(ops, op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbox: %w", err)
	}
	return ops, nil
}

// PendingCount returns the outbox size without reading payloads.
func (s *Store) PendingCount(ctx context.Context) (int, error) {
	return s.Count(ctx, TableOutbox)
}

// Acknowledge removes acknowledged operations and marks their entities synced.
//
// Runs in one transaction: either every listed entry is removed and every
// eligible entity flag flipped, or nothing changes. A product or sale is only
// marked synced when no operation for it remains in the outbox, so a change
// queued after the batch was read keeps the entity pending.
func (s *Store) Acknowledge(ctx context.Context, ops []domain.PendingOperation) error {
	if len(ops) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("acknowledge: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	ids := make([]any, len(ops))
	for i, op := range ops {
		ids[i] = op.ID
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	if _, err := tx.ExecContext(ctx, "DELETE FROM outbox WHERE id IN ("+placeholders+")", ids...); err != nil {
		return fmt.Errorf("acknowledge: delete: %w", err)
	}

	type entityKey struct {
		dt domain.DataType
		id string
	}
	seen := make(map[entityKey]bool)
	for _, op := range ops {
		if !op.DataType.TracksSyncStatus() || op.ActionType == domain.ActionDelete {
			continue
		}
		key := entityKey{op.DataType, op.EntityID}
		if seen[key] {
			continue
		}
		seen[key] = true

		var remaining int
		if err := tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM outbox WHERE data_type = ? AND entity_id = ?",
			string(op.DataType), op.EntityID,
		).Scan(&remaining); err != nil {
			return fmt.Errorf("acknowledge: count remaining: %w", err)
		}
		if remaining > 0 {
			continue
		}

		table := TableFor(op.DataType)
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`
			UPDATE %s
			SET sync_status = ?, data = json_set(data, '$.syncStatus', ?)
			WHERE id = ?
		`, table),
			string(domain.SyncStatusSynced), string(domain.SyncStatusSynced), op.EntityID,
		); err != nil {
			return fmt.Errorf("acknowledge: mark %s %q synced: %w", table, op.EntityID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("acknowledge: commit: %w", err)
	}
	return nil
}
