package remote

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/roach88/procount/internal/domain"
	"github.com/roach88/procount/internal/notify"
)

// Record is the authority's copy of one entity.
type Record struct {
	TenantID  string          `db:"tenant_id" json:"tenantId"`
	DataType  domain.DataType `db:"data_type" json:"dataType"`
	EntityID  string          `db:"entity_id" json:"entityId"`
	Payload   string          `db:"payload" json:"-"`
	Digest    string          `db:"digest" json:"digest"`
	Deleted   bool            `db:"deleted" json:"deleted"`
	Version   int64           `db:"version" json:"version"`
	UpdatedAt string          `db:"updated_at" json:"updatedAt"`
}

// MarshalJSON inlines the stored payload.
func (r Record) MarshalJSON() ([]byte, error) {
	type plain Record
	return json.Marshal(struct {
		plain
		Data json.RawMessage `json:"data"`
	}{plain(r), json.RawMessage(r.Payload)})
}

// Repository persists what clients push.
type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) DB() *sqlx.DB {
	return r.db
}

// ApplyBatch writes ops for tenant in array order inside one transaction.
//
// Each op overwrites the record it names, so when a batch holds several ops
// for one entity the last one wins. A DELETE keeps a tombstone. Either every
// op is applied or none is.
func (r *Repository) ApplyBatch(ctx context.Context, tenant string, ops []domain.PendingOperation, now time.Time) (string, error) {
	batchID, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("batch id: %w", err)
	}
	ts := now.UTC().Format(time.RFC3339Nano)

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback() // No-op once committed

	upsert := tx.Rebind(`
		INSERT INTO records (tenant_id, data_type, entity_id, payload, digest, deleted, version, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, 1, ?)
		ON CONFLICT (tenant_id, data_type, entity_id) DO UPDATE SET
			payload = excluded.payload,
			digest = excluded.digest,
			deleted = excluded.deleted,
			version = records.version + 1,
			updated_at = excluded.updated_at
	`)
	for _, op := range ops {
		payload := string(op.Payload)
		if payload == "" {
			payload = "null"
		}
		if _, err := tx.ExecContext(ctx, upsert,
			tenant, string(op.DataType), op.EntityID, payload, op.Digest,
			op.ActionType == domain.ActionDelete, ts,
		); err != nil {
			return "", fmt.Errorf("apply %s %s/%s: %w", op.ActionType, op.DataType, op.EntityID, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		tx.Rebind(`INSERT INTO sync_batches (id, tenant_id, size, received_at) VALUES (?, ?, ?, ?)`),
		batchID.String(), tenant, len(ops), ts,
	); err != nil {
		return "", fmt.Errorf("log batch: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return batchID.String(), nil
}

// Get returns one record, tombstones included. A missing record is (nil, nil).
func (r *Repository) Get(ctx context.Context, tenant string, dt domain.DataType, id string) (*Record, error) {
	var rec Record
	err := r.db.GetContext(ctx, &rec, r.db.Rebind(`
		SELECT * FROM records WHERE tenant_id = ? AND data_type = ? AND entity_id = ?
	`), tenant, string(dt), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// List returns the live records of one type for tenant, ordered by id.
func (r *Repository) List(ctx context.Context, tenant string, dt domain.DataType) ([]Record, error) {
	recs := []Record{}
	err := r.db.SelectContext(ctx, &recs, r.db.Rebind(`
		SELECT * FROM records
		WHERE tenant_id = ? AND data_type = ? AND deleted = FALSE
		ORDER BY entity_id
	`), tenant, string(dt))
	if err != nil {
		return nil, err
	}
	return recs, nil
}

// BatchCount returns how many batches tenant has pushed.
func (r *Repository) BatchCount(ctx context.Context, tenant string) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, r.db.Rebind(`SELECT COUNT(*) FROM sync_batches WHERE tenant_id = ?`), tenant)
	return n, err
}

// SaveNotification records an accepted notification request for delivery.
func (r *Repository) SaveNotification(ctx context.Context, tenant string, p notify.Payload, now time.Time) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("notification id: %w", err)
	}
	body, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encode notification: %w", err)
	}
	recipient := p.Recipient.Phone
	if p.Type == notify.ChannelEmail {
		recipient = p.Recipient.Email
	}
	_, err = r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO notifications (id, tenant_id, channel, recipient, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`), id.String(), tenant, string(p.Type), recipient, string(body), now.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// NotificationCount returns how many notifications tenant has requested.
func (r *Repository) NotificationCount(ctx context.Context, tenant string) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, r.db.Rebind(`SELECT COUNT(*) FROM notifications WHERE tenant_id = ?`), tenant)
	return n, err
}
