package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/procount/internal/domain"
	"github.com/roach88/procount/internal/testutil"
)

func TestTransaction_RejectsUndeclaredTable(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	err := s.Transaction(ctx, []Table{TableProducts}, func(tx *Tx) error {
		if err := tx.Put(TableProducts, testProduct("p1", "c2")); err != nil {
			return err
		}
		return tx.Put(TableSales, domain.Sale{ID: "s1", CompanyID: "c2"})
	})
	require.ErrorIs(t, err, ErrTableNotInScope)

	n, err := s.Count(ctx, TableProducts)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "earlier writes in the body must roll back")
}

func TestTransaction_BodyErrorRollsBack(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.Transaction(ctx, []Table{TableProducts, TableOutbox}, func(tx *Tx) error {
		if _, err := tx.RecordChange(TableProducts, testProduct("p1", "c2"), domain.ActionCreate, domain.DataProduct); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	n, err := s.PendingCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	n, err = s.Count(ctx, TableProducts)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestTransaction_UnknownTable(t *testing.T) {
	s := createTestStore(t)
	err := s.Transaction(context.Background(), []Table{"widgets"}, func(*Tx) error { return nil })
	assert.ErrorIs(t, err, ErrUnknownTable)
}

func TestRecordChange_WritesEntityAndOutbox(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	id, err := s.RecordChange(ctx, TableProducts, testProduct("p1", "c2"), domain.ActionCreate, domain.DataProduct)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	p, found, err := GetAs[domain.Product](ctx, s, TableProducts, "p1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, domain.SyncStatusPending, p.SyncStatus)

	pending, err := QueryAs[domain.Product](ctx, s, TableProducts, Filter{Index: "syncStatus", Value: "pending"})
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	ops, err := s.PendingOperations(ctx)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, domain.ActionCreate, ops[0].ActionType)
	assert.Equal(t, domain.DataProduct, ops[0].DataType)
	assert.Equal(t, "p1", ops[0].EntityID)
	assert.Equal(t, "c2", ops[0].TenantID)
	assert.Equal(t, testutil.Epoch, ops[0].Timestamp)
	assert.Len(t, ops[0].Digest, 64)
	assert.Contains(t, string(ops[0].Payload), `"syncStatus":"pending"`)
}

func TestRecordChange_OutboxOnly(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	inv := domain.PurchaseInvoice{ID: "inv1", CompanyID: "c2", SupplierName: "Acme"}
	_, err := s.RecordChange(ctx, "", inv, domain.ActionCreate, domain.DataInvoice)
	require.NoError(t, err)

	ops, err := s.PendingOperations(ctx)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, domain.DataInvoice, ops[0].DataType)
	assert.Equal(t, "inv1", ops[0].EntityID)
}

func TestRecordChange_Delete(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	c := domain.Customer{ID: "cu1", CompanyID: "c2", Phone: "555"}
	_, err := s.RecordChange(ctx, TableCustomers, c, domain.ActionCreate, domain.DataCustomer)
	require.NoError(t, err)
	_, err = s.RecordChange(ctx, TableCustomers, c, domain.ActionDelete, domain.DataCustomer)
	require.NoError(t, err)

	_, found, err := s.Get(ctx, TableCustomers, "cu1")
	require.NoError(t, err)
	assert.False(t, found)

	ops, err := s.PendingOperations(ctx)
	require.NoError(t, err)
	require.Len(t, ops, 2)
	assert.Equal(t, domain.ActionDelete, ops[1].ActionType)
}

func TestRecordChange_RejectsInvalidEnums(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.RecordChange(ctx, TableProducts, testProduct("p1", "c2"), "PATCH", domain.DataProduct)
	assert.Error(t, err)
	_, err = s.RecordChange(ctx, TableProducts, testProduct("p1", "c2"), domain.ActionCreate, "ORDER")
	assert.Error(t, err)
}

func TestPendingOperations_FIFO(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"p3", "p1", "p2"} {
		_, err := s.RecordChange(ctx, TableProducts, testProduct(id, "c2"), domain.ActionCreate, domain.DataProduct)
		require.NoError(t, err)
	}

	ops, err := s.PendingOperations(ctx)
	require.NoError(t, err)
	require.Len(t, ops, 3)
	assert.Equal(t, []string{"p3", "p1", "p2"}, []string{ops[0].EntityID, ops[1].EntityID, ops[2].EntityID})
	assert.Less(t, ops[0].ID, ops[1].ID)
	assert.Less(t, ops[1].ID, ops[2].ID)
}

func TestPendingOperations_EmptyIsNotNil(t *testing.T) {
	s := createTestStore(t)
	ops, err := s.PendingOperations(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, ops)
	assert.Empty(t, ops)
}

func TestAcknowledge_DrainsAndMarksSynced(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.RecordChange(ctx, TableProducts, testProduct("p1", "c2"), domain.ActionCreate, domain.DataProduct)
	require.NoError(t, err)
	_, err = s.RecordChange(ctx, TableSales, domain.Sale{ID: "s1", CompanyID: "c2"}, domain.ActionCreate, domain.DataSale)
	require.NoError(t, err)
	_, err = s.RecordChange(ctx, TableCustomers, domain.Customer{ID: "cu1", CompanyID: "c2"}, domain.ActionCreate, domain.DataCustomer)
	require.NoError(t, err)

	ops, err := s.PendingOperations(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Acknowledge(ctx, ops))

	n, err := s.PendingCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	p, _, err := GetAs[domain.Product](ctx, s, TableProducts, "p1")
	require.NoError(t, err)
	assert.Equal(t, domain.SyncStatusSynced, p.SyncStatus)

	sale, _, err := GetAs[domain.Sale](ctx, s, TableSales, "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.SyncStatusSynced, sale.SyncStatus)

	synced, err := s.Query(ctx, TableSales, Filter{Index: "syncStatus", Value: "synced"})
	require.NoError(t, err)
	assert.Len(t, synced, 1)
}

func TestAcknowledge_KeepsPendingWhenNewerOpQueued(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.RecordChange(ctx, TableProducts, testProduct("p1", "c2"), domain.ActionCreate, domain.DataProduct)
	require.NoError(t, err)
	sent, err := s.PendingOperations(ctx)
	require.NoError(t, err)

	// A local edit lands while the batch is in flight.
	_, err = s.RecordChange(ctx, TableProducts, testProduct("p1", "c2"), domain.ActionUpdate, domain.DataProduct)
	require.NoError(t, err)

	require.NoError(t, s.Acknowledge(ctx, sent))

	remaining, err := s.PendingOperations(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, domain.ActionUpdate, remaining[0].ActionType)

	p, _, err := GetAs[domain.Product](ctx, s, TableProducts, "p1")
	require.NoError(t, err)
	assert.Equal(t, domain.SyncStatusPending, p.SyncStatus)
}

func TestAcknowledge_Empty(t *testing.T) {
	s := createTestStore(t)
	assert.NoError(t, s.Acknowledge(context.Background(), nil))
}
