package store

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/procount/internal/domain"
)

func TestPut_ThenGet(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, TableProducts, testProduct("p1", "c2")))

	got, found, err := GetAs[domain.Product](ctx, s, TableProducts, "p1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Product p1", got.Name)
	assert.True(t, got.Cost.Equal(decimal.RequireFromString("4.5")))
	assert.True(t, got.Stock("b1").Equal(decimal.NewFromInt(50)))
}

func TestPut_Upserts(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	p := testProduct("p1", "c2")
	require.NoError(t, s.Put(ctx, TableProducts, p))
	p.Name = "Renamed"
	require.NoError(t, s.Put(ctx, TableProducts, p))

	n, err := s.Count(ctx, TableProducts)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	byName, err := s.Query(ctx, TableProducts, Filter{Index: "name", Value: "Renamed"})
	require.NoError(t, err)
	assert.Len(t, byName, 1)
}

func TestPut_MissingKey(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	err := s.Put(ctx, TableProducts, testProduct("", "c2"))
	assert.ErrorIs(t, err, ErrMissingKey)

	err = s.Put(ctx, TableProducts, map[string]any{"name": "no id"})
	assert.ErrorIs(t, err, ErrMissingKey)
}

func TestPut_UnknownTable(t *testing.T) {
	s := createTestStore(t)
	err := s.Put(context.Background(), Table("widgets"), testProduct("p1", "c2"))
	assert.ErrorIs(t, err, ErrUnknownTable)
}

func TestGet_MissingIsNotAnError(t *testing.T) {
	s := createTestStore(t)

	raw, found, err := s.Get(context.Background(), TableSales, "nope")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, raw)
}

func TestBulkPut_AllOrNothing(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	batch := []domain.Product{
		testProduct("p1", "c2"),
		testProduct("", "c2"),
		testProduct("p3", "c2"),
	}
	err := s.BulkPut(ctx, TableProducts, Records(batch))
	require.ErrorIs(t, err, ErrMissingKey)

	n, err := s.Count(ctx, TableProducts)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "table must be unchanged after a rejected batch")

	batch[1].ID = "p2"
	require.NoError(t, s.BulkPut(ctx, TableProducts, Records(batch)))
	n, err = s.Count(ctx, TableProducts)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestQuery_ByTenantIndex(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.BulkPut(ctx, TableProducts, Records([]domain.Product{
		testProduct("p2", "c2"),
		testProduct("p1", "c2"),
		testProduct("x1", "c9"),
	})))

	got, err := QueryAs[domain.Product](ctx, s, TableProducts, Filter{Index: "companyId", Value: "c2"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "p1", got[0].ID)
	assert.Equal(t, "p2", got[1].ID)

	none, err := s.Query(ctx, TableProducts, Filter{Index: "companyId", Value: "c404"})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestQuery_LimitOffset(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c", "d"} {
		require.NoError(t, s.Put(ctx, TableRoles, domain.Role{ID: id, CompanyID: "c1", Name: id}))
	}

	page, err := QueryAs[domain.Role](ctx, s, TableRoles, Filter{Index: "companyId", Value: "c1", Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "b", page[0].ID)
	assert.Equal(t, "c", page[1].ID)

	tail, err := s.Query(ctx, TableRoles, Filter{Offset: 3})
	require.NoError(t, err)
	assert.Len(t, tail, 1)
}

func TestQuery_UnknownIndex(t *testing.T) {
	s := createTestStore(t)
	_, err := s.Query(context.Background(), TableRoles, Filter{Index: "name", Value: "x"})
	assert.ErrorIs(t, err, ErrUnknownIndex)
}

func TestQuery_NumericIndex(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	sale := domain.Sale{ID: "s1", CompanyID: "c2", TotalAmount: decimal.RequireFromString("12.5")}
	require.NoError(t, s.Put(ctx, TableSales, sale))

	got, err := s.Query(ctx, TableSales, Filter{Index: "totalAmount", Value: decimal.RequireFromString("12.5")})
	require.NoError(t, err)
	require.Len(t, got, 1)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(got[0], &decoded))
	assert.Equal(t, "s1", decoded["id"])
}

func TestDelete(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, TableCustomers, domain.Customer{ID: "cu1", CompanyID: "c2", Phone: "555"}))
	require.NoError(t, s.Delete(ctx, TableCustomers, "cu1"))
	require.NoError(t, s.Delete(ctx, TableCustomers, "cu1"))

	_, found, err := s.Get(ctx, TableCustomers, "cu1")
	require.NoError(t, err)
	assert.False(t, found)
}
