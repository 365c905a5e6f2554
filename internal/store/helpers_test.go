package store

import (
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/roach88/procount/internal/domain"
	"github.com/roach88/procount/internal/testutil"
)

// createTestStore opens a fresh store in a temp directory with a frozen clock.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, WithClock(testutil.NewDeterministicClock(testutil.Epoch, 0)))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testProduct(id, company string) domain.Product {
	return domain.Product{
		ID:        id,
		CompanyID: company,
		Name:      "Product " + id,
		Barcode:   "bc-" + id,
		Category:  "Dairy",
		Price:     decimal.RequireFromString("6"),
		Cost:      decimal.RequireFromString("4.5"),
		StockByBranch: map[string]decimal.Decimal{
			"b1": decimal.NewFromInt(50),
		},
		UnitType:   domain.UnitPiece,
		SyncStatus: domain.SyncStatusSynced,
	}
}
