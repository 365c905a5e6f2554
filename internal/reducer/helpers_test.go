package reducer

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/roach88/procount/internal/domain"
	"github.com/roach88/procount/internal/testutil"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func requireDec(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	require.Truef(t, dec(want).Equal(got), "want %s, got %s %v", want, got, msgAndArgs)
}

func newTestReducer() *Reducer {
	return New(testutil.NewSequenceGenerator(), testutil.NewDeterministicClock(testutil.Epoch, time.Second))
}

func reduceAll(t *testing.T, r *Reducer, s *State, actions ...Action) *State {
	t.Helper()
	for _, a := range actions {
		s = r.Reduce(s, a)
	}
	return s
}

// newStore builds two supermarket tenants, c1 and c2, each with branches b1
// and b2. c1 stocks p1 (30 at b1, 5 at b2, cost 2, price 5) and has a
// salaried cashier u2 at b1.
func newStore(t *testing.T, r *Reducer) *State {
	t.Helper()
	branches := []domain.Branch{{ID: "b1", Name: "Main"}, {ID: "b2", Name: "Annex"}}
	return reduceAll(t, r, NewState(),
		AddCompany{
			Company:   domain.Company{ID: "c1", Name: "Corner Shop", Type: domain.CompanySupermarket, Branches: branches},
			AdminUser: domain.User{ID: "u1", Name: "Ana", Role: "admin"},
		},
		AddCompany{
			Company:   domain.Company{ID: "c2", Name: "Other Shop", Type: domain.CompanySupermarket, Branches: branches},
			AdminUser: domain.User{ID: "u9", Name: "Zed", Role: "admin"},
		},
		AddEmployee{User: domain.User{ID: "u2", Name: "Bo", CompanyID: "c1", BranchID: "b1", BaseSalary: dec("2000")}},
		AddSupermarketProduct{CompanyID: "c1", Product: domain.Product{
			ID:            "p1",
			Name:          "Bread",
			Price:         dec("5"),
			Cost:          dec("2"),
			StockByBranch: map[string]decimal.Decimal{"b1": dec("30"), "b2": dec("5")},
		}},
	)
}

func product(t *testing.T, s *State, companyID, id string) domain.Product {
	t.Helper()
	cd := s.CompanyData[companyID]
	require.NotNil(t, cd)
	require.NotNil(t, cd.Supermarket)
	p, ok := find(cd.Supermarket.Products, id)
	require.True(t, ok, "product %s not found", id)
	return p
}

func journalEntry(t *testing.T, s *State, companyID, id string) domain.JournalEntry {
	t.Helper()
	ad := s.AccountingData[companyID]
	require.NotNil(t, ad)
	e, ok := find(ad.JournalEntries, id)
	require.True(t, ok, "journal entry %s not found", id)
	return e
}

// requireLedgerBalanced checks that every tenant's journal debits equal its
// credits.
func requireLedgerBalanced(t *testing.T, s *State) {
	t.Helper()
	for id, ad := range s.AccountingData {
		var debit, credit decimal.Decimal
		for _, e := range ad.JournalEntries {
			d, c := e.Totals()
			debit, credit = debit.Add(d), credit.Add(c)
		}
		require.Truef(t, debit.Equal(credit), "tenant %s: debits %s != credits %s", id, debit, credit)
	}
}

// requireMovementsMatch checks that the movements recorded for a product at a
// branch account for its stock change since before.
func requireMovementsMatch(t *testing.T, before, after *State, companyID, productID, branch string) {
	t.Helper()
	delta := product(t, after, companyID, productID).Stock(branch).Sub(product(t, before, companyID, productID).Stock(branch))
	var moved decimal.Decimal
	for _, m := range after.CompanyData[companyID].StockMovements[len(before.CompanyData[companyID].StockMovements):] {
		if m.ProductID == productID && m.BranchID == branch {
			moved = moved.Add(m.Quantity)
		}
	}
	require.Truef(t, delta.Equal(moved), "%s@%s: stock moved %s but movements sum %s", productID, branch, delta, moved)
}
