package reducer

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/procount/internal/domain"
)

func openDrawer(t *testing.T, r *Reducer, s *State, id string) *State {
	t.Helper()
	return r.Reduce(s, OpenCashDrawer{CompanyID: "c1", Session: domain.CashDrawerSession{
		ID:             id,
		UserID:         "u2",
		BranchID:       "b1",
		OpeningBalance: dec("100"),
	}})
}

func TestCompleteSupermarketSale(t *testing.T) {
	r := newTestReducer()
	s := openDrawer(t, r, newStore(t, r), "cds1")
	s = reduceAll(t, r, s,
		UpdateSupermarketSettings{CompanyID: "c1", Settings: SupermarketSettings{LoyaltyPointsPerUnit: dec("2")}},
		AddCustomer{CompanyID: "c1", Customer: domain.Customer{ID: "cu1", Name: "Cy"}},
	)

	next := r.Reduce(s, CompleteSupermarketSale{CompanyID: "c1", Sale: domain.Sale{
		ID:                  "s1",
		BranchID:            "b1",
		PaymentMethod:       domain.PaymentCash,
		CashDrawerSessionID: "cds1",
		CustomerID:          "cu1",
		TaxAmount:           dec("0.50"),
		Items:               []domain.SaleItem{{ProductID: "p1", Quantity: dec("3"), UnitPrice: dec("5")}},
	}})

	sm := next.CompanyData["c1"].Supermarket
	require.Len(t, sm.Sales, 1)
	sale := sm.Sales[0]
	requireDec(t, "15.5", sale.TotalAmount)
	requireDec(t, "2", sale.Items[0].UnitCost, "unit cost taken from product")
	assert.Equal(t, "Bread", sale.Items[0].Name)

	requireDec(t, "27", product(t, next, "c1", "p1").Stock("b1"))
	requireMovementsMatch(t, s, next, "c1", "p1", "b1")
	moves := next.CompanyData["c1"].StockMovements
	last := moves[len(moves)-1]
	assert.Equal(t, domain.MovementSale, last.Type)
	assert.Equal(t, "s1", last.ReferenceID)

	e := journalEntry(t, next, "c1", "je_sale_s1")
	require.Len(t, e.Lines, 4)
	assert.Equal(t, domain.AccountCash, e.Lines[0].AccountID)
	requireDec(t, "15.5", e.Lines[0].Debit)
	assert.Equal(t, domain.AccountSales, e.Lines[1].AccountID)
	assert.Equal(t, domain.AccountCOGS, e.Lines[2].AccountID)
	requireDec(t, "6", e.Lines[2].Debit)
	requireLedgerBalanced(t, next)

	drawer, ok := find(next.CompanyData["c1"].CashDrawerSessions, "cds1")
	require.True(t, ok)
	requireDec(t, "15.5", drawer.CashSales)

	cust, ok := find(next.CompanyData["c1"].Customers, "cu1")
	require.True(t, ok)
	requireDec(t, "30", cust.LoyaltyPoints, "floor(15.5) * 2")
	require.Len(t, cust.PurchaseHistory, 1)
	assert.Equal(t, "s1", cust.PurchaseHistory[0].SaleID)
}

func TestCompleteSupermarketSale_CardSkipsDrawer(t *testing.T) {
	r := newTestReducer()
	s := openDrawer(t, r, newStore(t, r), "cds1")

	next := r.Reduce(s, CompleteSupermarketSale{CompanyID: "c1", Sale: domain.Sale{
		ID:                  "s1",
		BranchID:            "b1",
		PaymentMethod:       domain.PaymentCard,
		CashDrawerSessionID: "cds1",
		Items:               []domain.SaleItem{{ProductID: "p1", Quantity: dec("1"), UnitPrice: dec("5")}},
	}})

	drawer, _ := find(next.CompanyData["c1"].CashDrawerSessions, "cds1")
	assert.True(t, drawer.CashSales.IsZero())
	e := journalEntry(t, next, "c1", "je_sale_s1")
	assert.Equal(t, domain.AccountBank, e.Lines[0].AccountID)
}

func TestProcessReturn(t *testing.T) {
	r := newTestReducer()
	s := openDrawer(t, r, newStore(t, r), "cds1")
	s = r.Reduce(s, CompleteSupermarketSale{CompanyID: "c1", Sale: domain.Sale{
		ID:            "s1",
		BranchID:      "b1",
		PaymentMethod: domain.PaymentCash,
		Items:         []domain.SaleItem{{ProductID: "p1", Quantity: dec("4"), UnitPrice: dec("5")}},
	}})

	next := r.Reduce(s, ProcessReturn{CompanyID: "c1", Return: domain.Return{
		ID:                  "r1",
		SaleID:              "s1",
		CashDrawerSessionID: "cds1",
		Items:               []domain.SaleItem{{ProductID: "p1", Quantity: dec("1"), UnitPrice: dec("5"), UnitCost: dec("2")}},
	}})

	requireDec(t, "27", product(t, next, "c1", "p1").Stock("b1"))
	requireMovementsMatch(t, s, next, "c1", "p1", "b1")

	sm := next.CompanyData["c1"].Supermarket
	require.Len(t, sm.Returns, 1)
	ret := sm.Returns[0]
	assert.Equal(t, "b1", ret.BranchID, "branch defaults to the sale's")
	assert.Equal(t, domain.PaymentCash, ret.RefundMethod)
	requireDec(t, "5", ret.RefundAmount)

	e := journalEntry(t, next, "c1", "je_ret_r1")
	assert.Equal(t, domain.AccountSales, e.Lines[0].AccountID)
	requireDec(t, "5", e.Lines[0].Debit)
	assert.Equal(t, domain.AccountInventory, e.Lines[2].AccountID)
	requireDec(t, "2", e.Lines[2].Debit)
	requireLedgerBalanced(t, next)

	drawer, _ := find(next.CompanyData["c1"].CashDrawerSessions, "cds1")
	requireDec(t, "5", drawer.CashPayouts)

	assert.Same(t, next, r.Reduce(next, ProcessReturn{CompanyID: "c1", Return: domain.Return{
		SaleID: "ghost",
		Items:  []domain.SaleItem{{ProductID: "p1", Quantity: dec("1")}},
	}}), "return against unknown sale")
}

func TestUpdateSupermarketProduct(t *testing.T) {
	r := newTestReducer()
	s := newStore(t, r)
	orig := product(t, s, "c1", "p1")

	t.Run("price change stamps update time", func(t *testing.T) {
		p := orig
		p.Price = dec("6")
		next := r.Reduce(s, UpdateSupermarketProduct{CompanyID: "c1", Product: p})
		got := product(t, next, "c1", "p1")
		assert.True(t, got.PriceLastUpdatedAt.After(orig.PriceLastUpdatedAt))
		assert.Equal(t, orig.CreatedAt, got.CreatedAt)
	})

	t.Run("same price keeps update time", func(t *testing.T) {
		p := orig
		p.Name = "Sourdough"
		next := r.Reduce(s, UpdateSupermarketProduct{CompanyID: "c1", Product: p})
		got := product(t, next, "c1", "p1")
		assert.Equal(t, orig.PriceLastUpdatedAt, got.PriceLastUpdatedAt)
		assert.Equal(t, "Sourdough", got.Name)
		assert.Len(t, next.CompanyData["c1"].StockMovements, len(s.CompanyData["c1"].StockMovements))
	})

	t.Run("stock edit records adjustments", func(t *testing.T) {
		p := orig
		p.StockByBranch = map[string]decimal.Decimal{"b1": dec("25"), "b2": dec("5"), "b3": dec("4")}
		next := r.Reduce(s, UpdateSupermarketProduct{CompanyID: "c1", Product: p})
		for _, b := range []string{"b1", "b2", "b3"} {
			requireMovementsMatch(t, s, next, "c1", "p1", b)
		}
		moves := next.CompanyData["c1"].StockMovements[len(s.CompanyData["c1"].StockMovements):]
		require.Len(t, moves, 2)
		assert.Equal(t, domain.MovementAdjustment, moves[0].Type)
	})
}

func TestCashDrawer_OpenAndClose(t *testing.T) {
	r := newTestReducer()
	s := openDrawer(t, r, newStore(t, r), "cds1")
	assert.Same(t, s, openDrawer(t, r, s, "cds1"), "duplicate session id")

	s = r.Reduce(s, CompleteSupermarketSale{CompanyID: "c1", Sale: domain.Sale{
		BranchID:            "b1",
		PaymentMethod:       domain.PaymentCash,
		CashDrawerSessionID: "cds1",
		Items:               []domain.SaleItem{{ProductID: "p1", Quantity: dec("10"), UnitPrice: dec("5")}},
	}})
	s = r.Reduce(s, AddGeneralExpense{CompanyID: "c1", Expense: domain.Expense{
		Description:         "Window cleaner",
		Amount:              dec("20"),
		ExpenseAccountID:    domain.AccountUtilities,
		PaymentSource:       domain.PaymentCash,
		CashDrawerSessionID: "cds1",
	}})

	next := r.Reduce(s, CloseCashDrawer{CompanyID: "c1", SessionID: "cds1", ActualBalance: dec("125")})

	d, ok := find(next.CompanyData["c1"].CashDrawerSessions, "cds1")
	require.True(t, ok)
	assert.Equal(t, domain.DrawerClosed, d.Status)
	require.NotNil(t, d.ClosedAt)
	requireDec(t, "130", d.ExpectedBalance, "100 + 50 - 20")
	requireDec(t, "-5", d.Difference)
	requireDec(t, "125", d.ClosingBalance)

	assert.Same(t, next, r.Reduce(next, CloseCashDrawer{CompanyID: "c1", SessionID: "cds1", ActualBalance: dec("1")}),
		"closed drawer cannot close again")
}

func TestUpdateCustomer_KeepsPasswordHash(t *testing.T) {
	r := newTestReducer()
	s := r.Reduce(newStore(t, r), AddCustomer{CompanyID: "c1", Customer: domain.Customer{ID: "cu1", Name: "Cy", PasswordHash: "h1"}})

	next := r.Reduce(s, UpdateCustomer{CompanyID: "c1", Customer: domain.Customer{ID: "cu1", Name: "Cyd"}})

	c, _ := find(next.CompanyData["c1"].Customers, "cu1")
	assert.Equal(t, "Cyd", c.Name)
	assert.Equal(t, "h1", c.PasswordHash)
}

func TestCompleteSupermarketSale_NegativeTotalChangesNothing(t *testing.T) {
	r := newTestReducer()
	s := openDrawer(t, r, newStore(t, r), "cds1")

	next := r.Reduce(s, CompleteSupermarketSale{CompanyID: "c1", Sale: domain.Sale{
		ID:                  "s1",
		BranchID:            "b1",
		PaymentMethod:       domain.PaymentCash,
		CashDrawerSessionID: "cds1",
		DiscountAmount:      dec("10"),
		Items:               []domain.SaleItem{{ProductID: "p1", Quantity: dec("1"), UnitPrice: dec("5")}},
	}})

	assert.Same(t, s, next, "a sale whose journal entry cannot post leaves no trace")
	requireDec(t, "30", product(t, next, "c1", "p1").Stock("b1"))
	assert.Empty(t, next.CompanyData["c1"].Supermarket.Sales)
	assert.Empty(t, next.CompanyData["c1"].StockMovements)
}

func TestProcessReturn_CappedAtQuantitySold(t *testing.T) {
	r := newTestReducer()
	s := newStore(t, r)
	s = r.Reduce(s, CompleteSupermarketSale{CompanyID: "c1", Sale: domain.Sale{
		ID:            "s1",
		BranchID:      "b1",
		PaymentMethod: domain.PaymentBank,
		Items:         []domain.SaleItem{{ProductID: "p1", Quantity: dec("4"), UnitPrice: dec("5")}},
	}})
	requireDec(t, "26", product(t, s, "c1", "p1").Stock("b1"))

	first := r.Reduce(s, ProcessReturn{CompanyID: "c1", Return: domain.Return{
		ID:     "r1",
		SaleID: "s1",
		Items: []domain.SaleItem{
			{ProductID: "p1", Quantity: dec("3")},
			{ProductID: "p9", Quantity: dec("5"), UnitPrice: dec("100")},
		},
	}})
	sm := first.CompanyData["c1"].Supermarket
	require.Len(t, sm.Returns, 1)
	require.Len(t, sm.Returns[0].Items, 1, "items not on the sale are dropped")
	requireDec(t, "15", sm.Returns[0].RefundAmount, "priced at the sale's unit price")
	requireDec(t, "29", product(t, first, "c1", "p1").Stock("b1"))
	requireMovementsMatch(t, s, first, "c1", "p1", "b1")
	e := journalEntry(t, first, "c1", "je_ret_r1")
	requireDec(t, "6", e.Lines[2].Debit, "cost of the three returned units")

	second := r.Reduce(first, ProcessReturn{CompanyID: "c1", Return: domain.Return{
		ID:     "r2",
		SaleID: "s1",
		Items:  []domain.SaleItem{{ProductID: "p1", Quantity: dec("3")}},
	}})
	ret, ok := find(second.CompanyData["c1"].Supermarket.Returns, "r2")
	require.True(t, ok)
	requireDec(t, "1", ret.Items[0].Quantity, "only one unit was left to return")
	requireDec(t, "5", ret.RefundAmount)
	requireDec(t, "30", product(t, second, "c1", "p1").Stock("b1"))
	requireLedgerBalanced(t, second)

	assert.Same(t, second, r.Reduce(second, ProcessReturn{CompanyID: "c1", Return: domain.Return{
		SaleID: "s1",
		Items:  []domain.SaleItem{{ProductID: "p1", Quantity: dec("1")}},
	}}), "sale fully returned")
}

func TestProcessReturn_DeletedProductIgnored(t *testing.T) {
	r := newTestReducer()
	s := reduceAll(t, r, newStore(t, r),
		CompleteSupermarketSale{CompanyID: "c1", Sale: domain.Sale{
			ID:            "s1",
			BranchID:      "b1",
			PaymentMethod: domain.PaymentCash,
			Items:         []domain.SaleItem{{ProductID: "p1", Quantity: dec("2"), UnitPrice: dec("5")}},
		}},
		DeleteSupermarketProduct{CompanyID: "c1", ProductID: "p1"},
	)

	next := r.Reduce(s, ProcessReturn{CompanyID: "c1", Return: domain.Return{
		SaleID: "s1",
		Items:  []domain.SaleItem{{ProductID: "p1", Quantity: dec("1")}},
	}})

	assert.Same(t, s, next, "no stock to restore, so no refund or inventory posting")
}

func TestCashDrawer_ClosedSessionNotCharged(t *testing.T) {
	r := newTestReducer()
	s := openDrawer(t, r, newStore(t, r), "cds1")
	s = r.Reduce(s, CloseCashDrawer{CompanyID: "c1", SessionID: "cds1", ActualBalance: dec("100")})

	next := reduceAll(t, r, s,
		CompleteSupermarketSale{CompanyID: "c1", Sale: domain.Sale{
			ID:                  "s1",
			BranchID:            "b1",
			PaymentMethod:       domain.PaymentCash,
			CashDrawerSessionID: "cds1",
			Items:               []domain.SaleItem{{ProductID: "p1", Quantity: dec("1"), UnitPrice: dec("5")}},
		}},
		AddGeneralExpense{CompanyID: "c1", Expense: domain.Expense{
			Amount:              dec("20"),
			ExpenseAccountID:    domain.AccountUtilities,
			PaymentSource:       domain.PaymentCash,
			CashDrawerSessionID: "cds1",
		}},
	)

	require.Len(t, next.CompanyData["c1"].Supermarket.Sales, 1)
	d, _ := find(next.CompanyData["c1"].CashDrawerSessions, "cds1")
	assert.True(t, d.CashSales.IsZero(), "closed session keeps its counted figures")
	assert.True(t, d.CashPayouts.IsZero())
	requireLedgerBalanced(t, next)
}
