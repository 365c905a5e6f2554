package reducer

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/procount/internal/domain"
)

func TestStockTransfer_CompletionMovesStock(t *testing.T) {
	r := newTestReducer()
	s := r.Reduce(newStore(t, r), AddStockTransfer{CompanyID: "c1", Transfer: domain.StockTransfer{
		ID:                  "t1",
		SourceBranchID:      "b1",
		DestinationBranchID: "b2",
		Items:               []domain.TransferItem{{ProductID: "p1", Quantity: dec("10")}},
	}})
	tr, _ := find(s.CompanyData["c1"].StockTransfers, "t1")
	assert.Equal(t, domain.TransferPending, tr.Status)
	requireDec(t, "30", product(t, s, "c1", "p1").Stock("b1"), "pending transfer moves nothing")

	next := r.Reduce(s, UpdateStockTransferStatus{CompanyID: "c1", TransferID: "t1", Status: domain.TransferCompleted})

	p := product(t, next, "c1", "p1")
	requireDec(t, "20", p.Stock("b1"))
	requireDec(t, "15", p.Stock("b2"))

	moves := next.CompanyData["c1"].StockMovements
	require.Len(t, moves, 2)
	assert.Equal(t, domain.MovementTransferOut, moves[0].Type)
	assert.Equal(t, "b1", moves[0].BranchID)
	requireDec(t, "-10", moves[0].Quantity)
	assert.Equal(t, domain.MovementTransferIn, moves[1].Type)
	assert.Equal(t, "b2", moves[1].BranchID)
	requireDec(t, "10", moves[1].Quantity)
	assert.Equal(t, "t1", moves[0].ReferenceID)
	assert.Equal(t, "t1", moves[1].ReferenceID)
	requireMovementsMatch(t, s, next, "c1", "p1", "b1")
	requireMovementsMatch(t, s, next, "c1", "p1", "b2")

	assert.Same(t, next, r.Reduce(next, UpdateStockTransferStatus{CompanyID: "c1", TransferID: "t1", Status: domain.TransferCompleted}),
		"completing twice moves nothing")
}

func TestStockTransfer_SameBranchRejected(t *testing.T) {
	r := newTestReducer()
	s := newStore(t, r)
	assert.Same(t, s, r.Reduce(s, AddStockTransfer{CompanyID: "c1", Transfer: domain.StockTransfer{SourceBranchID: "b1", DestinationBranchID: "b1"}}))
}

func TestStockTransfer_CancelMovesNothing(t *testing.T) {
	r := newTestReducer()
	s := r.Reduce(newStore(t, r), AddStockTransfer{CompanyID: "c1", Transfer: domain.StockTransfer{
		ID: "t1", SourceBranchID: "b1", DestinationBranchID: "b2",
		Items: []domain.TransferItem{{ProductID: "p1", Quantity: dec("10")}},
	}})

	next := r.Reduce(s, UpdateStockTransferStatus{CompanyID: "c1", TransferID: "t1", Status: domain.TransferCancelled})

	assert.Empty(t, next.CompanyData["c1"].StockMovements)
	requireDec(t, "30", product(t, next, "c1", "p1").Stock("b1"))
}

func TestRecordWastage(t *testing.T) {
	r := newTestReducer()
	s := newStore(t, r)

	next := r.Reduce(s, RecordWastage{CompanyID: "c1", Item: WastageItem{ID: "p1"}, Quantity: dec("3"), Reason: "expired"})

	requireDec(t, "27", product(t, next, "c1", "p1").Stock("b1"), "falls back to first branch")
	requireMovementsMatch(t, s, next, "c1", "p1", "b1")
	moves := next.CompanyData["c1"].StockMovements
	require.Len(t, moves, 1)
	assert.Equal(t, domain.MovementWastage, moves[0].Type)
	assert.Equal(t, "expired", moves[0].Notes)

	entries := next.AccountingData["c1"].JournalEntries
	require.Len(t, entries, 1)
	assert.Equal(t, moves[0].ReferenceID, entries[0].ReferenceID)
	assert.Equal(t, domain.AccountWastage, entries[0].Lines[0].AccountID)
	requireDec(t, "6", entries[0].Lines[0].Debit)
	assert.Equal(t, domain.AccountInventory, entries[0].Lines[1].AccountID)

	assert.Same(t, s, r.Reduce(s, RecordWastage{CompanyID: "c1", Item: WastageItem{ID: "ghost"}, Quantity: dec("1")}))
	assert.Same(t, s, r.Reduce(s, RecordWastage{CompanyID: "c1", Item: WastageItem{ID: "p1"}, Quantity: dec("0")}))
}

func TestRecordWastage_UnknownItemDrawsNoID(t *testing.T) {
	r, control := newTestReducer(), newTestReducer()
	s, cs := newStore(t, r), newStore(t, control)

	assert.Same(t, s, r.Reduce(s, RecordWastage{CompanyID: "c1", Item: WastageItem{ID: "ghost"}, Quantity: dec("1"), BranchID: "b1"}))

	waste := RecordWastage{CompanyID: "c1", Item: WastageItem{ID: "p1"}, Quantity: dec("2"), BranchID: "b1", Reason: "mould"}
	got, want := r.Reduce(s, waste), control.Reduce(cs, waste)
	assert.Equal(t, want.CompanyData["c1"].StockMovements, got.CompanyData["c1"].StockMovements)
	assert.Equal(t, want.AccountingData["c1"].JournalEntries, got.AccountingData["c1"].JournalEntries)
}

func TestRecordWastage_UsesCurrentUserBranch(t *testing.T) {
	r := newTestReducer()
	s := reduceAll(t, r, newStore(t, r), UserLogin{User: domain.User{ID: "u2", BranchID: "b2"}})

	next := r.Reduce(s, RecordWastage{CompanyID: "c1", Item: WastageItem{ID: "p1"}, Quantity: dec("1")})

	requireDec(t, "4", product(t, next, "c1", "p1").Stock("b2"))
	assert.Equal(t, "u2", next.CompanyData["c1"].StockMovements[0].PerformedBy)
}

func TestRecordWastage_Ingredient(t *testing.T) {
	r := newTestReducer()
	s := reduceAll(t, r, NewState(),
		AddCompany{Company: domain.Company{ID: "r1", Type: domain.CompanyRestaurant}, AdminUser: domain.User{ID: "chef"}},
		AddIngredient{CompanyID: "r1", Ingredient: domain.Ingredient{ID: "flour", Cost: dec("0.8"),
			StockByBranch: map[string]decimal.Decimal{"main": dec("50")}}},
	)

	next := r.Reduce(s, RecordWastage{CompanyID: "r1", Item: WastageItem{ID: "flour"}, Quantity: dec("2.5")})

	in, _ := find(next.CompanyData["r1"].Restaurant.Ingredients, "flour")
	requireDec(t, "47.5", in.StockByBranch["main"])
	requireDec(t, "2", next.AccountingData["r1"].JournalEntries[0].Lines[0].Debit)
}

func TestStockTaking_Reconciliation(t *testing.T) {
	r := newTestReducer()
	s := r.Reduce(newStore(t, r), AddStockTakingSession{CompanyID: "c1", Session: domain.StockTakingSession{
		ID:       "sts1",
		BranchID: "b1",
		Items:    []domain.StockTakeItem{{ProductID: "p1"}},
	}})
	sess, _ := find(s.CompanyData["c1"].StockTakingSessions, "sts1")
	assert.Equal(t, domain.StockTakeInProgress, sess.Status)
	requireDec(t, "30", sess.Items[0].SystemStock)

	s = reduceAll(t, r, s,
		UpdateStockTakingItem{CompanyID: "c1", SessionID: "sts1", ProductID: "p1", Quantity: dec("26")},
		// A sale during the count.
		CompleteSupermarketSale{CompanyID: "c1", Sale: domain.Sale{BranchID: "b1", PaymentMethod: domain.PaymentCard,
			Items: []domain.SaleItem{{ProductID: "p1", Quantity: dec("1"), UnitPrice: dec("5")}}}},
	)
	requireDec(t, "29", product(t, s, "c1", "p1").Stock("b1"))

	next := r.Reduce(s, ApproveStockReconciliation{CompanyID: "c1", SessionID: "sts1"})

	requireDec(t, "26", product(t, next, "c1", "p1").Stock("b1"))
	requireMovementsMatch(t, s, next, "c1", "p1", "b1")
	moves := next.CompanyData["c1"].StockMovements
	last := moves[len(moves)-1]
	assert.Equal(t, domain.MovementAdjustment, last.Type)
	assert.Equal(t, "sts1", last.ReferenceID)
	requireDec(t, "-3", last.Quantity)

	e := journalEntry(t, next, "c1", "je_adj_sts1")
	assert.Equal(t, domain.AccountWastage, e.Lines[0].AccountID)
	requireDec(t, "6", e.Lines[0].Debit, "3 missing at cost 2")
	assert.Equal(t, domain.AccountInventory, e.Lines[1].AccountID)
	requireLedgerBalanced(t, next)

	done, _ := find(next.CompanyData["c1"].StockTakingSessions, "sts1")
	assert.Equal(t, domain.StockTakeCompleted, done.Status)
	assert.Same(t, next, r.Reduce(next, ApproveStockReconciliation{CompanyID: "c1", SessionID: "sts1"}))
	assert.Same(t, next, r.Reduce(next, UpdateStockTakingItem{CompanyID: "c1", SessionID: "sts1", ProductID: "p1", Quantity: dec("1")}))
}

func TestStockTaking_SurplusDebitsInventory(t *testing.T) {
	r := newTestReducer()
	s := reduceAll(t, r, newStore(t, r),
		AddStockTakingSession{CompanyID: "c1", Session: domain.StockTakingSession{ID: "sts1", BranchID: "b2", Items: []domain.StockTakeItem{{ProductID: "p1"}}}},
		UpdateStockTakingItem{CompanyID: "c1", SessionID: "sts1", ProductID: "p1", Quantity: dec("7")},
	)

	next := r.Reduce(s, ApproveStockReconciliation{CompanyID: "c1", SessionID: "sts1"})

	requireDec(t, "7", product(t, next, "c1", "p1").Stock("b2"))
	e := journalEntry(t, next, "c1", "je_adj_sts1")
	assert.Equal(t, domain.AccountInventory, e.Lines[0].AccountID)
	requireDec(t, "4", e.Lines[0].Debit)
}

func TestCompletePurchaseOrder(t *testing.T) {
	r := newTestReducer()
	s := r.Reduce(newStore(t, r), AddPurchaseOrder{CompanyID: "c1", Order: domain.PurchaseOrder{
		ID:    "po1",
		Items: []domain.PurchaseOrderItem{{ProductID: "p1", Quantity: dec("12"), UnitCost: dec("2.10")}},
	}})
	po, _ := find(s.CompanyData["c1"].PurchaseOrders, "po1")
	assert.Equal(t, domain.OrderPending, po.Status)
	requireDec(t, "25.2", po.TotalAmount)

	next := r.Reduce(s, CompletePurchaseOrder{CompanyID: "c1", OrderID: "po1"})

	p := product(t, next, "c1", "p1")
	requireDec(t, "42", p.Stock("b1"), "received at the default branch")
	requireDec(t, "2.10", p.Cost)
	requireMovementsMatch(t, s, next, "c1", "p1", "b1")
	moves := next.CompanyData["c1"].StockMovements
	require.Len(t, moves, 1)
	assert.Equal(t, domain.MovementPurchase, moves[0].Type)
	assert.Equal(t, "po1", moves[0].ReferenceID)

	assert.Same(t, next, r.Reduce(next, CompletePurchaseOrder{CompanyID: "c1", OrderID: "po1"}), "received once")
	assert.Same(t, next, r.Reduce(next, UpdatePurchaseOrder{CompanyID: "c1", Order: po}), "completed orders are frozen")
}
