package reducer

import (
	"github.com/shopspring/decimal"

	"github.com/roach88/procount/internal/domain"
)

const (
	KindAddPurchaseOrder           Kind = "ADD_PURCHASE_ORDER"
	KindUpdatePurchaseOrder        Kind = "UPDATE_PURCHASE_ORDER"
	KindCompletePurchaseOrder      Kind = "COMPLETE_PURCHASE_ORDER"
	KindAddStockTransfer           Kind = "ADD_STOCK_TRANSFER"
	KindUpdateStockTransferStatus  Kind = "UPDATE_STOCK_TRANSFER_STATUS"
	KindRecordWastage              Kind = "RECORD_WASTAGE"
	KindAddStockTakingSession      Kind = "ADD_STOCK_TAKING_SESSION"
	KindUpdateStockTakingItem      Kind = "UPDATE_STOCK_TAKING_ITEM"
	KindApproveStockReconciliation Kind = "APPROVE_STOCK_RECONCILIATION"
)

const (
	defaultReceivingBranch = "b1"
	fallbackBranch         = "main"
	reconciliationNote     = "Stock Taking Reconciliation"
)

// stockLevel returns the quantity and unit cost of a product or ingredient
// at branch. Products are looked up before ingredients.
func stockLevel(cd *CompanyData, itemID, branch string) (qty, cost decimal.Decimal, ok bool) {
	if cd.Supermarket != nil {
		if p, found := find(cd.Supermarket.Products, itemID); found {
			return p.Stock(branch), p.Cost, true
		}
	}
	if cd.Restaurant != nil {
		if in, found := find(cd.Restaurant.Ingredients, itemID); found {
			return in.StockByBranch[branch], in.Cost, true
		}
	}
	return decimal.Zero, decimal.Zero, false
}

// moveStock adds delta to an item's stock at branch, optionally replacing its
// unit cost. cd must already be a private copy; the vertical data it points
// to is copied before it changes.
func moveStock(cd *CompanyData, itemID, branch string, delta decimal.Decimal, newCost *decimal.Decimal) bool {
	if cd.Supermarket != nil {
		products, ok := updated(cd.Supermarket.Products, itemID, func(p *domain.Product) {
			p.StockByBranch = adjustStock(p.StockByBranch, branch, delta)
			if newCost != nil {
				p.Cost = *newCost
			}
		})
		if ok {
			sm := *cd.Supermarket
			sm.Products = products
			cd.Supermarket = &sm
			return true
		}
	}
	if cd.Restaurant != nil {
		ingredients, ok := updated(cd.Restaurant.Ingredients, itemID, func(in *domain.Ingredient) {
			in.StockByBranch = adjustStock(in.StockByBranch, branch, delta)
			if newCost != nil {
				in.Cost = *newCost
			}
		})
		if ok {
			rd := *cd.Restaurant
			rd.Ingredients = ingredients
			cd.Restaurant = &rd
			return true
		}
	}
	return false
}

// movement builds the audit entry for a stock delta.
func (r *Reducer) movement(itemID string, t domain.MovementType, qty decimal.Decimal, branch, by, ref, notes string) domain.StockMovement {
	return domain.StockMovement{
		ID:          r.newID("sm"),
		ProductID:   itemID,
		Type:        t,
		Quantity:    qty,
		Date:        r.now(),
		BranchID:    branch,
		PerformedBy: by,
		ReferenceID: ref,
		Notes:       notes,
	}
}

type AddPurchaseOrder struct {
	CompanyID string               `json:"companyId"`
	Order     domain.PurchaseOrder `json:"order"`
}

func (AddPurchaseOrder) Kind() Kind { return KindAddPurchaseOrder }

func (a AddPurchaseOrder) apply(r *Reducer, s *State) *State {
	o := a.Order
	o.ID = r.idOr(o.ID, "po")
	o.Date = r.timeOr(o.Date)
	if o.Status == "" {
		o.Status = domain.OrderPending
	}
	if o.TotalAmount.IsZero() {
		for _, it := range o.Items {
			o.TotalAmount = o.TotalAmount.Add(it.Quantity.Mul(it.UnitCost))
		}
	}
	return s.editTenant(a.CompanyID, func(cd *CompanyData) bool {
		cd.PurchaseOrders = appended(cd.PurchaseOrders, o)
		return true
	})
}

// UpdatePurchaseOrder replaces an order that has not been completed.
type UpdatePurchaseOrder struct {
	CompanyID string               `json:"companyId"`
	Order     domain.PurchaseOrder `json:"order"`
}

func (UpdatePurchaseOrder) Kind() Kind { return KindUpdatePurchaseOrder }

func (a UpdatePurchaseOrder) apply(_ *Reducer, s *State) *State {
	return s.editTenant(a.CompanyID, func(cd *CompanyData) bool {
		cur, ok := find(cd.PurchaseOrders, a.Order.ID)
		if !ok || cur.Status == domain.OrderCompleted || a.Order.Status == domain.OrderCompleted {
			return false
		}
		cd.PurchaseOrders, _ = replaced(cd.PurchaseOrders, a.Order)
		return true
	})
}

// CompletePurchaseOrder receives an order's items into stock at the order's
// branch and takes each item's unit cost as the new cost.
type CompletePurchaseOrder struct {
	CompanyID string `json:"companyId"`
	OrderID   string `json:"orderId"`
}

func (CompletePurchaseOrder) Kind() Kind { return KindCompletePurchaseOrder }

func (a CompletePurchaseOrder) apply(r *Reducer, s *State) *State {
	return s.editTenant(a.CompanyID, func(cd *CompanyData) bool {
		o, ok := find(cd.PurchaseOrders, a.OrderID)
		if !ok || o.Status != domain.OrderPending {
			return false
		}
		branch := o.BranchID
		if branch == "" {
			branch = defaultReceivingBranch
		}
		var moves []domain.StockMovement
		for _, it := range o.Items {
			cost := it.UnitCost
			if moveStock(cd, it.ProductID, branch, it.Quantity, &cost) {
				moves = append(moves, r.movement(it.ProductID, domain.MovementPurchase, it.Quantity, branch, o.RequesterID, o.ID, ""))
			}
		}
		cd.PurchaseOrders, _ = updated(cd.PurchaseOrders, o.ID, func(p *domain.PurchaseOrder) {
			p.Status = domain.OrderCompleted
		})
		cd.StockMovements = appended(cd.StockMovements, moves...)
		return true
	})
}

type AddStockTransfer struct {
	CompanyID string               `json:"companyId"`
	Transfer  domain.StockTransfer `json:"transfer"`
}

func (AddStockTransfer) Kind() Kind { return KindAddStockTransfer }

func (a AddStockTransfer) apply(r *Reducer, s *State) *State {
	t := a.Transfer
	if t.SourceBranchID == "" || t.SourceBranchID == t.DestinationBranchID {
		return s
	}
	t.ID = r.idOr(t.ID, "st")
	t.Date = r.timeOr(t.Date)
	t.Status = domain.TransferPending
	return s.editTenant(a.CompanyID, func(cd *CompanyData) bool {
		cd.StockTransfers = appended(cd.StockTransfers, t)
		return true
	})
}

// UpdateStockTransferStatus changes a transfer's status. Completing a
// pending transfer moves its stock: each item leaves the source branch and
// arrives at the destination in the same step.
type UpdateStockTransferStatus struct {
	CompanyID  string                `json:"companyId"`
	TransferID string                `json:"transferId"`
	Status     domain.TransferStatus `json:"status"`
}

func (UpdateStockTransferStatus) Kind() Kind { return KindUpdateStockTransferStatus }

func (a UpdateStockTransferStatus) apply(r *Reducer, s *State) *State {
	by := currentUserID(s)
	return s.editTenant(a.CompanyID, func(cd *CompanyData) bool {
		t, ok := find(cd.StockTransfers, a.TransferID)
		if !ok || t.Status == a.Status || t.Status == domain.TransferCompleted {
			return false
		}
		if a.Status == domain.TransferCompleted {
			var moves []domain.StockMovement
			for _, it := range t.Items {
				if !moveStock(cd, it.ProductID, t.SourceBranchID, it.Quantity.Neg(), nil) {
					continue
				}
				moveStock(cd, it.ProductID, t.DestinationBranchID, it.Quantity, nil)
				moves = append(moves,
					r.movement(it.ProductID, domain.MovementTransferOut, it.Quantity.Neg(), t.SourceBranchID, by, t.ID, ""),
					r.movement(it.ProductID, domain.MovementTransferIn, it.Quantity, t.DestinationBranchID, by, t.ID, ""),
				)
			}
			cd.StockMovements = appended(cd.StockMovements, moves...)
		}
		cd.StockTransfers, _ = updated(cd.StockTransfers, t.ID, func(x *domain.StockTransfer) { x.Status = a.Status })
		return true
	})
}

// WastageItem names the product or ingredient written off.
type WastageItem struct {
	ID string `json:"id"`
}

// RecordWastage writes stock off at cost. The branch defaults to the current
// user's branch, then the company's first branch, then "main".
type RecordWastage struct {
	CompanyID string          `json:"companyId"`
	Item      WastageItem     `json:"item"`
	Quantity  decimal.Decimal `json:"quantity"`
	Reason    string          `json:"reason"`
	BranchID  string          `json:"branchId,omitempty"`
}

func (RecordWastage) Kind() Kind { return KindRecordWastage }

func (a RecordWastage) apply(r *Reducer, s *State) *State {
	if !a.Quantity.IsPositive() {
		return s
	}
	branch := a.BranchID
	if branch == "" {
		branch = currentBranchID(s)
	}
	if branch == "" {
		if c, ok := s.Company(a.CompanyID); ok && len(c.Branches) > 0 {
			branch = c.Branches[0].ID
		}
	}
	if branch == "" {
		branch = fallbackBranch
	}

	var ref string
	var cost decimal.Decimal
	next := s.editTenant(a.CompanyID, func(cd *CompanyData) bool {
		_, unitCost, ok := stockLevel(cd, a.Item.ID, branch)
		if !ok {
			return false
		}
		ref = r.newID("wst")
		cost = unitCost.Mul(a.Quantity)
		moveStock(cd, a.Item.ID, branch, a.Quantity.Neg(), nil)
		cd.StockMovements = appended(cd.StockMovements,
			r.movement(a.Item.ID, domain.MovementWastage, a.Quantity.Neg(), branch, currentUserID(s), ref, a.Reason))
		return true
	})
	if next == s || !cost.IsPositive() {
		return next
	}
	entry := journal("je_"+ref, a.CompanyID, r.now(), "Wastage - "+a.Reason, branch, ref,
		transfer(domain.AccountWastage, domain.AccountInventory, cost))
	return settle(s, next, a.CompanyID, entry)
}

// AddStockTakingSession opens a physical count. Items without a system
// stock figure take the current stock at the session's branch.
type AddStockTakingSession struct {
	CompanyID string                    `json:"companyId"`
	Session   domain.StockTakingSession `json:"session"`
}

func (AddStockTakingSession) Kind() Kind { return KindAddStockTakingSession }

func (a AddStockTakingSession) apply(r *Reducer, s *State) *State {
	sess := a.Session
	if sess.BranchID == "" {
		return s
	}
	sess.ID = r.idOr(sess.ID, "sts")
	sess.StartDate = r.timeOr(sess.StartDate)
	sess.Status = domain.StockTakeInProgress
	if sess.PerformedBy == "" {
		sess.PerformedBy = currentUserID(s)
	}
	return s.editTenant(a.CompanyID, func(cd *CompanyData) bool {
		items := make([]domain.StockTakeItem, len(sess.Items))
		for i, it := range sess.Items {
			if it.SystemStock.IsZero() {
				it.SystemStock, _, _ = stockLevel(cd, it.ProductID, sess.BranchID)
			}
			items[i] = it
		}
		sess.Items = items
		cd.StockTakingSessions = appended(cd.StockTakingSessions, sess)
		return true
	})
}

// UpdateStockTakingItem records the counted quantity of one item.
type UpdateStockTakingItem struct {
	CompanyID string          `json:"companyId"`
	SessionID string          `json:"sessionId"`
	ProductID string          `json:"productId"`
	Quantity  decimal.Decimal `json:"quantity"`
}

func (UpdateStockTakingItem) Kind() Kind { return KindUpdateStockTakingItem }

func (a UpdateStockTakingItem) apply(_ *Reducer, s *State) *State {
	return s.editTenant(a.CompanyID, func(cd *CompanyData) bool {
		sess, ok := find(cd.StockTakingSessions, a.SessionID)
		if !ok || sess.Status != domain.StockTakeInProgress {
			return false
		}
		items := make([]domain.StockTakeItem, len(sess.Items))
		copy(items, sess.Items)
		hit := false
		for i := range items {
			if items[i].ProductID == a.ProductID {
				q := a.Quantity
				items[i].CountedStock = &q
				hit = true
			}
		}
		if !hit {
			return false
		}
		cd.StockTakingSessions, _ = updated(cd.StockTakingSessions, sess.ID, func(x *domain.StockTakingSession) { x.Items = items })
		return true
	})
}

// ApproveStockReconciliation sets every counted item's stock to its count.
// The delta is taken against current stock, not the figure captured when the
// session opened, so sales made during the count are not reversed. The net
// value of the deltas at cost is posted between inventory and shrinkage.
type ApproveStockReconciliation struct {
	CompanyID string `json:"companyId"`
	SessionID string `json:"sessionId"`
}

func (ApproveStockReconciliation) Kind() Kind { return KindApproveStockReconciliation }

func (a ApproveStockReconciliation) apply(r *Reducer, s *State) *State {
	by := currentUserID(s)
	var variance decimal.Decimal
	var branch string
	next := s.editTenant(a.CompanyID, func(cd *CompanyData) bool {
		sess, ok := find(cd.StockTakingSessions, a.SessionID)
		if !ok || sess.Status == domain.StockTakeCompleted {
			return false
		}
		branch = sess.BranchID
		var moves []domain.StockMovement
		for _, it := range sess.Items {
			if it.CountedStock == nil {
				continue
			}
			current, cost, found := stockLevel(cd, it.ProductID, branch)
			if !found {
				continue
			}
			delta := it.CountedStock.Sub(current)
			if delta.IsZero() {
				continue
			}
			moveStock(cd, it.ProductID, branch, delta, nil)
			moves = append(moves, r.movement(it.ProductID, domain.MovementAdjustment, delta, branch, by, sess.ID, reconciliationNote))
			variance = variance.Add(delta.Mul(cost))
		}
		cd.StockMovements = appended(cd.StockMovements, moves...)
		cd.StockTakingSessions, _ = updated(cd.StockTakingSessions, sess.ID, func(x *domain.StockTakingSession) {
			x.Status = domain.StockTakeCompleted
		})
		return true
	})
	if next == s || variance.IsZero() {
		return next
	}
	lines := transfer(domain.AccountInventory, domain.AccountWastage, variance)
	if variance.IsNegative() {
		lines = transfer(domain.AccountWastage, domain.AccountInventory, variance.Neg())
	}
	entry := journal("je_adj_"+a.SessionID, a.CompanyID, r.now(), reconciliationNote, branch, a.SessionID, lines)
	return settle(s, next, a.CompanyID, entry)
}
