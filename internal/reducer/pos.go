package reducer

import (
	"maps"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/roach88/procount/internal/domain"
)

const (
	KindAddSupermarketProduct    Kind = "ADD_SUPERMARKET_PRODUCT"
	KindUpdateSupermarketProduct Kind = "UPDATE_SUPERMARKET_PRODUCT"
	KindDeleteSupermarketProduct Kind = "DELETE_SUPERMARKET_PRODUCT"
	KindCompleteSupermarketSale  Kind = "COMPLETE_SUPERMARKET_SALE"
	KindProcessReturn            Kind = "PROCESS_RETURN"
	KindAddCustomer              Kind = "ADD_CUSTOMER"
	KindUpdateCustomer           Kind = "UPDATE_CUSTOMER"
	KindOpenCashDrawer           Kind = "OPEN_CASH_DRAWER"
	KindCloseCashDrawer          Kind = "CLOSE_CASH_DRAWER"
)

type AddSupermarketProduct struct {
	CompanyID string         `json:"companyId"`
	Product   domain.Product `json:"product"`
}

func (AddSupermarketProduct) Kind() Kind { return KindAddSupermarketProduct }

func (a AddSupermarketProduct) apply(r *Reducer, s *State) *State {
	p := a.Product
	p.ID = r.idOr(p.ID, "sp")
	p.CompanyID = a.CompanyID
	p.CreatedAt = r.timeOr(p.CreatedAt)
	p.PriceLastUpdatedAt = p.CreatedAt
	p.SyncStatus = domain.SyncStatusPending
	if p.StockByBranch == nil {
		p.StockByBranch = map[string]decimal.Decimal{}
	}
	return s.editSupermarket(a.CompanyID, func(_ *CompanyData, sm *SupermarketData) bool {
		if indexOf(sm.Products, p.ID) >= 0 {
			return false
		}
		sm.Products = appended(sm.Products, p)
		return true
	})
}

// UpdateSupermarketProduct replaces a product. A changed price stamps
// PriceLastUpdatedAt, and every branch whose stock differs from the stored
// product gets an adjustment movement for the difference.
type UpdateSupermarketProduct struct {
	CompanyID string         `json:"companyId"`
	Product   domain.Product `json:"product"`
}

func (UpdateSupermarketProduct) Kind() Kind { return KindUpdateSupermarketProduct }

func (a UpdateSupermarketProduct) apply(r *Reducer, s *State) *State {
	by := currentUserID(s)
	return s.editSupermarket(a.CompanyID, func(cd *CompanyData, sm *SupermarketData) bool {
		cur, ok := find(sm.Products, a.Product.ID)
		if !ok {
			return false
		}
		p := a.Product
		p.CompanyID = a.CompanyID
		p.CreatedAt = cur.CreatedAt
		p.PriceLastUpdatedAt = cur.PriceLastUpdatedAt
		if !p.Price.Equal(cur.Price) {
			p.PriceLastUpdatedAt = r.now()
		}
		p.SyncStatus = domain.SyncStatusPending
		if p.StockByBranch == nil {
			p.StockByBranch = cur.StockByBranch
		}

		var moves []domain.StockMovement
		for _, branch := range stockBranches(cur.StockByBranch, p.StockByBranch) {
			delta := p.Stock(branch).Sub(cur.Stock(branch))
			if !delta.IsZero() {
				moves = append(moves, r.movement(p.ID, domain.MovementAdjustment, delta, branch, by, p.ID, "Product edit"))
			}
		}
		sm.Products, _ = replaced(sm.Products, p)
		cd.StockMovements = appended(cd.StockMovements, moves...)
		return true
	})
}

// stockBranches returns the union of branch keys in sorted order.
func stockBranches(a, b map[string]decimal.Decimal) []string {
	keys := maps.Clone(a)
	if keys == nil {
		keys = map[string]decimal.Decimal{}
	}
	maps.Copy(keys, b)
	return slices.Sorted(maps.Keys(keys))
}

type DeleteSupermarketProduct struct {
	CompanyID string `json:"companyId"`
	ProductID string `json:"productId"`
}

func (DeleteSupermarketProduct) Kind() Kind { return KindDeleteSupermarketProduct }

func (a DeleteSupermarketProduct) apply(_ *Reducer, s *State) *State {
	return s.editSupermarket(a.CompanyID, func(_ *CompanyData, sm *SupermarketData) bool {
		products, ok := removed(sm.Products, a.ProductID)
		sm.Products = products
		return ok
	})
}

// CompleteSupermarketSale records a checkout. In one step it decrements
// stock at the sale's branch with a sale movement per item, posts revenue and
// cost of goods, adds cash takings to the drawer and credits the customer's
// loyalty points. A sale naming an unknown product is ignored.
type CompleteSupermarketSale struct {
	CompanyID string      `json:"companyId"`
	Sale      domain.Sale `json:"sale"`
}

func (CompleteSupermarketSale) Kind() Kind { return KindCompleteSupermarketSale }

func (a CompleteSupermarketSale) apply(r *Reducer, s *State) *State {
	sale := a.Sale
	if len(sale.Items) == 0 {
		return s
	}
	sale.ID = r.idOr(sale.ID, "sale")
	sale.CompanyID = a.CompanyID
	sale.Timestamp = r.timeOr(sale.Timestamp)
	sale.SyncStatus = domain.SyncStatusPending
	if sale.BranchID == "" {
		sale.BranchID = currentBranchID(s)
	}
	if sale.EmployeeID == "" {
		sale.EmployeeID = currentUserID(s)
	}

	var cost decimal.Decimal
	next := s.editSupermarket(a.CompanyID, func(cd *CompanyData, sm *SupermarketData) bool {
		items := make([]domain.SaleItem, len(sale.Items))
		var subtotal decimal.Decimal
		for i, it := range sale.Items {
			p, ok := find(sm.Products, it.ProductID)
			if !ok {
				return false
			}
			if it.UnitCost.IsZero() {
				it.UnitCost = p.Cost
			}
			if it.Name == "" {
				it.Name = p.Name
			}
			subtotal = subtotal.Add(it.LineTotal())
			cost = cost.Add(it.LineCost())
			items[i] = it
		}
		sale.Items = items
		if sale.TotalAmount.IsZero() {
			sale.TotalAmount = subtotal.Add(sale.TaxAmount).Sub(sale.DiscountAmount)
		}
		if sale.TotalAmount.IsNegative() {
			return false
		}

		products := sm.Products
		moves := make([]domain.StockMovement, 0, len(items))
		for _, it := range items {
			products, _ = updated(products, it.ProductID, func(p *domain.Product) {
				p.StockByBranch = adjustStock(p.StockByBranch, sale.BranchID, it.Quantity.Neg())
			})
			moves = append(moves, r.movement(it.ProductID, domain.MovementSale, it.Quantity.Neg(), sale.BranchID, sale.EmployeeID, sale.ID, ""))
		}
		sm.Products = products
		sm.Sales = appended(sm.Sales, sale)
		cd.StockMovements = appended(cd.StockMovements, moves...)

		if sale.PaymentMethod.IsCash() {
			addCashSale(cd, sale.CashDrawerSessionID, sale.TotalAmount)
		}
		if sale.CustomerID != "" {
			points := sale.TotalAmount.Floor().Mul(sm.Settings.LoyaltyPointsPerUnit)
			cd.Customers, _ = updated(cd.Customers, sale.CustomerID, func(c *domain.Customer) {
				c.LoyaltyPoints = c.LoyaltyPoints.Add(points)
				c.PurchaseHistory = appended(c.PurchaseHistory, domain.PurchaseRecord{
					SaleID: sale.ID,
					Date:   sale.Timestamp,
					Amount: sale.TotalAmount,
				})
			})
		}
		return true
	})
	if next == s {
		return s
	}

	lines := [][]domain.JournalLine{
		transfer(domain.FundingAccount(sale.PaymentMethod), domain.AccountSales, sale.TotalAmount),
	}
	if cost.IsPositive() {
		lines = append(lines, transfer(domain.AccountCOGS, domain.AccountInventory, cost))
	}
	entry := journal("je_sale_"+sale.ID, a.CompanyID, sale.Timestamp, "Sale "+sale.ID, sale.BranchID, sale.ID, lines...)
	return settle(s, next, a.CompanyID, entry)
}

// ProcessReturn takes goods back against an earlier sale. Stock is restored
// at the return's branch, the refund reverses revenue and the returned
// goods' cost goes back into inventory.
//
// Only goods the sale sold and earlier returns have not taken back are
// accepted: quantities are capped at what is left, and items that were not
// on the sale or whose product no longer exists are dropped. A return with
// nothing left to accept is ignored. Unit price and cost default to the
// sale's.
type ProcessReturn struct {
	CompanyID string        `json:"companyId"`
	Return    domain.Return `json:"returnData"`
}

func (ProcessReturn) Kind() Kind { return KindProcessReturn }

func (a ProcessReturn) apply(r *Reducer, s *State) *State {
	ret := a.Return
	if len(ret.Items) == 0 {
		return s
	}
	ret.ID = r.idOr(ret.ID, "ret")
	ret.Date = r.timeOr(ret.Date)
	if ret.PerformedBy == "" {
		ret.PerformedBy = currentUserID(s)
	}

	var cost decimal.Decimal
	next := s.editSupermarket(a.CompanyID, func(cd *CompanyData, sm *SupermarketData) bool {
		sale, ok := find(sm.Sales, ret.SaleID)
		if !ok {
			return false
		}
		if ret.BranchID == "" {
			ret.BranchID = sale.BranchID
		}
		if ret.RefundMethod == "" {
			ret.RefundMethod = sale.PaymentMethod
		}
		items := returnable(sm, sale, ret.Items)
		if len(items) == 0 {
			return false
		}
		ret.Items = items

		var refund decimal.Decimal
		for _, it := range items {
			cost = cost.Add(it.LineCost())
			refund = refund.Add(it.LineTotal())
		}
		if ret.RefundAmount.IsZero() {
			ret.RefundAmount = refund
		}
		if ret.RefundAmount.IsNegative() {
			return false
		}

		products := sm.Products
		moves := make([]domain.StockMovement, 0, len(items))
		for _, it := range items {
			products, _ = updated(products, it.ProductID, func(p *domain.Product) {
				p.StockByBranch = adjustStock(p.StockByBranch, ret.BranchID, it.Quantity)
			})
			moves = append(moves, r.movement(it.ProductID, domain.MovementReturn, it.Quantity, ret.BranchID, ret.PerformedBy, ret.ID, ""))
		}
		sm.Products = products
		sm.Returns = appended(sm.Returns, ret)
		cd.StockMovements = appended(cd.StockMovements, moves...)
		if ret.RefundMethod.IsCash() {
			addPayout(cd, ret.CashDrawerSessionID, ret.RefundAmount)
		}
		return true
	})
	if next == s {
		return s
	}

	lines := [][]domain.JournalLine{
		transfer(domain.AccountSales, domain.FundingAccount(ret.RefundMethod), ret.RefundAmount),
	}
	if cost.IsPositive() {
		lines = append(lines, transfer(domain.AccountInventory, domain.AccountCOGS, cost))
	}
	entry := journal("je_ret_"+ret.ID, a.CompanyID, ret.Date, "Return for sale "+ret.SaleID, ret.BranchID, ret.ID, lines...)
	return settle(s, next, a.CompanyID, entry)
}

// returnable trims requested return items to what sale still has to give
// back. Quantities already returned against the sale are subtracted first.
func returnable(sm *SupermarketData, sale domain.Sale, requested []domain.SaleItem) []domain.SaleItem {
	left := make(map[string]decimal.Decimal)
	lines := make(map[string]domain.SaleItem)
	for _, it := range sale.Items {
		left[it.ProductID] = left[it.ProductID].Add(it.Quantity)
		if _, ok := lines[it.ProductID]; !ok {
			lines[it.ProductID] = it
		}
	}
	for _, prev := range sm.Returns {
		if prev.SaleID != sale.ID {
			continue
		}
		for _, it := range prev.Items {
			left[it.ProductID] = left[it.ProductID].Sub(it.Quantity)
		}
	}

	var out []domain.SaleItem
	for _, it := range requested {
		sold, ok := lines[it.ProductID]
		if !ok || !it.Quantity.IsPositive() || indexOf(sm.Products, it.ProductID) < 0 {
			continue
		}
		q := decimal.Min(it.Quantity, left[it.ProductID])
		if !q.IsPositive() {
			continue
		}
		left[it.ProductID] = left[it.ProductID].Sub(q)
		it.Quantity = q
		if it.UnitPrice.IsZero() {
			it.UnitPrice = sold.UnitPrice
		}
		if it.UnitCost.IsZero() {
			it.UnitCost = sold.UnitCost
		}
		if it.Name == "" {
			it.Name = sold.Name
		}
		out = append(out, it)
	}
	return out
}

type AddCustomer struct {
	CompanyID string          `json:"companyId"`
	Customer  domain.Customer `json:"customer"`
}

func (AddCustomer) Kind() Kind { return KindAddCustomer }

func (a AddCustomer) apply(r *Reducer, s *State) *State {
	c := a.Customer
	c.ID = r.idOr(c.ID, "cust")
	c.CompanyID = a.CompanyID
	c.LoyaltyPoints = decimal.Zero
	c.PurchaseHistory = []domain.PurchaseRecord{}
	return s.editTenant(a.CompanyID, func(cd *CompanyData) bool {
		if indexOf(cd.Customers, c.ID) >= 0 {
			return false
		}
		cd.Customers = appended(cd.Customers, c)
		return true
	})
}

// UpdateCustomer replaces a customer. An empty password hash keeps the
// stored one.
type UpdateCustomer struct {
	CompanyID string          `json:"companyId"`
	Customer  domain.Customer `json:"customer"`
}

func (UpdateCustomer) Kind() Kind { return KindUpdateCustomer }

func (a UpdateCustomer) apply(_ *Reducer, s *State) *State {
	return s.editTenant(a.CompanyID, func(cd *CompanyData) bool {
		cur, ok := find(cd.Customers, a.Customer.ID)
		if !ok {
			return false
		}
		c := a.Customer
		c.CompanyID = a.CompanyID
		if c.PasswordHash == "" {
			c.PasswordHash = cur.PasswordHash
		}
		if c.PurchaseHistory == nil {
			c.PurchaseHistory = cur.PurchaseHistory
		}
		cd.Customers, _ = replaced(cd.Customers, c)
		return true
	})
}

type OpenCashDrawer struct {
	CompanyID string                   `json:"companyId"`
	Session   domain.CashDrawerSession `json:"session"`
}

func (OpenCashDrawer) Kind() Kind { return KindOpenCashDrawer }

func (a OpenCashDrawer) apply(r *Reducer, s *State) *State {
	d := a.Session
	d.ID = r.idOr(d.ID, "cds")
	d.OpenedAt = r.timeOr(d.OpenedAt)
	d.Status = domain.DrawerOpen
	d.CashSales = decimal.Zero
	d.CashPayouts = decimal.Zero
	d.ClosedAt = nil
	if d.UserID == "" {
		d.UserID = currentUserID(s)
	}
	return s.editTenant(a.CompanyID, func(cd *CompanyData) bool {
		if indexOf(cd.CashDrawerSessions, d.ID) >= 0 {
			return false
		}
		cd.CashDrawerSessions = appended(cd.CashDrawerSessions, d)
		return true
	})
}

// CloseCashDrawer counts the drawer. The difference is actual minus
// expected, so a shortage is negative.
type CloseCashDrawer struct {
	CompanyID     string          `json:"companyId"`
	SessionID     string          `json:"sessionId"`
	ActualBalance decimal.Decimal `json:"actualBalance"`
}

func (CloseCashDrawer) Kind() Kind { return KindCloseCashDrawer }

func (a CloseCashDrawer) apply(r *Reducer, s *State) *State {
	closedAt := r.now()
	return s.editTenant(a.CompanyID, func(cd *CompanyData) bool {
		d, ok := find(cd.CashDrawerSessions, a.SessionID)
		if !ok || d.Status != domain.DrawerOpen {
			return false
		}
		cd.CashDrawerSessions, _ = updated(cd.CashDrawerSessions, d.ID, func(x *domain.CashDrawerSession) {
			x.ExpectedBalance = x.Expected()
			x.ActualBalance = a.ActualBalance
			x.ClosingBalance = a.ActualBalance
			x.Difference = a.ActualBalance.Sub(x.ExpectedBalance)
			x.ClosedAt = &closedAt
			x.Status = domain.DrawerClosed
		})
		return true
	})
}
