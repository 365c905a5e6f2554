package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DrawerStatus is the lifecycle state of a cash drawer session.
type DrawerStatus string

const (
	DrawerOpen   DrawerStatus = "open"
	DrawerClosed DrawerStatus = "closed"
)

// CashDrawerSession accumulates cash movements for one till between open and close.
type CashDrawerSession struct {
	ID              string          `json:"id"`
	UserID          string          `json:"userId"`
	BranchID        string          `json:"branchId"`
	OpeningBalance  decimal.Decimal `json:"openingBalance"`
	OpenedAt        time.Time       `json:"openedAt"`
	ClosedAt        *time.Time      `json:"closedAt,omitempty"`
	ClosingBalance  decimal.Decimal `json:"closingBalance"`
	ActualBalance   decimal.Decimal `json:"actualBalance"`
	ExpectedBalance decimal.Decimal `json:"expectedBalance"`
	Difference      decimal.Decimal `json:"difference"`
	CashSales       decimal.Decimal `json:"cashSales"`
	CashPayouts     decimal.Decimal `json:"cashPayouts"`
	Status          DrawerStatus    `json:"status"`
}

func (s CashDrawerSession) EntityID() string { return s.ID }

// Expected is the cash that should be in the drawer right now.
func (s CashDrawerSession) Expected() decimal.Decimal {
	return s.OpeningBalance.Add(s.CashSales).Sub(s.CashPayouts)
}

// PayrollStatus is the payment state of a payroll record.
type PayrollStatus string

const (
	PayrollPending PayrollStatus = "Pending"
	PayrollPaid    PayrollStatus = "Paid"
)

// PayrollRecord is one employee's pay for one period.
type PayrollRecord struct {
	ID                  string          `json:"id"`
	EmployeeID          string          `json:"employeeId"`
	EmployeeName        string          `json:"employeeName"`
	Period              string          `json:"period"`
	BaseSalary          decimal.Decimal `json:"baseSalary"`
	Commissions         decimal.Decimal `json:"commissions"`
	Deductions          decimal.Decimal `json:"deductions"`
	NetPay              decimal.Decimal `json:"netPay"`
	Status              PayrollStatus   `json:"status"`
	PaymentDate         *time.Time      `json:"paymentDate,omitempty"`
	PaymentSource       PaymentSource   `json:"paymentSource,omitempty"`
	CashDrawerSessionID string          `json:"cashDrawerSessionId,omitempty"`
	BranchID            string          `json:"branchId,omitempty"`
}

func (r PayrollRecord) EntityID() string { return r.ID }

// InvoiceStatus is the payment state of a supplier invoice.
type InvoiceStatus string

const (
	InvoicePaid   InvoiceStatus = "paid"
	InvoiceUnpaid InvoiceStatus = "unpaid"
)

// PurchaseInvoice is a bill from a supplier.
type PurchaseInvoice struct {
	ID                  string          `json:"id"`
	CompanyID           string          `json:"companyId"`
	SupplierID          string          `json:"supplierId,omitempty"`
	SupplierName        string          `json:"supplierName"`
	Date                time.Time       `json:"date"`
	Description         string          `json:"description"`
	TotalAmount         decimal.Decimal `json:"totalAmount"`
	PaymentStatus       InvoiceStatus   `json:"paymentStatus"`
	PaymentDate         *time.Time      `json:"paymentDate,omitempty"`
	PaymentMethod       PaymentSource   `json:"paymentMethod,omitempty"`
	CashDrawerSessionID string          `json:"cashDrawerSessionId,omitempty"`
	BranchID            string          `json:"branchId,omitempty"`
}

func (i PurchaseInvoice) EntityID() string { return i.ID }

// OrderStatus is the state of a purchase order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

// PurchaseOrderItem is one line of a purchase order.
type PurchaseOrderItem struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unitCost"`
}

// PurchaseOrder requests stock from a supplier; completing it receives the stock.
type PurchaseOrder struct {
	ID          string              `json:"id"`
	SupplierID  string              `json:"supplierId,omitempty"`
	Date        time.Time           `json:"date"`
	Items       []PurchaseOrderItem `json:"items"`
	TotalAmount decimal.Decimal     `json:"totalAmount"`
	Status      OrderStatus         `json:"status"`
	BranchID    string              `json:"branchId,omitempty"`
	RequesterID string              `json:"requesterId,omitempty"`
}

func (o PurchaseOrder) EntityID() string { return o.ID }

// Expense is a general operating expense paid from cash or bank.
type Expense struct {
	ID                  string          `json:"id"`
	Description         string          `json:"description"`
	Amount              decimal.Decimal `json:"amount"`
	ExpenseAccountID    string          `json:"expenseAccountId"`
	PaymentSource       PaymentSource   `json:"paymentSource"`
	CashDrawerSessionID string          `json:"cashDrawerSessionId,omitempty"`
	BranchID            string          `json:"branchId,omitempty"`
	Date                time.Time       `json:"date"`
}

func (e Expense) EntityID() string { return e.ID }

// ReferringCompany sends customers in exchange for a commission.
type ReferringCompany struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	CommissionRate decimal.Decimal `json:"commissionRate"`
}

func (r ReferringCompany) EntityID() string { return r.ID }

// CommissionPayment is a commission paid to a referrer or agent.
type CommissionPayment struct {
	ID                  string          `json:"id"`
	PayeeID             string          `json:"payeeId"`
	ReferenceID         string          `json:"referenceId,omitempty"`
	Amount              decimal.Decimal `json:"amount"`
	PaymentSource       PaymentSource   `json:"paymentSource"`
	CashDrawerSessionID string          `json:"cashDrawerSessionId,omitempty"`
	Date                time.Time       `json:"date"`
}

func (c CommissionPayment) EntityID() string { return c.ID }

// Return reverses part or all of a sale.
type Return struct {
	ID                  string          `json:"id"`
	SaleID              string          `json:"saleId"`
	BranchID            string          `json:"branchId"`
	Items               []SaleItem      `json:"items"`
	RefundAmount        decimal.Decimal `json:"refundAmount"`
	RefundMethod        PaymentSource   `json:"refundMethod"`
	CashDrawerSessionID string          `json:"cashDrawerSessionId,omitempty"`
	PerformedBy         string          `json:"performedBy,omitempty"`
	Date                time.Time       `json:"date"`
}

func (r Return) EntityID() string { return r.ID }

// Promotion is a time-boxed discount.
type Promotion struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	Active          bool            `json:"active"`
	StartDate       string          `json:"startDate,omitempty"`
	EndDate         string          `json:"endDate,omitempty"`
}

func (p Promotion) EntityID() string { return p.ID }
