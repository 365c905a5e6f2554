package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SyncStatus tracks whether a locally written record has reached the remote authority.
type SyncStatus string

const (
	SyncStatusSynced  SyncStatus = "synced"
	SyncStatusPending SyncStatus = "pending"
	SyncStatusFailed  SyncStatus = "failed"
)

// UnitType is how a product is sold.
type UnitType string

const (
	UnitPiece  UnitType = "piece"
	UnitWeight UnitType = "weight"
)

// PaymentSource selects the funding account for a payment.
// Anything other than PaymentCash is settled through the bank account.
type PaymentSource string

const (
	PaymentCash PaymentSource = "cash"
	PaymentBank PaymentSource = "bank"
	PaymentCard PaymentSource = "card"
)

// IsCash reports whether the payment moves money through a cash drawer.
func (p PaymentSource) IsCash() bool {
	return p == PaymentCash
}

// Product is a stock-keeping item of a supermarket or retail tenant.
type Product struct {
	ID                 string                     `json:"id"`
	CompanyID          string                     `json:"companyId"`
	Name               string                     `json:"name"`
	Barcode            string                     `json:"barcode,omitempty"`
	SKU                string                     `json:"sku,omitempty"`
	Category           string                     `json:"category"`
	Price              decimal.Decimal            `json:"price"`
	Cost               decimal.Decimal            `json:"cost"`
	StockByBranch      map[string]decimal.Decimal `json:"stockByBranch"`
	LowStockThreshold  decimal.Decimal            `json:"lowStockThreshold"`
	UnitType           UnitType                   `json:"unitType"`
	TaxRate            decimal.Decimal            `json:"taxRate"`
	SyncStatus         SyncStatus                 `json:"syncStatus"`
	CreatedAt          time.Time                  `json:"createdAt"`
	PriceLastUpdatedAt time.Time                  `json:"priceLastUpdatedAt"`
}

// EntityID implements Identified.
func (p Product) EntityID() string { return p.ID }

// Stock returns the on-hand quantity at a branch (zero when never stocked).
func (p Product) Stock(branchID string) decimal.Decimal {
	return p.StockByBranch[branchID]
}

// SaleItem is one line of a sale or return.
type SaleItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name,omitempty"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	UnitCost  decimal.Decimal `json:"unitCost"`
}

// LineTotal is quantity times unit price.
func (i SaleItem) LineTotal() decimal.Decimal {
	return i.Quantity.Mul(i.UnitPrice)
}

// LineCost is quantity times unit cost.
func (i SaleItem) LineCost() decimal.Decimal {
	return i.Quantity.Mul(i.UnitCost)
}

// Sale is a completed point-of-sale transaction.
type Sale struct {
	ID                  string          `json:"id"`
	CompanyID           string          `json:"companyId"`
	BranchID            string          `json:"branchId"`
	Items               []SaleItem      `json:"items"`
	TotalAmount         decimal.Decimal `json:"totalAmount"`
	TaxAmount           decimal.Decimal `json:"taxAmount"`
	DiscountAmount      decimal.Decimal `json:"discountAmount"`
	PaymentMethod       PaymentSource   `json:"paymentMethod"`
	CustomerID          string          `json:"customerId,omitempty"`
	EmployeeID          string          `json:"employeeId,omitempty"`
	CashDrawerSessionID string          `json:"cashDrawerSessionId,omitempty"`
	Timestamp           time.Time       `json:"timestamp"`
	SyncStatus          SyncStatus      `json:"syncStatus"`
}

func (s Sale) EntityID() string { return s.ID }

// PurchaseRecord is one entry of a customer's purchase history.
type PurchaseRecord struct {
	SaleID string          `json:"saleId"`
	Date   time.Time       `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}

// Customer is an end customer of a tenant.
type Customer struct {
	ID              string           `json:"id"`
	CompanyID       string           `json:"companyId"`
	Name            string           `json:"name"`
	Phone           string           `json:"phone"`
	Email           string           `json:"email,omitempty"`
	PasswordHash    string           `json:"passwordHash,omitempty"`
	Address         string           `json:"address,omitempty"`
	LoyaltyPoints   decimal.Decimal  `json:"loyaltyPoints"`
	PurchaseHistory []PurchaseRecord `json:"purchaseHistory"`
}

func (c Customer) EntityID() string { return c.ID }

// User is an operator account; employees are users attached to a company.
type User struct {
	ID             string                       `json:"id"`
	Name           string                       `json:"name"`
	Email          string                       `json:"email"`
	Role           string                       `json:"role"`
	RoleID         string                       `json:"roleId,omitempty"`
	CompanyID      string                       `json:"companyId"`
	BranchID       string                       `json:"branchId,omitempty"`
	Phone          string                       `json:"phone,omitempty"`
	BaseSalary     decimal.Decimal              `json:"baseSalary"`
	CommissionRate decimal.Decimal              `json:"commissionRate"`
	Language       string                       `json:"language,omitempty"`
	Theme          string                       `json:"theme,omitempty"`
	Preferences    map[string]map[string]string `json:"preferences,omitempty"`
}

func (u User) EntityID() string { return u.ID }

// JournalLine is one side of a double-entry posting.
type JournalLine struct {
	AccountID string          `json:"accountId"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
}

// JournalEntry is a dated set of lines whose debits equal its credits.
type JournalEntry struct {
	ID          string        `json:"id"`
	CompanyID   string        `json:"companyId"`
	Date        time.Time     `json:"date"`
	Description string        `json:"description"`
	Lines       []JournalLine `json:"lines"`
	BranchID    string        `json:"branchId,omitempty"`
	ReferenceID string        `json:"referenceId,omitempty"`
}

func (e JournalEntry) EntityID() string { return e.ID }

// Totals returns the summed debits and credits of the entry.
func (e JournalEntry) Totals() (debit, credit decimal.Decimal) {
	for _, l := range e.Lines {
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
	}
	return debit, credit
}

// Balanced reports whether the entry has lines and equal debit and credit sums.
func (e JournalEntry) Balanced() bool {
	if len(e.Lines) == 0 {
		return false
	}
	for _, l := range e.Lines {
		if l.Debit.IsNegative() || l.Credit.IsNegative() {
			return false
		}
	}
	d, c := e.Totals()
	return d.Equal(c)
}

// Attendance is a daily presence record for an employee.
type Attendance struct {
	ID           string `json:"id"`
	CompanyID    string `json:"companyId"`
	EmployeeID   string `json:"employeeId"`
	Date         string `json:"date"`
	Status       string `json:"status"`
	CheckInTime  string `json:"checkInTime,omitempty"`
	CheckOutTime string `json:"checkOutTime,omitempty"`
}

func (a Attendance) EntityID() string { return a.ID }

// LeaveStatus is the approval state of a leave request.
type LeaveStatus string

const (
	LeavePending  LeaveStatus = "pending"
	LeaveApproved LeaveStatus = "approved"
	LeaveRejected LeaveStatus = "rejected"
)

// LeaveRequest is an employee's request for time off.
type LeaveRequest struct {
	ID         string      `json:"id"`
	CompanyID  string      `json:"companyId"`
	EmployeeID string      `json:"employeeId"`
	StartDate  string      `json:"startDate"`
	EndDate    string      `json:"endDate"`
	Reason     string      `json:"reason"`
	Status     LeaveStatus `json:"status"`
}

func (l LeaveRequest) EntityID() string { return l.ID }

// EmployeeDocument references a file attached to an employee.
type EmployeeDocument struct {
	ID         string `json:"id"`
	CompanyID  string `json:"companyId"`
	EmployeeID string `json:"employeeId"`
	Name       string `json:"name"`
	FileURL    string `json:"fileUrl"`
}

func (d EmployeeDocument) EntityID() string { return d.ID }

// Role is a named permission set.
type Role struct {
	ID          string   `json:"id"`
	CompanyID   string   `json:"companyId"`
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
}

func (r Role) EntityID() string { return r.ID }

// MovementType classifies a stock movement.
type MovementType string

const (
	MovementSale        MovementType = "sale"
	MovementPurchase    MovementType = "purchase"
	MovementReturn      MovementType = "return"
	MovementAdjustment  MovementType = "adjustment"
	MovementTransferOut MovementType = "transfer_out"
	MovementTransferIn  MovementType = "transfer_in"
	MovementWastage     MovementType = "wastage"
)

// StockMovement is an immutable audit entry for a signed stock delta at a branch.
type StockMovement struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"productId"`
	Type        MovementType    `json:"type"`
	Quantity    decimal.Decimal `json:"quantity"`
	Date        time.Time       `json:"date"`
	BranchID    string          `json:"branchId"`
	PerformedBy string          `json:"performedBy,omitempty"`
	ReferenceID string          `json:"referenceId,omitempty"`
	Notes       string          `json:"notes,omitempty"`
}

func (m StockMovement) EntityID() string { return m.ID }

// Identified is implemented by every record kept in an id-keyed collection.
type Identified interface {
	EntityID() string
}
