package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MenuItem is a dish sold by a restaurant.
type MenuItem struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
	Active   bool            `json:"active"`
}

func (m MenuItem) EntityID() string { return m.ID }

// Ingredient is a restaurant stock item tracked per branch.
type Ingredient struct {
	ID                string                     `json:"id"`
	Name              string                     `json:"name"`
	Unit              string                     `json:"unit"`
	Cost              decimal.Decimal            `json:"cost"`
	StockByBranch     map[string]decimal.Decimal `json:"stockByBranch"`
	LowStockThreshold decimal.Decimal            `json:"lowStockThreshold"`
}

func (i Ingredient) EntityID() string { return i.ID }

// EcommerceProduct is an online catalog entry.
type EcommerceProduct struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Stock decimal.Decimal `json:"stock"`
}

func (p EcommerceProduct) EntityID() string { return p.ID }

// EcommerceOrderItem is one line of an online order.
type EcommerceOrderItem struct {
	ProductID string          `json:"productId"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// EcommerceOrder is an online order.
type EcommerceOrder struct {
	ID          string               `json:"id"`
	CustomerID  string               `json:"customerId,omitempty"`
	Items       []EcommerceOrderItem `json:"items"`
	TotalAmount decimal.Decimal      `json:"totalAmount"`
	Status      string               `json:"status"`
	CreatedAt   time.Time            `json:"createdAt"`
}

func (o EcommerceOrder) EntityID() string { return o.ID }

// AutomotiveProduct is a vehicle or part.
type AutomotiveProduct struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Kind  string          `json:"kind"`
	Price decimal.Decimal `json:"price"`
}

func (p AutomotiveProduct) EntityID() string { return p.ID }

// ServiceWorkOrder is a workshop job.
type ServiceWorkOrder struct {
	ID          string          `json:"id"`
	CustomerID  string          `json:"customerId,omitempty"`
	VehicleInfo string          `json:"vehicleInfo"`
	Description string          `json:"description"`
	Cost        decimal.Decimal `json:"cost"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
}

func (w ServiceWorkOrder) EntityID() string { return w.ID }

// PropertyListing is a real-estate listing handled by an agent.
type PropertyListing struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	Price          decimal.Decimal `json:"price"`
	Status         string          `json:"status"`
	AgentID        string          `json:"agentId,omitempty"`
	CommissionPaid bool            `json:"commissionPaid"`
}

func (l PropertyListing) EntityID() string { return l.ID }

// Blueprint is a manufacturing bill of materials.
type Blueprint struct {
	ID         string                     `json:"id"`
	Name       string                     `json:"name"`
	Components map[string]decimal.Decimal `json:"components"`
}

func (b Blueprint) EntityID() string { return b.ID }

// TourPackage is a bookable tour.
type TourPackage struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Price          decimal.Decimal `json:"price"`
	SeatsAvailable int             `json:"seatsAvailable"`
}

func (p TourPackage) EntityID() string { return p.ID }

// TourBooking reserves seats on a package.
type TourBooking struct {
	ID         string          `json:"id"`
	PackageID  string          `json:"packageId"`
	CustomerID string          `json:"customerId,omitempty"`
	Seats      int             `json:"seats"`
	Total      decimal.Decimal `json:"total"`
	CreatedAt  time.Time       `json:"createdAt"`
}

func (b TourBooking) EntityID() string { return b.ID }

// PersonalTransaction is an income or expense line of a personal-finance tenant.
type PersonalTransaction struct {
	ID       string          `json:"id"`
	Kind     string          `json:"kind"`
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Date     time.Time       `json:"date"`
	Note     string          `json:"note,omitempty"`
}

func (t PersonalTransaction) EntityID() string { return t.ID }

// PersonalBudget caps spending for a category.
type PersonalBudget struct {
	ID       string          `json:"id"`
	Category string          `json:"category"`
	Limit    decimal.Decimal `json:"limit"`
}

func (b PersonalBudget) EntityID() string { return b.ID }

// TransferStatus is the state of an inter-branch stock transfer.
type TransferStatus string

const (
	TransferPending   TransferStatus = "pending"
	TransferCompleted TransferStatus = "completed"
	TransferCancelled TransferStatus = "cancelled"
)

// TransferItem is one product moved by a transfer.
type TransferItem struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// StockTransfer moves stock between two branches of the same company.
type StockTransfer struct {
	ID                  string         `json:"id"`
	Date                time.Time      `json:"date"`
	SourceBranchID      string         `json:"sourceBranchId"`
	DestinationBranchID string         `json:"destinationBranchId"`
	Items               []TransferItem `json:"items"`
	Status              TransferStatus `json:"status"`
	Notes               string         `json:"notes,omitempty"`
}

func (t StockTransfer) EntityID() string { return t.ID }

// StockTakeStatus is the state of a stock-taking session.
type StockTakeStatus string

const (
	StockTakeInProgress StockTakeStatus = "in_progress"
	StockTakeCompleted  StockTakeStatus = "completed"
)

// StockTakeItem is a counted product within a session.
type StockTakeItem struct {
	ProductID    string           `json:"productId"`
	ProductName  string           `json:"productName,omitempty"`
	SystemStock  decimal.Decimal  `json:"systemStock"`
	CountedStock *decimal.Decimal `json:"countedStock,omitempty"`
}

// StockTakingSession is a physical count of a branch.
type StockTakingSession struct {
	ID          string          `json:"id"`
	BranchID    string          `json:"branchId"`
	StartDate   time.Time       `json:"startDate"`
	Status      StockTakeStatus `json:"status"`
	Items       []StockTakeItem `json:"items"`
	Notes       string          `json:"notes,omitempty"`
	PerformedBy string          `json:"performedBy"`
}

func (s StockTakingSession) EntityID() string { return s.ID }
