package reducer

import (
	"github.com/shopspring/decimal"

	"github.com/roach88/procount/internal/domain"
)

// State is the whole application aggregate.
//
// State values are treated as immutable: Reduce never writes through a
// pointer it received. A reduction copies the State header, replaces only the
// maps and slices on the path to the change, and shares everything else with
// the previous State.
type State struct {
	Companies          []domain.Company                  `json:"companies"`
	Users              []domain.User                     `json:"users"`
	CompanyData        map[string]*CompanyData           `json:"companyData"`
	AccountingData     map[string]*AccountingData        `json:"accountingData"`
	PayrollRecords     map[string][]domain.PayrollRecord `json:"payrollRecords"`
	Currencies         []domain.Currency                 `json:"currencies"`
	Notifications      []domain.Notification             `json:"notifications"`
	SystemIntegrations domain.SystemIntegrations         `json:"systemIntegrations"`
	CurrentUser        *domain.User                      `json:"currentUser,omitempty"`
	CurrentCustomer    *domain.Customer                  `json:"currentCustomer,omitempty"`
}

// NewState returns an empty aggregate.
func NewState() *State {
	return &State{
		Companies:      []domain.Company{},
		Users:          []domain.User{},
		CompanyData:    map[string]*CompanyData{},
		AccountingData: map[string]*AccountingData{},
		PayrollRecords: map[string][]domain.PayrollRecord{},
		Currencies:     []domain.Currency{},
		Notifications:  []domain.Notification{},
	}
}

// Company returns the tenant with id.
func (s *State) Company(id string) (domain.Company, bool) {
	return find(s.Companies, id)
}

// CompanyData is the per-tenant operational data.
//
// Collections shared by every vertical live at the top level. Vertical data
// hangs off a pointer that is only set for the tenant's own company type, so
// an action aimed at another vertical finds nil and leaves the state alone.
type CompanyData struct {
	Customers           []domain.Customer           `json:"customers"`
	Roles               []domain.Role               `json:"roles"`
	Promotions          []domain.Promotion          `json:"promotions"`
	Attendance          []domain.Attendance         `json:"attendanceRecords"`
	LeaveRequests       []domain.LeaveRequest       `json:"leaveRequests"`
	Documents           []domain.EmployeeDocument   `json:"employeeDocuments"`
	PurchaseInvoices    []domain.PurchaseInvoice    `json:"purchaseInvoices"`
	PurchaseOrders      []domain.PurchaseOrder      `json:"purchaseOrders"`
	Expenses            []domain.Expense            `json:"expenses"`
	ReferringCompanies  []domain.ReferringCompany   `json:"referringCompanies"`
	CompanyCommissions  []domain.CommissionPayment  `json:"paidCompanyCommissions"`
	CashDrawerSessions  []domain.CashDrawerSession  `json:"cashDrawerSessions"`
	StockMovements      []domain.StockMovement      `json:"stockMovements"`
	StockTransfers      []domain.StockTransfer      `json:"stockTransfers"`
	StockTakingSessions []domain.StockTakingSession `json:"stockTakingSessions"`
	LoginHistory        []domain.LoginEntry         `json:"loginHistory"`
	AuditLog            []domain.AuditEntry         `json:"auditLog"`
	VisitorLog          []domain.Visitor            `json:"visitorLog"`

	Restaurant    *RestaurantData    `json:"restaurant,omitempty"`
	Supermarket   *SupermarketData   `json:"supermarket,omitempty"`
	Ecommerce     *EcommerceData     `json:"ecommerce,omitempty"`
	Automotive    *AutomotiveData    `json:"automotive,omitempty"`
	RealEstate    *RealEstateData    `json:"realEstate,omitempty"`
	Manufacturing *ManufacturingData `json:"manufacturing,omitempty"`
	Tourism       *TourismData       `json:"tourism,omitempty"`
	Personal      *PersonalData      `json:"personal,omitempty"`
}

// RestaurantData backs restaurant and hotel tenants.
type RestaurantData struct {
	MenuItems   []domain.MenuItem   `json:"menuItems"`
	Ingredients []domain.Ingredient `json:"ingredients"`
}

// SupermarketSettings are POS options of a supermarket tenant.
type SupermarketSettings struct {
	// LoyaltyPointsPerUnit is awarded per whole currency unit spent. Zero
	// disables loyalty points.
	LoyaltyPointsPerUnit decimal.Decimal `json:"loyaltyPointsPerUnit"`
	ReceiptFooter        string          `json:"receiptFooter,omitempty"`
}

// SupermarketData backs supermarket and commission-retail tenants.
type SupermarketData struct {
	Products []domain.Product    `json:"supermarketProducts"`
	Sales    []domain.Sale       `json:"supermarketSalesHistory"`
	Returns  []domain.Return     `json:"returns"`
	Settings SupermarketSettings `json:"settings"`
}

type EcommerceData struct {
	Products []domain.EcommerceProduct `json:"ecommerceProducts"`
	Orders   []domain.EcommerceOrder   `json:"ecommerceOrders"`
}

type AutomotiveData struct {
	Products   []domain.AutomotiveProduct `json:"automotiveProducts"`
	WorkOrders []domain.ServiceWorkOrder  `json:"serviceWorkOrders"`
}

type RealEstateData struct {
	Listings         []domain.PropertyListing   `json:"propertyListings"`
	AgentCommissions []domain.CommissionPayment `json:"paidAgentCommissions"`
}

type ManufacturingData struct {
	Blueprints []domain.Blueprint `json:"blueprints"`
}

type TourismData struct {
	Packages []domain.TourPackage `json:"tourPackages"`
	Bookings []domain.TourBooking `json:"tourBookings"`
}

type PersonalData struct {
	Transactions []domain.PersonalTransaction `json:"personalTransactions"`
	Budgets      []domain.PersonalBudget      `json:"personalBudgets"`
}

// newCompanyData creates the empty data set for a company type.
func newCompanyData(t domain.CompanyType) *CompanyData {
	cd := &CompanyData{}
	switch t {
	case domain.CompanyRestaurant, domain.CompanyHotel:
		cd.Restaurant = &RestaurantData{}
	case domain.CompanySupermarket, domain.CompanyCommissionRetail:
		cd.Supermarket = &SupermarketData{}
	case domain.CompanyEcommerce:
		cd.Ecommerce = &EcommerceData{}
	case domain.CompanyAutomotive:
		cd.Automotive = &AutomotiveData{}
	case domain.CompanyRealEstate:
		cd.RealEstate = &RealEstateData{}
	case domain.CompanyManufacturing:
		cd.Manufacturing = &ManufacturingData{}
	case domain.CompanyTourism:
		cd.Tourism = &TourismData{}
	case domain.CompanyPersonal:
		cd.Personal = &PersonalData{}
	}
	return cd
}

// AccountingData is a tenant's chart of accounts and journal.
type AccountingData struct {
	Accounts       []domain.Account      `json:"chartOfAccounts"`
	JournalEntries []domain.JournalEntry `json:"journalEntries"`
}

func newAccountingData() *AccountingData {
	return &AccountingData{Accounts: domain.DefaultChartOfAccounts()}
}
