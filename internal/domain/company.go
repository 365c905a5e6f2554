package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CompanyType selects the business vertical of a tenant.
type CompanyType string

const (
	CompanyRestaurant       CompanyType = "restaurant"
	CompanySupermarket      CompanyType = "supermarket"
	CompanyCommissionRetail CompanyType = "commission_retail"
	CompanyHotel            CompanyType = "hotel"
	CompanyAutomotive       CompanyType = "automotive"
	CompanyRealEstate       CompanyType = "real_estate"
	CompanyManufacturing    CompanyType = "manufacturing"
	CompanyTourism          CompanyType = "tourism"
	CompanyEcommerce        CompanyType = "ecommerce"
	CompanyPersonal         CompanyType = "personal"
)

// Branch is a physical location of a company.
type Branch struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

func (b Branch) EntityID() string { return b.ID }

// GatewayConfig configures an SMS or email provider.
type GatewayConfig struct {
	Provider   string `json:"provider,omitempty"`
	Enabled    bool   `json:"enabled"`
	AccountSID string `json:"accountSid,omitempty"`
	AuthToken  string `json:"authToken,omitempty"`
	SenderID   string `json:"senderId,omitempty"`
	Host       string `json:"host,omitempty"`
	Port       int    `json:"port,omitempty"`
	Username   string `json:"username,omitempty"`
	Password   string `json:"password,omitempty"`
	FromEmail  string `json:"fromEmail,omitempty"`
	APIKey     string `json:"apiKey,omitempty"`
}

// NotificationSettings holds a company's own gateways.
type NotificationSettings struct {
	SMS   *GatewayConfig `json:"sms,omitempty"`
	Email *GatewayConfig `json:"email,omitempty"`
}

// Company is a tenant.
type Company struct {
	ID                      string                     `json:"id"`
	Name                    string                     `json:"name"`
	Slug                    string                     `json:"slug,omitempty"`
	Type                    CompanyType                `json:"type"`
	AdminUserID             string                     `json:"adminUserId,omitempty"`
	Currency                string                     `json:"currency"`
	ExchangeRates           map[string]decimal.Decimal `json:"exchangeRates,omitempty"`
	CreatedAt               time.Time                  `json:"createdAt"`
	Branches                []Branch                   `json:"branches"`
	NotificationSettings    NotificationSettings       `json:"notificationSettings"`
	AllowSystemSMSGateway   bool                       `json:"allowSystemSmsGateway"`
	AllowSystemEmailGateway bool                       `json:"allowSystemEmailGateway"`
}

func (c Company) EntityID() string { return c.ID }

// SystemIntegrations are the platform-wide gateways tenants may delegate to.
type SystemIntegrations struct {
	SMSConfig   *GatewayConfig `json:"smsConfig,omitempty"`
	EmailConfig *GatewayConfig `json:"emailConfig,omitempty"`
}

// Currency is a selectable display currency.
type Currency struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

func (c Currency) EntityID() string { return c.Code }

// AccountType classifies a ledger account.
type AccountType string

const (
	AccountAsset     AccountType = "asset"
	AccountLiability AccountType = "liability"
	AccountEquity    AccountType = "equity"
	AccountRevenue   AccountType = "revenue"
	AccountExpense   AccountType = "expense"
)

// Account is an entry of a tenant's chart of accounts.
type Account struct {
	ID   string      `json:"id"`
	Name string      `json:"name"`
	Type AccountType `json:"type"`
}

func (a Account) EntityID() string { return a.ID }

// Account ids referenced by derived journal entries.
const (
	AccountCash       = "1001"
	AccountBank       = "1002"
	AccountInventory  = "1003"
	AccountPayable    = "2001"
	AccountSales      = "4001"
	AccountCOGS       = "5001"
	AccountRent       = "5002"
	AccountSalaries   = "5003"
	AccountUtilities  = "5004"
	AccountCommission = "5005"
	AccountWastage    = "5008"
)

// FundingAccount returns the asset account a payment is drawn from.
func FundingAccount(src PaymentSource) string {
	if src.IsCash() {
		return AccountCash
	}
	return AccountBank
}

// DefaultChartOfAccounts returns the chart every new tenant starts with.
func DefaultChartOfAccounts() []Account {
	return []Account{
		{ID: AccountCash, Name: "Cash", Type: AccountAsset},
		{ID: AccountBank, Name: "Bank", Type: AccountAsset},
		{ID: AccountInventory, Name: "Inventory", Type: AccountAsset},
		{ID: AccountPayable, Name: "Accounts Payable", Type: AccountLiability},
		{ID: AccountSales, Name: "Sales Revenue", Type: AccountRevenue},
		{ID: AccountCOGS, Name: "Cost of Goods Sold", Type: AccountExpense},
		{ID: AccountRent, Name: "Rent Expense", Type: AccountExpense},
		{ID: AccountSalaries, Name: "Salaries Expense", Type: AccountExpense},
		{ID: AccountUtilities, Name: "Utilities Expense", Type: AccountExpense},
		{ID: AccountCommission, Name: "Commission Expense", Type: AccountExpense},
		{ID: AccountWastage, Name: "Inventory Shrinkage", Type: AccountExpense},
	}
}

// NotificationKind is the severity of an in-app notification.
type NotificationKind string

const (
	NotifySuccess NotificationKind = "success"
	NotifyError   NotificationKind = "error"
	NotifyInfo    NotificationKind = "info"
)

// Notification is a transient in-app message.
type Notification struct {
	ID      string            `json:"id"`
	Message string            `json:"message"`
	Type    NotificationKind  `json:"type"`
	Params  map[string]string `json:"params,omitempty"`
}

func (n Notification) EntityID() string { return n.ID }

// LoginEntry records a sign-in.
type LoginEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	CompanyID string    `json:"companyId,omitempty"`
	IPAddress string    `json:"ipAddress,omitempty"`
	City      string    `json:"city,omitempty"`
	Country   string    `json:"country,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func (l LoginEntry) EntityID() string { return l.ID }

// AuditEntry is a tenant audit-log line.
type AuditEntry struct {
	ID            string            `json:"id"`
	UserID        string            `json:"userId"`
	UserName      string            `json:"userName"`
	ActionType    string            `json:"actionType"`
	DetailsKey    string            `json:"detailsKey"`
	DetailsParams map[string]string `json:"detailsParams,omitempty"`
	Timestamp     time.Time         `json:"timestamp"`
}

func (a AuditEntry) EntityID() string { return a.ID }

// Visitor is a hit on a tenant's public page.
type Visitor struct {
	ID        string    `json:"id"`
	Page      string    `json:"page,omitempty"`
	Referrer  string    `json:"referrer,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func (v Visitor) EntityID() string { return v.ID }
