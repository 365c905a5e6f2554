package reducer

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/roach88/procount/internal/domain"
)

const (
	KindAddCompany                Kind = "ADD_COMPANY"
	KindUpdateCompany             Kind = "UPDATE_COMPANY"
	KindDeleteCompany             Kind = "DELETE_COMPANY"
	KindAddBranch                 Kind = "ADD_BRANCH"
	KindUpdateBranch              Kind = "UPDATE_BRANCH"
	KindDeleteBranch              Kind = "DELETE_BRANCH"
	KindLogVisitor                Kind = "LOG_VISITOR"
	KindAddCurrency               Kind = "ADD_CURRENCY"
	KindDeleteCurrency            Kind = "DELETE_CURRENCY"
	KindUpdateSystemIntegrations  Kind = "UPDATE_SYSTEM_INTEGRATIONS"
	KindUpdateSupermarketSettings Kind = "UPDATE_SUPERMARKET_SETTINGS"
)

// AddCompany creates a tenant, its admin user and the empty data set for its
// company type.
type AddCompany struct {
	Company   domain.Company `json:"company"`
	AdminUser domain.User    `json:"adminUser"`
}

func (AddCompany) Kind() Kind { return KindAddCompany }

func (a AddCompany) apply(r *Reducer, s *State) *State {
	c := a.Company
	c.ID = r.idOr(c.ID, "comp")
	if _, exists := s.Company(c.ID); exists {
		return s
	}
	admin := a.AdminUser
	admin.ID = r.idOr(admin.ID, "user")
	admin.CompanyID = c.ID
	c.AdminUserID = admin.ID
	c.CreatedAt = r.timeOr(c.CreatedAt)
	if c.Branches == nil {
		c.Branches = []domain.Branch{}
	}

	next := *s
	next.Companies = appended(s.Companies, c)
	next.Users = appended(s.Users, admin)
	out := next.withCompanyData(c.ID, newCompanyData(c.Type))
	if c.Type != domain.CompanyPersonal {
		out = out.withAccounting(c.ID, newAccountingData())
	}
	return out
}

// CompanyUpdates lists the company fields that may change after creation.
// Nil fields are left as they are.
type CompanyUpdates struct {
	Name                    *string                      `json:"name,omitempty"`
	Slug                    *string                      `json:"slug,omitempty"`
	Currency                *string                      `json:"currency,omitempty"`
	ExchangeRates           map[string]decimal.Decimal   `json:"exchangeRates,omitempty"`
	NotificationSettings    *domain.NotificationSettings `json:"notificationSettings,omitempty"`
	AllowSystemSMSGateway   *bool                        `json:"allowSystemSmsGateway,omitempty"`
	AllowSystemEmailGateway *bool                        `json:"allowSystemEmailGateway,omitempty"`
}

type UpdateCompany struct {
	CompanyID string         `json:"companyId"`
	Updates   CompanyUpdates `json:"updates"`
}

func (UpdateCompany) Kind() Kind { return KindUpdateCompany }

func (a UpdateCompany) apply(_ *Reducer, s *State) *State {
	u := a.Updates
	return s.editCompany(a.CompanyID, func(c *domain.Company) bool {
		if u.Name != nil {
			c.Name = *u.Name
		}
		if u.Slug != nil {
			c.Slug = *u.Slug
		}
		if u.Currency != nil {
			c.Currency = *u.Currency
		}
		if u.ExchangeRates != nil {
			c.ExchangeRates = u.ExchangeRates
		}
		if u.NotificationSettings != nil {
			c.NotificationSettings = *u.NotificationSettings
		}
		if u.AllowSystemSMSGateway != nil {
			c.AllowSystemSMSGateway = *u.AllowSystemSMSGateway
		}
		if u.AllowSystemEmailGateway != nil {
			c.AllowSystemEmailGateway = *u.AllowSystemEmailGateway
		}
		return true
	})
}

// DeleteCompany removes a tenant, its users and all of its data. The wire
// payload is the bare company id.
type DeleteCompany struct {
	CompanyID string
}

func (DeleteCompany) Kind() Kind { return KindDeleteCompany }

func (a *DeleteCompany) UnmarshalJSON(b []byte) error {
	return json.Unmarshal(b, &a.CompanyID)
}

func (a DeleteCompany) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.CompanyID)
}

func (a DeleteCompany) apply(_ *Reducer, s *State) *State {
	companies, ok := removed(s.Companies, a.CompanyID)
	if !ok {
		return s
	}
	next := *s
	next.Companies = companies
	users := make([]domain.User, 0, len(s.Users))
	for _, u := range s.Users {
		if u.CompanyID != a.CompanyID {
			users = append(users, u)
		}
	}
	next.Users = users

	next.CompanyData = make(map[string]*CompanyData, len(s.CompanyData))
	for k, v := range s.CompanyData {
		if k != a.CompanyID {
			next.CompanyData[k] = v
		}
	}
	next.AccountingData = make(map[string]*AccountingData, len(s.AccountingData))
	for k, v := range s.AccountingData {
		if k != a.CompanyID {
			next.AccountingData[k] = v
		}
	}
	next.PayrollRecords = make(map[string][]domain.PayrollRecord, len(s.PayrollRecords))
	for k, v := range s.PayrollRecords {
		if k != a.CompanyID {
			next.PayrollRecords[k] = v
		}
	}
	return &next
}

type AddBranch struct {
	CompanyID string        `json:"companyId"`
	Branch    domain.Branch `json:"branch"`
}

func (AddBranch) Kind() Kind { return KindAddBranch }

func (a AddBranch) apply(r *Reducer, s *State) *State {
	b := a.Branch
	b.ID = r.idOr(b.ID, "b")
	return s.editCompany(a.CompanyID, func(c *domain.Company) bool {
		if indexOf(c.Branches, b.ID) >= 0 {
			return false
		}
		c.Branches = appended(c.Branches, b)
		return true
	})
}

type UpdateBranch struct {
	CompanyID string        `json:"companyId"`
	Branch    domain.Branch `json:"branch"`
}

func (UpdateBranch) Kind() Kind { return KindUpdateBranch }

func (a UpdateBranch) apply(_ *Reducer, s *State) *State {
	return s.editCompany(a.CompanyID, func(c *domain.Company) bool {
		branches, ok := replaced(c.Branches, a.Branch)
		c.Branches = branches
		return ok
	})
}

type DeleteBranch struct {
	CompanyID string `json:"companyId"`
	BranchID  string `json:"branchId"`
}

func (DeleteBranch) Kind() Kind { return KindDeleteBranch }

func (a DeleteBranch) apply(_ *Reducer, s *State) *State {
	return s.editCompany(a.CompanyID, func(c *domain.Company) bool {
		branches, ok := removed(c.Branches, a.BranchID)
		c.Branches = branches
		return ok
	})
}

type LogVisitor struct {
	CompanyID string         `json:"companyId"`
	Entry     domain.Visitor `json:"entry"`
}

func (LogVisitor) Kind() Kind { return KindLogVisitor }

func (a LogVisitor) apply(r *Reducer, s *State) *State {
	v := a.Entry
	v.ID = r.idOr(v.ID, "visit")
	v.Timestamp = r.timeOr(v.Timestamp)
	return s.editTenant(a.CompanyID, func(cd *CompanyData) bool {
		cd.VisitorLog = appended(cd.VisitorLog, v)
		return true
	})
}

// AddCurrency adds a display currency. The wire payload is the currency itself.
type AddCurrency struct {
	Currency domain.Currency
}

func (AddCurrency) Kind() Kind { return KindAddCurrency }

func (a *AddCurrency) UnmarshalJSON(b []byte) error {
	return json.Unmarshal(b, &a.Currency)
}

func (a AddCurrency) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Currency)
}

func (a AddCurrency) apply(_ *Reducer, s *State) *State {
	if a.Currency.Code == "" || indexOf(s.Currencies, a.Currency.Code) >= 0 {
		return s
	}
	next := *s
	next.Currencies = appended(s.Currencies, a.Currency)
	return &next
}

// DeleteCurrency removes a currency. The wire payload is the bare code.
type DeleteCurrency struct {
	Code string
}

func (DeleteCurrency) Kind() Kind { return KindDeleteCurrency }

func (a *DeleteCurrency) UnmarshalJSON(b []byte) error {
	return json.Unmarshal(b, &a.Code)
}

func (a DeleteCurrency) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Code)
}

func (a DeleteCurrency) apply(_ *Reducer, s *State) *State {
	currencies, ok := removed(s.Currencies, a.Code)
	if !ok {
		return s
	}
	next := *s
	next.Currencies = currencies
	return &next
}

// UpdateSystemIntegrations replaces the platform gateways present in the
// payload; absent gateways are kept.
type UpdateSystemIntegrations struct {
	Integrations domain.SystemIntegrations
}

func (UpdateSystemIntegrations) Kind() Kind { return KindUpdateSystemIntegrations }

func (a *UpdateSystemIntegrations) UnmarshalJSON(b []byte) error {
	return json.Unmarshal(b, &a.Integrations)
}

func (a UpdateSystemIntegrations) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Integrations)
}

func (a UpdateSystemIntegrations) apply(_ *Reducer, s *State) *State {
	if a.Integrations.SMSConfig == nil && a.Integrations.EmailConfig == nil {
		return s
	}
	next := *s
	if a.Integrations.SMSConfig != nil {
		cfg := *a.Integrations.SMSConfig
		next.SystemIntegrations.SMSConfig = &cfg
	}
	if a.Integrations.EmailConfig != nil {
		cfg := *a.Integrations.EmailConfig
		next.SystemIntegrations.EmailConfig = &cfg
	}
	return &next
}

// UpdateSupermarketSettings replaces the POS settings of a supermarket or
// commission-retail tenant.
type UpdateSupermarketSettings struct {
	CompanyID string              `json:"companyId"`
	Settings  SupermarketSettings `json:"settings"`
}

func (UpdateSupermarketSettings) Kind() Kind { return KindUpdateSupermarketSettings }

func (a UpdateSupermarketSettings) apply(_ *Reducer, s *State) *State {
	return s.editSupermarket(a.CompanyID, func(_ *CompanyData, sm *SupermarketData) bool {
		sm.Settings = a.Settings
		return true
	})
}
