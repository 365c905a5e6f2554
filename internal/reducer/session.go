package reducer

import (
	"maps"

	"github.com/shopspring/decimal"

	"github.com/roach88/procount/internal/domain"
)

const (
	KindUserLogin             Kind = "USER_LOGIN"
	KindUserLogout            Kind = "USER_LOGOUT"
	KindCustomerLogin         Kind = "CUSTOMER_LOGIN"
	KindCustomerRegister      Kind = "CUSTOMER_REGISTER"
	KindCustomerLogout        Kind = "CUSTOMER_LOGOUT"
	KindUpdateUserLanguage    Kind = "UPDATE_USER_LANGUAGE"
	KindUpdateUserTheme       Kind = "UPDATE_USER_THEME"
	KindUpdateUserPreferences Kind = "UPDATE_USER_PREFERENCES"
	KindUpdateCustomerProfile Kind = "UPDATE_CUSTOMER_PROFILE"
	KindLogLoginHistory       Kind = "LOG_LOGIN_HISTORY"
)

// UserLogin makes User the current operator.
type UserLogin struct {
	User domain.User `json:"user"`
}

func (UserLogin) Kind() Kind { return KindUserLogin }

func (a UserLogin) apply(_ *Reducer, s *State) *State {
	u := a.User
	next := *s
	next.CurrentUser = &u
	return &next
}

type UserLogout struct{}

func (UserLogout) Kind() Kind { return KindUserLogout }

func (UserLogout) apply(_ *Reducer, s *State) *State {
	if s.CurrentUser == nil {
		return s
	}
	next := *s
	next.CurrentUser = nil
	return &next
}

// CustomerLogin makes Customer the current storefront customer of CompanyID.
type CustomerLogin struct {
	CompanyID string          `json:"companyId"`
	Customer  domain.Customer `json:"customer"`
}

func (CustomerLogin) Kind() Kind { return KindCustomerLogin }

func (a CustomerLogin) apply(_ *Reducer, s *State) *State {
	c := a.Customer
	c.CompanyID = a.CompanyID
	next := *s
	next.CurrentCustomer = &c
	return &next
}

// CustomerRegister creates a customer and logs them in.
type CustomerRegister struct {
	CompanyID string          `json:"companyId"`
	Customer  domain.Customer `json:"customerData"`
}

func (CustomerRegister) Kind() Kind { return KindCustomerRegister }

func (a CustomerRegister) apply(r *Reducer, s *State) *State {
	c := a.Customer
	c.ID = r.idOr(c.ID, "cust")
	c.CompanyID = a.CompanyID
	c.LoyaltyPoints = decimal.Zero
	c.PurchaseHistory = []domain.PurchaseRecord{}

	next := s.editTenant(a.CompanyID, func(cd *CompanyData) bool {
		cd.Customers = appended(cd.Customers, c)
		return true
	})
	if next == s {
		return s
	}
	out := *next
	out.CurrentCustomer = &c
	return &out
}

type CustomerLogout struct{}

func (CustomerLogout) Kind() Kind { return KindCustomerLogout }

func (CustomerLogout) apply(_ *Reducer, s *State) *State {
	if s.CurrentCustomer == nil {
		return s
	}
	next := *s
	next.CurrentCustomer = nil
	return &next
}

type UpdateUserLanguage struct {
	UserID   string `json:"userId"`
	Language string `json:"language"`
}

func (UpdateUserLanguage) Kind() Kind { return KindUpdateUserLanguage }

func (a UpdateUserLanguage) apply(_ *Reducer, s *State) *State {
	return s.editUser(a.UserID, func(u *domain.User) { u.Language = a.Language })
}

type UpdateUserTheme struct {
	UserID string `json:"userId"`
	Theme  string `json:"theme"`
}

func (UpdateUserTheme) Kind() Kind { return KindUpdateUserTheme }

func (a UpdateUserTheme) apply(_ *Reducer, s *State) *State {
	return s.editUser(a.UserID, func(u *domain.User) { u.Theme = a.Theme })
}

// UpdateUserPreferences merges Preferences into the user's preferences for
// one company type.
type UpdateUserPreferences struct {
	UserID      string             `json:"userId"`
	CompanyType domain.CompanyType `json:"companyType"`
	Preferences map[string]string  `json:"preferences"`
}

func (UpdateUserPreferences) Kind() Kind { return KindUpdateUserPreferences }

func (a UpdateUserPreferences) apply(_ *Reducer, s *State) *State {
	return s.editUser(a.UserID, func(u *domain.User) {
		prefs := make(map[string]map[string]string, len(u.Preferences)+1)
		maps.Copy(prefs, u.Preferences)
		merged := maps.Clone(u.Preferences[string(a.CompanyType)])
		if merged == nil {
			merged = map[string]string{}
		}
		maps.Copy(merged, a.Preferences)
		prefs[string(a.CompanyType)] = merged
		u.Preferences = prefs
	})
}

// CustomerUpdates lists the profile fields a customer may change. Nil fields
// are left as they are.
type CustomerUpdates struct {
	Name         *string `json:"name,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	Email        *string `json:"email,omitempty"`
	Address      *string `json:"address,omitempty"`
	PasswordHash *string `json:"passwordHash,omitempty"`
}

func (u CustomerUpdates) applyTo(c *domain.Customer) {
	if u.Name != nil {
		c.Name = *u.Name
	}
	if u.Phone != nil {
		c.Phone = *u.Phone
	}
	if u.Email != nil {
		c.Email = *u.Email
	}
	if u.Address != nil {
		c.Address = *u.Address
	}
	if u.PasswordHash != nil && *u.PasswordHash != "" {
		c.PasswordHash = *u.PasswordHash
	}
}

type UpdateCustomerProfile struct {
	CompanyID  string          `json:"companyId"`
	CustomerID string          `json:"customerId"`
	Updates    CustomerUpdates `json:"updates"`
}

func (UpdateCustomerProfile) Kind() Kind { return KindUpdateCustomerProfile }

func (a UpdateCustomerProfile) apply(_ *Reducer, s *State) *State {
	next := s.editTenant(a.CompanyID, func(cd *CompanyData) bool {
		customers, ok := updated(cd.Customers, a.CustomerID, a.Updates.applyTo)
		cd.Customers = customers
		return ok
	})
	if next == s {
		return s
	}
	if s.CurrentCustomer != nil && s.CurrentCustomer.ID == a.CustomerID {
		c := *s.CurrentCustomer
		a.Updates.applyTo(&c)
		out := *next
		out.CurrentCustomer = &c
		return &out
	}
	return next
}

// LogLoginHistory records a sign-in in the tenant's login history and
// audit log.
type LogLoginHistory struct {
	Entry domain.LoginEntry `json:"loginEntry"`
}

func (LogLoginHistory) Kind() Kind { return KindLogLoginHistory }

func (a LogLoginHistory) apply(r *Reducer, s *State) *State {
	e := a.Entry
	if e.CompanyID == "" {
		return s
	}
	e.ID = r.idOr(e.ID, "login")
	e.Timestamp = r.timeOr(e.Timestamp)
	audit := domain.AuditEntry{
		ID:         r.newID("audit"),
		UserID:     e.UserID,
		UserName:   e.UserName,
		ActionType: "USER_LOGIN",
		DetailsKey: "auditLog.USER_LOGIN",
		DetailsParams: map[string]string{
			"ip":       e.IPAddress,
			"location": e.City + ", " + e.Country,
		},
		Timestamp: e.Timestamp,
	}
	return s.editTenant(e.CompanyID, func(cd *CompanyData) bool {
		cd.LoginHistory = appended(cd.LoginHistory, e)
		cd.AuditLog = appended(cd.AuditLog, audit)
		return true
	})
}
