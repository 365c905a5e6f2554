package reducer

import (
	"maps"

	"github.com/shopspring/decimal"

	"github.com/roach88/procount/internal/domain"
)

// Slice helpers. Each returns a fresh backing array and never writes to its
// input, so the previous State keeps seeing its own data.

func find[T domain.Identified](xs []T, id string) (T, bool) {
	if i := indexOf(xs, id); i >= 0 {
		return xs[i], true
	}
	var zero T
	return zero, false
}

func indexOf[T domain.Identified](xs []T, id string) int {
	for i, x := range xs {
		if x.EntityID() == id {
			return i
		}
	}
	return -1
}

func appended[T any](xs []T, vs ...T) []T {
	out := make([]T, 0, len(xs)+len(vs))
	out = append(out, xs...)
	return append(out, vs...)
}

// replaced swaps the element with v's id for v. ok is false when no element matches.
func replaced[T domain.Identified](xs []T, v T) (out []T, ok bool) {
	i := indexOf(xs, v.EntityID())
	if i < 0 {
		return xs, false
	}
	out = make([]T, len(xs))
	copy(out, xs)
	out[i] = v
	return out, true
}

// removed drops the element with id. ok is false when no element matches.
func removed[T domain.Identified](xs []T, id string) (out []T, ok bool) {
	i := indexOf(xs, id)
	if i < 0 {
		return xs, false
	}
	out = make([]T, 0, len(xs)-1)
	out = append(out, xs[:i]...)
	return append(out, xs[i+1:]...), true
}

// updated applies fn to a copy of the element with id.
func updated[T domain.Identified](xs []T, id string, fn func(*T)) (out []T, ok bool) {
	i := indexOf(xs, id)
	if i < 0 {
		return xs, false
	}
	out = make([]T, len(xs))
	copy(out, xs)
	fn(&out[i])
	return out, true
}

// adjustStock returns a copy of stock with delta added at branch.
func adjustStock(stock map[string]decimal.Decimal, branch string, delta decimal.Decimal) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(stock)+1)
	maps.Copy(out, stock)
	out[branch] = stock[branch].Add(delta)
	return out
}

// State path helpers. Each copies the State header and the one map on the
// path to the change; every other branch is shared.

func (s *State) withCompanyData(companyID string, cd *CompanyData) *State {
	next := *s
	next.CompanyData = maps.Clone(s.CompanyData)
	if next.CompanyData == nil {
		next.CompanyData = map[string]*CompanyData{}
	}
	next.CompanyData[companyID] = cd
	return &next
}

func (s *State) withAccounting(companyID string, ad *AccountingData) *State {
	next := *s
	next.AccountingData = maps.Clone(s.AccountingData)
	if next.AccountingData == nil {
		next.AccountingData = map[string]*AccountingData{}
	}
	next.AccountingData[companyID] = ad
	return &next
}

func (s *State) withPayroll(companyID string, records []domain.PayrollRecord) *State {
	next := *s
	next.PayrollRecords = maps.Clone(s.PayrollRecords)
	if next.PayrollRecords == nil {
		next.PayrollRecords = map[string][]domain.PayrollRecord{}
	}
	next.PayrollRecords[companyID] = records
	return &next
}

// editTenant copies the tenant's data, lets fn change the copy and installs
// it. fn returns false to abandon the change, in which case s is returned.
func (s *State) editTenant(companyID string, fn func(cd *CompanyData) bool) *State {
	cur, ok := s.CompanyData[companyID]
	if !ok {
		return s
	}
	next := *cur
	if !fn(&next) {
		return s
	}
	return s.withCompanyData(companyID, &next)
}

// editSupermarket is editTenant for the supermarket vertical.
func (s *State) editSupermarket(companyID string, fn func(cd *CompanyData, sm *SupermarketData) bool) *State {
	return s.editTenant(companyID, func(cd *CompanyData) bool {
		if cd.Supermarket == nil {
			return false
		}
		sm := *cd.Supermarket
		if !fn(cd, &sm) {
			return false
		}
		cd.Supermarket = &sm
		return true
	})
}

// editRestaurant is editTenant for the restaurant vertical.
func (s *State) editRestaurant(companyID string, fn func(cd *CompanyData, rd *RestaurantData) bool) *State {
	return s.editTenant(companyID, func(cd *CompanyData) bool {
		if cd.Restaurant == nil {
			return false
		}
		rd := *cd.Restaurant
		if !fn(cd, &rd) {
			return false
		}
		cd.Restaurant = &rd
		return true
	})
}

// editCompany applies fn to a copy of the company with id.
func (s *State) editCompany(id string, fn func(c *domain.Company) bool) *State {
	i := indexOf(s.Companies, id)
	if i < 0 {
		return s
	}
	c := s.Companies[i]
	if !fn(&c) {
		return s
	}
	companies, _ := replaced(s.Companies, c)
	next := *s
	next.Companies = companies
	return &next
}

// editUser applies fn to a copy of the user with id.
func (s *State) editUser(id string, fn func(u *domain.User)) *State {
	users, ok := updated(s.Users, id, fn)
	if !ok {
		return s
	}
	next := *s
	next.Users = users
	return &next
}

// post appends journal entries to a tenant's ledger. Unbalanced entries are
// dropped and reported through ok.
func (s *State) post(companyID string, entries ...domain.JournalEntry) (next *State, ok bool) {
	for _, e := range entries {
		if !e.Balanced() {
			return s, false
		}
	}
	if len(entries) == 0 {
		return s, true
	}
	var ad AccountingData
	if cur, found := s.AccountingData[companyID]; found {
		ad = *cur
	} else {
		ad = *newAccountingData()
	}
	ad.JournalEntries = appended(ad.JournalEntries, entries...)
	return s.withAccounting(companyID, &ad), true
}

// settle posts the journal entry that completes a compound action. next holds
// the action's other effects; when the entry is rejected they are discarded
// with it and orig is returned.
func settle(orig, next *State, companyID string, entry domain.JournalEntry) *State {
	posted, ok := next.post(companyID, entry)
	if !ok {
		return orig
	}
	return posted
}

// addPayout increases an open drawer session's cash payouts.
func addPayout(cd *CompanyData, sessionID string, amount decimal.Decimal) {
	editOpenDrawer(cd, sessionID, func(d *domain.CashDrawerSession) {
		d.CashPayouts = d.CashPayouts.Add(amount)
	})
}

// addCashSale increases an open drawer session's cash sales.
func addCashSale(cd *CompanyData, sessionID string, amount decimal.Decimal) {
	editOpenDrawer(cd, sessionID, func(d *domain.CashDrawerSession) {
		d.CashSales = d.CashSales.Add(amount)
	})
}

// editOpenDrawer applies fn to the session with sessionID. Closed sessions
// have been counted and are left alone.
func editOpenDrawer(cd *CompanyData, sessionID string, fn func(d *domain.CashDrawerSession)) {
	if sessionID == "" {
		return
	}
	d, ok := find(cd.CashDrawerSessions, sessionID)
	if !ok || d.Status != domain.DrawerOpen {
		return
	}
	cd.CashDrawerSessions, _ = updated(cd.CashDrawerSessions, sessionID, fn)
}
