package reducer

import (
	"fmt"

	"github.com/roach88/procount/internal/domain"
)

const (
	KindAddAccount              Kind = "ADD_ACCOUNT"
	KindAddJournalEntry         Kind = "ADD_JOURNAL_ENTRY"
	KindAddGeneralExpense       Kind = "ADD_GENERAL_EXPENSE"
	KindAddPurchaseInvoice      Kind = "ADD_PURCHASE_INVOICE"
	KindUpdatePurchaseInvoice   Kind = "UPDATE_PURCHASE_INVOICE"
	KindProcessPayroll          Kind = "PROCESS_PAYROLL"
	KindMarkPayrollAsPaid       Kind = "MARK_PAYROLL_AS_PAID"
	KindAddReferringCompany     Kind = "ADD_REFERRING_COMPANY"
	KindPayCompanyCommission    Kind = "PAY_COMPANY_COMMISSION"
	KindPayRealEstateCommission Kind = "PAY_REAL_ESTATE_COMMISSION"
)

type AddAccount struct {
	CompanyID string         `json:"companyId"`
	Account   domain.Account `json:"account"`
}

func (AddAccount) Kind() Kind { return KindAddAccount }

func (a AddAccount) apply(_ *Reducer, s *State) *State {
	if a.Account.ID == "" {
		return s
	}
	var ad AccountingData
	if cur, ok := s.AccountingData[a.CompanyID]; ok {
		ad = *cur
	} else if _, ok := s.Company(a.CompanyID); ok {
		ad = *newAccountingData()
	} else {
		return s
	}
	if indexOf(ad.Accounts, a.Account.ID) >= 0 {
		return s
	}
	ad.Accounts = appended(ad.Accounts, a.Account)
	return s.withAccounting(a.CompanyID, &ad)
}

// AddJournalEntry posts a manual entry. Entries whose debits and credits
// differ are rejected and leave the state unchanged.
type AddJournalEntry struct {
	CompanyID string              `json:"companyId"`
	Entry     domain.JournalEntry `json:"entry"`
}

func (AddJournalEntry) Kind() Kind { return KindAddJournalEntry }

func (a AddJournalEntry) apply(r *Reducer, s *State) *State {
	if _, ok := s.Company(a.CompanyID); !ok {
		return s
	}
	e := a.Entry
	e.ID = r.idOr(e.ID, "je")
	e.CompanyID = a.CompanyID
	e.Date = r.timeOr(e.Date)
	next, _ := s.post(a.CompanyID, e)
	return next
}

// AddGeneralExpense records an expense and posts it against its expense
// account, funded from cash or bank.
type AddGeneralExpense struct {
	CompanyID string         `json:"companyId"`
	Expense   domain.Expense `json:"expense"`
}

func (AddGeneralExpense) Kind() Kind { return KindAddGeneralExpense }

func (a AddGeneralExpense) apply(r *Reducer, s *State) *State {
	x := a.Expense
	if !x.Amount.IsPositive() || x.ExpenseAccountID == "" {
		return s
	}
	x.ID = r.idOr(x.ID, "exp")
	x.Date = r.timeOr(x.Date)
	if x.BranchID == "" {
		x.BranchID = currentBranchID(s)
	}

	next := s.editTenant(a.CompanyID, func(cd *CompanyData) bool {
		cd.Expenses = appended(cd.Expenses, x)
		if x.PaymentSource.IsCash() {
			addPayout(cd, x.CashDrawerSessionID, x.Amount)
		}
		return true
	})
	if next == s {
		return s
	}
	entry := journal("je_exp_"+x.ID, a.CompanyID, x.Date, x.Description, x.BranchID, x.ID,
		transfer(x.ExpenseAccountID, domain.FundingAccount(x.PaymentSource), x.Amount))
	return settle(s, next, a.CompanyID, entry)
}

// invoicePayment posts the payment of a purchase invoice recorded in next
// and, when paid in cash, charges the drawer session. A payment that cannot
// be posted leaves orig in place.
func invoicePayment(orig, next *State, companyID string, inv domain.PurchaseInvoice, desc string) *State {
	entry := journal("je_pi_"+inv.ID, companyID, *inv.PaymentDate, desc, inv.BranchID, inv.ID,
		transfer(domain.AccountCOGS, domain.FundingAccount(inv.PaymentMethod), inv.TotalAmount))
	if inv.PaymentMethod.IsCash() && inv.CashDrawerSessionID != "" {
		next = next.editTenant(companyID, func(cd *CompanyData) bool {
			addPayout(cd, inv.CashDrawerSessionID, inv.TotalAmount)
			return true
		})
	}
	return settle(orig, next, companyID, entry)
}

// AddPurchaseInvoice records a supplier invoice. An invoice that is already
// paid posts its payment in the same step.
type AddPurchaseInvoice struct {
	CompanyID string                 `json:"companyId"`
	Invoice   domain.PurchaseInvoice `json:"invoice"`
}

func (AddPurchaseInvoice) Kind() Kind { return KindAddPurchaseInvoice }

func (a AddPurchaseInvoice) apply(r *Reducer, s *State) *State {
	inv := a.Invoice
	inv.ID = r.idOr(inv.ID, "pi")
	inv.CompanyID = a.CompanyID
	inv.Date = r.timeOr(inv.Date)
	if inv.PaymentStatus == "" {
		inv.PaymentStatus = domain.InvoiceUnpaid
	}
	if inv.PaymentStatus == domain.InvoicePaid && inv.PaymentDate == nil {
		d := inv.Date
		inv.PaymentDate = &d
	}

	next := s.editTenant(a.CompanyID, func(cd *CompanyData) bool {
		if indexOf(cd.PurchaseInvoices, inv.ID) >= 0 {
			return false
		}
		cd.PurchaseInvoices = appended(cd.PurchaseInvoices, inv)
		return true
	})
	if next == s || inv.PaymentStatus != domain.InvoicePaid {
		return next
	}
	return invoicePayment(s, next, a.CompanyID, inv,
		fmt.Sprintf("Purchase Invoice #%s - %s", inv.ID, inv.SupplierName))
}

// UpdatePurchaseInvoice replaces an invoice. The unpaid to paid transition
// posts the payment.
type UpdatePurchaseInvoice struct {
	CompanyID string                 `json:"companyId"`
	Invoice   domain.PurchaseInvoice `json:"invoiceUpdate"`
}

func (UpdatePurchaseInvoice) Kind() Kind { return KindUpdatePurchaseInvoice }

func (a UpdatePurchaseInvoice) apply(r *Reducer, s *State) *State {
	cd, ok := s.CompanyData[a.CompanyID]
	if !ok {
		return s
	}
	old, ok := find(cd.PurchaseInvoices, a.Invoice.ID)
	if !ok {
		return s
	}
	inv := a.Invoice
	inv.CompanyID = a.CompanyID
	paying := old.PaymentStatus != domain.InvoicePaid && inv.PaymentStatus == domain.InvoicePaid
	if paying && inv.PaymentDate == nil {
		d := r.now()
		inv.PaymentDate = &d
	}

	next := s.editTenant(a.CompanyID, func(cd *CompanyData) bool {
		cd.PurchaseInvoices, _ = replaced(cd.PurchaseInvoices, inv)
		return true
	})
	if !paying {
		return next
	}
	return invoicePayment(s, next, a.CompanyID, inv,
		fmt.Sprintf("Purchase Invoice Payment #%s - %s", inv.ID, inv.SupplierName))
}

// ProcessPayroll creates a pending record for every salaried employee of
// the company that has none for Period yet.
type ProcessPayroll struct {
	CompanyID string `json:"companyId"`
	Period    string `json:"period"`
}

func (ProcessPayroll) Kind() Kind { return KindProcessPayroll }

func (a ProcessPayroll) apply(_ *Reducer, s *State) *State {
	if _, ok := s.Company(a.CompanyID); !ok || a.Period == "" {
		return s
	}
	existing := s.PayrollRecords[a.CompanyID]
	paid := make(map[string]bool)
	for _, rec := range existing {
		if rec.Period == a.Period {
			paid[rec.EmployeeID] = true
		}
	}

	var fresh []domain.PayrollRecord
	for _, u := range s.Users {
		if u.CompanyID != a.CompanyID || !u.BaseSalary.IsPositive() || paid[u.ID] {
			continue
		}
		fresh = append(fresh, domain.PayrollRecord{
			ID:           fmt.Sprintf("pr_%s_%s", u.ID, a.Period),
			EmployeeID:   u.ID,
			EmployeeName: u.Name,
			Period:       a.Period,
			BaseSalary:   u.BaseSalary,
			NetPay:       u.BaseSalary,
			Status:       domain.PayrollPending,
			BranchID:     u.BranchID,
		})
	}
	if len(fresh) == 0 {
		return s
	}
	return s.withPayroll(a.CompanyID, appended(existing, fresh...))
}

// MarkPayrollAsPaid pays a pending payroll record: the record becomes Paid,
// salaries expense is posted against cash or bank and a cash payment is
// charged to the drawer session.
type MarkPayrollAsPaid struct {
	CompanyID           string               `json:"companyId"`
	PayrollRecordID     string               `json:"payrollRecordId"`
	PaymentSource       domain.PaymentSource `json:"paymentSource"`
	CashDrawerSessionID string               `json:"cashDrawerSessionId,omitempty"`
}

func (MarkPayrollAsPaid) Kind() Kind { return KindMarkPayrollAsPaid }

func (a MarkPayrollAsPaid) apply(r *Reducer, s *State) *State {
	records := s.PayrollRecords[a.CompanyID]
	rec, ok := find(records, a.PayrollRecordID)
	if !ok || rec.Status == domain.PayrollPaid {
		return s
	}
	now := r.now()
	records, _ = updated(records, rec.ID, func(p *domain.PayrollRecord) {
		p.Status = domain.PayrollPaid
		p.PaymentDate = &now
		p.PaymentSource = a.PaymentSource
		p.CashDrawerSessionID = a.CashDrawerSessionID
	})
	next := s.withPayroll(a.CompanyID, records)

	if a.PaymentSource.IsCash() && a.CashDrawerSessionID != "" {
		next = next.editTenant(a.CompanyID, func(cd *CompanyData) bool {
			addPayout(cd, a.CashDrawerSessionID, rec.NetPay)
			return true
		})
	}
	entry := journal("je_pay_"+rec.ID, a.CompanyID, now,
		fmt.Sprintf("Payroll Payment - %s (%s)", rec.EmployeeName, rec.Period), rec.BranchID, rec.ID,
		transfer(domain.AccountSalaries, domain.FundingAccount(a.PaymentSource), rec.NetPay))
	return settle(s, next, a.CompanyID, entry)
}

type AddReferringCompany struct {
	CompanyID string                  `json:"companyId"`
	Company   domain.ReferringCompany `json:"company"`
}

func (AddReferringCompany) Kind() Kind { return KindAddReferringCompany }

func (a AddReferringCompany) apply(r *Reducer, s *State) *State {
	rc := a.Company
	rc.ID = r.idOr(rc.ID, "rc")
	return s.editTenant(a.CompanyID, func(cd *CompanyData) bool {
		cd.ReferringCompanies = appended(cd.ReferringCompanies, rc)
		return true
	})
}

// commissionPaid posts a commission payment recorded in next against the
// commission expense account and charges a cash payment to the drawer
// session.
func commissionPaid(orig, next *State, companyID, desc, branchID string, c domain.CommissionPayment) *State {
	if c.PaymentSource.IsCash() && c.CashDrawerSessionID != "" {
		next = next.editTenant(companyID, func(cd *CompanyData) bool {
			addPayout(cd, c.CashDrawerSessionID, c.Amount)
			return true
		})
	}
	entry := journal("je_comm_"+c.ID, companyID, c.Date, desc, branchID, c.ID,
		transfer(domain.AccountCommission, domain.FundingAccount(c.PaymentSource), c.Amount))
	return settle(orig, next, companyID, entry)
}

// PayCompanyCommission pays a referring company.
type PayCompanyCommission struct {
	CompanyID  string                   `json:"companyId"`
	Commission domain.CommissionPayment `json:"commissionRecord"`
}

func (PayCompanyCommission) Kind() Kind { return KindPayCompanyCommission }

func (a PayCompanyCommission) apply(r *Reducer, s *State) *State {
	c := a.Commission
	if !c.Amount.IsPositive() {
		return s
	}
	c.ID = r.idOr(c.ID, "comm")
	c.Date = r.timeOr(c.Date)
	payee := c.PayeeID
	next := s.editTenant(a.CompanyID, func(cd *CompanyData) bool {
		if rc, ok := find(cd.ReferringCompanies, c.PayeeID); ok {
			payee = rc.Name
		}
		cd.CompanyCommissions = appended(cd.CompanyCommissions, c)
		return true
	})
	if next == s {
		return s
	}
	return commissionPaid(s, next, a.CompanyID, "Partner Commission - "+payee, currentBranchID(s), c)
}

// PayRealEstateCommission pays an agent for a listing. ReferenceID names the
// listing, which is flagged as paid.
type PayRealEstateCommission struct {
	CompanyID  string                   `json:"companyId"`
	Commission domain.CommissionPayment `json:"commissionRecord"`
}

func (PayRealEstateCommission) Kind() Kind { return KindPayRealEstateCommission }

func (a PayRealEstateCommission) apply(r *Reducer, s *State) *State {
	c := a.Commission
	if !c.Amount.IsPositive() {
		return s
	}
	c.ID = r.idOr(c.ID, "acomm")
	c.Date = r.timeOr(c.Date)
	next := s.editTenant(a.CompanyID, func(cd *CompanyData) bool {
		if cd.RealEstate == nil {
			return false
		}
		re := *cd.RealEstate
		re.AgentCommissions = appended(re.AgentCommissions, c)
		if listings, ok := updated(re.Listings, c.ReferenceID, func(l *domain.PropertyListing) { l.CommissionPaid = true }); ok {
			re.Listings = listings
		}
		cd.RealEstate = &re
		return true
	})
	if next == s {
		return s
	}
	return commissionPaid(s, next, a.CompanyID, "Agent Commission - "+c.PayeeID, currentBranchID(s), c)
}
