package app

import (
	"context"
	"reflect"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/roach88/procount/internal/domain"
	"github.com/roach88/procount/internal/reducer"
	"github.com/roach88/procount/internal/store"
)

// change is one record write derived from a state transition.
type change struct {
	table    store.Table     // "" for outbox-only data types
	dataType domain.DataType // "" for records that stay local
	action   domain.ActionType
	id       string
	record   any
}

// queued reports whether the change is replicated through the outbox.
func (c change) queued() bool { return c.dataType != "" }

// settingsRecord is how a tenant's POS settings travel to the authority.
type settingsRecord struct {
	ID        string                      `json:"id"`
	CompanyID string                      `json:"companyId"`
	Settings  reducer.SupermarketSettings `json:"settings"`
}

// mirrorTables is the transaction scope of a mirror job.
var mirrorTables = append(store.Tables(), store.TableOutbox)

// diff lists the record writes that take prev to next.
//
// Copy-on-write lets unchanged collections be skipped by identity. Within a
// changed collection each record is matched by id and compared by value.
func diff(prev, next *reducer.State) []change {
	if prev == next {
		return nil
	}
	var out []change
	out = diffRecords(out, prev.Users, next.Users, store.TableUsers, "")

	for _, id := range companyIDs(prev, next) {
		pcd, ncd := prev.CompanyData[id], next.CompanyData[id]
		if pcd != ncd {
			out = diffCompany(out, id, pcd, ncd)
		}
		pad, nad := prev.AccountingData[id], next.AccountingData[id]
		if pad != nad {
			out = diffRecords(out, journalEntries(pad), journalEntries(nad), store.TableJournalEntries, "")
		}
	}
	return out
}

func diffCompany(out []change, companyID string, prev, next *reducer.CompanyData) []change {
	psm, nsm := supermarket(prev), supermarket(next)
	out = diffRecords(out, products(psm), products(nsm), store.TableProducts, domain.DataProduct)
	out = diffRecords(out, sales(psm), sales(nsm), store.TableSales, domain.DataSale)
	out = diffRecords(out, customers(prev), customers(next), store.TableCustomers, domain.DataCustomer)
	out = diffRecords(out, invoices(prev), invoices(next), "", domain.DataInvoice)

	if ps, ns := settings(psm), settings(nsm); !reflect.DeepEqual(ps, ns) {
		out = append(out, change{
			dataType: domain.DataSettings,
			action:   domain.ActionUpdate,
			id:       companyID,
			record:   settingsRecord{ID: companyID, CompanyID: companyID, Settings: ns},
		})
	}

	out = diffRecords(out, roles(prev), roles(next), store.TableRoles, "")
	out = diffRecords(out, attendance(prev), attendance(next), store.TableAttendance, "")
	out = diffRecords(out, leaveRequests(prev), leaveRequests(next), store.TableLeaveRequests, "")
	return diffRecords(out, documents(prev), documents(next), store.TableDocuments, "")
}

// diffRecords appends creates and updates in next order, then deletes in
// prev order.
func diffRecords[T domain.Identified](out []change, prev, next []T, table store.Table, dt domain.DataType) []change {
	if sameSlice(prev, next) {
		return out
	}
	old := make(map[string]T, len(prev))
	for _, p := range prev {
		old[p.EntityID()] = p
	}
	for _, n := range next {
		id := n.EntityID()
		p, existed := old[id]
		delete(old, id)
		switch {
		case !existed:
			out = append(out, change{table: table, dataType: dt, action: domain.ActionCreate, id: id, record: n})
		case !reflect.DeepEqual(p, n):
			out = append(out, change{table: table, dataType: dt, action: domain.ActionUpdate, id: id, record: n})
		}
	}
	for _, p := range prev {
		if _, gone := old[p.EntityID()]; gone {
			out = append(out, change{table: table, dataType: dt, action: domain.ActionDelete, id: p.EntityID(), record: p})
		}
	}
	return out
}

func sameSlice[T any](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	return len(a) == 0 || &a[0] == &b[0]
}

func companyIDs(prev, next *reducer.State) []string {
	seen := make(map[string]bool, len(next.CompanyData))
	var ids []string
	for _, m := range []map[string]*reducer.CompanyData{prev.CompanyData, next.CompanyData} {
		for id := range m {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	slices.Sort(ids)
	return ids
}

// apply writes one job in a single transaction.
func apply(ctx context.Context, s *store.Store, log *logrus.Entry, j mirrorJob) error {
	return s.Transaction(ctx, mirrorTables, func(tx *store.Tx) error {
		for _, c := range j.changes {
			if c.queued() {
				seq, err := tx.RecordChange(c.table, c.record, c.action, c.dataType)
				if err != nil {
					return err
				}
				log.WithFields(logrus.Fields{"record_id": c.id, "data_type": c.dataType, "seq": seq}).Debug("queued change")
				continue
			}
			var err error
			if c.action == domain.ActionDelete {
				err = tx.Delete(c.table, c.id)
			} else {
				err = tx.Put(c.table, c.record)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func supermarket(cd *reducer.CompanyData) *reducer.SupermarketData {
	if cd == nil {
		return nil
	}
	return cd.Supermarket
}

func products(sm *reducer.SupermarketData) []domain.Product {
	if sm == nil {
		return nil
	}
	return sm.Products
}

func sales(sm *reducer.SupermarketData) []domain.Sale {
	if sm == nil {
		return nil
	}
	return sm.Sales
}

func settings(sm *reducer.SupermarketData) reducer.SupermarketSettings {
	if sm == nil {
		return reducer.SupermarketSettings{}
	}
	return sm.Settings
}

func journalEntries(ad *reducer.AccountingData) []domain.JournalEntry {
	if ad == nil {
		return nil
	}
	return ad.JournalEntries
}

// companyField reads a shared collection from possibly absent company data.
func companyField[T any](cd *reducer.CompanyData, get func(*reducer.CompanyData) []T) []T {
	if cd == nil {
		return nil
	}
	return get(cd)
}

func customers(cd *reducer.CompanyData) []domain.Customer {
	return companyField(cd, func(c *reducer.CompanyData) []domain.Customer { return c.Customers })
}

func invoices(cd *reducer.CompanyData) []domain.PurchaseInvoice {
	return companyField(cd, func(c *reducer.CompanyData) []domain.PurchaseInvoice { return c.PurchaseInvoices })
}

func roles(cd *reducer.CompanyData) []domain.Role {
	return companyField(cd, func(c *reducer.CompanyData) []domain.Role { return c.Roles })
}

func attendance(cd *reducer.CompanyData) []domain.Attendance {
	return companyField(cd, func(c *reducer.CompanyData) []domain.Attendance { return c.Attendance })
}

func leaveRequests(cd *reducer.CompanyData) []domain.LeaveRequest {
	return companyField(cd, func(c *reducer.CompanyData) []domain.LeaveRequest { return c.LeaveRequests })
}

func documents(cd *reducer.CompanyData) []domain.EmployeeDocument {
	return companyField(cd, func(c *reducer.CompanyData) []domain.EmployeeDocument { return c.Documents })
}
