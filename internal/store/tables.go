package store

import (
	"fmt"

	"github.com/roach88/procount/internal/domain"
)

// Table names a store table.
type Table string

const (
	TableProducts       Table = "products"
	TableSales          Table = "sales"
	TableOutbox         Table = "outbox"
	TableUsers          Table = "users"
	TableCustomers      Table = "customers"
	TableJournalEntries Table = "journal_entries"
	TableAttendance     Table = "attendance"
	TableLeaveRequests  Table = "leave_requests"
	TableDocuments      Table = "documents"
	TableRoles          Table = "roles"
)

// index maps a record field (its JSON key) to the column that copies it.
type index struct {
	field  string
	column string
}

// entityTables lists the record tables and their secondary indexes.
// The outbox is not an entity table; it has its own accessors.
var entityTables = map[Table][]index{
	TableProducts: {
		{"name", "name"},
		{"barcode", "barcode"},
		{"category", "category"},
		{"syncStatus", "sync_status"},
		{"companyId", "company_id"},
	},
	TableSales: {
		{"timestamp", "timestamp"},
		{"syncStatus", "sync_status"},
		{"totalAmount", "total_amount"},
		{"companyId", "company_id"},
	},
	TableUsers: {
		{"email", "email"},
		{"role", "role"},
		{"companyId", "company_id"},
		{"branchId", "branch_id"},
	},
	TableCustomers: {
		{"phone", "phone"},
		{"email", "email"},
		{"companyId", "company_id"},
	},
	TableJournalEntries: {
		{"date", "date"},
		{"companyId", "company_id"},
	},
	TableAttendance: {
		{"date", "date"},
		{"employeeId", "employee_id"},
		{"companyId", "company_id"},
	},
	TableLeaveRequests: {
		{"status", "status"},
		{"employeeId", "employee_id"},
		{"companyId", "company_id"},
	},
	TableDocuments: {
		{"employeeId", "employee_id"},
		{"companyId", "company_id"},
	},
	TableRoles: {
		{"companyId", "company_id"},
	},
}

// outboxIndexes are the outbox fields Query accepts.
var outboxIndexes = []index{
	{"actionType", "action_type"},
	{"dataType", "data_type"},
	{"timestamp", "timestamp"},
}

// Tables returns every entity table name in schema order.
func Tables() []Table {
	return []Table{
		TableProducts, TableSales, TableUsers, TableCustomers, TableJournalEntries,
		TableAttendance, TableLeaveRequests, TableDocuments, TableRoles,
	}
}

func indexesFor(t Table) ([]index, error) {
	idx, ok := entityTables[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTable, t)
	}
	return idx, nil
}

func columnFor(t Table, field string) (string, error) {
	if field == "id" {
		return "id", nil
	}
	idx := outboxIndexes
	if t != TableOutbox {
		var err error
		if idx, err = indexesFor(t); err != nil {
			return "", err
		}
	}
	for _, i := range idx {
		if i.field == field {
			return i.column, nil
		}
	}
	return "", fmt.Errorf("%w: %q on %s", ErrUnknownIndex, field, t)
}

// TableFor returns the entity table that stores a data type, or "" when the
// data type is queued for sync without a local table (invoices, settings).
func TableFor(dt domain.DataType) Table {
	switch dt {
	case domain.DataProduct:
		return TableProducts
	case domain.DataSale:
		return TableSales
	case domain.DataCustomer:
		return TableCustomers
	}
	return ""
}
