package domain

import (
	"encoding/json"
	"time"
)

// ActionType is the kind of change a pending operation carries.
type ActionType string

const (
	ActionCreate ActionType = "CREATE"
	ActionUpdate ActionType = "UPDATE"
	ActionDelete ActionType = "DELETE"
)

// Valid reports whether a is one of the known action types.
func (a ActionType) Valid() bool {
	switch a {
	case ActionCreate, ActionUpdate, ActionDelete:
		return true
	}
	return false
}

// DataType names the entity family of a pending operation.
type DataType string

const (
	DataProduct  DataType = "PRODUCT"
	DataSale     DataType = "SALE"
	DataCustomer DataType = "CUSTOMER"
	DataInvoice  DataType = "INVOICE"
	DataSettings DataType = "SETTINGS"
)

// Valid reports whether d is one of the known data types.
func (d DataType) Valid() bool {
	switch d {
	case DataProduct, DataSale, DataCustomer, DataInvoice, DataSettings:
		return true
	}
	return false
}

// TracksSyncStatus reports whether entities of this type carry a syncStatus
// flag that acknowledgement flips to synced.
func (d DataType) TracksSyncStatus() bool {
	return d == DataProduct || d == DataSale
}

// PendingOperation is one outbox entry awaiting acknowledgement by the remote authority.
//
// ID is assigned by the store on append and is strictly increasing, so
// ordering by ID is insertion order.
type PendingOperation struct {
	ID         int64           `json:"id"`
	ActionType ActionType      `json:"actionType"`
	DataType   DataType        `json:"dataType"`
	EntityID   string          `json:"entityId"`
	TenantID   string          `json:"tenantId"`
	Payload    json.RawMessage `json:"payload"`
	Digest     string          `json:"digest"`
	Timestamp  time.Time       `json:"timestamp"`
}
