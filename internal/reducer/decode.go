package reducer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
)

// Envelope is the wire form of an action.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type decoder func(json.RawMessage) (Action, error)

var decoders = map[Kind]decoder{
	KindUserLogin:                  decodeAs[UserLogin],
	KindUserLogout:                 decodeAs[UserLogout],
	KindCustomerLogin:              decodeAs[CustomerLogin],
	KindCustomerRegister:           decodeAs[CustomerRegister],
	KindCustomerLogout:             decodeAs[CustomerLogout],
	KindUpdateUserLanguage:         decodeAs[UpdateUserLanguage],
	KindUpdateUserTheme:            decodeAs[UpdateUserTheme],
	KindUpdateUserPreferences:      decodeAs[UpdateUserPreferences],
	KindUpdateCustomerProfile:      decodeAs[UpdateCustomerProfile],
	KindLogLoginHistory:            decodeAs[LogLoginHistory],
	KindAddCompany:                 decodeAs[AddCompany],
	KindUpdateCompany:              decodeAs[UpdateCompany],
	KindDeleteCompany:              decodeAs[DeleteCompany],
	KindAddBranch:                  decodeAs[AddBranch],
	KindUpdateBranch:               decodeAs[UpdateBranch],
	KindDeleteBranch:               decodeAs[DeleteBranch],
	KindLogVisitor:                 decodeAs[LogVisitor],
	KindAddCurrency:                decodeAs[AddCurrency],
	KindDeleteCurrency:             decodeAs[DeleteCurrency],
	KindUpdateSystemIntegrations:   decodeAs[UpdateSystemIntegrations],
	KindUpdateSupermarketSettings:  decodeAs[UpdateSupermarketSettings],
	KindAddEmployee:                decodeAs[AddEmployee],
	KindUpdateEmployee:             decodeAs[UpdateEmployee],
	KindDeleteEmployee:             decodeAs[DeleteEmployee],
	KindAddRole:                    decodeAs[AddRole],
	KindUpdateRole:                 decodeAs[UpdateRole],
	KindDeleteRole:                 decodeAs[DeleteRole],
	KindAddAttendanceRecord:        decodeAs[AddAttendanceRecord],
	KindAddLeaveRequest:            decodeAs[AddLeaveRequest],
	KindUpdateLeaveRequestStatus:   decodeAs[UpdateLeaveRequestStatus],
	KindAddEmployeeDocument:        decodeAs[AddEmployeeDocument],
	KindAddPromotion:               decodeAs[AddPromotion],
	KindUpdatePromotion:            decodeAs[UpdatePromotion],
	KindDeletePromotion:            decodeAs[DeletePromotion],
	KindAddAccount:                 decodeAs[AddAccount],
	KindAddJournalEntry:            decodeAs[AddJournalEntry],
	KindAddGeneralExpense:          decodeAs[AddGeneralExpense],
	KindAddPurchaseInvoice:         decodeAs[AddPurchaseInvoice],
	KindUpdatePurchaseInvoice:      decodeAs[UpdatePurchaseInvoice],
	KindProcessPayroll:             decodeAs[ProcessPayroll],
	KindMarkPayrollAsPaid:          decodeAs[MarkPayrollAsPaid],
	KindAddReferringCompany:        decodeAs[AddReferringCompany],
	KindPayCompanyCommission:       decodeAs[PayCompanyCommission],
	KindPayRealEstateCommission:    decodeAs[PayRealEstateCommission],
	KindAddSupermarketProduct:      decodeAs[AddSupermarketProduct],
	KindUpdateSupermarketProduct:   decodeAs[UpdateSupermarketProduct],
	KindDeleteSupermarketProduct:   decodeAs[DeleteSupermarketProduct],
	KindCompleteSupermarketSale:    decodeAs[CompleteSupermarketSale],
	KindProcessReturn:              decodeAs[ProcessReturn],
	KindAddCustomer:                decodeAs[AddCustomer],
	KindUpdateCustomer:             decodeAs[UpdateCustomer],
	KindOpenCashDrawer:             decodeAs[OpenCashDrawer],
	KindCloseCashDrawer:            decodeAs[CloseCashDrawer],
	KindAddPurchaseOrder:           decodeAs[AddPurchaseOrder],
	KindUpdatePurchaseOrder:        decodeAs[UpdatePurchaseOrder],
	KindCompletePurchaseOrder:      decodeAs[CompletePurchaseOrder],
	KindAddStockTransfer:           decodeAs[AddStockTransfer],
	KindUpdateStockTransferStatus:  decodeAs[UpdateStockTransferStatus],
	KindRecordWastage:              decodeAs[RecordWastage],
	KindAddStockTakingSession:      decodeAs[AddStockTakingSession],
	KindUpdateStockTakingItem:      decodeAs[UpdateStockTakingItem],
	KindApproveStockReconciliation: decodeAs[ApproveStockReconciliation],
	KindAddMenuItem:                decodeAs[AddMenuItem],
	KindUpdateMenuItem:             decodeAs[UpdateMenuItem],
	KindDeleteMenuItem:             decodeAs[DeleteMenuItem],
	KindAddIngredient:              decodeAs[AddIngredient],
	KindAddEcommerceProduct:        decodeAs[AddEcommerceProduct],
	KindUpdateEcommerceProduct:     decodeAs[UpdateEcommerceProduct],
	KindDeleteEcommerceProduct:     decodeAs[DeleteEcommerceProduct],
	KindCreateEcommerceOrder:       decodeAs[CreateEcommerceOrder],
	KindUpdateEcommerceOrderStatus: decodeAs[UpdateEcommerceOrderStatus],
	KindAddAutomotiveProduct:       decodeAs[AddAutomotiveProduct],
	KindUpdateAutomotiveProduct:    decodeAs[UpdateAutomotiveProduct],
	KindDeleteAutomotiveProduct:    decodeAs[DeleteAutomotiveProduct],
	KindAddServiceWorkOrder:        decodeAs[AddServiceWorkOrder],
	KindAddPropertyListing:         decodeAs[AddPropertyListing],
	KindUpdatePropertyListing:      decodeAs[UpdatePropertyListing],
	KindDeletePropertyListing:      decodeAs[DeletePropertyListing],
	KindAddBlueprint:               decodeAs[AddBlueprint],
	KindUpdateBlueprint:            decodeAs[UpdateBlueprint],
	KindDeleteBlueprint:            decodeAs[DeleteBlueprint],
	KindAddTourPackage:             decodeAs[AddTourPackage],
	KindUpdateTourPackage:          decodeAs[UpdateTourPackage],
	KindDeleteTourPackage:          decodeAs[DeleteTourPackage],
	KindAddTourBooking:             decodeAs[AddTourBooking],
	KindAddPersonalTransaction:     decodeAs[AddPersonalTransaction],
	KindDeletePersonalTransaction:  decodeAs[DeletePersonalTransaction],
	KindUpdatePersonalBudget:       decodeAs[UpdatePersonalBudget],
	KindAddNotification:            decodeAs[AddNotification],
	KindRemoveNotification:         decodeAs[RemoveNotification],
	KindClearAllNotifications:      decodeAs[ClearAllNotifications],
}

func decodeAs[T Action](raw json.RawMessage) (Action, error) {
	var a T
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return a, nil
	}
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, err
	}
	return a, nil
}

// Decode builds the action named by kind from its JSON payload. An unknown
// kind decodes to Unrecognized without error, since reducing it is a no-op.
func Decode(kind string, payload json.RawMessage) (Action, error) {
	dec, ok := decoders[Kind(kind)]
	if !ok {
		return Unrecognized{Type: kind}, nil
	}
	a, err := dec(payload)
	if err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", kind, err)
	}
	return a, nil
}

// DecodeEnvelope decodes a {"type", "payload"} document.
func DecodeEnvelope(b []byte) (Action, error) {
	var env Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, fmt.Errorf("decode action envelope: %w", err)
	}
	if env.Type == "" {
		return nil, fmt.Errorf("decode action envelope: missing type")
	}
	return Decode(env.Type, env.Payload)
}

// Encode wraps a in its wire envelope.
func Encode(a Action) (Envelope, error) {
	payload, err := json.Marshal(a)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode %s payload: %w", a.Kind(), err)
	}
	return Envelope{Type: string(a.Kind()), Payload: payload}, nil
}

// Kinds lists every action kind the reducer handles, sorted.
func Kinds() []Kind {
	out := make([]Kind, 0, len(decoders))
	for k := range decoders {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
