package reducer

import (
	"encoding/json"

	"github.com/roach88/procount/internal/domain"
)

const (
	KindAddEmployee              Kind = "ADD_EMPLOYEE"
	KindUpdateEmployee           Kind = "UPDATE_EMPLOYEE"
	KindDeleteEmployee           Kind = "DELETE_EMPLOYEE"
	KindAddRole                  Kind = "ADD_ROLE"
	KindUpdateRole               Kind = "UPDATE_ROLE"
	KindDeleteRole               Kind = "DELETE_ROLE"
	KindAddAttendanceRecord      Kind = "ADD_ATTENDANCE_RECORD"
	KindAddLeaveRequest          Kind = "ADD_LEAVE_REQUEST"
	KindUpdateLeaveRequestStatus Kind = "UPDATE_LEAVE_REQUEST_STATUS"
	KindAddEmployeeDocument      Kind = "ADD_EMPLOYEE_DOCUMENT"
	KindAddPromotion             Kind = "ADD_PROMOTION"
	KindUpdatePromotion          Kind = "UPDATE_PROMOTION"
	KindDeletePromotion          Kind = "DELETE_PROMOTION"
)

// AddEmployee adds a user. The wire payload is the user itself.
type AddEmployee struct {
	User domain.User
}

func (AddEmployee) Kind() Kind { return KindAddEmployee }

func (a *AddEmployee) UnmarshalJSON(b []byte) error {
	return json.Unmarshal(b, &a.User)
}

func (a AddEmployee) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.User)
}

func (a AddEmployee) apply(r *Reducer, s *State) *State {
	u := a.User
	u.ID = r.idOr(u.ID, "emp")
	if indexOf(s.Users, u.ID) >= 0 {
		return s
	}
	next := *s
	next.Users = appended(s.Users, u)
	return &next
}

// UpdateEmployee replaces a user. The wire payload is the user itself.
type UpdateEmployee struct {
	User domain.User
}

func (UpdateEmployee) Kind() Kind { return KindUpdateEmployee }

func (a *UpdateEmployee) UnmarshalJSON(b []byte) error {
	return json.Unmarshal(b, &a.User)
}

func (a UpdateEmployee) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.User)
}

func (a UpdateEmployee) apply(_ *Reducer, s *State) *State {
	users, ok := replaced(s.Users, a.User)
	if !ok {
		return s
	}
	next := *s
	next.Users = users
	return &next
}

type DeleteEmployee struct {
	UserID string `json:"userId"`
}

func (DeleteEmployee) Kind() Kind { return KindDeleteEmployee }

func (a DeleteEmployee) apply(_ *Reducer, s *State) *State {
	users, ok := removed(s.Users, a.UserID)
	if !ok {
		return s
	}
	next := *s
	next.Users = users
	return &next
}

type AddRole struct {
	CompanyID string      `json:"companyId"`
	Role      domain.Role `json:"role"`
}

func (AddRole) Kind() Kind { return KindAddRole }

func (a AddRole) apply(r *Reducer, s *State) *State {
	role := a.Role
	role.ID = r.idOr(role.ID, "role")
	role.CompanyID = a.CompanyID
	return s.editTenant(a.CompanyID, func(cd *CompanyData) bool {
		cd.Roles = appended(cd.Roles, role)
		return true
	})
}

type UpdateRole struct {
	CompanyID string      `json:"companyId"`
	Role      domain.Role `json:"role"`
}

func (UpdateRole) Kind() Kind { return KindUpdateRole }

func (a UpdateRole) apply(_ *Reducer, s *State) *State {
	role := a.Role
	role.CompanyID = a.CompanyID
	return s.editTenant(a.CompanyID, func(cd *CompanyData) bool {
		roles, ok := replaced(cd.Roles, role)
		cd.Roles = roles
		return ok
	})
}

type DeleteRole struct {
	CompanyID string `json:"companyId"`
	RoleID    string `json:"roleId"`
}

func (DeleteRole) Kind() Kind { return KindDeleteRole }

func (a DeleteRole) apply(_ *Reducer, s *State) *State {
	return s.editTenant(a.CompanyID, func(cd *CompanyData) bool {
		roles, ok := removed(cd.Roles, a.RoleID)
		cd.Roles = roles
		return ok
	})
}

type AddAttendanceRecord struct {
	CompanyID string            `json:"companyId"`
	Record    domain.Attendance `json:"record"`
}

func (AddAttendanceRecord) Kind() Kind { return KindAddAttendanceRecord }

func (a AddAttendanceRecord) apply(r *Reducer, s *State) *State {
	rec := a.Record
	rec.ID = r.idOr(rec.ID, "att")
	rec.CompanyID = a.CompanyID
	return s.editTenant(a.CompanyID, func(cd *CompanyData) bool {
		cd.Attendance = appended(cd.Attendance, rec)
		return true
	})
}

type AddLeaveRequest struct {
	CompanyID string              `json:"companyId"`
	Request   domain.LeaveRequest `json:"request"`
}

func (AddLeaveRequest) Kind() Kind { return KindAddLeaveRequest }

func (a AddLeaveRequest) apply(r *Reducer, s *State) *State {
	req := a.Request
	req.ID = r.idOr(req.ID, "leave")
	req.CompanyID = a.CompanyID
	if req.Status == "" {
		req.Status = domain.LeavePending
	}
	return s.editTenant(a.CompanyID, func(cd *CompanyData) bool {
		cd.LeaveRequests = appended(cd.LeaveRequests, req)
		return true
	})
}

type UpdateLeaveRequestStatus struct {
	CompanyID string             `json:"companyId"`
	RequestID string             `json:"requestId"`
	Status    domain.LeaveStatus `json:"status"`
}

func (UpdateLeaveRequestStatus) Kind() Kind { return KindUpdateLeaveRequestStatus }

func (a UpdateLeaveRequestStatus) apply(_ *Reducer, s *State) *State {
	return s.editTenant(a.CompanyID, func(cd *CompanyData) bool {
		reqs, ok := updated(cd.LeaveRequests, a.RequestID, func(l *domain.LeaveRequest) { l.Status = a.Status })
		cd.LeaveRequests = reqs
		return ok
	})
}

type AddEmployeeDocument struct {
	CompanyID string                  `json:"companyId"`
	Document  domain.EmployeeDocument `json:"document"`
}

func (AddEmployeeDocument) Kind() Kind { return KindAddEmployeeDocument }

func (a AddEmployeeDocument) apply(r *Reducer, s *State) *State {
	doc := a.Document
	doc.ID = r.idOr(doc.ID, "doc")
	doc.CompanyID = a.CompanyID
	return s.editTenant(a.CompanyID, func(cd *CompanyData) bool {
		cd.Documents = appended(cd.Documents, doc)
		return true
	})
}

type AddPromotion struct {
	CompanyID string           `json:"companyId"`
	Promotion domain.Promotion `json:"promotion"`
}

func (AddPromotion) Kind() Kind { return KindAddPromotion }

func (a AddPromotion) apply(r *Reducer, s *State) *State {
	p := a.Promotion
	p.ID = r.idOr(p.ID, "promo")
	return s.editTenant(a.CompanyID, func(cd *CompanyData) bool {
		cd.Promotions = appended(cd.Promotions, p)
		return true
	})
}

type UpdatePromotion struct {
	CompanyID string           `json:"companyId"`
	Promotion domain.Promotion `json:"promotion"`
}

func (UpdatePromotion) Kind() Kind { return KindUpdatePromotion }

func (a UpdatePromotion) apply(_ *Reducer, s *State) *State {
	return s.editTenant(a.CompanyID, func(cd *CompanyData) bool {
		promos, ok := replaced(cd.Promotions, a.Promotion)
		cd.Promotions = promos
		return ok
	})
}

type DeletePromotion struct {
	CompanyID   string `json:"companyId"`
	PromotionID string `json:"promotionId"`
}

func (DeletePromotion) Kind() Kind { return KindDeletePromotion }

func (a DeletePromotion) apply(_ *Reducer, s *State) *State {
	return s.editTenant(a.CompanyID, func(cd *CompanyData) bool {
		promos, ok := removed(cd.Promotions, a.PromotionID)
		cd.Promotions = promos
		return ok
	})
}
