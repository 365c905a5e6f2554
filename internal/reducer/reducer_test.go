package reducer

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/procount/internal/domain"
)

func TestReduce_UnknownActionReturnsSameState(t *testing.T) {
	r := newTestReducer()
	s := newStore(t, r)

	assert.Same(t, s, r.Reduce(s, Unrecognized{Type: "SOMETHING_NEW"}))
	assert.Same(t, s, r.Reduce(s, nil))
}

func TestReduce_NilStateStartsEmpty(t *testing.T) {
	r := newTestReducer()
	s := r.Reduce(nil, AddCurrency{Currency: domain.Currency{Code: "EUR", Name: "Euro"}})
	require.Len(t, s.Currencies, 1)
	assert.Equal(t, "EUR", s.Currencies[0].Code)
}

func TestReduce_DoesNotMutateInput(t *testing.T) {
	r := newTestReducer()
	s := newStore(t, r)
	before, err := json.Marshal(s)
	require.NoError(t, err)

	next := r.Reduce(s, CompleteSupermarketSale{CompanyID: "c1", Sale: domain.Sale{
		BranchID:      "b1",
		PaymentMethod: domain.PaymentCard,
		Items:         []domain.SaleItem{{ProductID: "p1", Quantity: dec("3"), UnitPrice: dec("5")}},
	}})
	require.NotSame(t, s, next)

	after, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))
}

func TestReduce_SharesUntouchedBranches(t *testing.T) {
	r := newTestReducer()
	s := newStore(t, r)

	next := r.Reduce(s, AddSupermarketProduct{CompanyID: "c2", Product: domain.Product{ID: "milk", Name: "Milk", Price: dec("1.20")}})

	assert.Same(t, s.CompanyData["c1"], next.CompanyData["c1"], "other tenant must be shared")
	assert.Same(t, s.AccountingData["c2"], next.AccountingData["c2"], "ledger untouched")
	assert.NotSame(t, s.CompanyData["c2"], next.CompanyData["c2"])
}

func TestReduce_NoOpReturnsSamePointer(t *testing.T) {
	r := newTestReducer()
	s := newStore(t, r)

	cases := map[string]Action{
		"missing tenant":          AddRole{CompanyID: "nope", Role: domain.Role{Name: "x"}},
		"update missing product":  UpdateSupermarketProduct{CompanyID: "c1", Product: domain.Product{ID: "ghost"}},
		"delete missing role":     DeleteRole{CompanyID: "c1", RoleID: "ghost"},
		"vertical mismatch":       AddMenuItem{CompanyID: "c1", Item: domain.MenuItem{Name: "Soup"}},
		"duplicate company":       AddCompany{Company: domain.Company{ID: "c1"}},
		"logout without user":     UserLogout{},
		"clear empty":             ClearAllNotifications{},
		"sale with unknown item": CompleteSupermarketSale{CompanyID: "c1", Sale: domain.Sale{
			BranchID: "b1",
			Items:    []domain.SaleItem{{ProductID: "ghost", Quantity: dec("1")}},
		}},
		"unbalanced journal": AddJournalEntry{CompanyID: "c1", Entry: domain.JournalEntry{
			Lines: []domain.JournalLine{{AccountID: "1001", Debit: dec("10")}},
		}},
	}
	for name, a := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Same(t, s, r.Reduce(s, a))
		})
	}
}

func TestReduce_TenantIsolation(t *testing.T) {
	r := newTestReducer()
	s := newStore(t, r)

	next := r.Reduce(s, AddSupermarketProduct{CompanyID: "c2", Product: domain.Product{ID: "milk", Name: "Milk", Price: dec("1.20")}})

	c2 := next.CompanyData["c2"].Supermarket.Products
	require.Len(t, c2, 1)
	assert.Equal(t, "Milk", c2[0].Name)
	assert.Equal(t, "c2", c2[0].CompanyID)
	assert.Equal(t, domain.SyncStatusPending, c2[0].SyncStatus)

	c1 := next.CompanyData["c1"].Supermarket.Products
	require.Len(t, c1, 1)
	assert.Equal(t, "p1", c1[0].ID)
}

func TestReduce_DeterministicForSameInputs(t *testing.T) {
	run := func() []byte {
		r := newTestReducer()
		s := newStore(t, r)
		s = reduceAll(t, r, s,
			OpenCashDrawer{CompanyID: "c1", Session: domain.CashDrawerSession{BranchID: "b1", OpeningBalance: dec("100")}},
			CompleteSupermarketSale{CompanyID: "c1", Sale: domain.Sale{
				BranchID:      "b1",
				PaymentMethod: domain.PaymentCash,
				Items:         []domain.SaleItem{{ProductID: "p1", Quantity: dec("2"), UnitPrice: dec("5")}},
			}},
		)
		b, err := json.Marshal(s)
		require.NoError(t, err)
		return b
	}
	assert.JSONEq(t, string(run()), string(run()))
}

func TestAddCompany_CreatesTenantData(t *testing.T) {
	r := newTestReducer()
	s := reduceAll(t, r, NewState(),
		AddCompany{Company: domain.Company{Name: "Bistro", Type: domain.CompanyRestaurant}, AdminUser: domain.User{Name: "Chef"}},
		AddCompany{Company: domain.Company{Name: "Me", Type: domain.CompanyPersonal}, AdminUser: domain.User{Name: "Me"}},
	)

	require.Len(t, s.Companies, 2)
	bistro := s.Companies[0]
	assert.Equal(t, "comp_1", bistro.ID)
	assert.Equal(t, "user_2", bistro.AdminUserID)
	assert.NotNil(t, s.CompanyData[bistro.ID].Restaurant)
	assert.Nil(t, s.CompanyData[bistro.ID].Supermarket)
	require.NotNil(t, s.AccountingData[bistro.ID])
	assert.Len(t, s.AccountingData[bistro.ID].Accounts, len(domain.DefaultChartOfAccounts()))

	me := s.Companies[1]
	assert.NotNil(t, s.CompanyData[me.ID].Personal)
	assert.Nil(t, s.AccountingData[me.ID], "personal tenants keep no ledger")
}

func TestDeleteCompany_RemovesEverythingOfTenant(t *testing.T) {
	r := newTestReducer()
	s := reduceAll(t, r, newStore(t, r), ProcessPayroll{CompanyID: "c1", Period: "2024-01"})

	next := r.Reduce(s, DeleteCompany{CompanyID: "c1"})

	_, ok := next.Company("c1")
	assert.False(t, ok)
	assert.NotContains(t, next.CompanyData, "c1")
	assert.NotContains(t, next.AccountingData, "c1")
	assert.NotContains(t, next.PayrollRecords, "c1")
	for _, u := range next.Users {
		assert.NotEqual(t, "c1", u.CompanyID)
	}
	assert.Contains(t, next.CompanyData, "c2")
}

func TestCustomerRegister_LogsCustomerIn(t *testing.T) {
	r := newTestReducer()
	s := newStore(t, r)

	next := r.Reduce(s, CustomerRegister{CompanyID: "c1", Customer: domain.Customer{Name: "Cy", Phone: "555"}})

	require.NotNil(t, next.CurrentCustomer)
	assert.Equal(t, "Cy", next.CurrentCustomer.Name)
	require.Len(t, next.CompanyData["c1"].Customers, 1)
	assert.Equal(t, next.CurrentCustomer.ID, next.CompanyData["c1"].Customers[0].ID)
	assert.True(t, next.CurrentCustomer.LoyaltyPoints.IsZero())
}

func TestUpdateCustomerProfile_KeepsPasswordWhenEmpty(t *testing.T) {
	r := newTestReducer()
	s := reduceAll(t, r, newStore(t, r),
		CustomerRegister{CompanyID: "c1", Customer: domain.Customer{ID: "cu1", Name: "Cy", PasswordHash: "h1"}},
	)
	empty, name := "", "Cyd"

	next := r.Reduce(s, UpdateCustomerProfile{CompanyID: "c1", CustomerID: "cu1", Updates: CustomerUpdates{Name: &name, PasswordHash: &empty}})

	c := next.CompanyData["c1"].Customers[0]
	assert.Equal(t, "Cyd", c.Name)
	assert.Equal(t, "h1", c.PasswordHash)
	assert.Equal(t, "Cyd", next.CurrentCustomer.Name)
}

func TestUpdateUserPreferences_MergesPerCompanyType(t *testing.T) {
	r := newTestReducer()
	s := newStore(t, r)

	s = reduceAll(t, r, s,
		UpdateUserPreferences{UserID: "u1", CompanyType: domain.CompanySupermarket, Preferences: map[string]string{"view": "grid"}},
		UpdateUserPreferences{UserID: "u1", CompanyType: domain.CompanySupermarket, Preferences: map[string]string{"sort": "name"}},
	)

	u, ok := find(s.Users, "u1")
	require.True(t, ok)
	assert.Equal(t, map[string]string{"view": "grid", "sort": "name"}, u.Preferences["supermarket"])
}

func TestLogLoginHistory_AppendsAuditEntry(t *testing.T) {
	r := newTestReducer()
	s := newStore(t, r)

	next := r.Reduce(s, LogLoginHistory{Entry: domain.LoginEntry{CompanyID: "c1", UserID: "u1", UserName: "Ana", IPAddress: "10.0.0.1", City: "Lyon", Country: "FR"}})

	cd := next.CompanyData["c1"]
	require.Len(t, cd.LoginHistory, 1)
	require.Len(t, cd.AuditLog, 1)
	assert.Equal(t, "USER_LOGIN", cd.AuditLog[0].ActionType)
	assert.Equal(t, "Lyon, FR", cd.AuditLog[0].DetailsParams["location"])
}

func TestNotifications(t *testing.T) {
	r := newTestReducer()
	s := r.Reduce(NewState(), AddNotification{Notification: domain.Notification{Message: "sync failed", Type: domain.NotifyError}})
	require.Len(t, s.Notifications, 1)
	id := s.Notifications[0].ID

	assert.Same(t, s, r.Reduce(s, RemoveNotification{ID: "missing"}))
	s = r.Reduce(s, RemoveNotification{ID: id})
	assert.Empty(t, s.Notifications)

	s = reduceAll(t, r, s,
		AddNotification{Notification: domain.Notification{Message: "a"}},
		AddNotification{Notification: domain.Notification{Message: "b"}},
	)
	assert.Equal(t, domain.NotifyInfo, s.Notifications[0].Type)
	s = r.Reduce(s, ClearAllNotifications{})
	assert.Empty(t, s.Notifications)
}

func TestUpdateSystemIntegrations_MergesGateways(t *testing.T) {
	r := newTestReducer()
	s := r.Reduce(NewState(), UpdateSystemIntegrations{Integrations: domain.SystemIntegrations{
		SMSConfig: &domain.GatewayConfig{Provider: "twilio", Enabled: true},
	}})
	s = r.Reduce(s, UpdateSystemIntegrations{Integrations: domain.SystemIntegrations{
		EmailConfig: &domain.GatewayConfig{Host: "smtp.local", Port: 25},
	}})

	require.NotNil(t, s.SystemIntegrations.SMSConfig)
	require.NotNil(t, s.SystemIntegrations.EmailConfig)
	assert.Equal(t, "twilio", s.SystemIntegrations.SMSConfig.Provider)
	assert.Equal(t, 25, s.SystemIntegrations.EmailConfig.Port)
}

func TestDecode(t *testing.T) {
	t.Run("object payload", func(t *testing.T) {
		a, err := Decode("ADD_SUPERMARKET_PRODUCT", json.RawMessage(`{"companyId":"c2","product":{"name":"Milk","price":"1.2"}}`))
		require.NoError(t, err)
		add, ok := a.(AddSupermarketProduct)
		require.True(t, ok, "got %T", a)
		assert.Equal(t, "c2", add.CompanyID)
		assert.True(t, add.Product.Price.Equal(decimal.RequireFromString("1.2")))
	})

	t.Run("bare payload", func(t *testing.T) {
		a, err := Decode("DELETE_COMPANY", json.RawMessage(`"c1"`))
		require.NoError(t, err)
		assert.Equal(t, DeleteCompany{CompanyID: "c1"}, a)
	})

	t.Run("no payload", func(t *testing.T) {
		a, err := Decode("USER_LOGOUT", nil)
		require.NoError(t, err)
		assert.Equal(t, UserLogout{}, a)
	})

	t.Run("unknown kind", func(t *testing.T) {
		a, err := Decode("LAUNCH_ROCKET", json.RawMessage(`{"x":1}`))
		require.NoError(t, err)
		assert.Equal(t, Unrecognized{Type: "LAUNCH_ROCKET"}, a)
	})

	t.Run("malformed payload", func(t *testing.T) {
		_, err := Decode("ADD_ROLE", json.RawMessage(`{"companyId":`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ADD_ROLE")
	})

	t.Run("envelope", func(t *testing.T) {
		a, err := DecodeEnvelope([]byte(`{"type":"REMOVE_NOTIFICATION","payload":"n1"}`))
		require.NoError(t, err)
		assert.Equal(t, RemoveNotification{ID: "n1"}, a)

		_, err = DecodeEnvelope([]byte(`{"payload":{}}`))
		assert.Error(t, err)
	})
}

func TestEncode_RoundTripsBarePayloads(t *testing.T) {
	in := AddEmployee{User: domain.User{ID: "u5", Name: "Eve", CompanyID: "c1", BaseSalary: dec("1500")}}

	env, err := Encode(in)
	require.NoError(t, err)
	assert.Equal(t, "ADD_EMPLOYEE", env.Type)
	assert.Contains(t, string(env.Payload), `"name":"Eve"`)

	out, err := Decode(env.Type, env.Payload)
	require.NoError(t, err)
	got, ok := out.(AddEmployee)
	require.True(t, ok)
	assert.Equal(t, "u5", got.User.ID)
	assert.True(t, got.User.BaseSalary.Equal(dec("1500")))
}

func TestKinds_AllDecodable(t *testing.T) {
	kinds := Kinds()
	require.NotEmpty(t, kinds)
	for _, k := range kinds {
		a, err := Decode(string(k), nil)
		require.NoError(t, err, k)
		assert.Equal(t, k, a.Kind())
	}
}
