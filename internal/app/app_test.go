package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/procount/internal/auth"
	"github.com/roach88/procount/internal/domain"
	"github.com/roach88/procount/internal/reducer"
	"github.com/roach88/procount/internal/store"
	"github.com/roach88/procount/internal/testutil"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// newTestApp opens a temp store and an App over it with a company c1
// (admin u1, branch b1) already dispatched.
func newTestApp(t *testing.T) (*App, *store.Store) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "app.db"), store.WithClock(testutil.NewDeterministicClock(testutil.Epoch, time.Millisecond)))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	r := reducer.New(testutil.NewSequenceGenerator(), testutil.NewDeterministicClock(testutil.Epoch, time.Second))
	a := New(s, WithReducer(r))
	a.Dispatch(reducer.AddCompany{
		Company:   domain.Company{ID: "c1", Name: "Corner Shop", Type: domain.CompanySupermarket, Branches: []domain.Branch{{ID: "b1"}}},
		AdminUser: domain.User{ID: "u1", Name: "Ana", Role: "admin"},
	})
	return a, s
}

func addBread(a *App) *reducer.State {
	return a.Dispatch(reducer.AddSupermarketProduct{CompanyID: "c1", Product: domain.Product{
		ID:            "p1",
		Name:          "Bread",
		Price:         dec("5"),
		Cost:          dec("2"),
		StockByBranch: map[string]decimal.Decimal{"b1": dec("30")},
	}})
}

func pending(t *testing.T, s *store.Store) []domain.PendingOperation {
	t.Helper()
	ops, err := s.PendingOperations(context.Background())
	require.NoError(t, err)
	return ops
}

func TestDispatch_MirrorsProductThroughOutbox(t *testing.T) {
	a, s := newTestApp(t)
	addBread(a)
	require.NoError(t, a.Close())

	p, ok, err := store.GetAs[domain.Product](context.Background(), s, store.TableProducts, "p1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Bread", p.Name)
	assert.Equal(t, domain.SyncStatusPending, p.SyncStatus)

	ops := pending(t, s)
	require.Len(t, ops, 1)
	assert.Equal(t, domain.ActionCreate, ops[0].ActionType)
	assert.Equal(t, domain.DataProduct, ops[0].DataType)
	assert.Equal(t, "p1", ops[0].EntityID)
	assert.Equal(t, "c1", ops[0].TenantID)

	_, ok, err = s.Get(context.Background(), store.TableUsers, "u1")
	require.NoError(t, err)
	assert.True(t, ok, "admin user kept locally")
}

func TestDispatch_OutboxFollowsDispatchOrder(t *testing.T) {
	a, s := newTestApp(t)
	st := addBread(a)
	p := st.CompanyData["c1"].Supermarket.Products[0]
	p.Price = dec("6")
	a.Dispatch(reducer.UpdateSupermarketProduct{CompanyID: "c1", Product: p})
	a.Dispatch(reducer.DeleteSupermarketProduct{CompanyID: "c1", ProductID: "p1"})
	require.NoError(t, a.Close())

	ops := pending(t, s)
	require.Len(t, ops, 3)
	assert.Equal(t, domain.ActionCreate, ops[0].ActionType)
	assert.Equal(t, domain.ActionUpdate, ops[1].ActionType)
	assert.Equal(t, domain.ActionDelete, ops[2].ActionType)
	assert.Less(t, ops[0].ID, ops[1].ID)
	assert.Less(t, ops[1].ID, ops[2].ID)

	n, err := s.Count(context.Background(), store.TableProducts)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDispatch_SaleMirrorsStockAndLedger(t *testing.T) {
	a, s := newTestApp(t)
	addBread(a)
	a.Dispatch(reducer.CompleteSupermarketSale{CompanyID: "c1", Sale: domain.Sale{
		ID:            "s1",
		BranchID:      "b1",
		PaymentMethod: domain.PaymentCard,
		Items:         []domain.SaleItem{{ProductID: "p1", Quantity: dec("2"), UnitPrice: dec("5")}},
	}})
	require.NoError(t, a.Close())

	var types []domain.DataType
	for _, op := range pending(t, s) {
		types = append(types, op.DataType)
	}
	assert.Equal(t, []domain.DataType{domain.DataProduct, domain.DataProduct, domain.DataSale}, types)

	p, _, err := store.GetAs[domain.Product](context.Background(), s, store.TableProducts, "p1")
	require.NoError(t, err)
	assert.True(t, dec("28").Equal(p.Stock("b1")))

	_, ok, err := s.Get(context.Background(), store.TableJournalEntries, "je_sale_s1")
	require.NoError(t, err)
	assert.True(t, ok, "journal entries stay local")
}

func TestDispatch_OutboxOnlyTypes(t *testing.T) {
	a, s := newTestApp(t)
	a.Dispatch(reducer.AddPurchaseInvoice{CompanyID: "c1", Invoice: domain.PurchaseInvoice{ID: "pi1", TotalAmount: dec("10")}})
	a.Dispatch(reducer.UpdateSupermarketSettings{CompanyID: "c1", Settings: reducer.SupermarketSettings{LoyaltyPointsPerUnit: dec("1")}})
	require.NoError(t, a.Close())

	ops := pending(t, s)
	require.Len(t, ops, 2)
	assert.Equal(t, domain.DataInvoice, ops[0].DataType)
	assert.Equal(t, "pi1", ops[0].EntityID)
	assert.Equal(t, domain.DataSettings, ops[1].DataType)
	assert.Equal(t, "c1", ops[1].EntityID)
	assert.Equal(t, "c1", ops[1].TenantID)
}

func TestDispatch_NoChangeQueuesNothing(t *testing.T) {
	a, _ := newTestApp(t)
	before := a.Pending()

	st := a.State()
	assert.Same(t, st, a.Dispatch(reducer.Unrecognized{Type: "BOGUS"}))
	assert.Same(t, st, a.Dispatch(reducer.DeleteSupermarketProduct{CompanyID: "c1", ProductID: "ghost"}))
	assert.Equal(t, before, a.Pending())
}

func TestDispatchJSON(t *testing.T) {
	a, _ := newTestApp(t)

	st, err := a.DispatchJSON([]byte(`{"type":"ADD_CURRENCY","payload":{"code":"EUR","name":"Euro"}}`))
	require.NoError(t, err)
	require.Len(t, st.Currencies, 1)

	same, err := a.DispatchJSON([]byte(`{"type":"NOT_A_THING","payload":{}}`))
	require.NoError(t, err)
	assert.Same(t, st, same)

	_, err = a.DispatchJSON([]byte(`{"type":"ADD_CURRENCY","payload":"oops"}`))
	assert.Error(t, err)
}

func TestTenantID_FollowsCurrentUser(t *testing.T) {
	a, _ := newTestApp(t)
	_, ok := a.TenantID()
	assert.False(t, ok)

	a.Dispatch(reducer.UserLogin{User: domain.User{ID: "u1", CompanyID: "c1"}})
	tenant, ok := a.TenantID()
	assert.True(t, ok)
	assert.Equal(t, "c1", tenant)

	a.Dispatch(reducer.UserLogout{})
	_, ok = a.TenantID()
	assert.False(t, ok)
}

func TestNotifySyncFailure(t *testing.T) {
	a, _ := newTestApp(t)
	a.NotifySyncFailure(errors.New("authority unreachable"))
	a.NotifySyncFailure(nil)

	notes := a.State().Notifications
	require.Len(t, notes, 1)
	assert.Equal(t, domain.NotifyError, notes[0].Type)
	assert.Equal(t, SyncFailedMessage, notes[0].Message)
	assert.Equal(t, "authority unreachable", notes[0].Params["error"])
}

func TestRun_AppliesJobsInBackground(t *testing.T) {
	a, s := newTestApp(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	addBread(a)
	require.Eventually(t, func() bool {
		n, err := s.Count(context.Background(), store.TableProducts)
		return err == nil && n == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, a.Close())
	require.NoError(t, <-done)

	mirrored, failed := a.Stats()
	assert.Equal(t, int64(2), mirrored, "company and product")
	assert.Zero(t, failed)
}

func TestRun_CancelLeavesBacklogForClose(t *testing.T) {
	a, s := newTestApp(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, a.Run(ctx), context.Canceled)

	addBread(a)
	require.NoError(t, a.Close())
	assert.Zero(t, a.Pending())

	n, err := s.Count(context.Background(), store.TableProducts)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	a.Dispatch(reducer.DeleteSupermarketProduct{CompanyID: "c1", ProductID: "p1"})
	assert.Zero(t, a.Pending(), "closed app no longer queues writes")
}

func TestFlush_KeepsAppOpen(t *testing.T) {
	a, s := newTestApp(t)
	addBread(a)
	require.NoError(t, a.Flush(context.Background()))
	assert.Zero(t, a.Pending())
	require.Len(t, pending(t, s), 1)

	a.Dispatch(reducer.DeleteSupermarketProduct{CompanyID: "c1", ProductID: "p1"})
	assert.Equal(t, 1, a.Pending(), "writes are still queued after a flush")
	require.NoError(t, a.Close())
	assert.Zero(t, a.Pending())
	require.Len(t, pending(t, s), 2)
}

func TestCustomerRegisterAndLogin(t *testing.T) {
	a, s := newTestApp(t)

	st, err := a.RegisterCustomer("c1", domain.Customer{ID: "cu1", Name: "Cy", Email: "cy@example.com"}, "s3cret")
	require.NoError(t, err)
	require.NotNil(t, st.CurrentCustomer)
	hash := st.CurrentCustomer.PasswordHash
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, "s3cret", hash)

	a.Dispatch(reducer.CustomerLogout{})
	_, err = a.LoginCustomer("c1", "CY@example.com", "wrong")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	_, err = a.LoginCustomer("c2", "cy@example.com", "s3cret")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	st, err = a.LoginCustomer("c1", "CY@example.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "cu1", st.CurrentCustomer.ID)

	require.NoError(t, a.Close())
	ops := pending(t, s)
	require.Len(t, ops, 1)
	assert.Equal(t, domain.DataCustomer, ops[0].DataType)
}
