package checkout

import (
	"context"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/talgatbekov/bazarline-backend/pkg/config"
	"github.com/talgatbekov/bazarline-backend/pkg/enums"
	pkgerrors "github.com/talgatbekov/bazarline-backend/pkg/errors"
	"github.com/talgatbekov/bazarline-backend/pkg/logger"
	"github.com/talgatbekov/bazarline-backend/pkg/shopapi"
	"github.com/talgatbekov/bazarline-backend/pkg/types"
)

type fakeProfileAPI struct {
	getProfileFn         func(ctx context.Context) (*shopapi.Profile, error)
	listAddressesFn      func(ctx context.Context) ([]types.Address, error)
	getAddressFn         func(ctx context.Context, addressID string) (*types.Address, error)
	listPaymentMethodsFn func(ctx context.Context) ([]types.PaymentMethod, error)
	getPaymentMethodFn   func(ctx context.Context, methodID string) (*types.PaymentMethod, error)
}

func (f *fakeProfileAPI) GetProfile(ctx context.Context) (*shopapi.Profile, error) {
	if f.getProfileFn == nil {
		return &shopapi.Profile{Name: "Aigerim", Phone: "+996555000111"}, nil
	}
	return f.getProfileFn(ctx)
}

func (f *fakeProfileAPI) ListAddresses(ctx context.Context) ([]types.Address, error) {
	if f.listAddressesFn == nil {
		return nil, nil
	}
	return f.listAddressesFn(ctx)
}

func (f *fakeProfileAPI) GetAddress(ctx context.Context, addressID string) (*types.Address, error) {
	return f.getAddressFn(ctx, addressID)
}

func (f *fakeProfileAPI) ListPaymentMethods(ctx context.Context) ([]types.PaymentMethod, error) {
	if f.listPaymentMethodsFn == nil {
		return nil, nil
	}
	return f.listPaymentMethodsFn(ctx)
}

func (f *fakeProfileAPI) GetPaymentMethod(ctx context.Context, methodID string) (*types.PaymentMethod, error) {
	return f.getPaymentMethodFn(ctx, methodID)
}

type fakeOrderAPI struct {
	createOrderFn func(ctx context.Context, input shopapi.CreateOrderInput) (*shopapi.CreateOrderResult, error)
	calls         atomic.Int32
}

func (f *fakeOrderAPI) CreateOrder(ctx context.Context, input shopapi.CreateOrderInput) (*shopapi.CreateOrderResult, error) {
	f.calls.Add(1)
	if f.createOrderFn == nil {
		return &shopapi.CreateOrderResult{OrderNumber: "BZ-1", TotalAmount: 2650}, nil
	}
	return f.createOrderFn(ctx, input)
}

type fakeCartStore struct {
	mu      sync.Mutex
	items   []types.CartLineItem
	fetchFn func(ctx context.Context, userID string) ([]types.CartLineItem, error)
	cleared int
}

func (f *fakeCartStore) Fetch(ctx context.Context, userID string) ([]types.CartLineItem, error) {
	if f.fetchFn != nil {
		return f.fetchFn(ctx, userID)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.items, nil
}

func (f *fakeCartStore) Clear(context.Context, string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleared++
	f.items = nil
	return nil
}

func (f *fakeCartStore) clearedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cleared
}

type fakeMarketStore struct {
	market enums.Market
}

func (f *fakeMarketStore) Get(context.Context, string) (enums.Market, error) {
	if f.market == "" {
		return enums.MarketDomestic, nil
	}
	return f.market, nil
}

type testEnv struct {
	svc    Service
	impl   *service
	store  *Store
	cart   *fakeCartStore
	orders *fakeOrderAPI
}

func newTestEnv(t *testing.T, profile *fakeProfileAPI, orders *fakeOrderAPI) *testEnv {
	t.Helper()
	if profile == nil {
		profile = &fakeProfileAPI{}
	}
	if orders == nil {
		orders = &fakeOrderAPI{}
	}
	store := NewStore(30 * time.Minute)
	cart := &fakeCartStore{items: []types.CartLineItem{
		{ProductID: "p1", ProductName: "plov set", UnitPrice: 1000, Quantity: 2},
		{ProductID: "p2", ProductName: "tea", UnitPrice: 500, Quantity: 1},
	}}

	svc, err := NewService(ServiceParams{
		Logger:  logger.New(logger.Options{ServiceName: "checkout-test", Output: io.Discard}),
		Store:   store,
		Cart:    cart,
		Markets: &fakeMarketStore{},
		Profile: profile,
		Orders:  orders,
		Config: config.CheckoutConfig{
			DeliveryFee:        150,
			Currency:           "KGS",
			DeliveryWindowDays: 5,
			SessionTTL:         30 * time.Minute,
		},
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	impl := svc.(*service)
	impl.now = func() time.Time {
		return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	}
	return &testEnv{svc: svc, impl: impl, store: store, cart: cart, orders: orders}
}

func (e *testEnv) walkToReview(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	if _, err := e.svc.Begin(ctx, "u-1"); err != nil {
		t.Fatalf("begin: %v", err)
	}
	_, err := e.svc.ChooseAddress(ctx, "u-1", AddressRequest{
		Fields: &types.AddressFields{Street: "Lenina", Building: "5", City: "Bishkek"},
	})
	if err != nil {
		t.Fatalf("choose address: %v", err)
	}
	view, err := e.svc.ChoosePayment(ctx, "u-1", PaymentRequest{Type: "cash"})
	if err != nil {
		t.Fatalf("choose payment: %v", err)
	}
	if view.Step != enums.CheckoutStepReview {
		t.Fatalf("step = %q, want review", view.Step)
	}
}

func TestBeginRejectsEmptyCart(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	env.cart.items = nil

	_, err := env.svc.Begin(context.Background(), "u-1")
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestBeginPrefillsDefaultsWithoutAdvancing(t *testing.T) {
	profile := &fakeProfileAPI{
		listAddressesFn: func(context.Context) ([]types.Address, error) {
			return []types.Address{
				{ID: "a-1", FullAddress: "other place"},
				{ID: "a-2", FullAddress: "street Lenina, building 5, Bishkek", IsDefault: true},
			}, nil
		},
		listPaymentMethodsFn: func(context.Context) ([]types.PaymentMethod, error) {
			return []types.PaymentMethod{
				{ID: "pm-1", Type: enums.PaymentMethodTypeCard, CardBrand: "Visa", CardLast4: "4242", IsDefault: true},
			}, nil
		},
	}
	env := newTestEnv(t, profile, nil)

	view, err := env.svc.Begin(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	if view.Step != enums.CheckoutStepAddress {
		t.Fatalf("pre-fill must not advance the step, got %q", view.Step)
	}
	if view.SuggestedAddress == nil || view.SuggestedAddress.ID != "a-2" {
		t.Fatalf("expected default address suggestion, got %+v", view.SuggestedAddress)
	}
	if view.SuggestedPayment == nil || view.SuggestedPayment.MethodID != "pm-1" {
		t.Fatalf("expected default payment suggestion, got %+v", view.SuggestedPayment)
	}
	if view.Address != nil || view.Payment != nil {
		t.Fatal("suggestions must not count as confirmed selections")
	}
}

func TestBeginSuggestsCashWhenNoSavedMethods(t *testing.T) {
	env := newTestEnv(t, &fakeProfileAPI{}, nil)

	view, err := env.svc.Begin(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	if view.SuggestedPayment == nil || view.SuggestedPayment.Code != "cash" {
		t.Fatalf("expected cash suggestion, got %+v", view.SuggestedPayment)
	}
}

func TestBeginResumesExistingSession(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	ctx := context.Background()

	if _, err := env.svc.Begin(ctx, "u-1"); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if _, err := env.svc.ChooseAddress(ctx, "u-1", AddressRequest{
		Fields: &types.AddressFields{Street: "Lenina", Building: "5", City: "Bishkek"},
	}); err != nil {
		t.Fatalf("choose address: %v", err)
	}

	view, err := env.svc.Begin(ctx, "u-1")
	if err != nil {
		t.Fatalf("second begin failed: %v", err)
	}
	if view.Step != enums.CheckoutStepPayment {
		t.Fatalf("resume should land on payment, got %q", view.Step)
	}
	if view.Address == nil {
		t.Fatal("confirmed address lost on resume")
	}
}

func TestChooseAddressBySavedID(t *testing.T) {
	profile := &fakeProfileAPI{
		getAddressFn: func(_ context.Context, addressID string) (*types.Address, error) {
			if addressID != "a-1" {
				t.Fatalf("unexpected address id %q", addressID)
			}
			return &types.Address{
				ID:     "a-1",
				Fields: types.AddressFields{Street: "Lenina", Building: "5", City: "Bishkek"},
			}, nil
		},
	}
	env := newTestEnv(t, profile, nil)
	ctx := context.Background()

	if _, err := env.svc.Begin(ctx, "u-1"); err != nil {
		t.Fatalf("begin: %v", err)
	}
	view, err := env.svc.ChooseAddress(ctx, "u-1", AddressRequest{AddressID: "a-1"})
	if err != nil {
		t.Fatalf("choose address failed: %v", err)
	}
	if view.Address == nil || view.Address.FullAddress != "street Lenina, building 5, Bishkek" {
		t.Fatalf("saved address without composed string must be composed, got %+v", view.Address)
	}
}

func TestConfirmWithoutAddressSkipsNetwork(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	ctx := context.Background()

	if _, err := env.svc.Begin(ctx, "u-1"); err != nil {
		t.Fatalf("begin: %v", err)
	}

	_, err := env.svc.Confirm(ctx, "u-1", ConfirmRequest{DeliveryDate: "2026-03-12"})
	if err == nil {
		t.Fatal("expected confirm to fail before review")
	}
	if env.orders.calls.Load() != 0 {
		t.Fatalf("validation failure must not reach the network, got %d calls", env.orders.calls.Load())
	}
	if env.cart.clearedCount() != 0 {
		t.Fatal("cart must stay intact")
	}
}

func TestConfirmSuccessClearsCart(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	env.walkToReview(t)

	view, err := env.svc.Confirm(context.Background(), "u-1", ConfirmRequest{
		DeliveryDate:   "2026-03-12",
		DeliveryNote:   "call on arrival",
		SecondaryPhone: "+996700111222",
	})
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if view.Step != enums.CheckoutStepSuccess {
		t.Fatalf("step = %q, want success", view.Step)
	}
	if view.OrderNumber != "BZ-1" || view.TotalAmount != 2650 {
		t.Fatalf("unexpected confirmation %+v", view)
	}
	if env.cart.clearedCount() != 1 {
		t.Fatalf("cart cleared %d times, want exactly once", env.cart.clearedCount())
	}
}

func TestConfirmFailureLeavesReviewAndCart(t *testing.T) {
	orders := &fakeOrderAPI{
		createOrderFn: func(context.Context, shopapi.CreateOrderInput) (*shopapi.CreateOrderResult, error) {
			return nil, pkgerrors.New(pkgerrors.CodeDependency, "order api unreachable")
		},
	}
	env := newTestEnv(t, nil, orders)
	env.walkToReview(t)
	ctx := context.Background()

	_, err := env.svc.Confirm(ctx, "u-1", ConfirmRequest{DeliveryDate: "2026-03-12"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}

	session, ok := env.store.Get("u-1")
	if !ok || session.Step != enums.CheckoutStepReview {
		t.Fatalf("failed submission must stay at review, got %+v", session)
	}
	if env.cart.clearedCount() != 0 {
		t.Fatal("cart must not be cleared on failure")
	}

	// The failure is retryable: a second confirm succeeds.
	orders.createOrderFn = nil
	view, err := env.svc.Confirm(ctx, "u-1", ConfirmRequest{DeliveryDate: "2026-03-12"})
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if view.Step != enums.CheckoutStepSuccess {
		t.Fatalf("step = %q, want success after retry", view.Step)
	}
}

func TestConfirmIsSingleFlight(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	orders := &fakeOrderAPI{
		createOrderFn: func(context.Context, shopapi.CreateOrderInput) (*shopapi.CreateOrderResult, error) {
			close(started)
			<-release
			return &shopapi.CreateOrderResult{OrderNumber: "BZ-9", TotalAmount: 2650}, nil
		},
	}
	env := newTestEnv(t, nil, orders)
	env.walkToReview(t)
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := env.svc.Confirm(ctx, "u-1", ConfirmRequest{DeliveryDate: "2026-03-12"}); err != nil {
			t.Errorf("first confirm failed: %v", err)
		}
	}()

	<-started
	view, err := env.svc.Confirm(ctx, "u-1", ConfirmRequest{DeliveryDate: "2026-03-12"})
	if err != nil {
		t.Fatalf("duplicate confirm must be dropped silently, got %v", err)
	}
	if view.Step != enums.CheckoutStepReview {
		t.Fatalf("dropped confirm reports current step, got %q", view.Step)
	}

	close(release)
	<-done

	if env.orders.calls.Load() != 1 {
		t.Fatalf("expected exactly one order call, got %d", env.orders.calls.Load())
	}
}

func TestConfirmValidatesDeliveryDate(t *testing.T) {
	tests := []struct {
		name string
		date string
	}{
		{name: "missing", date: ""},
		{name: "malformed", date: "12-03-2026"},
		{name: "today", date: "2026-03-10"},
		{name: "past", date: "2026-03-01"},
		{name: "beyond window", date: "2026-03-20"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t, nil, nil)
			env.walkToReview(t)

			_, err := env.svc.Confirm(context.Background(), "u-1", ConfirmRequest{DeliveryDate: tc.date})
			if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if !strings.Contains(pkgerrors.As(err).Message(), "delivery date") {
				t.Fatalf("message must name the delivery date, got %q", pkgerrors.As(err).Message())
			}
			if env.orders.calls.Load() != 0 {
				t.Fatalf("invalid date must not reach the network")
			}
		})
	}
}

func TestCancelDiscardsSession(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	env.walkToReview(t)
	ctx := context.Background()

	if err := env.svc.Cancel(ctx, "u-1"); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if _, ok := env.store.Get("u-1"); ok {
		t.Fatal("session must be discarded on cancel")
	}

	view, err := env.svc.Snapshot(ctx, "u-1")
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
	if view.Step != enums.CheckoutStepNone {
		t.Fatalf("step = %q, want none after cancel", view.Step)
	}
}

func TestAcknowledgeClosesCompletedCheckout(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	env.walkToReview(t)
	ctx := context.Background()

	if _, err := env.svc.Confirm(ctx, "u-1", ConfirmRequest{DeliveryDate: "2026-03-12"}); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}

	view, err := env.svc.Acknowledge(ctx, "u-1")
	if err != nil {
		t.Fatalf("acknowledge failed: %v", err)
	}
	if view.Step != enums.CheckoutStepNone {
		t.Fatalf("step = %q, want none", view.Step)
	}
	if view.OrderNumber != "BZ-1" {
		t.Fatalf("acknowledged view keeps the order number, got %q", view.OrderNumber)
	}
	if _, ok := env.store.Get("u-1"); ok {
		t.Fatal("session must be gone after acknowledge")
	}
}

func TestAcknowledgeBeforeSuccessFails(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	env.walkToReview(t)

	_, err := env.svc.Acknowledge(context.Background(), "u-1")
	if !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestSnapshotWithoutSession(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	view, err := env.svc.Snapshot(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
	if view.Step != enums.CheckoutStepNone {
		t.Fatalf("step = %q, want none", view.Step)
	}
	if view.Quote.Subtotal != 2500 || view.Quote.Total != 2650 {
		t.Fatalf("unexpected quote %+v", view.Quote)
	}
}
