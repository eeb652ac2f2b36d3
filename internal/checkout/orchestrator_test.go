package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/example/storefront/internal/addressbook"
	"github.com/example/storefront/internal/cart"
	"github.com/example/storefront/internal/models"
	"github.com/example/storefront/internal/payment"
	"github.com/example/storefront/internal/services"
	"github.com/example/storefront/internal/storage"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

type fakeAuth struct{ authed bool }

func (f *fakeAuth) Authenticated() bool { return f.authed }

type fakeOrders struct {
	mu      sync.Mutex
	calls   int
	err     error
	payment *models.GatewayOrder
}

func (f *fakeOrders) CreateOrder(ctx context.Context, draft models.OrderDraft) (*services.CreateOrderResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &services.CreateOrderResult{
		Order:   models.PlacedOrder{ID: "o1", OrderNumber: "#42", Status: "pending", Total: draft.Total},
		Payment: f.payment,
	}, nil
}

func (f *fakeOrders) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeOpener struct {
	outcome payment.Outcome
	err     error
	opened  int
}

func (f *fakeOpener) Open(ctx context.Context, order models.GatewayOrder) (payment.Outcome, error) {
	f.opened++
	return f.outcome, f.err
}

type fixture struct {
	store     *cart.Store
	directory *addressbook.Directory
	orders    *fakeOrders
	opener    *fakeOpener
	flow      *Orchestrator
}

func newFixture(t *testing.T, addresses []models.Address, authed bool) *fixture {
	t.Helper()

	kv, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("storage.Open returned error: %v", err)
	}
	store := cart.NewStore(kv)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(addresses)
	}))
	t.Cleanup(server.Close)

	api := services.NewClient(server.URL, 5*time.Second, staticToken("tok"))
	directory := addressbook.NewDirectory(api)

	orders := &fakeOrders{}
	opener := &fakeOpener{outcome: payment.OutcomeSuccess}
	flow := NewOrchestrator(store, directory, orders, &fakeAuth{authed: authed}, opener)

	return &fixture{store: store, directory: directory, orders: orders, opener: opener, flow: flow}
}

func savedAddress() models.Address {
	return models.Address{
		ID: "a1", Type: models.AddressTypeHome, FirstName: "Asha", LastName: "Verma",
		Phone: "9876543210", Street: "12 MG Road", City: "Bengaluru",
		State: "Karnataka", Pincode: "560001", IsDefault: true,
	}
}

func fillCart(store *cart.Store) {
	store.Add(models.CartLine{ProductID: "p1", Title: "Lamp", UnitPrice: 2000}, 1)
}

func TestEnterEmptyCartSignalsOnce(t *testing.T) {
	f := newFixture(t, nil, true)

	if got := f.flow.Enter(); got != SignalReturnToCart {
		t.Fatalf("expected SignalReturnToCart, got %v", got)
	}
	// The guard condition flaps during initial load; re-entry must not
	// interrupt the user again.
	if got := f.flow.Enter(); got != SignalNone {
		t.Fatalf("expected one-shot signal, got %v on re-entry", got)
	}
}

func TestEnterUnauthenticatedSignalsLoginOnce(t *testing.T) {
	f := newFixture(t, nil, false)
	fillCart(f.store)

	if got := f.flow.Enter(); got != SignalRequireLogin {
		t.Fatalf("expected SignalRequireLogin, got %v", got)
	}
	if got := f.flow.Enter(); got != SignalNone {
		t.Fatalf("expected one-shot login signal, got %v", got)
	}
}

func TestEnterMovesToAddressSelection(t *testing.T) {
	f := newFixture(t, nil, true)
	fillCart(f.store)

	if got := f.flow.Enter(); got != SignalNone {
		t.Fatalf("expected no signal, got %v", got)
	}
	if got := f.flow.State(); got != StateAddressSelection {
		t.Fatalf("expected address selection state, got %v", got)
	}
}

func TestCashOnDeliverySubmitsOnceAndClearsCart(t *testing.T) {
	f := newFixture(t, []models.Address{savedAddress()}, true)
	fillCart(f.store)

	f.flow.Enter()
	if err := f.directory.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	f.flow.UseSavedAddress()

	if err := f.flow.Submit(context.Background(), models.PaymentCashOnDelivery); err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}

	if got := f.orders.callCount(); got != 1 {
		t.Fatalf("expected exactly one order call, got %d", got)
	}
	if f.opener.opened != 0 {
		t.Fatal("cash on delivery must not open a payment session")
	}
	if !f.store.Snapshot().Empty() {
		t.Fatal("cart must be cleared after successful submission")
	}
	if got := f.flow.State(); got != StateCompleted {
		t.Fatalf("expected completed state, got %v", got)
	}
}

func TestValidationFailureStaysInFormReviewWithoutNetworkCall(t *testing.T) {
	f := newFixture(t, nil, true)
	fillCart(f.store)

	f.flow.Enter()
	bad := savedAddress().Fields()
	bad.Phone = "12345"
	f.flow.UseManualEntry(bad)

	err := f.flow.Submit(context.Background(), models.PaymentCashOnDelivery)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if got := f.orders.callCount(); got != 0 {
		t.Fatalf("validation failure must not issue a network call, got %d", got)
	}
	if got := f.flow.State(); got != StateFormReview {
		t.Fatalf("expected form review state, got %v", got)
	}
	if _, ok := f.flow.FieldErrors()["Phone"]; !ok {
		t.Fatalf("expected Phone field error, got %v", f.flow.FieldErrors())
	}
}

func TestMissingSelectionFailsAsValidationError(t *testing.T) {
	// No saved addresses and no manual entry: composition must fail before
	// any submission, not submit with stale data.
	f := newFixture(t, nil, true)
	fillCart(f.store)

	f.flow.Enter()
	if err := f.directory.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	f.flow.UseSavedAddress()

	err := f.flow.Submit(context.Background(), models.PaymentCashOnDelivery)
	if err == nil {
		t.Fatal("expected error with no shipping source")
	}
	if got := f.orders.callCount(); got != 0 {
		t.Fatalf("expected no order call, got %d", got)
	}
}

func TestBackendFailureReturnsToFormReviewWithMessage(t *testing.T) {
	f := newFixture(t, nil, true)
	fillCart(f.store)
	f.orders.err = &services.BackendError{Op: "create order", Status: 500, Message: "inventory exhausted"}

	f.flow.Enter()
	f.flow.UseManualEntry(savedAddress().Fields())

	if err := f.flow.Submit(context.Background(), models.PaymentCashOnDelivery); err == nil {
		t.Fatal("expected submission error")
	}

	if got := f.flow.State(); got != StateFormReview {
		t.Fatalf("expected recoverable return to form review, got %v", got)
	}
	if got := f.flow.Failure(); got != "inventory exhausted" {
		t.Fatalf("expected backend message verbatim, got %q", got)
	}
	if f.store.Snapshot().Empty() {
		t.Fatal("cart must be preserved on failed submission")
	}

	// Resubmission after the failure succeeds.
	f.orders.err = nil
	if err := f.flow.Submit(context.Background(), models.PaymentCashOnDelivery); err != nil {
		t.Fatalf("resubmit returned error: %v", err)
	}
	if got := f.flow.State(); got != StateCompleted {
		t.Fatalf("expected completed after resubmit, got %v", got)
	}
}

func TestOnlinePaymentSuccessClearsCart(t *testing.T) {
	f := newFixture(t, nil, true)
	fillCart(f.store)
	f.orders.payment = &models.GatewayOrder{ID: "gw1", Amount: 2460, Currency: "INR"}
	f.opener.outcome = payment.OutcomeSuccess

	f.flow.Enter()
	f.flow.UseManualEntry(savedAddress().Fields())

	if err := f.flow.Submit(context.Background(), models.PaymentOnline); err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}

	if f.opener.opened != 1 {
		t.Fatalf("expected one payment session, got %d", f.opener.opened)
	}
	if !f.store.Snapshot().Empty() {
		t.Fatal("cart must be cleared after authorised payment")
	}
	if got := f.flow.State(); got != StateCompleted {
		t.Fatalf("expected completed state, got %v", got)
	}
}

func TestOnlinePaymentCancelReturnsToFormReview(t *testing.T) {
	f := newFixture(t, nil, true)
	fillCart(f.store)
	f.orders.payment = &models.GatewayOrder{ID: "gw1", Amount: 2460, Currency: "INR"}
	f.opener.outcome = payment.OutcomeCancelled

	f.flow.Enter()
	f.flow.UseManualEntry(savedAddress().Fields())

	err := f.flow.Submit(context.Background(), models.PaymentOnline)
	if !errors.Is(err, payment.ErrPaymentCancelled) {
		t.Fatalf("expected ErrPaymentCancelled, got %v", err)
	}

	if got := f.flow.State(); got != StateFormReview {
		t.Fatalf("cancel must be recoverable, got state %v", got)
	}
	if f.store.Snapshot().Empty() {
		t.Fatal("cart must be intact after cancelled payment")
	}
}

func TestOnlinePaymentWithoutHandleFails(t *testing.T) {
	f := newFixture(t, nil, true)
	fillCart(f.store)
	// Backend response carries no gateway handle.

	f.flow.Enter()
	f.flow.UseManualEntry(savedAddress().Fields())

	if err := f.flow.Submit(context.Background(), models.PaymentOnline); err == nil {
		t.Fatal("expected error when backend omits the payment handle")
	}
	if got := f.flow.State(); got != StateFormReview {
		t.Fatalf("expected recoverable state, got %v", got)
	}
}

func TestEmptyCartGuardSuppressedAfterSuccess(t *testing.T) {
	f := newFixture(t, nil, true)
	fillCart(f.store)

	f.flow.Enter()
	f.flow.UseManualEntry(savedAddress().Fields())
	if err := f.flow.Submit(context.Background(), models.PaymentCashOnDelivery); err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}

	// The cart is now empty because checkout succeeded; re-entry must not
	// misread that as the empty-cart guard condition.
	if got := f.flow.Enter(); got == SignalReturnToCart {
		t.Fatal("post-success empty cart must not trigger the redirect guard")
	}
}

func TestSubmitFromEmptyCartRejectsWithEmptyCartError(t *testing.T) {
	f := newFixture(t, nil, true)

	f.flow.UseManualEntry(savedAddress().Fields())
	err := f.flow.Submit(context.Background(), models.PaymentCashOnDelivery)

	var emptyErr *EmptyCartError
	if !errors.As(err, &emptyErr) {
		t.Fatalf("expected EmptyCartError, got %v", err)
	}
	if got := f.orders.callCount(); got != 0 {
		t.Fatalf("expected no order call, got %d", got)
	}
}

func TestSwitchingShippingSourceClearsFieldErrors(t *testing.T) {
	f := newFixture(t, []models.Address{savedAddress()}, true)
	fillCart(f.store)

	f.flow.Enter()
	bad := savedAddress().Fields()
	bad.Pincode = "12"
	f.flow.UseManualEntry(bad)
	_ = f.flow.Submit(context.Background(), models.PaymentCashOnDelivery)
	if len(f.flow.FieldErrors()) == 0 {
		t.Fatal("expected field errors from manual entry")
	}

	if err := f.directory.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	f.flow.UseSavedAddress()
	if len(f.flow.FieldErrors()) != 0 {
		t.Fatalf("switching source must clear the other side's errors, got %v", f.flow.FieldErrors())
	}
}
