package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/example/storefront/internal/addressbook"
	"github.com/example/storefront/internal/cart"
	"github.com/example/storefront/internal/models"
	"github.com/example/storefront/internal/payment"
	"github.com/example/storefront/internal/services"
	"github.com/example/storefront/internal/utils"
)

// State of the checkout flow.
type State int

const (
	StateIdle State = iota
	StateAddressSelection
	StateFormReview
	StateSubmitting
	StateOnlinePaymentPending
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAddressSelection:
		return "address_selection"
	case StateFormReview:
		return "form_review"
	case StateSubmitting:
		return "submitting"
	case StateOnlinePaymentPending:
		return "online_payment_pending"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Signal is an externally handled outcome of the entry guards.
type Signal int

const (
	SignalNone Signal = iota
	// SignalReturnToCart: the cart is empty, send the user back to it.
	SignalReturnToCart
	// SignalRequireLogin: checkout needs an authenticated session.
	SignalRequireLogin
)

// ErrSubmissionInFlight rejects a second submit while one is pending. The
// triggering control is expected to be disabled, this is the backstop.
var ErrSubmissionInFlight = errors.New("submission already in progress")

// OrderService is the slice of the backend client checkout needs.
type OrderService interface {
	CreateOrder(ctx context.Context, draft models.OrderDraft) (*services.CreateOrderResult, error)
}

// AuthState gates entry on the session's auth status.
type AuthState interface {
	Authenticated() bool
}

// Orchestrator drives the checkout flow over one cart snapshot. Exactly one
// of {saved address selection, manual entry} is active at a time; switching
// clears the other side's validation errors.
type Orchestrator struct {
	cartStore *cart.Store
	directory *addressbook.Directory
	orders    OrderService
	session   AuthState
	payments  payment.SessionOpener

	mu          sync.Mutex
	state       State
	useManual   bool
	manual      *models.AddressFields
	customer    models.CustomerInfo
	fieldErrors map[string]string
	failure     string
	result      *services.CreateOrderResult

	// One-shot entry guards: the conditions flap during initial load and
	// must interrupt the user at most once per mount.
	emptyCartSignaled bool
	loginSignaled     bool
	// The cart empties as a result of success; that must not re-trigger the
	// empty-cart guard while a submission or payment is still in flight.
	suppressEmptyRedirect bool
}

// NewOrchestrator wires the checkout flow. All collaborators are explicit;
// the orchestrator holds no ambient globals.
func NewOrchestrator(cartStore *cart.Store, directory *addressbook.Directory, orders OrderService, session AuthState, payments payment.SessionOpener) *Orchestrator {
	return &Orchestrator{
		cartStore: cartStore,
		directory: directory,
		orders:    orders,
		session:   session,
		payments:  payments,
		state:     StateIdle,
	}
}

// Enter runs the entry guards and, when both pass, moves to address
// selection. Each guard signal fires at most once per orchestrator.
func (o *Orchestrator) Enter() Signal {
	o.mu.Lock()
	defer o.mu.Unlock()

	// A completed flow empties the cart by design; entry guards no longer
	// apply, navigation to the confirmation is the caller's business.
	if o.state == StateCompleted {
		return SignalNone
	}

	if !o.session.Authenticated() {
		if o.loginSignaled {
			return SignalNone
		}
		o.loginSignaled = true
		return SignalRequireLogin
	}

	if o.cartStore.Snapshot().Empty() && !o.suppressEmptyRedirect {
		if o.emptyCartSignaled {
			return SignalNone
		}
		o.emptyCartSignaled = true
		return SignalReturnToCart
	}

	if o.state == StateIdle {
		o.state = StateAddressSelection
	}
	return SignalNone
}

// State returns the current state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// FieldErrors returns the per-field messages from the last failed submit.
func (o *Orchestrator) FieldErrors() map[string]string {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make(map[string]string, len(o.fieldErrors))
	for k, v := range o.fieldErrors {
		out[k] = v
	}
	return out
}

// Failure returns the user-facing message of the last failed submission.
func (o *Orchestrator) Failure() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.failure
}

// Result returns the backend's record after a completed submission.
func (o *Orchestrator) Result() *services.CreateOrderResult {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.result
}

// SetCustomer records the buyer's contact details for the draft.
func (o *Orchestrator) SetCustomer(info models.CustomerInfo) {
	o.mu.Lock()
	o.customer = info
	o.mu.Unlock()
}

// UseSavedAddress switches to the directory's selection, discarding manual
// entry and its validation errors.
func (o *Orchestrator) UseSavedAddress() {
	o.mu.Lock()
	o.useManual = false
	o.manual = nil
	o.fieldErrors = nil
	o.advanceToReviewLocked()
	o.mu.Unlock()
}

// UseManualEntry switches to manually entered shipping fields, discarding
// the saved-address side's validation errors.
func (o *Orchestrator) UseManualEntry(fields models.AddressFields) {
	o.mu.Lock()
	o.useManual = true
	o.manual = &fields
	o.fieldErrors = nil
	o.advanceToReviewLocked()
	o.mu.Unlock()
}

func (o *Orchestrator) advanceToReviewLocked() {
	if o.state == StateAddressSelection || o.state == StateFailed {
		o.state = StateFormReview
	}
}

// Submit composes and sends the order. Validation failures keep the flow in
// form review with field errors surfaced and no network call issued. For
// cash on delivery, success clears the cart and completes. For online
// payment, the gateway handle from the response opens the external payment
// session and the flow completes or returns to review on cancellation.
func (o *Orchestrator) Submit(ctx context.Context, paymentMode string) error {
	o.mu.Lock()
	switch o.state {
	case StateSubmitting, StateOnlinePaymentPending:
		o.mu.Unlock()
		return ErrSubmissionInFlight
	case StateCompleted:
		o.mu.Unlock()
		return fmt.Errorf("checkout already completed")
	}

	snapshot := o.cartStore.Snapshot()
	shipping, addressID := o.shippingSourceLocked()
	customer := o.effectiveCustomerLocked(shipping)
	o.mu.Unlock()

	draft, err := Compose(snapshot, shipping, addressID, customer, paymentMode)
	if err != nil {
		return o.rejectDraft(err)
	}

	o.mu.Lock()
	o.state = StateSubmitting
	o.suppressEmptyRedirect = true
	o.fieldErrors = nil
	o.failure = ""
	o.mu.Unlock()

	result, err := o.orders.CreateOrder(ctx, *draft)
	if err != nil {
		return o.failSubmission(err)
	}

	if paymentMode == models.PaymentOnline {
		if result.Payment == nil {
			return o.failSubmission(fmt.Errorf("backend returned no payment handle for online order"))
		}
		return o.awaitPayment(ctx, result)
	}

	o.complete(result)
	return nil
}

func (o *Orchestrator) awaitPayment(ctx context.Context, result *services.CreateOrderResult) error {
	o.mu.Lock()
	o.state = StateOnlinePaymentPending
	o.mu.Unlock()

	outcome, err := o.payments.Open(ctx, *result.Payment)
	if err != nil {
		return o.failSubmission(fmt.Errorf("payment session: %w", err))
	}

	if outcome == payment.OutcomeCancelled {
		// Explicit user action, not a failure: back to the form, data intact.
		o.mu.Lock()
		o.state = StateFailed
		o.suppressEmptyRedirect = false
		o.mu.Unlock()
		o.returnToReview()
		return payment.ErrPaymentCancelled
	}

	o.complete(result)
	return nil
}

func (o *Orchestrator) complete(result *services.CreateOrderResult) {
	o.cartStore.Clear()
	o.mu.Lock()
	o.result = result
	o.state = StateCompleted
	o.suppressEmptyRedirect = false
	o.mu.Unlock()
	log.Printf("[Checkout] order %s placed", result.Order.OrderNumber)
}

// rejectDraft handles composition errors: empty cart routes externally,
// validation errors stay in the form.
func (o *Orchestrator) rejectDraft(err error) error {
	var emptyErr *EmptyCartError
	if errors.As(err, &emptyErr) {
		return err
	}

	var vErr *utils.ValidationError
	if errors.As(err, &vErr) {
		o.mu.Lock()
		o.state = StateFormReview
		o.fieldErrors = vErr.Fields
		o.mu.Unlock()
	}
	return err
}

func (o *Orchestrator) failSubmission(err error) error {
	message := "order submission failed, please try again"
	var backendErr *services.BackendError
	if errors.As(err, &backendErr) && backendErr.Message != "" {
		message = backendErr.Message
	}

	o.mu.Lock()
	o.state = StateFailed
	o.failure = message
	o.suppressEmptyRedirect = false
	o.mu.Unlock()

	log.Printf("[Checkout] submission failed: %v", err)
	o.returnToReview()
	return err
}

// returnToReview makes a failed flow resubmittable: cart and form data are
// preserved, only the state moves back.
func (o *Orchestrator) returnToReview() {
	o.mu.Lock()
	if o.state == StateFailed {
		o.state = StateFormReview
	}
	o.mu.Unlock()
}

// shippingSourceLocked resolves the active shipping source: manual fields
// when manual entry is on, else a denormalized copy of the directory
// selection. Returns nil when neither is available.
func (o *Orchestrator) shippingSourceLocked() (*models.AddressFields, string) {
	if o.useManual {
		if o.manual == nil {
			return nil, ""
		}
		fields := *o.manual
		return &fields, ""
	}

	selected := o.directory.Selected()
	if selected == nil {
		return nil, ""
	}
	fields := selected.Fields()
	return &fields, selected.ID
}

// effectiveCustomerLocked fills unset contact fields from the shipping
// address, mirroring how the form prefills from the selection.
func (o *Orchestrator) effectiveCustomerLocked(shipping *models.AddressFields) models.CustomerInfo {
	customer := o.customer
	if shipping == nil {
		return customer
	}
	if customer.FirstName == "" {
		customer.FirstName = shipping.FirstName
	}
	if customer.LastName == "" {
		customer.LastName = shipping.LastName
	}
	if customer.Phone == "" {
		customer.Phone = shipping.Phone
	}
	return customer
}
