package payment

import (
	"context"
	"errors"

	"github.com/example/storefront/internal/models"
)

// Outcome is the terminal result of a payment session. Exactly one of the
// two is ever delivered per session.
type Outcome int

const (
	// OutcomeSuccess means the gateway authorised the payment.
	OutcomeSuccess Outcome = iota
	// OutcomeCancelled means the buyer dismissed or cancelled the session.
	OutcomeCancelled
)

// ErrPaymentCancelled marks a session the buyer backed out of. Not a
// failure: the caller returns the user to the form with data intact.
var ErrPaymentCancelled = errors.New("payment cancelled by user")

// SessionOpener opens an external payment session for a gateway order handle
// and blocks until the gateway reports one terminal outcome.
type SessionOpener interface {
	Open(ctx context.Context, order models.GatewayOrder) (Outcome, error)
}
