package checkout

import (
	"github.com/google/uuid"

	"github.com/example/storefront/internal/cart"
	"github.com/example/storefront/internal/models"
	"github.com/example/storefront/internal/utils"
)

// EmptyCartError rejects composition over a cart with no lines. It routes to
// a redirect, not a form error.
type EmptyCartError struct{}

func (e *EmptyCartError) Error() string {
	return "cart is empty"
}

// Compose builds an order draft from a cart snapshot, the chosen shipping
// fields, and the payment mode. Prices are snapshotted from the cart lines;
// later catalog changes cannot alter the draft. The shipping and customer
// copies are denormalized — the draft holds no live references.
func Compose(snapshot models.Cart, shipping *models.AddressFields, addressID string, customer models.CustomerInfo, paymentMode string) (*models.OrderDraft, error) {
	if snapshot.Empty() {
		return nil, &EmptyCartError{}
	}

	if shipping == nil {
		return nil, utils.NewValidationError("ShippingAddress", "a shipping address is required")
	}
	if err := utils.ValidateStruct(*shipping); err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(customer); err != nil {
		return nil, err
	}
	if paymentMode != models.PaymentCashOnDelivery && paymentMode != models.PaymentOnline {
		return nil, utils.NewValidationError("PaymentMode", "is not a supported payment mode")
	}

	lines := make([]models.OrderLine, 0, len(snapshot.Lines))
	for _, l := range snapshot.Lines {
		lines = append(lines, models.OrderLine{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}

	totals := cart.Calculate(snapshot)

	return &models.OrderDraft{
		ClientRef:       uuid.NewString(),
		Lines:           lines,
		ShippingAddress: *shipping,
		AddressID:       addressID,
		CustomerInfo:    customer,
		PaymentMode:     paymentMode,
		Subtotal:        totals.Subtotal,
		Shipping:        totals.Shipping,
		Tax:             totals.Tax,
		Total:           totals.Total,
	}, nil
}
