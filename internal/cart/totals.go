package cart

import (
	"math"

	"github.com/example/storefront/internal/models"
)

// Pricing constants. Orders above FreeShippingAbove ship free; everything
// else pays the flat fee. Tax applies to the subtotal only.
const (
	FreeShippingAbove = 5000.0
	FlatShippingFee   = 100.0
	TaxRate           = 0.18
)

// Totals are the derived numbers for a cart. They are recomputed from the
// cart wherever they are shown or submitted; nothing caches them.
type Totals struct {
	Subtotal float64
	Shipping float64
	Tax      float64
	Total    float64
}

// Calculate derives totals from the cart. Pure; no side effects.
func Calculate(c models.Cart) Totals {
	var subtotal float64
	for _, l := range c.Lines {
		subtotal += l.UnitPrice * float64(l.Quantity)
	}

	shipping := FlatShippingFee
	if subtotal > FreeShippingAbove {
		shipping = 0
	}

	// Half-up rounding to the nearest whole currency unit.
	tax := math.Floor(subtotal*TaxRate + 0.5)

	return Totals{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal + shipping + tax,
	}
}
