package models

// Payment modes supported at checkout.
const (
	PaymentCashOnDelivery = "cod"
	PaymentOnline         = "online"
)

// CustomerInfo identifies the person placing the order.
type CustomerInfo struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Phone     string `json:"phone" validate:"required,inphone"`
	Email     string `json:"email,omitempty" validate:"omitempty,email"`
}

// OrderLine is a cart line frozen at submission time. UnitPrice is the price
// the buyer saw; later catalog changes must not alter a placed order.
type OrderLine struct {
	ProductID string  `json:"product"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"price"`
}

// OrderDraft is the derived submission payload. It is built fresh from the
// cart snapshot plus the chosen address and payment mode, and discarded once
// the order is accepted.
type OrderDraft struct {
	ClientRef       string        `json:"client_ref"`
	Lines           []OrderLine   `json:"products"`
	ShippingAddress AddressFields `json:"shipping_address"`
	AddressID       string        `json:"address,omitempty"`
	CustomerInfo    CustomerInfo  `json:"customer_info"`
	PaymentMode     string        `json:"payment_mode"`
	Subtotal        float64       `json:"subtotal"`
	Shipping        float64       `json:"shipping"`
	Tax             float64       `json:"tax"`
	Total           float64       `json:"total_amount"`
}

// GatewayOrder is the handle the backend returns for online payment; it is
// what the external payment session is opened with.
type GatewayOrder struct {
	ID       string  `json:"id"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// PlacedOrder is the backend's record of an accepted order, as returned by
// order creation and the order history listing.
type PlacedOrder struct {
	ID          string      `json:"id"`
	OrderNumber string      `json:"order_number"`
	Status      string      `json:"status"`
	PaymentMode string      `json:"payment_mode"`
	Total       float64     `json:"total_amount"`
	Lines       []OrderLine `json:"products,omitempty"`
}
