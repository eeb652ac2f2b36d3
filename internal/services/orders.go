package services

import (
	"context"
	"net/http"

	"github.com/example/storefront/internal/models"
)

// CreateOrderResult is the backend's answer to an order submission. Payment
// is present only for online payment mode and holds the gateway handle the
// external payment session is opened with.
type CreateOrderResult struct {
	Order   models.PlacedOrder   `json:"order"`
	Payment *models.GatewayOrder `json:"payment,omitempty"`
}

// CreateOrder submits a composed order draft.
func (c *Client) CreateOrder(ctx context.Context, draft models.OrderDraft) (*CreateOrderResult, error) {
	resp, err := c.do(ctx, requestOpts{
		Method:   http.MethodPost,
		Path:     "/api/orders",
		Body:     draft,
		Op:       "create order",
		AuthOpts: authRequired,
	})
	if err != nil {
		return nil, err
	}

	var result CreateOrderResult
	if err := decode(resp, "create order", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListOrders returns the order history for the authenticated user.
func (c *Client) ListOrders(ctx context.Context) ([]models.PlacedOrder, error) {
	resp, err := c.do(ctx, requestOpts{
		Method:   http.MethodGet,
		Path:     "/api/orders",
		Op:       "list orders",
		AuthOpts: authRequired,
	})
	if err != nil {
		return nil, err
	}

	var orders []models.PlacedOrder
	if err := decode(resp, "list orders", &orders); err != nil {
		return nil, err
	}
	return orders, nil
}
