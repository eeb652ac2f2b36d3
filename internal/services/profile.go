package services

import (
	"context"
	"net/http"

	"github.com/example/storefront/internal/models"
)

type profilePayload struct {
	Cart []models.CartLine `json:"cart"`
}

// FetchProfileCart pulls the cart snapshot stored on the user's profile.
// Used once per session to seed an empty local cart.
func (c *Client) FetchProfileCart(ctx context.Context) ([]models.CartLine, error) {
	resp, err := c.do(ctx, requestOpts{
		Method:   http.MethodGet,
		Path:     "/api/auth/profile",
		Op:       "fetch profile",
		AuthOpts: authRequired,
	})
	if err != nil {
		return nil, err
	}

	var payload profilePayload
	if err := decode(resp, "fetch profile", &payload); err != nil {
		return nil, err
	}
	return payload.Cart, nil
}

// PushCart uploads the cart snapshot to the user's profile. Fire-and-forget
// from the synchronizer's point of view; failures are the caller's to log.
func (c *Client) PushCart(ctx context.Context, lines []models.CartLine) error {
	if lines == nil {
		lines = []models.CartLine{}
	}
	_, err := c.do(ctx, requestOpts{
		Method:   http.MethodPut,
		Path:     "/api/auth/profile",
		Body:     profilePayload{Cart: lines},
		Op:       "push cart",
		AuthOpts: authRequired,
	})
	return err
}
