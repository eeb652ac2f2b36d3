package services

import (
	"context"
	"errors"
	"net/http"

	"github.com/example/storefront/internal/models"
)

// ListAddresses fetches all saved addresses for the authenticated user.
// An anonymous session resolves to an empty list, not an error.
func (c *Client) ListAddresses(ctx context.Context) ([]models.Address, error) {
	resp, err := c.do(ctx, requestOpts{
		Method:   http.MethodGet,
		Path:     "/api/addresses",
		Op:       "list addresses",
		AuthOpts: authRequired,
	})
	if err != nil {
		var authErr *AuthRequiredError
		if errors.As(err, &authErr) {
			return nil, nil
		}
		return nil, err
	}

	var addresses []models.Address
	if err := decode(resp, "list addresses", &addresses); err != nil {
		return nil, err
	}
	return addresses, nil
}

// CreateAddress stores a new address and returns the backend's copy.
func (c *Client) CreateAddress(ctx context.Context, fields models.AddressFields) (*models.Address, error) {
	resp, err := c.do(ctx, requestOpts{
		Method:   http.MethodPost,
		Path:     "/api/addresses",
		Body:     fields,
		Op:       "create address",
		AuthOpts: authRequired,
	})
	if err != nil {
		return nil, err
	}

	var address models.Address
	if err := decode(resp, "create address", &address); err != nil {
		return nil, err
	}
	return &address, nil
}

// UpdateAddress replaces the fields of an existing address. The backend may
// demote another address's default flag as a side effect, so callers must
// refresh afterwards rather than trust their cached copies.
func (c *Client) UpdateAddress(ctx context.Context, id string, fields models.AddressFields) (*models.Address, error) {
	resp, err := c.do(ctx, requestOpts{
		Method:   http.MethodPut,
		Path:     "/api/addresses/" + id,
		Body:     fields,
		Op:       "update address",
		AuthOpts: authRequired,
	})
	if err != nil {
		return nil, err
	}

	var address models.Address
	if err := decode(resp, "update address", &address); err != nil {
		return nil, err
	}
	return &address, nil
}

// DeleteAddress removes an address.
func (c *Client) DeleteAddress(ctx context.Context, id string) error {
	_, err := c.do(ctx, requestOpts{
		Method:   http.MethodDelete,
		Path:     "/api/addresses/" + id,
		Op:       "delete address",
		AuthOpts: authRequired,
	})
	return err
}
