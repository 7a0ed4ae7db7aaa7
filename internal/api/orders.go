package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/flipcart/storefront/internal/models"
)

// CreateOrder turns the authenticated cart into an order; the backend drains
// the cart itself, so a fresh cart fetch afterwards comes back empty.
func (c *Client) CreateOrder(ctx context.Context, paymentMethod, shippingAddress string) (models.Order, error) {
	body := map[string]string{
		"payment_method":   paymentMethod,
		"shipping_address": shippingAddress,
	}
	var order models.Order
	if err := c.do(ctx, http.MethodPost, "/orders/", body, &order); err != nil {
		return models.Order{}, err
	}
	return order, nil
}

// Orders lists the caller's order history, newest first. Same shape
// normalization as Products.
func (c *Client) Orders(ctx context.Context) ([]models.Order, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/orders/", nil, &raw); err != nil {
		return nil, err
	}

	var list []models.Order
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}
	var page struct {
		Results []models.Order `json:"results"`
	}
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, &Error{Message: "unexpected order list shape", cause: err}
	}
	return page.Results, nil
}

func (c *Client) Order(ctx context.Context, id int) (models.Order, error) {
	var order models.Order
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/orders/%d/", id), nil, &order); err != nil {
		return models.Order{}, err
	}
	return order, nil
}
