package api

import (
	"context"
	"net/http"

	"github.com/flipcart/storefront/internal/models"
)

type cartItemRequest struct {
	ProductID int `json:"product_id"`
	Quantity  int `json:"quantity,omitempty"`
}

// FetchCart reads the authoritative server-side cart.
func (c *Client) FetchCart(ctx context.Context) (models.Cart, error) {
	var cart models.Cart
	if err := c.do(ctx, http.MethodGet, "/cart/", nil, &cart); err != nil {
		return models.Cart{}, err
	}
	return cart, nil
}

// AddCartItem adds qty of a product; the backend add-or-increments, so a
// repeated add raises the existing line's quantity.
func (c *Client) AddCartItem(ctx context.Context, productID, qty int) (models.CartItem, error) {
	if qty < 1 {
		qty = 1
	}
	var item models.CartItem
	err := c.do(ctx, http.MethodPost, "/cart/", cartItemRequest{ProductID: productID, Quantity: qty}, &item)
	if err != nil {
		return models.CartItem{}, err
	}
	return item, nil
}

// UpdateCartItem sets the exact quantity of an existing line. The backend
// deletes the line when qty <= 0, answering with an ack instead of an item,
// so the response is not decoded.
func (c *Client) UpdateCartItem(ctx context.Context, productID, qty int) error {
	body := struct {
		ProductID int `json:"product_id"`
		Quantity  int `json:"quantity"`
	}{productID, qty}
	return c.do(ctx, http.MethodPatch, "/cart/", body, nil)
}

// RemoveCartItem deletes a line. The product id travels in the request body,
// not the query string; that is the backend's contract.
func (c *Client) RemoveCartItem(ctx context.Context, productID int) error {
	return c.do(ctx, http.MethodDelete, "/cart/", cartItemRequest{ProductID: productID}, nil)
}
