package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/flipcart/storefront/internal/models"
)

// ProductQuery narrows a product listing. Zero-valued fields are omitted.
type ProductQuery struct {
	Search   string
	Category string
	MinPrice float64
	MaxPrice float64
}

func (q ProductQuery) encode() string {
	v := url.Values{}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if q.MinPrice > 0 {
		v.Set("min_price", strconv.FormatFloat(q.MinPrice, 'f', -1, 64))
	}
	if q.MaxPrice > 0 {
		v.Set("max_price", strconv.FormatFloat(q.MaxPrice, 'f', -1, 64))
	}
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}

// Products lists the catalog. The backend answers with either a bare array
// or a pagination wrapper {"results": [...]}; both are normalized here so no
// caller ever branches on response shape.
func (c *Client) Products(ctx context.Context, q ProductQuery) ([]models.Product, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/products/"+q.encode(), nil, &raw); err != nil {
		return nil, err
	}

	var list []models.Product
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}
	var page struct {
		Results []models.Product `json:"results"`
	}
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, &Error{Message: "unexpected product list shape", cause: err}
	}
	return page.Results, nil
}

func (c *Client) Product(ctx context.Context, id int) (models.Product, error) {
	var p models.Product
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/products/%d/", id), nil, &p); err != nil {
		return models.Product{}, err
	}
	return p, nil
}

// CreateProduct publishes a new listing. Seller-only; the backend rejects
// non-staff accounts.
func (c *Client) CreateProduct(ctx context.Context, p models.Product) (models.Product, error) {
	var created models.Product
	if err := c.do(ctx, http.MethodPost, "/products/", p, &created); err != nil {
		return models.Product{}, err
	}
	return created, nil
}

func (c *Client) UpdateProduct(ctx context.Context, p models.Product) (models.Product, error) {
	var updated models.Product
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/products/%d/", p.ID), p, &updated); err != nil {
		return models.Product{}, err
	}
	return updated, nil
}

func (c *Client) DeleteProduct(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/products/%d/", id), nil, nil)
}
