package models

import (
	"encoding/json"
	"strconv"
)

// Price tolerates both JSON encodings the backend produces: DRF renders
// DecimalField as a quoted string ("499.00"), while plain number payloads
// appear everywhere else.
type Price float64

func (p *Price) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" {
			*p = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*p = Price(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*p = Price(f)
	return nil
}

func (p Price) MarshalJSON() ([]byte, error) {
	return json.Marshal(float64(p))
}

type Product struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       Price   `json:"price"`
	Category    string  `json:"category,omitempty"`
	Subcategory string  `json:"subcategory,omitempty"`
	Stock       int     `json:"stock"`
	Image       string  `json:"image,omitempty"`
	Rating      float64 `json:"rating,omitempty"`
}

const (
	RoleBuyer  = "buyer"
	RoleSeller = "seller"
)

type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// Session is the durable local identity. An empty Token means guest mode;
// token presence is the only discriminator the rest of the client consults.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

func (s Session) Authenticated() bool { return s.Token != "" }

// CartEntry is one line of the guest cart: a product snapshot taken at
// add time plus a quantity. At most one entry exists per product id.
type CartEntry struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// CartItem is one line of the server-side cart as the backend reports it.
type CartItem struct {
	ID       int     `json:"id"`
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

type Cart struct {
	ID    int        `json:"id"`
	Items []CartItem `json:"items"`
}

type OrderItem struct {
	ID       int     `json:"id"`
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
	Price    Price   `json:"price"`
}

type Order struct {
	ID              int         `json:"id"`
	TotalPrice      Price       `json:"total_price"`
	Status          string      `json:"status"`
	PaymentMethod   string      `json:"payment_method,omitempty"`
	ShippingAddress string      `json:"shipping_address,omitempty"`
	Items           []OrderItem `json:"items"`
}
