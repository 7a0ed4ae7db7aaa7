// Package stub is a self-contained development backend speaking the exact
// wire contract the client consumes: token auth, products with search
// filters, an add-or-increment cart and cart-draining orders. It exists so
// the storefront can be exercised end to end without the real deployment.
package stub

import "time"

type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Username     string `gorm:"unique;not null" json:"username"`
	Email        string `json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	IsStaff      bool   `json:"is_staff"`
}

// Token mirrors DRF's token table: one row per issued credential, deleted on
// logout, so a signed-but-revoked token is still rejected.
type Token struct {
	ID        uint      `gorm:"primaryKey"`
	Key       string    `gorm:"uniqueIndex;not null"`
	UserID    uint      `gorm:"index;not null"`
	CreatedAt time.Time
}

type Product struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	SellerID    uint    `gorm:"index" json:"-"`
	Name        string  `gorm:"not null" json:"name"`
	Description string  `json:"description"`
	Price       float64 `gorm:"not null" json:"price"`
	Category    string  `json:"category"`
	Subcategory string  `json:"subcategory"`
	Stock       int     `json:"stock"`
	Image       string  `json:"image"`
	Rating      float64 `json:"rating"`
}

type Cart struct {
	ID     uint `gorm:"primaryKey"`
	UserID uint `gorm:"uniqueIndex;not null"`
}

type CartItem struct {
	ID        uint `gorm:"primaryKey"`
	CartID    uint `gorm:"index;not null;uniqueIndex:idx_cart_product"`
	ProductID uint `gorm:"not null;uniqueIndex:idx_cart_product"`
	Quantity  int  `gorm:"default:1"`
}

type Order struct {
	ID              uint    `gorm:"primaryKey"`
	UserID          uint    `gorm:"index;not null"`
	TotalPrice      float64 `gorm:"not null"`
	Status          string  `gorm:"not null"`
	PaymentMethod   string
	ShippingAddress string
	CreatedAt       time.Time
}

type OrderItem struct {
	ID        uint `gorm:"primaryKey"`
	OrderID   uint `gorm:"index;not null"`
	ProductID uint
	Quantity  int
	Price     float64
}
