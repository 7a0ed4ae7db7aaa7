package stub

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/flipcart/storefront/internal/logging"
)

func (s *Server) orderPayload(order *Order) (echo.Map, error) {
	var items []OrderItem
	if err := s.db.Where("order_id = ?", order.ID).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	payload := make([]echo.Map, 0, len(items))
	for _, item := range items {
		var product Product
		if err := s.db.First(&product, item.ProductID).Error; err == nil {
			payload = append(payload, echo.Map{
				"id":       item.ID,
				"product":  product,
				"quantity": item.Quantity,
				"price":    item.Price,
			})
		}
	}
	return echo.Map{
		"id":               order.ID,
		"total_price":      order.TotalPrice,
		"status":           order.Status,
		"payment_method":   order.PaymentMethod,
		"shipping_address": order.ShippingAddress,
		"items":            payload,
	}, nil
}

func (s *Server) ListOrders(c echo.Context) error {
	var orders []Order
	if err := s.db.Where("user_id = ?", currentUserID(c)).Order("created_at DESC").Find(&orders).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	payload := make([]echo.Map, 0, len(orders))
	for i := range orders {
		p, err := s.orderPayload(&orders[i])
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		payload = append(payload, p)
	}
	return c.JSON(http.StatusOK, payload)
}

// CreateOrder snapshots the cart into an order at current prices and drains
// the cart, all in one transaction.
func (s *Server) CreateOrder(c echo.Context) error {
	var req struct {
		PaymentMethod   string `json:"payment_method"`
		ShippingAddress string `json:"shipping_address"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "malformed request"})
	}
	if req.PaymentMethod == "" {
		req.PaymentMethod = "cod"
	}

	userID := currentUserID(c)
	var order Order

	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		var cart Cart
		if err := tx.Where("user_id = ?", userID).First(&cart).Error; err != nil {
			return err
		}
		var items []CartItem
		if err := tx.Where("cart_id = ?", cart.ID).Find(&items).Error; err != nil {
			return err
		}

		var total float64
		lines := make([]OrderItem, 0, len(items))
		for _, item := range items {
			var product Product
			if err := tx.First(&product, item.ProductID).Error; err != nil {
				return err
			}
			total += product.Price * float64(item.Quantity)
			lines = append(lines, OrderItem{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Price:     product.Price,
			})
		}

		order = Order{
			UserID:          userID,
			TotalPrice:      total,
			Status:          "pending",
			PaymentMethod:   req.PaymentMethod,
			ShippingAddress: req.ShippingAddress,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		for i := range lines {
			lines[i].OrderID = order.ID
		}
		if len(lines) > 0 {
			if err := tx.Create(&lines).Error; err != nil {
				return err
			}
		}

		return tx.Where("cart_id = ?", cart.ID).Delete(&CartItem{}).Error
	})
	if txErr != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": txErr.Error()})
	}

	payload, err := s.orderPayload(&order)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	logging.FromContext(c.Request().Context()).Info("order created", "id", order.ID, "total", order.TotalPrice)
	return c.JSON(http.StatusCreated, payload)
}

func (s *Server) GetOrder(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var order Order
	if err := s.db.Where("id = ? AND user_id = ?", id, currentUserID(c)).First(&order).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"detail": "Not found."})
	}
	payload, err := s.orderPayload(&order)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, payload)
}
