package stub

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

func (s *Server) userCart(userID uint) (*Cart, error) {
	var cart Cart
	err := s.db.Where("user_id = ?", userID).First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cart = Cart{UserID: userID}
		err = s.db.Create(&cart).Error
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (s *Server) itemPayload(item *CartItem) (echo.Map, error) {
	var product Product
	if err := s.db.First(&product, item.ProductID).Error; err != nil {
		return nil, err
	}
	return echo.Map{
		"id":       item.ID,
		"product":  product,
		"quantity": item.Quantity,
	}, nil
}

func (s *Server) cartPayload(cart *Cart) (echo.Map, error) {
	var items []CartItem
	if err := s.db.Where("cart_id = ?", cart.ID).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	payload := make([]echo.Map, 0, len(items))
	for i := range items {
		p, err := s.itemPayload(&items[i])
		if err != nil {
			return nil, err
		}
		payload = append(payload, p)
	}
	return echo.Map{"id": cart.ID, "items": payload}, nil
}

func (s *Server) GetCart(c echo.Context) error {
	cart, err := s.userCart(currentUserID(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	payload, err := s.cartPayload(cart)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, payload)
}

func (s *Server) AddCartItem(c echo.Context) error {
	var req struct {
		ProductID uint `json:"product_id"`
		Quantity  int  `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "malformed request"})
	}
	if req.Quantity < 1 {
		req.Quantity = 1
	}

	var product Product
	if err := s.db.First(&product, req.ProductID).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Product not found"})
	}

	cart, err := s.userCart(currentUserID(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}

	var item CartItem
	err = s.db.Where("cart_id = ? AND product_id = ?", cart.ID, req.ProductID).First(&item).Error
	switch {
	case err == nil:
		item.Quantity += req.Quantity
		if err := s.db.Save(&item).Error; err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		item = CartItem{CartID: cart.ID, ProductID: req.ProductID, Quantity: req.Quantity}
		if err := s.db.Create(&item).Error; err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}

	payload, err := s.itemPayload(&item)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, payload)
}

func (s *Server) UpdateCartItem(c echo.Context) error {
	var req struct {
		ProductID uint `json:"product_id"`
		Quantity  int  `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "malformed request"})
	}

	cart, err := s.userCart(currentUserID(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}

	var item CartItem
	if err := s.db.Where("cart_id = ? AND product_id = ?", cart.ID, req.ProductID).First(&item).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Cart item not found"})
	}

	if req.Quantity > 0 {
		item.Quantity = req.Quantity
		if err := s.db.Save(&item).Error; err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		payload, err := s.itemPayload(&item)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, payload)
	}

	if err := s.db.Delete(&item).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"detail": "Item removed"})
}

func (s *Server) RemoveCartItem(c echo.Context) error {
	var req struct {
		ProductID uint `json:"product_id"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "malformed request"})
	}

	cart, err := s.userCart(currentUserID(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}

	var item CartItem
	if err := s.db.Where("cart_id = ? AND product_id = ?", cart.ID, req.ProductID).First(&item).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Cart item not found"})
	}
	if err := s.db.Delete(&item).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"detail": "Item removed"})
}
