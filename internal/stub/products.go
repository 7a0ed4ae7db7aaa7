package stub

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/flipcart/storefront/internal/logging"
)

func (s *Server) ListProducts(c echo.Context) error {
	q := s.db.Model(&Product{}).Order("id DESC")

	if search := c.QueryParam("search"); search != "" {
		like := "%" + search + "%"
		q = q.Where("name LIKE ? OR description LIKE ?", like, like)
	}
	if category := c.QueryParam("category"); category != "" {
		q = q.Where("category = ?", category)
	}
	if raw := c.QueryParam("min_price"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			q = q.Where("price >= ?", v)
		}
	}
	if raw := c.QueryParam("max_price"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			q = q.Where("price <= ?", v)
		}
	}

	var products []Product
	if err := q.Find(&products).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	// Paginated wrapper, the shape the real backend's list endpoint uses.
	return c.JSON(http.StatusOK, echo.Map{
		"count":    len(products),
		"next":     nil,
		"previous": nil,
		"results":  products,
	})
}

func (s *Server) GetProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var product Product
	if err := s.db.First(&product, id).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"detail": "Not found."})
	}
	return c.JSON(http.StatusOK, product)
}

func (s *Server) requireSeller(c echo.Context) (*User, error) {
	var user User
	if err := s.db.First(&user, currentUserID(c)).Error; err != nil {
		return nil, c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}
	if !user.IsStaff {
		return nil, c.JSON(http.StatusForbidden, echo.Map{"detail": "Only sellers can manage products."})
	}
	return &user, nil
}

func (s *Server) CreateProduct(c echo.Context) error {
	seller, err := s.requireSeller(c)
	if seller == nil {
		return err
	}

	var req Product
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "malformed request"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"name": []string{"This field is required."}})
	}

	req.ID = 0
	req.SellerID = seller.ID
	if err := s.db.Create(&req).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	logging.FromContext(c.Request().Context()).Info("product created", "id", req.ID, "seller", seller.Username)
	return c.JSON(http.StatusCreated, req)
}

func (s *Server) UpdateProduct(c echo.Context) error {
	seller, err := s.requireSeller(c)
	if seller == nil {
		return err
	}

	id, convErr := strconv.Atoi(c.Param("id"))
	if convErr != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	var product Product
	if err := s.db.First(&product, id).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"detail": "Not found."})
	}

	var req Product
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "malformed request"})
	}
	req.ID = product.ID
	req.SellerID = product.SellerID
	if err := s.db.Save(&req).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, req)
}

func (s *Server) DeleteProduct(c echo.Context) error {
	seller, err := s.requireSeller(c)
	if seller == nil {
		return err
	}

	id, convErr := strconv.Atoi(c.Param("id"))
	if convErr != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := s.db.Delete(&Product{}, id).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.NoContent(http.StatusNoContent)
}
