package stub

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/flipcart/storefront/internal/hash"
	"github.com/flipcart/storefront/internal/logging"
)

func userPayload(u *User) echo.Map {
	return echo.Map{
		"id":       u.ID,
		"username": u.Username,
		"email":    u.Email,
		"is_staff": u.IsStaff,
	}
}

func (s *Server) Register(c echo.Context) error {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
		IsStaff  bool   `json:"is_staff"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "malformed request"})
	}

	// Per-field validation errors use the backend's map-of-lists shape.
	fields := echo.Map{}
	if req.Username == "" {
		fields["username"] = []string{"This field is required."}
	}
	if len(req.Password) < 6 {
		fields["password"] = []string{"Ensure this field has at least 6 characters."}
	}
	if len(fields) > 0 {
		return c.JSON(http.StatusBadRequest, fields)
	}

	var existing User
	if err := s.db.Where("username = ?", req.Username).First(&existing).Error; err == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"username": []string{"A user with that username already exists."},
		})
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	user := User{Username: req.Username, Email: req.Email, PasswordHash: pwHash, IsStaff: req.IsStaff}
	if err := s.db.Create(&user).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}

	token, err := s.issueToken(&user)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}

	logging.FromContext(c.Request().Context()).Info("user registered", "username", user.Username)
	return c.JSON(http.StatusCreated, echo.Map{"token": token, "user": userPayload(&user)})
}

func (s *Server) Login(c echo.Context) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "malformed request"})
	}

	var user User
	if err := s.db.Where("username = ?", req.Username).First(&user).Error; err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "Invalid credentials"})
	}
	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "Invalid credentials"})
	}

	token, err := s.issueToken(&user)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}

	logging.FromContext(c.Request().Context()).Info("user logged in", "username", user.Username)
	return c.JSON(http.StatusOK, echo.Map{"token": token, "user": userPayload(&user)})
}

func (s *Server) Logout(c echo.Context) error {
	if err := s.db.Where("user_id = ?", currentUserID(c)).Delete(&Token{}).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"detail": "Logged out"})
}

func (s *Server) Profile(c echo.Context) error {
	var user User
	if err := s.db.First(&user, currentUserID(c)).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}
	return c.JSON(http.StatusOK, userPayload(&user))
}

func (s *Server) UpdateProfile(c echo.Context) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "malformed request"})
	}

	var user User
	if err := s.db.First(&user, currentUserID(c)).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}
	user.Email = req.Email
	if err := s.db.Save(&user).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, userPayload(&user))
}
