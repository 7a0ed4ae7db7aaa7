package stub

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

const userIDKey = "userID"

// issueToken signs a credential for user and records it; logout deletes the
// record, which is what actually revokes the token.
func (s *Server) issueToken(user *User) (string, error) {
	claims := jwt.MapClaims{
		"sub": user.ID,
		"exp": time.Now().Add(30 * 24 * time.Hour).Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	if err := s.db.Create(&Token{Key: signed, UserID: user.ID}).Error; err != nil {
		return "", fmt.Errorf("store token: %w", err)
	}
	return signed, nil
}

func (s *Server) parseToken(raw string) (uint, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return 0, errors.New("invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, errors.New("invalid token claims")
	}
	sub, ok := claims["sub"].(float64)
	if !ok {
		return 0, errors.New("invalid subject claim")
	}

	var stored Token
	if err := s.db.Where("key = ?", raw).First(&stored).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, errors.New("token revoked")
		}
		return 0, err
	}
	return uint(sub), nil
}

// requireAuth guards a route group; the header format is DRF's
// "Authorization: Token <key>".
func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		raw, found := strings.CutPrefix(header, "Token ")
		if !found || raw == "" {
			return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "Authentication credentials were not provided."})
		}
		userID, err := s.parseToken(raw)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "Invalid token."})
		}
		c.Set(userIDKey, userID)
		return next(c)
	}
}

func currentUserID(c echo.Context) uint {
	id, _ := c.Get(userIDKey).(uint)
	return id
}
