package stub

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	"github.com/flipcart/storefront/internal/logging"
)

type Server struct {
	db     *gorm.DB
	secret []byte
}

// New builds the echo app with the full route table. The client appends
// trailing slashes to every path, so they are stripped up front. Each
// request carries a logger tagged with its id; handlers pull it back out
// of the request context.
func New(db *gorm.DB, secret []byte, log *slog.Logger) *echo.Echo {
	s := &Server{db: db, secret: secret}

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			l := log.With("request_id", c.Response().Header().Get(echo.HeaderXRequestID))
			req := c.Request()
			c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), l)))
			return next(c)
		}
	})

	api := e.Group("/api")

	api.POST("/users/register", s.Register)
	api.POST("/users/login", s.Login)
	api.POST("/users/logout", s.requireAuth(s.Logout))
	api.GET("/users/profile", s.requireAuth(s.Profile))
	api.PUT("/users/profile", s.requireAuth(s.UpdateProfile))

	api.GET("/products", s.ListProducts)
	api.GET("/products/:id", s.GetProduct)
	api.POST("/products", s.requireAuth(s.CreateProduct))
	api.PUT("/products/:id", s.requireAuth(s.UpdateProduct))
	api.DELETE("/products/:id", s.requireAuth(s.DeleteProduct))

	api.GET("/cart", s.requireAuth(s.GetCart))
	api.POST("/cart", s.requireAuth(s.AddCartItem))
	api.PATCH("/cart", s.requireAuth(s.UpdateCartItem))
	api.DELETE("/cart", s.requireAuth(s.RemoveCartItem))

	api.GET("/orders", s.requireAuth(s.ListOrders))
	api.POST("/orders", s.requireAuth(s.CreateOrder))
	api.GET("/orders/:id", s.requireAuth(s.GetOrder))

	return e
}
