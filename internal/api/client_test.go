package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/flipcart/storefront/internal/logging"
)

type testEnv struct {
	E      *echo.Echo
	Server *httptest.Server
	Client *Client
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	e := echo.New()
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, 5*time.Second, logging.New("error"))
	return &testEnv{E: e, Server: srv, Client: c}
}

func TestTokenHeaderAttached(t *testing.T) {
	env := newTestEnv(t)

	var got string
	env.E.GET("/users/profile/", func(c echo.Context) error {
		got = c.Request().Header.Get(echo.HeaderAuthorization)
		return c.JSON(http.StatusOK, echo.Map{"id": 1, "username": "alice"})
	})

	env.Client.SetTokenSource(func() string { return "tok123" })
	_, err := env.Client.Profile(t.Context())
	require.NoError(t, err)
	require.Equal(t, "Token tok123", got)
}

func TestNoHeaderInGuestMode(t *testing.T) {
	env := newTestEnv(t)

	var got string
	env.E.GET("/products/", func(c echo.Context) error {
		got = c.Request().Header.Get(echo.HeaderAuthorization)
		return c.JSON(http.StatusOK, []any{})
	})

	_, err := env.Client.Products(t.Context(), ProductQuery{})
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestAuthRejectedHookFires(t *testing.T) {
	env := newTestEnv(t)

	env.E.GET("/cart/", func(c echo.Context) error {
		return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "Invalid token."})
	})

	fired := 0
	env.Client.OnAuthRejected(func() { fired++ })

	_, err := env.Client.FetchCart(t.Context())
	require.Error(t, err)
	require.Equal(t, 1, fired)

	apiErr, ok := AsError(err)
	require.True(t, ok)
	require.Equal(t, http.StatusUnauthorized, apiErr.Status)
	require.Equal(t, "Invalid token.", apiErr.Message)
}

func TestNetworkFailure(t *testing.T) {
	env := newTestEnv(t)
	env.Server.Close()

	_, err := env.Client.FetchCart(t.Context())
	require.Error(t, err)

	apiErr, ok := AsError(err)
	require.True(t, ok)
	require.True(t, apiErr.Network())
	require.Contains(t, apiErr.Message, "cannot reach the store")
}

func TestRemoveSendsBodyNotQuery(t *testing.T) {
	env := newTestEnv(t)

	var body map[string]int
	env.E.DELETE("/cart/", func(c echo.Context) error {
		raw, _ := io.ReadAll(c.Request().Body)
		require.NoError(t, json.Unmarshal(raw, &body))
		require.Empty(t, c.QueryParams())
		return c.JSON(http.StatusOK, echo.Map{"detail": "Item removed"})
	})

	require.NoError(t, env.Client.RemoveCartItem(t.Context(), 42))
	require.Equal(t, 42, body["product_id"])
}

func TestProductsBareArray(t *testing.T) {
	env := newTestEnv(t)

	env.E.GET("/products/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, []echo.Map{{"id": 1, "name": "a", "price": 10}})
	})

	products, err := env.Client.Products(t.Context(), ProductQuery{})
	require.NoError(t, err)
	require.Len(t, products, 1)
	require.Equal(t, "a", products[0].Name)
}

func TestProductsPaginatedWrapper(t *testing.T) {
	env := newTestEnv(t)

	env.E.GET("/products/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"count":   2,
			"results": []echo.Map{{"id": 1, "name": "a", "price": "99.50"}, {"id": 2, "name": "b", "price": 5}},
		})
	})

	products, err := env.Client.Products(t.Context(), ProductQuery{})
	require.NoError(t, err)
	require.Len(t, products, 2)
	require.InDelta(t, 99.5, float64(products[0].Price), 1e-9)
}

func TestProductQueryEncoding(t *testing.T) {
	env := newTestEnv(t)

	var params map[string][]string
	env.E.GET("/products/", func(c echo.Context) error {
		params = c.QueryParams()
		return c.JSON(http.StatusOK, []any{})
	})

	_, err := env.Client.Products(t.Context(), ProductQuery{
		Search:   "phone case",
		Category: "electronics",
		MinPrice: 100,
		MaxPrice: 999.5,
	})
	require.NoError(t, err)
	require.Equal(t, []string{"phone case"}, params["search"])
	require.Equal(t, []string{"electronics"}, params["category"])
	require.Equal(t, []string{"100"}, params["min_price"])
	require.Equal(t, []string{"999.5"}, params["max_price"])
}

func TestLoginMapsStaffToSeller(t *testing.T) {
	env := newTestEnv(t)

	env.E.POST("/users/login/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"token": "tok",
			"user":  echo.Map{"id": 3, "username": "s", "email": "s@x.com", "is_staff": true},
		})
	})

	sess, err := env.Client.Login(t.Context(), "s", "pw")
	require.NoError(t, err)
	require.Equal(t, "tok", sess.Token)
	require.Equal(t, "seller", sess.User.Role)
}

func TestDecodeErrorShapes(t *testing.T) {
	e := decodeError(404, []byte(`{"error": "Product not found"}`))
	require.Equal(t, "Product not found", e.Message)
	require.True(t, e.NotFound())

	e = decodeError(401, []byte(`{"detail": "Invalid credentials"}`))
	require.Equal(t, "Invalid credentials", e.Message)

	e = decodeError(400, []byte(`{"username": ["A user with that username already exists."]}`))
	require.Equal(t, []string{"A user with that username already exists."}, e.Fields["username"])
	require.Contains(t, e.Message, "username")

	// Several invalid fields at once: the first in name order headlines the
	// message, every time.
	raw := []byte(`{"username": ["Required."], "email": ["Enter a valid email address."], "password": ["Too short."]}`)
	for i := 0; i < 10; i++ {
		e = decodeError(400, raw)
		require.Equal(t, "email: Enter a valid email address.", e.Message)
	}
	require.Len(t, e.Fields, 3)

	e = decodeError(500, []byte(`<html>nope</html>`))
	require.Equal(t, "request failed (status 500)", e.Message)

	e = decodeError(502, nil)
	require.Equal(t, "request failed (status 502)", e.Message)
	require.False(t, e.Network())
}
