package auth

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/flipcart/storefront/internal/api"
	"github.com/flipcart/storefront/internal/logging"
	"github.com/flipcart/storefront/internal/models"
	"github.com/flipcart/storefront/internal/pubsub"
	"github.com/flipcart/storefront/internal/state"
)

type testEnv struct {
	E     *echo.Echo
	State *state.Store
	Auth  *Service
	Bus   *pubsub.Bus

	events *[]pubsub.Event
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := logging.New("error")

	st, err := state.Open(filepath.Join(t.TempDir(), "state.db"), log)
	require.NoError(t, err)

	e := echo.New()
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	bus := pubsub.NewBus()
	client := api.NewClient(srv.URL, 5*time.Second, log)

	var events []pubsub.Event
	bus.Subscribe(func(ev pubsub.Event) { events = append(events, ev) })

	return &testEnv{
		E:      e,
		State:  st,
		Auth:   NewService(st, client, bus, log),
		Bus:    bus,
		events: &events,
	}
}

func TestLoginPersistsSession(t *testing.T) {
	env := newTestEnv(t)

	env.E.POST("/users/login/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"token": "tok",
			"user":  echo.Map{"id": 1, "username": "alice", "email": "a@x.com", "is_staff": false},
		})
	})

	sess, err := env.Auth.Login(t.Context(), "alice", "pw")
	require.NoError(t, err)
	require.True(t, sess.Authenticated())
	require.Equal(t, models.RoleBuyer, sess.User.Role)

	// Session comes back from durable state, not just the return value.
	require.Equal(t, sess, env.State.Session())
	require.Equal(t, []pubsub.Event{pubsub.SessionChanged}, *env.events)
}

func TestFailedLoginLeavesGuest(t *testing.T) {
	env := newTestEnv(t)

	env.E.POST("/users/login/", func(c echo.Context) error {
		return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "Invalid credentials"})
	})

	_, err := env.Auth.Login(t.Context(), "alice", "wrong")
	require.Error(t, err)
	require.EqualError(t, err, "Invalid credentials")

	require.False(t, env.State.Session().Authenticated())
	// No stored token was rejected, so no SessionExpired either.
	require.Empty(t, *env.events)
}

func TestLogoutClearsSessionEvenWhenServerFails(t *testing.T) {
	env := newTestEnv(t)

	env.E.POST("/users/logout/", func(c echo.Context) error {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "boom"})
	})
	require.NoError(t, env.State.SetSession(models.Session{Token: "tok", User: models.User{ID: 1}}))

	require.NoError(t, env.Auth.Logout(t.Context()))
	require.False(t, env.State.Session().Authenticated())
	require.Contains(t, *env.events, pubsub.SessionChanged)
}

func TestRegisterSurfacesFieldErrors(t *testing.T) {
	env := newTestEnv(t)

	env.E.POST("/users/register/", func(c echo.Context) error {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"username": []string{"A user with that username already exists."},
		})
	})

	_, err := env.Auth.Register(t.Context(), "taken", "t@x.com", "secret1")
	require.Error(t, err)

	apiErr, ok := api.AsError(err)
	require.True(t, ok)
	require.Equal(t, []string{"A user with that username already exists."}, apiErr.Fields["username"])
}

func TestUpdateProfileRefreshesStoredSession(t *testing.T) {
	env := newTestEnv(t)

	env.E.PUT("/users/profile/", func(c echo.Context) error {
		var req struct {
			Email string `json:"email"`
		}
		require.NoError(t, c.Bind(&req))
		return c.JSON(http.StatusOK, echo.Map{
			"id": 1, "username": "alice", "email": req.Email, "is_staff": false,
		})
	})
	require.NoError(t, env.State.SetSession(models.Session{
		Token: "tok",
		User:  models.User{ID: 1, Username: "alice", Email: "old@x.com", Role: models.RoleBuyer},
	}))

	user, err := env.Auth.UpdateProfile(t.Context(), "new@x.com")
	require.NoError(t, err)
	require.Equal(t, "new@x.com", user.Email)

	// The durable session carries the new email, so whoami-style reads of
	// the local copy agree with the backend.
	require.Equal(t, "new@x.com", env.State.Session().User.Email)
	require.Equal(t, []pubsub.Event{pubsub.SessionChanged}, *env.events)
}

func TestRejectedTokenForcesGuestMode(t *testing.T) {
	env := newTestEnv(t)

	env.E.GET("/users/profile/", func(c echo.Context) error {
		return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "Invalid token."})
	})
	require.NoError(t, env.State.SetSession(models.Session{Token: "stale", User: models.User{ID: 1}}))

	_, err := env.Auth.Profile(t.Context())
	require.Error(t, err)

	require.False(t, env.State.Session().Authenticated())
	require.Equal(t, []pubsub.Event{pubsub.SessionExpired}, *env.events)
}
