package api

import (
	"context"
	"net/http"

	"github.com/flipcart/storefront/internal/models"
)

// wireUser is the backend's user shape; the staff flag becomes the
// buyer/seller role everywhere else in the client.
type wireUser struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsStaff  bool   `json:"is_staff"`
}

func (u wireUser) toUser() models.User {
	role := models.RoleBuyer
	if u.IsStaff {
		role = models.RoleSeller
	}
	return models.User{ID: u.ID, Username: u.Username, Email: u.Email, Role: role}
}

// Login exchanges credentials for a session. Bad credentials come back as a
// 401, so the auth-rejected hook also fires; clearing an absent session is
// harmless, and the backend's own message ("Invalid credentials") is kept.
func (c *Client) Login(ctx context.Context, username, password string) (models.Session, error) {
	var resp struct {
		Token string   `json:"token"`
		User  wireUser `json:"user"`
	}
	body := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, "/users/login/", body, &resp); err != nil {
		return models.Session{}, err
	}
	return models.Session{Token: resp.Token, User: resp.User.toUser()}, nil
}

// Register creates an account. The backend also returns a token, but the
// client keeps the explicit login step, so only the created user is returned.
func (c *Client) Register(ctx context.Context, username, email, password string) (models.User, error) {
	var resp struct {
		User wireUser `json:"user"`
	}
	body := map[string]string{"username": username, "email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/users/register/", body, &resp); err != nil {
		return models.User{}, err
	}
	return resp.User.toUser(), nil
}

// Logout invalidates the server-side token.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/users/logout/", nil, nil)
}

func (c *Client) Profile(ctx context.Context) (models.User, error) {
	var u wireUser
	if err := c.do(ctx, http.MethodGet, "/users/profile/", nil, &u); err != nil {
		return models.User{}, err
	}
	return u.toUser(), nil
}

func (c *Client) UpdateProfile(ctx context.Context, email string) (models.User, error) {
	var u wireUser
	body := map[string]string{"email": email}
	if err := c.do(ctx, http.MethodPut, "/users/profile/", body, &u); err != nil {
		return models.User{}, err
	}
	return u.toUser(), nil
}
