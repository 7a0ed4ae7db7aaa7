// Package auth owns the session lifecycle: login, registration, logout and
// the forced logout that follows a rejected token.
package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/flipcart/storefront/internal/api"
	"github.com/flipcart/storefront/internal/models"
	"github.com/flipcart/storefront/internal/pubsub"
	"github.com/flipcart/storefront/internal/state"
)

type Service struct {
	state  *state.Store
	client *api.Client
	bus    *pubsub.Bus
	log    *slog.Logger
}

// NewService wires the session layer into the transport: the client reads
// its token from the store on every request, and a 401 from any endpoint
// clears the session and announces SessionExpired exactly once, here.
func NewService(st *state.Store, client *api.Client, bus *pubsub.Bus, log *slog.Logger) *Service {
	s := &Service{state: st, client: client, bus: bus, log: log}
	client.SetTokenSource(func() string { return st.Session().Token })
	client.OnAuthRejected(func() {
		if !st.Session().Authenticated() {
			return
		}
		if err := st.ClearSession(); err != nil {
			log.Error("clear session after rejection", "error", err)
		}
		bus.Publish(pubsub.SessionExpired)
	})
	return s
}

func (s *Service) Current() models.Session {
	return s.state.Session()
}

// Login authenticates and persists the session. The existing guest cart is
// left in place untouched; it is not migrated into the server-side cart.
func (s *Service) Login(ctx context.Context, username, password string) (models.Session, error) {
	sess, err := s.client.Login(ctx, username, password)
	if err != nil {
		return models.Session{}, err
	}
	if err := s.state.SetSession(sess); err != nil {
		return models.Session{}, fmt.Errorf("persist session: %w", err)
	}
	s.log.Info("logged in", "username", sess.User.Username, "role", sess.User.Role)
	s.bus.Publish(pubsub.SessionChanged)
	return sess, nil
}

// Register creates the account only; the caller logs in as a second step.
func (s *Service) Register(ctx context.Context, username, email, password string) (models.User, error) {
	return s.client.Register(ctx, username, email, password)
}

// Logout invalidates the token server-side when possible, but the local
// session is cleared regardless: a dead backend must not pin a user to an
// identity they asked to leave.
func (s *Service) Logout(ctx context.Context) error {
	if s.state.Session().Authenticated() {
		if err := s.client.Logout(ctx); err != nil {
			s.log.Warn("server-side logout failed", "error", err)
		}
	}
	if err := s.state.ClearSession(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.bus.Publish(pubsub.SessionChanged)
	return nil
}

// Profile re-reads the account from the backend.
func (s *Service) Profile(ctx context.Context) (models.User, error) {
	return s.client.Profile(ctx)
}

// UpdateProfile changes the account email and keeps the stored session's
// copy of the user in step with the backend's answer.
func (s *Service) UpdateProfile(ctx context.Context, email string) (models.User, error) {
	user, err := s.client.UpdateProfile(ctx, email)
	if err != nil {
		return models.User{}, err
	}
	sess := s.state.Session()
	if sess.Authenticated() {
		sess.User = user
		if err := s.state.SetSession(sess); err != nil {
			return models.User{}, fmt.Errorf("persist session: %w", err)
		}
		s.bus.Publish(pubsub.SessionChanged)
	}
	return user, nil
}
