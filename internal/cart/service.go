// Package cart is the reconciler between the two cart backends: the durable
// guest cart in local state and the authoritative server-side cart. Callers
// never branch on session mode; this package routes every operation based on
// whether a token is currently stored.
//
// The two paths deliberately have different consistency models. The remote
// path never updates its cached view optimistically: each mutation is
// followed by a fresh fetch, so the cache only ever holds the last successful
// server read. The local path is its own truth and updates synchronously.
package cart

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/flipcart/storefront/internal/api"
	"github.com/flipcart/storefront/internal/models"
	"github.com/flipcart/storefront/internal/pubsub"
	"github.com/flipcart/storefront/internal/state"
)

// ErrBusy rejects a mutation while another one is still in flight, the
// equivalent of a disabled button: no overlapping submissions per cart.
var ErrBusy = errors.New("another cart update is in progress")

// ErrGuestCheckout is returned when checkout is attempted without a session;
// orders exist only on the backend.
var ErrGuestCheckout = errors.New("log in to check out")

// Line is one row of the unified cart view. Guest entries and remote items
// both collapse into it so display code is identical in both modes.
type Line struct {
	Product  models.Product
	Quantity int
}

type View struct {
	Lines []Line
	Count int
	Total float64
}

type Service struct {
	state  *state.Store
	remote *api.Client
	bus    *pubsub.Bus
	log    *slog.Logger

	mu         sync.Mutex
	submitting bool
	cached     models.Cart
}

func NewService(st *state.Store, remote *api.Client, bus *pubsub.Bus, log *slog.Logger) *Service {
	return &Service{state: st, remote: remote, bus: bus, log: log}
}

// begin moves the submission gate to Submitting; end settles it either way.
func (s *Service) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.submitting {
		return ErrBusy
	}
	s.submitting = true
	return nil
}

func (s *Service) end() {
	s.mu.Lock()
	s.submitting = false
	s.mu.Unlock()
}

func (s *Service) authenticated() bool {
	return s.state.Session().Authenticated()
}

// refresh re-reads the authoritative cart, replaces the cached view and
// announces the change. On a failed read the cache keeps its previous value
// and nothing is announced.
func (s *Service) refresh(ctx context.Context) error {
	fresh, err := s.remote.FetchCart(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.cached = fresh
	s.mu.Unlock()
	s.bus.Publish(pubsub.CartChanged)
	return nil
}

// Add puts qty of p into whichever cart is active.
func (s *Service) Add(ctx context.Context, p models.Product, qty int) error {
	if err := s.begin(); err != nil {
		return err
	}
	defer s.end()

	if s.authenticated() {
		if _, err := s.remote.AddCartItem(ctx, p.ID, qty); err != nil {
			return err
		}
		return s.refresh(ctx)
	}

	if _, err := s.state.AddOrIncrement(p, qty); err != nil {
		return err
	}
	s.bus.Publish(pubsub.CartChanged)
	return nil
}

// SetQuantity sets the exact quantity for productID; qty <= 0 removes it.
func (s *Service) SetQuantity(ctx context.Context, productID, qty int) error {
	if qty <= 0 {
		return s.Remove(ctx, productID)
	}
	if err := s.begin(); err != nil {
		return err
	}
	defer s.end()

	if s.authenticated() {
		if err := s.remote.UpdateCartItem(ctx, productID, qty); err != nil {
			return err
		}
		return s.refresh(ctx)
	}

	if _, err := s.state.SetGuestQuantity(productID, qty); err != nil {
		return err
	}
	s.bus.Publish(pubsub.CartChanged)
	return nil
}

// Remove drops productID from the active cart. A remote line that is already
// gone (removed from another device) counts as success.
func (s *Service) Remove(ctx context.Context, productID int) error {
	if err := s.begin(); err != nil {
		return err
	}
	defer s.end()

	if s.authenticated() {
		err := s.remote.RemoveCartItem(ctx, productID)
		if err != nil {
			apiErr, ok := api.AsError(err)
			if !ok || !apiErr.NotFound() {
				return err
			}
			s.log.Debug("remove of missing cart item treated as done", "product_id", productID)
		}
		return s.refresh(ctx)
	}

	if _, err := s.state.RemoveGuestEntry(productID); err != nil {
		return err
	}
	s.bus.Publish(pubsub.CartChanged)
	return nil
}

// Clear empties the active cart line by line on the remote path (the backend
// has no bulk clear), in one overwrite on the local path.
func (s *Service) Clear(ctx context.Context) error {
	if err := s.begin(); err != nil {
		return err
	}
	defer s.end()

	if s.authenticated() {
		cart, err := s.remote.FetchCart(ctx)
		if err != nil {
			return err
		}
		for _, item := range cart.Items {
			if err := s.remote.RemoveCartItem(ctx, item.Product.ID); err != nil {
				return err
			}
		}
		return s.refresh(ctx)
	}

	if err := s.state.ClearGuestCart(); err != nil {
		return err
	}
	s.bus.Publish(pubsub.CartChanged)
	return nil
}

// Checkout turns the authenticated cart into an order. The backend drains
// the cart as part of order creation, so the follow-up refresh publishes the
// now-empty view.
func (s *Service) Checkout(ctx context.Context, paymentMethod, shippingAddress string) (models.Order, error) {
	if err := s.begin(); err != nil {
		return models.Order{}, err
	}
	defer s.end()

	if !s.authenticated() {
		return models.Order{}, ErrGuestCheckout
	}
	order, err := s.remote.CreateOrder(ctx, paymentMethod, shippingAddress)
	if err != nil {
		return models.Order{}, err
	}
	if err := s.refresh(ctx); err != nil {
		return order, err
	}
	return order, nil
}

// View returns the unified cart. In authenticated mode this is a fresh
// server read (and the cache is updated silently, with no change event:
// reading is not a mutation); in guest mode it is a pure local read.
func (s *Service) View(ctx context.Context) (View, error) {
	if s.authenticated() {
		fresh, err := s.remote.FetchCart(ctx)
		if err != nil {
			return View{}, err
		}
		s.mu.Lock()
		s.cached = fresh
		s.mu.Unlock()
		return viewFromCart(fresh), nil
	}
	return viewFromEntries(s.state.GuestCart()), nil
}

// Count is the badge number. Same routing as View.
func (s *Service) Count(ctx context.Context) (int, error) {
	v, err := s.View(ctx)
	if err != nil {
		return 0, err
	}
	return v.Count, nil
}

// Cached returns the last successful remote read without touching the
// network. Meaningful only in authenticated mode.
func (s *Service) Cached() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return viewFromCart(s.cached)
}

func viewFromCart(cart models.Cart) View {
	v := View{Lines: make([]Line, 0, len(cart.Items))}
	for _, item := range cart.Items {
		v.Lines = append(v.Lines, Line{Product: item.Product, Quantity: item.Quantity})
		v.Count += item.Quantity
		v.Total += float64(item.Product.Price) * float64(item.Quantity)
	}
	return v
}

func viewFromEntries(entries []models.CartEntry) View {
	v := View{Lines: make([]Line, 0, len(entries))}
	for _, e := range entries {
		v.Lines = append(v.Lines, Line{Product: e.Product, Quantity: e.Quantity})
		v.Count += e.Quantity
		v.Total += float64(e.Product.Price) * float64(e.Quantity)
	}
	return v
}
