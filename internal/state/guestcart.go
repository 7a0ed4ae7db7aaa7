package state

import "github.com/flipcart/storefront/internal/models"

// GuestCart returns the durable guest cart, empty when nothing is stored or
// the stored value cannot be read.
func (s *Store) GuestCart() []models.CartEntry {
	var entries []models.CartEntry
	if !s.get(guestCartKey, &entries) {
		return nil
	}
	return entries
}

// SaveGuestCart overwrites the stored guest cart in one write.
func (s *Store) SaveGuestCart(entries []models.CartEntry) error {
	return s.put(guestCartKey, entries)
}

// AddOrIncrement merges p into the guest cart: an existing entry for the same
// product id has its quantity raised by qty, otherwise a new entry is
// appended. Quantities below one are treated as one.
func (s *Store) AddOrIncrement(p models.Product, qty int) ([]models.CartEntry, error) {
	if qty < 1 {
		qty = 1
	}
	entries := s.GuestCart()
	found := false
	for i := range entries {
		if entries[i].Product.ID == p.ID {
			entries[i].Quantity += qty
			found = true
			break
		}
	}
	if !found {
		entries = append(entries, models.CartEntry{Product: p, Quantity: qty})
	}
	if err := s.SaveGuestCart(entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// SetGuestQuantity sets the quantity for productID; qty <= 0 removes the
// entry. A missing entry is a silent no-op.
func (s *Store) SetGuestQuantity(productID, qty int) ([]models.CartEntry, error) {
	if qty <= 0 {
		return s.RemoveGuestEntry(productID)
	}
	entries := s.GuestCart()
	for i := range entries {
		if entries[i].Product.ID == productID {
			entries[i].Quantity = qty
			break
		}
	}
	if err := s.SaveGuestCart(entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *Store) RemoveGuestEntry(productID int) ([]models.CartEntry, error) {
	entries := s.GuestCart()
	kept := make([]models.CartEntry, 0, len(entries))
	for _, e := range entries {
		if e.Product.ID != productID {
			kept = append(kept, e)
		}
	}
	if err := s.SaveGuestCart(kept); err != nil {
		return nil, err
	}
	return kept, nil
}

func (s *Store) ClearGuestCart() error {
	return s.delete(guestCartKey)
}

// GuestCount is the badge number: the sum of quantities across all entries.
func (s *Store) GuestCount() int {
	n := 0
	for _, e := range s.GuestCart() {
		n += e.Quantity
	}
	return n
}

func (s *Store) GuestTotal() float64 {
	var total float64
	for _, e := range s.GuestCart() {
		total += float64(e.Product.Price) * float64(e.Quantity)
	}
	return total
}
