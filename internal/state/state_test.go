package state

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flipcart/storefront/internal/logging"
	"github.com/flipcart/storefront/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "state.db"), logging.New("error"))
	require.NoError(t, err)
	return s
}

func sampleProduct(id int, price float64) models.Product {
	return models.Product{
		ID:       id,
		Name:     "test_product",
		Price:    models.Price(price),
		Category: "electronics",
		Stock:    10,
	}
}

func TestSessionRoundTrip(t *testing.T) {
	s := newTestStore(t)

	require.False(t, s.Session().Authenticated())

	sess := models.Session{
		Token: "abc123",
		User:  models.User{ID: 1, Username: "alice", Email: "a@example.com", Role: models.RoleBuyer},
	}
	require.NoError(t, s.SetSession(sess))
	require.Equal(t, sess, s.Session())
	require.True(t, s.Session().Authenticated())

	require.NoError(t, s.ClearSession())
	require.Equal(t, models.Session{}, s.Session())
}

func TestSessionSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.db")
	log := logging.New("error")

	s, err := Open(path, log)
	require.NoError(t, err)
	require.NoError(t, s.SetSession(models.Session{Token: "tok", User: models.User{ID: 7}}))

	reopened, err := Open(path, log)
	require.NoError(t, err)
	require.Equal(t, "tok", reopened.Session().Token)
}

func TestCorruptSessionReadsAsGuest(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.db.Create(&record{Key: sessionKey, Value: []byte("{not json")}).Error)

	require.Equal(t, models.Session{}, s.Session())
	require.False(t, s.Session().Authenticated())
}

func TestCorruptGuestCartReadsAsEmpty(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.db.Create(&record{Key: guestCartKey, Value: []byte(`"surprise"`)}).Error)

	require.Empty(t, s.GuestCart())
	require.Zero(t, s.GuestCount())
}

func TestAddOrIncrementMergesByProduct(t *testing.T) {
	s := newTestStore(t)

	_, err := s.AddOrIncrement(sampleProduct(2, 100), 1)
	require.NoError(t, err)
	entries, err := s.AddOrIncrement(sampleProduct(2, 100), 2)
	require.NoError(t, err)

	require.Len(t, entries, 1)
	require.Equal(t, 3, entries[0].Quantity)
	require.Equal(t, 3, s.GuestCount())
}

func TestAddOrIncrementClampsQuantity(t *testing.T) {
	s := newTestStore(t)

	entries, err := s.AddOrIncrement(sampleProduct(1, 10), 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, 1, entries[0].Quantity)
}

func TestSetQuantityZeroRemoves(t *testing.T) {
	s := newTestStore(t)

	_, err := s.AddOrIncrement(sampleProduct(5, 50), 2)
	require.NoError(t, err)

	entries, err := s.SetGuestQuantity(5, 0)
	require.NoError(t, err)
	require.Empty(t, entries)
	require.Zero(t, s.GuestCount())
}

func TestSetQuantityMissingEntryIsNoOp(t *testing.T) {
	s := newTestStore(t)

	_, err := s.AddOrIncrement(sampleProduct(1, 10), 1)
	require.NoError(t, err)

	entries, err := s.SetGuestQuantity(99, 4)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, 1, entries[0].Quantity)
}

func TestRemoveGuestEntry(t *testing.T) {
	s := newTestStore(t)

	_, err := s.AddOrIncrement(sampleProduct(1, 10), 1)
	require.NoError(t, err)
	_, err = s.AddOrIncrement(sampleProduct(2, 20), 2)
	require.NoError(t, err)

	entries, err := s.RemoveGuestEntry(1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, 2, entries[0].Product.ID)
}

func TestCountAndTotal(t *testing.T) {
	s := newTestStore(t)

	_, err := s.AddOrIncrement(sampleProduct(1, 10), 2)
	require.NoError(t, err)
	_, err = s.AddOrIncrement(sampleProduct(2, 5.5), 3)
	require.NoError(t, err)

	require.Equal(t, 5, s.GuestCount())
	require.InDelta(t, 36.5, s.GuestTotal(), 1e-9)
}

func TestSaveLoadIsIdempotent(t *testing.T) {
	s := newTestStore(t)

	_, err := s.AddOrIncrement(sampleProduct(1, 10), 2)
	require.NoError(t, err)
	_, err = s.AddOrIncrement(sampleProduct(2, 20), 1)
	require.NoError(t, err)

	before := s.GuestCart()
	require.NoError(t, s.SaveGuestCart(before))
	require.Equal(t, before, s.GuestCart())
}

func TestClearGuestCart(t *testing.T) {
	s := newTestStore(t)

	_, err := s.AddOrIncrement(sampleProduct(1, 10), 2)
	require.NoError(t, err)
	require.NoError(t, s.ClearGuestCart())
	require.Empty(t, s.GuestCart())
}
