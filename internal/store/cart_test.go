package store

import (
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurawell/aurawell-api/internal/model"
)

func testProduct(t *testing.T, s *Store, name, price string, stock int) *model.Product {
	t.Helper()
	p := &model.Product{Name: name, Price: mustPrice(t, price), Stock: stock}
	require.NoError(t, s.CreateProduct(p))
	return p
}

func TestGetCart_LazyCreate(t *testing.T) {
	s, dir := newTestStore(t)
	userID := uuid.New()

	cart, err := s.GetCart(userID)
	require.NoError(t, err)
	assert.Equal(t, userID, cart.UserID)
	assert.Empty(t, cart.Items)

	// The lazily created cart is persisted, not just held in memory.
	reopened, err := Open(dir, testLogger())
	require.NoError(t, err)
	got, err := reopened.GetCart(userID)
	require.NoError(t, err)
	assert.Equal(t, userID, got.UserID)
}

func TestAddCartItem_MergesExistingLine(t *testing.T) {
	s, _ := newTestStore(t)
	p := testProduct(t, s, "Zinc Lozenges", "6.00", 50)
	userID := uuid.New()

	_, err := s.AddCartItem(userID, p.ID, 2)
	require.NoError(t, err)
	cart, err := s.AddCartItem(userID, p.ID, 3)
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)
}

func TestAddCartItem_UnknownProduct(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.AddCartItem(uuid.New(), uuid.New(), 1)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestUpdateCartItem(t *testing.T) {
	s, _ := newTestStore(t)
	p := testProduct(t, s, "Protein Powder", "29.99", 20)
	userID := uuid.New()

	_, err := s.AddCartItem(userID, p.ID, 2)
	require.NoError(t, err)

	cart, err := s.UpdateCartItem(userID, p.ID, 7)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 7, cart.Items[0].Quantity)

	// Zero removes the line.
	cart, err = s.UpdateCartItem(userID, p.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	// Absent product is a no-op.
	cart, err = s.UpdateCartItem(userID, uuid.New(), 3)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestClearCart_KeepsCartEntity(t *testing.T) {
	s, _ := newTestStore(t)
	p := testProduct(t, s, "Vitamin C", "8.25", 60)
	userID := uuid.New()

	_, err := s.AddCartItem(userID, p.ID, 1)
	require.NoError(t, err)
	require.NoError(t, s.ClearCart(userID))

	cart, err := s.GetCart(userID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestConcurrentAddCartItem_NoLostUpdates(t *testing.T) {
	s, _ := newTestStore(t)
	userID := uuid.New()

	const n = 10
	products := make([]*model.Product, n)
	for i := range products {
		products[i] = testProduct(t, s, fmt.Sprintf("Product %d", i), "1.00", 100)
	}

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.AddCartItem(userID, products[i].ID, 1)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "add %d", i)
	}
	cart, err := s.GetCart(userID)
	require.NoError(t, err)
	assert.Len(t, cart.Items, n)
}
