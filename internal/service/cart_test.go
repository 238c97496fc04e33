package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurawell/aurawell-api/internal/dto"
	"github.com/aurawell/aurawell-api/internal/store"
)

func TestCartService_AddItem_EnrichesLines(t *testing.T) {
	st := newTestStore(t)
	products := NewProductService(st, nil)
	carts := NewCartService(st)
	userID := uuid.New()

	p, err := products.Create(dto.CreateProductRequest{
		Name: "Lavender Mist", Price: decimal.RequireFromString("13.50"), Stock: 25,
	})
	require.NoError(t, err)

	cart, err := carts.AddItem(userID, p.ID, 2)
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, "Lavender Mist", cart.Items[0].Name)
	assert.True(t, cart.Items[0].Price.Equal(decimal.RequireFromString("13.50")))
	assert.Equal(t, 2, cart.Items[0].Quantity)
}

func TestCartService_AddItem_ProductNotFound(t *testing.T) {
	carts := NewCartService(newTestStore(t))
	_, err := carts.AddItem(uuid.New(), uuid.New(), 2)
	assert.ErrorIs(t, err, store.ErrProductNotFound)
}

func TestCartService_UpdateAndRemove(t *testing.T) {
	st := newTestStore(t)
	products := NewProductService(st, nil)
	carts := NewCartService(st)
	userID := uuid.New()

	p, err := products.Create(dto.CreateProductRequest{
		Name: "Bath Salts", Price: decimal.RequireFromString("7.00"), Stock: 10,
	})
	require.NoError(t, err)

	_, err = carts.AddItem(userID, p.ID, 1)
	require.NoError(t, err)

	cart, err := carts.UpdateItem(userID, p.ID, 4)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 4, cart.Items[0].Quantity)

	cart, err = carts.RemoveItem(userID, p.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestCartService_Clear(t *testing.T) {
	st := newTestStore(t)
	products := NewProductService(st, nil)
	carts := NewCartService(st)
	userID := uuid.New()

	p, err := products.Create(dto.CreateProductRequest{
		Name: "Soy Candle", Price: decimal.RequireFromString("15.00"), Stock: 12,
	})
	require.NoError(t, err)

	_, err = carts.AddItem(userID, p.ID, 3)
	require.NoError(t, err)
	require.NoError(t, carts.Clear(userID))

	cart, err := carts.GetCart(userID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}
