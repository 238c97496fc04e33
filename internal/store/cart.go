package store

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/aurawell/aurawell-api/internal/model"
)

// GetCart returns the user's cart, lazily creating and persisting an empty
// one on first access. It only fails on a disk error.
func (s *Store) GetCart(userID uuid.UUID) (*model.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.cartIndex(userID); i >= 0 {
		c := cloneCart(s.carts[i])
		return &c, nil
	}

	cart := model.Cart{UserID: userID, Items: []model.CartItem{}}
	next := append(cloneCarts(s.carts), cart)
	if err := s.persist(cartsFile, next); err != nil {
		return nil, fmt.Errorf("persist carts: %w", err)
	}
	s.carts = next
	out := cloneCart(cart)
	return &out, nil
}

// AddCartItem merges quantity into an existing line for the product or
// appends a new line. The product must exist in the catalog.
func (s *Store) AddCartItem(userID, productID uuid.UUID, quantity int) (*model.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.productExists(productID) {
		return nil, ErrProductNotFound
	}

	next, i := s.stagedCart(userID)
	merged := false
	for j := range next[i].Items {
		if next[i].Items[j].ProductID == productID {
			next[i].Items[j].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		next[i].Items = append(next[i].Items, model.CartItem{ProductID: productID, Quantity: quantity})
	}

	if err := s.persist(cartsFile, next); err != nil {
		return nil, fmt.Errorf("persist carts: %w", err)
	}
	s.carts = next
	out := cloneCart(next[i])
	return &out, nil
}

// UpdateCartItem sets the quantity for the product's line. A quantity of zero
// or less removes the line; an absent product is a no-op.
func (s *Store) UpdateCartItem(userID, productID uuid.UUID, quantity int) (*model.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, i := s.stagedCart(userID)
	for j := range next[i].Items {
		if next[i].Items[j].ProductID != productID {
			continue
		}
		if quantity <= 0 {
			next[i].Items = append(next[i].Items[:j], next[i].Items[j+1:]...)
		} else {
			next[i].Items[j].Quantity = quantity
		}
		break
	}

	if err := s.persist(cartsFile, next); err != nil {
		return nil, fmt.Errorf("persist carts: %w", err)
	}
	s.carts = next
	out := cloneCart(next[i])
	return &out, nil
}

// RemoveCartItem drops the product's line regardless of quantity.
func (s *Store) RemoveCartItem(userID, productID uuid.UUID) (*model.Cart, error) {
	return s.UpdateCartItem(userID, productID, 0)
}

// ClearCart empties the cart; the cart entity itself persists.
func (s *Store) ClearCart(userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, i := s.stagedCart(userID)
	next[i].Items = []model.CartItem{}

	if err := s.persist(cartsFile, next); err != nil {
		return fmt.Errorf("persist carts: %w", err)
	}
	s.carts = next
	return nil
}

// cartIndex requires the caller to hold at least the read lock.
func (s *Store) cartIndex(userID uuid.UUID) int {
	for i := range s.carts {
		if s.carts[i].UserID == userID {
			return i
		}
	}
	return -1
}

// stagedCart returns a deep copy of the carts collection with the user's cart
// present, and its index. The caller mutates the copy, persists it, then
// commits it. Caller holds the write lock.
func (s *Store) stagedCart(userID uuid.UUID) ([]model.Cart, int) {
	next := cloneCarts(s.carts)
	if i := s.cartIndex(userID); i >= 0 {
		return next, i
	}
	next = append(next, model.Cart{UserID: userID, Items: []model.CartItem{}})
	return next, len(next) - 1
}

func (s *Store) productExists(id uuid.UUID) bool {
	for i := range s.products {
		if s.products[i].ID == id {
			return true
		}
	}
	return false
}

func cloneCart(c model.Cart) model.Cart {
	c.Items = cloneSlice(c.Items)
	return c
}

func cloneCarts(in []model.Cart) []model.Cart {
	out := make([]model.Cart, len(in))
	for i, c := range in {
		out[i] = cloneCart(c)
	}
	return out
}
