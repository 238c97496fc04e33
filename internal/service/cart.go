package service

import (
	"github.com/google/uuid"

	"github.com/aurawell/aurawell-api/internal/dto"
	"github.com/aurawell/aurawell-api/internal/model"
	"github.com/aurawell/aurawell-api/internal/store"
)

type CartService struct {
	store *store.Store
}

func NewCartService(st *store.Store) *CartService {
	return &CartService{store: st}
}

func (s *CartService) GetCart(userID uuid.UUID) (*dto.CartResponse, error) {
	cart, err := s.store.GetCart(userID)
	if err != nil {
		return nil, err
	}
	return s.toCartResponse(cart), nil
}

func (s *CartService) AddItem(userID, productID uuid.UUID, quantity int) (*dto.CartResponse, error) {
	cart, err := s.store.AddCartItem(userID, productID, quantity)
	if err != nil {
		return nil, err
	}
	return s.toCartResponse(cart), nil
}

func (s *CartService) UpdateItem(userID, productID uuid.UUID, quantity int) (*dto.CartResponse, error) {
	cart, err := s.store.UpdateCartItem(userID, productID, quantity)
	if err != nil {
		return nil, err
	}
	return s.toCartResponse(cart), nil
}

func (s *CartService) RemoveItem(userID, productID uuid.UUID) (*dto.CartResponse, error) {
	cart, err := s.store.RemoveCartItem(userID, productID)
	if err != nil {
		return nil, err
	}
	return s.toCartResponse(cart), nil
}

func (s *CartService) Clear(userID uuid.UUID) error {
	return s.store.ClearCart(userID)
}

// toCartResponse joins each line with its current catalog entry so clients
// see name and price without a second round trip. Lines for since-deleted
// products are still listed, with the snapshot fields left zero.
func (s *CartService) toCartResponse(cart *model.Cart) *dto.CartResponse {
	items := make([]dto.CartItemResponse, 0, len(cart.Items))
	for _, line := range cart.Items {
		item := dto.CartItemResponse{ProductID: line.ProductID, Quantity: line.Quantity}
		if p, err := s.store.GetProductByID(line.ProductID); err == nil {
			item.Name = p.Name
			item.Price = p.Price
		}
		items = append(items, item)
	}
	return &dto.CartResponse{UserID: cart.UserID, Items: items}
}
