package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aurawell/aurawell-api/internal/model"
)

// CreateProduct appends a product to the catalog. It always succeeds short of
// a disk failure.
func (s *Store) CreateProduct(product *model.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	product.ID = uuid.New()
	product.CreatedAt = time.Now().UTC()

	next := append(cloneSlice(s.products), *product)
	if err := s.persist(productsFile, next); err != nil {
		return fmt.Errorf("persist products: %w", err)
	}
	s.products = next
	return nil
}

func (s *Store) GetProductByID(id uuid.UUID) (*model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.products {
		if s.products[i].ID == id {
			p := s.products[i]
			return &p, nil
		}
	}
	return nil, ErrProductNotFound
}

func (s *Store) ListProducts() []model.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSlice(s.products)
}

func (s *Store) ListProductsByCategory(category string) []model.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Product
	for i := range s.products {
		if strings.EqualFold(s.products[i].Category, category) {
			out = append(out, s.products[i])
		}
	}
	return out
}

// UpdateProduct replaces every field of the identified product except its ID
// and original CreatedAt, which survive whatever the patch carries.
func (s *Store) UpdateProduct(id uuid.UUID, updated model.Product) (*model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.products {
		if s.products[i].ID != id {
			continue
		}
		updated.ID = id
		updated.CreatedAt = s.products[i].CreatedAt

		next := cloneSlice(s.products)
		next[i] = updated
		if err := s.persist(productsFile, next); err != nil {
			return nil, fmt.Errorf("persist products: %w", err)
		}
		s.products = next
		return &updated, nil
	}
	return nil, ErrProductNotFound
}

func (s *Store) DeleteProduct(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.products {
		if s.products[i].ID != id {
			continue
		}
		next := append(cloneSlice(s.products[:i]), s.products[i+1:]...)
		if err := s.persist(productsFile, next); err != nil {
			return fmt.Errorf("persist products: %w", err)
		}
		s.products = next
		return nil
	}
	return ErrProductNotFound
}
