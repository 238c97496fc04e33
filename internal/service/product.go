package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/aurawell/aurawell-api/internal/dto"
	"github.com/aurawell/aurawell-api/internal/model"
	"github.com/aurawell/aurawell-api/internal/store"
)

const productCacheTTL = 60 * time.Second

type ProductService struct {
	store       *store.Store
	redisClient *redis.Client
}

// NewProductService wires the catalog over the store. redisClient may be nil,
// which disables the read cache.
func NewProductService(st *store.Store, redisClient *redis.Client) *ProductService {
	return &ProductService{store: st, redisClient: redisClient}
}

func (s *ProductService) Create(req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	product := &model.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Category:    req.Category,
		AgeGroup:    req.AgeGroup,
		ImageURL:    req.ImageURL,
	}
	if err := s.store.CreateProduct(product); err != nil {
		return nil, err
	}
	resp := toProductResponse(product)
	return &resp, nil
}

func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	cacheKey := "product:" + id.String()

	if s.redisClient != nil {
		if cached, err := s.redisClient.Get(ctx, cacheKey).Result(); err == nil {
			var resp dto.ProductResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return &resp, nil
			}
		}
	}

	product, err := s.store.GetProductByID(id)
	if err != nil {
		return nil, err
	}

	resp := toProductResponse(product)

	if s.redisClient != nil {
		if data, err := json.Marshal(resp); err == nil {
			s.redisClient.Set(ctx, cacheKey, data, productCacheTTL)
		}
	}

	return &resp, nil
}

// List returns the catalog, optionally narrowed to a category
// (case-insensitive).
func (s *ProductService) List(category string) []dto.ProductResponse {
	var products []model.Product
	if category == "" {
		products = s.store.ListProducts()
	} else {
		products = s.store.ListProductsByCategory(category)
	}

	items := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		items = append(items, toProductResponse(&products[i]))
	}
	return items
}

func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	updated, err := s.store.UpdateProduct(id, model.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Category:    req.Category,
		AgeGroup:    req.AgeGroup,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCache(ctx, id)
	resp := toProductResponse(updated)
	return &resp, nil
}

func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.DeleteProduct(id); err != nil {
		return err
	}
	s.invalidateCache(ctx, id)
	return nil
}

func (s *ProductService) invalidateCache(ctx context.Context, id uuid.UUID) {
	if s.redisClient != nil {
		s.redisClient.Del(ctx, "product:"+id.String())
	}
}

func toProductResponse(p *model.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		Category:    p.Category,
		AgeGroup:    p.AgeGroup,
		ImageURL:    p.ImageURL,
		CreatedAt:   p.CreatedAt,
	}
}
