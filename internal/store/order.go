package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/aurawell/aurawell-api/internal/model"
)

// PlaceOrder converts the user's cart into an order: each line still backed
// by a catalog product is snapshotted at its current name and price, that
// product's stock is decremented by the ordered quantity, and the cart is
// emptied. Lines whose product has been deleted are skipped, from the order
// and from the total alike. All three collection files are written before any
// of the staged state is committed to memory, so a failed write leaves the
// in-memory view untouched.
func (s *Store) PlaceOrder(userID uuid.UUID, shippingAddress string) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ci := s.cartIndex(userID)
	if ci < 0 || len(s.carts[ci].Items) == 0 {
		return nil, ErrEmptyCart
	}

	nextProducts := cloneSlice(s.products)
	total := decimal.Zero
	items := []model.OrderItem{}
	for _, line := range s.carts[ci].Items {
		pi := -1
		for j := range nextProducts {
			if nextProducts[j].ID == line.ProductID {
				pi = j
				break
			}
		}
		if pi < 0 {
			continue
		}
		p := &nextProducts[pi]
		items = append(items, model.OrderItem{
			ProductID:       p.ID,
			ProductName:     p.Name,
			Quantity:        line.Quantity,
			PriceAtPurchase: p.Price,
		})
		total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		// No floor check: stock goes negative when oversold, matching the
		// legacy data semantics.
		p.Stock -= line.Quantity
	}

	order := model.Order{
		ID:              uuid.New(),
		UserID:          userID,
		Items:           items,
		TotalAmount:     total,
		Status:          model.OrderStatusPending,
		ShippingAddress: shippingAddress,
		CreatedAt:       time.Now().UTC(),
	}
	nextOrders := append(cloneOrders(s.orders), order)

	nextCarts := cloneCarts(s.carts)
	nextCarts[ci].Items = []model.CartItem{}

	if err := s.persist(productsFile, nextProducts); err != nil {
		return nil, fmt.Errorf("persist products: %w", err)
	}
	if err := s.persist(ordersFile, nextOrders); err != nil {
		return nil, fmt.Errorf("persist orders: %w", err)
	}
	if err := s.persist(cartsFile, nextCarts); err != nil {
		return nil, fmt.Errorf("persist carts: %w", err)
	}

	s.products = nextProducts
	s.orders = nextOrders
	s.carts = nextCarts

	out := cloneOrder(order)
	return &out, nil
}

func (s *Store) GetOrderByID(id uuid.UUID) (*model.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.orders {
		if s.orders[i].ID == id {
			o := cloneOrder(s.orders[i])
			return &o, nil
		}
	}
	return nil, ErrOrderNotFound
}

func (s *Store) ListOrdersByUser(userID uuid.UUID) []model.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Order
	for i := range s.orders {
		if s.orders[i].UserID == userID {
			out = append(out, cloneOrder(s.orders[i]))
		}
	}
	return out
}

func (s *Store) ListOrders() []model.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneOrders(s.orders)
}

// UpdateOrderStatus overwrites the status unconditionally; no transition
// rules are enforced.
func (s *Store) UpdateOrderStatus(id uuid.UUID, status string) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.orders {
		if s.orders[i].ID != id {
			continue
		}
		next := cloneOrders(s.orders)
		next[i].Status = status
		if err := s.persist(ordersFile, next); err != nil {
			return nil, fmt.Errorf("persist orders: %w", err)
		}
		s.orders = next
		o := cloneOrder(next[i])
		return &o, nil
	}
	return nil, ErrOrderNotFound
}

func cloneOrder(o model.Order) model.Order {
	o.Items = cloneSlice(o.Items)
	return o
}

func cloneOrders(in []model.Order) []model.Order {
	out := make([]model.Order, len(in))
	for i, o := range in {
		out[i] = cloneOrder(o)
	}
	return out
}
