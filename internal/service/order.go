package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/aurawell/aurawell-api/internal/dto"
	"github.com/aurawell/aurawell-api/internal/model"
	"github.com/aurawell/aurawell-api/internal/store"
)

var ErrOrderAccessDenied = errors.New("access denied")

type OrderService struct {
	store  *store.Store
	amqpCh *amqp.Channel
}

// NewOrderService wires checkout over the store. amqpCh may be nil, which
// disables order-placed event publishing.
func NewOrderService(st *store.Store, amqpCh *amqp.Channel) *OrderService {
	return &OrderService{store: st, amqpCh: amqpCh}
}

// PlaceOrder runs checkout for the user's cart and, when a broker is
// configured, publishes an order-placed event for downstream consumers. The
// event is best-effort; the order is already durable by the time it is sent.
func (s *OrderService) PlaceOrder(ctx context.Context, userID uuid.UUID, req dto.PlaceOrderRequest) (*dto.OrderResponse, error) {
	order, err := s.store.PlaceOrder(userID, req.ShippingAddress)
	if err != nil {
		return nil, err
	}

	if s.amqpCh != nil {
		msg, _ := json.Marshal(model.OrderPlacedMessage{OrderID: order.ID, UserID: userID})
		_ = s.amqpCh.PublishWithContext(ctx, "", "orders", false, false, amqp.Publishing{
			ContentType:  "application/json",
			Body:         msg,
			DeliveryMode: amqp.Persistent,
		})
	}

	resp := toOrderResponse(order)
	return &resp, nil
}

func (s *OrderService) GetByID(orderID, userID uuid.UUID) (*dto.OrderResponse, error) {
	order, err := s.store.GetOrderByID(orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrOrderAccessDenied
	}
	resp := toOrderResponse(order)
	return &resp, nil
}

func (s *OrderService) ListByUser(userID uuid.UUID) dto.OrderListResponse {
	return toOrderList(s.store.ListOrdersByUser(userID))
}

// ListAll returns every order across users; the admin route guards access.
func (s *OrderService) ListAll() dto.OrderListResponse {
	return toOrderList(s.store.ListOrders())
}

func (s *OrderService) UpdateStatus(orderID uuid.UUID, status string) (*dto.OrderResponse, error) {
	order, err := s.store.UpdateOrderStatus(orderID, status)
	if err != nil {
		return nil, err
	}
	resp := toOrderResponse(order)
	return &resp, nil
}

func toOrderList(orders []model.Order) dto.OrderListResponse {
	items := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		items = append(items, toOrderResponse(&orders[i]))
	}
	return dto.OrderListResponse{Orders: items, Total: len(items)}
}

func toOrderResponse(order *model.Order) dto.OrderResponse {
	items := make([]dto.OrderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, dto.OrderItemResponse{
			ProductID:       item.ProductID,
			ProductName:     item.ProductName,
			Quantity:        item.Quantity,
			PriceAtPurchase: item.PriceAtPurchase,
		})
	}
	return dto.OrderResponse{
		ID:              order.ID,
		UserID:          order.UserID,
		Items:           items,
		TotalAmount:     order.TotalAmount,
		Status:          order.Status,
		ShippingAddress: order.ShippingAddress,
		CreatedAt:       order.CreatedAt,
	}
}
