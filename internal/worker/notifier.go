package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/aurawell/aurawell-api/internal/model"
	"github.com/aurawell/aurawell-api/internal/store"
)

const (
	orderQueueName = "orders"
	dlxExchange    = "orders.dlx"
	dlqQueueName   = "orders.dlq"
	idempotencyTTL = 24 * time.Hour
)

// OrderNotifier consumes order-placed events and emits a confirmation per
// order. Checkout itself is synchronous inside the store, so the notifier
// never touches collections; it is fan-out only.
type OrderNotifier struct {
	channel     *amqp.Channel
	store       *store.Store
	redisClient *redis.Client
	log         *slog.Logger
	done        chan struct{}
}

func NewOrderNotifier(ch *amqp.Channel, st *store.Store, redisClient *redis.Client, log *slog.Logger) *OrderNotifier {
	return &OrderNotifier{
		channel:     ch,
		store:       st,
		redisClient: redisClient,
		log:         log,
		done:        make(chan struct{}),
	}
}

// SetupRabbitMQ declares the orders queue with its DLX/DLQ pair.
func SetupRabbitMQ(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(dlxExchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare DLX: %w", err)
	}
	if _, err := ch.QueueDeclare(dlqQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare DLQ: %w", err)
	}
	if err := ch.QueueBind(dlqQueueName, orderQueueName, dlxExchange, false, nil); err != nil {
		return fmt.Errorf("bind DLQ: %w", err)
	}
	if _, err := ch.QueueDeclare(orderQueueName, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange":    dlxExchange,
		"x-dead-letter-routing-key": orderQueueName,
	}); err != nil {
		return fmt.Errorf("declare order queue: %w", err)
	}
	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("set QoS: %w", err)
	}
	return nil
}

func (w *OrderNotifier) Start(ctx context.Context) error {
	msgs, err := w.channel.Consume(orderQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	go func() {
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				w.processMessage(ctx, msg)
			case <-w.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	w.log.Info("order notifier started")
	return nil
}

func (w *OrderNotifier) Stop() { close(w.done) }

func (w *OrderNotifier) processMessage(ctx context.Context, msg amqp.Delivery) {
	var placed model.OrderPlacedMessage
	if err := json.Unmarshal(msg.Body, &placed); err != nil {
		w.log.Error("unmarshal order message", "error", err)
		_ = msg.Nack(false, false)
		return
	}

	log := w.log.With("order_id", placed.OrderID, "user_id", placed.UserID)

	idempotencyKey := "order_notified:" + placed.OrderID.String()
	if w.redisClient != nil {
		exists, err := w.redisClient.Exists(ctx, idempotencyKey).Result()
		if err != nil {
			log.Error("check idempotency key", "error", err)
			_ = msg.Nack(false, true)
			return
		}
		if exists > 0 {
			log.Info("order already notified, skipping")
			_ = msg.Ack(false)
			return
		}
	}

	if err := w.notify(placed); err != nil {
		log.Error("notify order", "error", err)
		_ = msg.Nack(false, false) // to DLQ
		return
	}

	if w.redisClient != nil {
		if err := w.redisClient.Set(ctx, idempotencyKey, "1", idempotencyTTL).Err(); err != nil {
			log.Error("set idempotency key", "error", err)
		}
	}

	_ = msg.Ack(false)
}

func (w *OrderNotifier) notify(placed model.OrderPlacedMessage) error {
	order, err := w.store.GetOrderByID(placed.OrderID)
	if err != nil {
		return fmt.Errorf("get order: %w", err)
	}
	user, err := w.store.GetUserByID(order.UserID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}

	// No mail transport is configured in this deployment; the confirmation
	// is emitted to the log stream instead.
	w.log.Info("order confirmation",
		"order_id", order.ID,
		"email", user.Email,
		"total", order.TotalAmount,
		"items", len(order.Items),
	)
	return nil
}
