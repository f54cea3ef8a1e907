package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"storefront/internal/domain/entities"
	"storefront/internal/infrastructure/logger"

	"github.com/nats-io/nats.go"
)

const OrderPlacedSubject = "order.placed"

// EventBus announces orders placed from this client and listens for
// status changes pushed by the backend, so tracking views can refresh
// without polling.
type EventBus struct {
	nc     *nats.Conn
	logger *logger.Logger
	subs   []*nats.Subscription
}

type OrderPlacedEvent struct {
	OrderID    string `json:"order_id"`
	CustomerID string `json:"customer_id"`
	Total      string `json:"total"`
	Status     string `json:"status"`
	CreatedAt  string `json:"created_at,omitempty"`
}

// StatusChangedEvent is what the status service publishes when an order
// moves.
type StatusChangedEvent struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

func NewEventBus(url string, logger *logger.Logger) (*EventBus, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var nc *nats.Conn
	var err error

	for i := 0; i < 3; i++ {
		nc, err = nats.Connect(url,
			nats.Name("Storefront"),
			nats.MaxReconnects(5),
			nats.ReconnectWait(2*time.Second),
			nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
				logger.Warn("NATS disconnected", "error", err)
			}),
			nats.ReconnectHandler(func(nc *nats.Conn) {
				logger.Info("NATS reconnected", "url", nc.ConnectedUrl())
			}),
		)

		if err == nil {
			logger.Info("Connected to NATS", "url", url)
			return &EventBus{nc: nc, logger: logger}, nil
		}

		logger.Warn("Failed to connect to NATS", "attempt", i+1, "error", err)

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		case <-time.After(2 * time.Second):
			continue
		}
	}

	return nil, fmt.Errorf("failed to connect to NATS after retries: %w", err)
}

func (b *EventBus) PublishOrderPlaced(ctx context.Context, order *entities.Order) error {
	data, err := json.Marshal(newOrderPlacedEvent(order))
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	for i := 0; i < 3; i++ {
		select {
		case <-ctx.Done():
			b.logger.Warn("Context cancelled while publishing to NATS")
			return ctx.Err()
		default:
			if err := b.nc.Publish(OrderPlacedSubject, data); err != nil {
				b.logger.Warn("Failed to publish to NATS", "attempt", i+1, "error", err)
				time.Sleep(1 * time.Second)
				continue
			}

			if err := b.nc.FlushTimeout(2 * time.Second); err != nil {
				b.logger.Warn("Failed to flush NATS connection", "error", err)
				continue
			}

			b.logger.Info("Published order.placed event", "order_id", order.OrderID)
			return nil
		}
	}

	b.logger.Error("Failed to publish event to NATS after retries", "order_id", order.OrderID)
	return fmt.Errorf("failed to publish event after retries")
}

// SubscribeStatusChanges calls handle for every well-formed status event
// on subject. Malformed messages are logged and dropped.
func (b *EventBus) SubscribeStatusChanges(subject string, handle func(StatusChangedEvent)) error {
	sub, err := b.nc.Subscribe(subject, func(msg *nats.Msg) {
		event, err := DecodeStatusChanged(msg)
		if err != nil {
			b.logger.Warn("Dropping status event", "subject", msg.Subject, "error", err)
			return
		}
		handle(event)
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", subject, err)
	}

	b.subs = append(b.subs, sub)
	b.logger.Info("Subscribed to status changes", "subject", subject)
	return nil
}

func (b *EventBus) Close() {
	for _, sub := range b.subs {
		_ = sub.Unsubscribe()
	}
	if b.nc != nil && !b.nc.IsClosed() {
		b.nc.Close()
		b.logger.Info("NATS connection closed")
	}
}

func DecodeStatusChanged(msg *nats.Msg) (StatusChangedEvent, error) {
	var event StatusChangedEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		return StatusChangedEvent{}, fmt.Errorf("failed to decode status event: %w", err)
	}

	event.OrderID = strings.TrimSpace(event.OrderID)
	if event.OrderID == "" {
		return StatusChangedEvent{}, fmt.Errorf("status event without order_id")
	}
	return event, nil
}

func newOrderPlacedEvent(order *entities.Order) OrderPlacedEvent {
	event := OrderPlacedEvent{
		OrderID:    order.OrderID,
		CustomerID: order.CustomerID,
		Total:      order.Total.StringFixed(2),
		Status:     order.RawStatus,
	}
	if !order.CreatedAt.IsZero() {
		event.CreatedAt = order.CreatedAt.Format(time.RFC3339)
	}
	return event
}
