package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"storefront/internal/domain/entities"
	"storefront/internal/domain/repositories"
	"storefront/internal/infrastructure/logger"
)

type EventPublisher interface {
	PublishOrderPlaced(ctx context.Context, order *entities.Order) error
	Close()
}

// Checkout turns the cart into an order for the signed-in customer. It is
// the only place where the cart and the session meet.
type Checkout struct {
	session   *SessionStore
	cart      *CartStore
	orders    repositories.OrderGateway
	tracker   *OrderTracker
	publisher EventPublisher
	logger    *logger.Logger

	publishing sync.WaitGroup
}

func NewCheckout(session *SessionStore, cart *CartStore, orders repositories.OrderGateway, tracker *OrderTracker, publisher EventPublisher, logger *logger.Logger) *Checkout {
	return &Checkout{
		session:   session,
		cart:      cart,
		orders:    orders,
		tracker:   tracker,
		publisher: publisher,
		logger:    logger,
	}
}

// PlaceOrder submits the cart. Without a signed-in identity it returns
// ErrAuthenticationRequired and leaves the cart untouched so it can be
// resumed after login. Once the order exists, the submitted quantities
// are taken out of the cart; anything added meanwhile stays.
func (c *Checkout) PlaceOrder(ctx context.Context) (*entities.Order, error) {
	identity, ok := c.session.Identity()
	if !ok {
		return nil, ErrAuthenticationRequired
	}

	lines := c.cart.Lines()
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	items := make([]entities.Item, len(lines))
	for i, line := range lines {
		items[i] = entities.Item{
			ProductID: line.Product.ProductID,
			Name:      line.Product.Name,
			Quantity:  line.Quantity,
			Price:     line.Product.Price,
		}
	}

	order, err := c.orders.CreateOrder(ctx, identity.UserID, items)
	if err != nil {
		c.logger.Warn("Order creation failed", "customer_id", identity.UserID, "error", err)
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	if order.CustomerID == "" {
		order.CustomerID = identity.UserID
	}
	if len(order.Items) == 0 {
		order.Items = items
		order.Total = entities.ComputeTotal(items)
	}

	if err := c.cart.RemoveOrdered(ctx, lines); err != nil {
		c.logger.Error("Order placed but cart could not be cleared", "order_id", order.OrderID, "error", err)
	}

	placed := c.tracker.Remember(order)
	c.logger.Info("Order placed", "order_id", placed.OrderID, "customer_id", placed.CustomerID, "total", placed.Total)

	if c.publisher != nil {
		event := copyOrder(placed)
		c.publishing.Add(1)
		go func() {
			defer c.publishing.Done()
			pubCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := c.publisher.PublishOrderPlaced(pubCtx, event); err != nil {
				c.logger.Warn("Failed to publish order.placed event", "order_id", event.OrderID, "error", err)
			}
		}()
	}

	return placed, nil
}

// Wait blocks until every order.placed publish started by PlaceOrder has
// returned. Call it before closing the publisher.
func (c *Checkout) Wait() {
	c.publishing.Wait()
}
