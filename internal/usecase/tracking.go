package usecase

import (
	"context"
	"fmt"
	"sync"

	"storefront/internal/domain/entities"
	"storefront/internal/domain/repositories"
	"storefront/internal/domain/workflow"
	"storefront/internal/infrastructure/logger"
)

// OrderTracker keeps the client's read-only projections of orders. The
// backend owns every order; the cache is only ever overwritten with what
// a service returned.
type OrderTracker struct {
	orders  repositories.OrderGateway
	status  repositories.StatusGateway
	session *SessionStore
	logger  *logger.Logger

	mu    sync.RWMutex
	cache map[string]*entities.Order
}

// Tracking is what the customer tracking view renders for one order.
type Tracking struct {
	Order     *entities.Order
	Step      int
	Steps     []entities.Status
	Cancelled bool
	Label     string
}

func NewOrderTracker(orders repositories.OrderGateway, status repositories.StatusGateway, session *SessionStore, logger *logger.Logger) *OrderTracker {
	return &OrderTracker{
		orders:  orders,
		status:  status,
		session: session,
		logger:  logger,
		cache:   make(map[string]*entities.Order),
	}
}

// Refresh re-reads an order's current status from the status service.
func (t *OrderTracker) Refresh(ctx context.Context, orderID string) (*entities.Order, error) {
	if orderID == "" {
		return nil, ErrInvalidOrderID
	}

	order, err := t.status.GetOrderStatus(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch order status: %w", err)
	}
	if order.OrderID == "" {
		order.OrderID = orderID
	}

	return t.Remember(order), nil
}

// Remember merges a server-confirmed projection into the cache and
// returns a copy of the merged order.
func (t *OrderTracker) Remember(order *entities.Order) *entities.Order {
	t.mu.Lock()
	defer t.mu.Unlock()

	rawStatus := order.RawStatus
	if rawStatus == "" && order.Status != entities.StatusUnknown {
		rawStatus = order.Status.WireValue()
	}

	cached, ok := t.cache[order.OrderID]
	if !ok {
		cached = copyOrder(order)
		cached.SetStatus(rawStatus)
		t.cache[order.OrderID] = cached
		return copyOrder(cached)
	}

	if order.CustomerID != "" {
		cached.CustomerID = order.CustomerID
	}
	if len(order.Items) > 0 {
		cached.Items = append([]entities.Item(nil), order.Items...)
		cached.Total = order.Total
	} else if !order.Total.IsZero() {
		cached.Total = order.Total
	}
	if rawStatus != "" {
		cached.SetStatus(rawStatus)
	}
	if !order.CreatedAt.IsZero() {
		cached.CreatedAt = order.CreatedAt
	}
	return copyOrder(cached)
}

func (t *OrderTracker) Cached(orderID string) (*entities.Order, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	order, ok := t.cache[orderID]
	if !ok {
		return nil, false
	}
	return copyOrder(order), true
}

// current returns the cached order, fetching it when unknown.
func (t *OrderTracker) current(ctx context.Context, orderID string) (*entities.Order, error) {
	if order, ok := t.Cached(orderID); ok {
		return order, nil
	}
	return t.Refresh(ctx, orderID)
}

// ListMine lists the orders of the signed-in customer.
func (t *OrderTracker) ListMine(ctx context.Context) ([]entities.Order, error) {
	identity, ok := t.session.Identity()
	if !ok {
		return nil, ErrAuthenticationRequired
	}

	orders, err := t.orders.ListOrdersByCustomer(ctx, identity.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list customer orders: %w", err)
	}

	for i := range orders {
		orders[i] = *t.Remember(&orders[i])
	}
	return orders, nil
}

// Board lists orders for every known status. A status whose listing fails
// shows up empty; the others still load.
func (t *OrderTracker) Board(ctx context.Context) map[entities.Status][]entities.Order {
	board := make(map[entities.Status][]entities.Order, len(entities.Statuses))
	for _, status := range entities.Statuses {
		orders, err := t.orders.ListOrdersByStatus(ctx, status)
		if err != nil {
			t.logger.Warn("Failed to load orders for status", "status", status, "error", err)
			board[status] = []entities.Order{}
			continue
		}
		for i := range orders {
			orders[i] = *t.Remember(&orders[i])
		}
		board[status] = orders
	}
	return board
}

func (t *OrderTracker) History(ctx context.Context, orderID string) ([]entities.StatusChange, error) {
	if orderID == "" {
		return nil, ErrInvalidOrderID
	}

	history, err := t.status.GetOrderHistory(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch order history: %w", err)
	}
	return history, nil
}

// Track refreshes an order and projects it onto the progress bar.
func (t *OrderTracker) Track(ctx context.Context, orderID string) (*Tracking, error) {
	order, err := t.Refresh(ctx, orderID)
	if err != nil {
		return nil, err
	}

	step, onTrack := workflow.Progress(order.Status)
	return &Tracking{
		Order:     order,
		Step:      step,
		Steps:     workflow.ProgressSteps,
		Cancelled: !onTrack,
		Label:     workflow.StatusLabel(order.Status),
	}, nil
}

func copyOrder(order *entities.Order) *entities.Order {
	c := *order
	c.Items = append([]entities.Item(nil), order.Items...)
	return &c
}
