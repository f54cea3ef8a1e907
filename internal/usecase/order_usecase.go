package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"storefront/internal/domain/entities"
	"storefront/internal/domain/repositories"
	"storefront/internal/domain/workflow"
	"storefront/internal/infrastructure/logger"
)

// OrderUseCase requests status changes on orders: staff actions that
// advance the fulfillment workflow and cancellations. It decides locally
// whether a request makes sense, but the backend applies the change, so
// every outcome ends with a re-read of the order's status.
//
// At most one request per order is in flight; a second one is rejected
// with ErrActionInFlight rather than queued. Different orders never block
// each other.
type OrderUseCase struct {
	session     *SessionStore
	orders      repositories.OrderGateway
	fulfillment repositories.FulfillmentGateway
	tracker     *OrderTracker
	logger      *logger.Logger

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// Offer is what the staff view may show for one order.
type Offer struct {
	Action  workflow.Action
	Label   string
	Allowed bool
}

func NewOrderUseCase(session *SessionStore, orders repositories.OrderGateway, fulfillment repositories.FulfillmentGateway, tracker *OrderTracker, logger *logger.Logger) *OrderUseCase {
	return &OrderUseCase{
		session:     session,
		orders:      orders,
		fulfillment: fulfillment,
		tracker:     tracker,
		logger:      logger,
		inFlight:    make(map[string]struct{}),
	}
}

// Offer reports the next action for order and whether the signed-in role
// may request it.
func (uc *OrderUseCase) Offer(order *entities.Order) Offer {
	action := workflow.NextAction(order.Status)
	offer := Offer{Action: action, Label: action.Label()}

	if identity, ok := uc.session.Identity(); ok && action != workflow.ActionNone {
		offer.Allowed = workflow.CanPerform(action, identity.Role)
	}
	return offer
}

// Advance requests the next workflow action for an order.
func (uc *OrderUseCase) Advance(ctx context.Context, orderID string) (*entities.Order, error) {
	identity, ok := uc.session.Identity()
	if !ok {
		return nil, ErrAuthenticationRequired
	}
	if orderID == "" {
		return nil, ErrInvalidOrderID
	}

	order, err := uc.tracker.current(ctx, orderID)
	if err != nil {
		return nil, err
	}

	action := workflow.NextAction(order.Status)
	if action == workflow.ActionNone {
		return order, fmt.Errorf("%w: %s", ErrNoActionAvailable, order.Status)
	}
	if !workflow.CanPerform(action, identity.Role) {
		return order, fmt.Errorf("%w: %s may not %s", ErrNotAuthorized, identity.Role, action)
	}

	if !uc.begin(orderID) {
		return nil, ErrActionInFlight
	}
	defer uc.end(orderID)

	if err := uc.perform(ctx, action, orderID, identity.UserID, identity.DisplayName()); err != nil {
		uc.logger.Warn("Order action rejected",
			"order_id", orderID,
			"action", action,
			"staff_id", identity.UserID,
			"error", err)
		return uc.afterRejection(ctx, orderID, err)
	}

	uc.logger.Info("Order action accepted", "order_id", orderID, "action", action, "staff_id", identity.UserID)
	return uc.tracker.Refresh(ctx, orderID)
}

// Cancel requests cancellation. The customer who owns the order and
// admins may cancel while the order is not yet delivered.
func (uc *OrderUseCase) Cancel(ctx context.Context, orderID, reason string) (*entities.Order, error) {
	identity, ok := uc.session.Identity()
	if !ok {
		return nil, ErrAuthenticationRequired
	}
	if orderID == "" {
		return nil, ErrInvalidOrderID
	}

	order, err := uc.tracker.current(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !workflow.CanCancel(order.Status) {
		return order, fmt.Errorf("%w: %s", ErrOrderNotCancellable, order.Status)
	}
	if identity.Role != entities.RoleAdmin && order.CustomerID != identity.UserID {
		return order, fmt.Errorf("%w: only the customer or an admin may cancel", ErrNotAuthorized)
	}

	if !uc.begin(orderID) {
		return nil, ErrActionInFlight
	}
	defer uc.end(orderID)

	if err := uc.orders.CancelOrder(ctx, orderID, identity.UserID, reason); err != nil {
		uc.logger.Warn("Order cancellation rejected", "order_id", orderID, "error", err)
		return uc.afterRejection(ctx, orderID, err)
	}

	uc.logger.Info("Order cancelled", "order_id", orderID, "cancelled_by", identity.UserID)
	return uc.tracker.Refresh(ctx, orderID)
}

// InFlight reports whether a request for orderID is outstanding.
func (uc *OrderUseCase) InFlight(orderID string) bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	_, ok := uc.inFlight[orderID]
	return ok
}

func (uc *OrderUseCase) perform(ctx context.Context, action workflow.Action, orderID, staffID, staffName string) error {
	switch action {
	case workflow.ActionAssignCook:
		return uc.fulfillment.AssignCook(ctx, orderID, staffID, staffName)
	case workflow.ActionMarkPacked:
		return uc.fulfillment.MarkPacked(ctx, orderID, staffID, staffName)
	case workflow.ActionAssignDelivery:
		return uc.fulfillment.AssignDelivery(ctx, orderID, staffID, staffName)
	case workflow.ActionMarkDelivered:
		return uc.fulfillment.MarkDelivered(ctx, orderID, staffID, staffName)
	case workflow.ActionNone:
		return ErrNoActionAvailable
	}
	return ErrNoActionAvailable
}

// afterRejection re-reads the order so the caller sees whatever another
// actor did, instead of retrying on a stale guess.
func (uc *OrderUseCase) afterRejection(ctx context.Context, orderID string, cause error) (*entities.Order, error) {
	if errors.Is(cause, repositories.ErrNetworkUnavailable) {
		return nil, cause
	}

	refreshed, err := uc.tracker.Refresh(ctx, orderID)
	if err != nil {
		uc.logger.Warn("Failed to refresh order after rejection", "order_id", orderID, "error", err)
	}
	return refreshed, fmt.Errorf("%w: %s", ErrActionRejected, repositories.GatewayMessage(cause))
}

func (uc *OrderUseCase) begin(orderID string) bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if _, busy := uc.inFlight[orderID]; busy {
		return false
	}
	uc.inFlight[orderID] = struct{}{}
	return true
}

func (uc *OrderUseCase) end(orderID string) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	delete(uc.inFlight, orderID)
}
