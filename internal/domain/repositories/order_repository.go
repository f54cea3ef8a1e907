package repositories

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/domain/entities"
)

// OrderGateway is the remote order service. The client never invents an
// order: it only asks for one to be created and reads projections back.
type OrderGateway interface {
	CreateOrder(ctx context.Context, customerID string, items []entities.Item) (*entities.Order, error)
	ListOrdersByCustomer(ctx context.Context, customerID string) ([]entities.Order, error)
	ListOrdersByStatus(ctx context.Context, status entities.Status) ([]entities.Order, error)
	CancelOrder(ctx context.Context, orderID, cancelledBy, reason string) error
}

// FulfillmentGateway is the remote fulfillment service, one endpoint per
// staff action.
type FulfillmentGateway interface {
	AssignCook(ctx context.Context, orderID, staffID, staffName string) error
	MarkPacked(ctx context.Context, orderID, staffID, staffName string) error
	AssignDelivery(ctx context.Context, orderID, staffID, staffName string) error
	MarkDelivered(ctx context.Context, orderID, staffID, staffName string) error
}

// StatusGateway is the remote status service.
type StatusGateway interface {
	GetOrderStatus(ctx context.Context, orderID string) (*entities.Order, error)
	GetOrderHistory(ctx context.Context, orderID string) ([]entities.StatusChange, error)
}

var (
	ErrOrderNotFound      = &RepositoryError{"order not found"}
	ErrStateNotFound      = &RepositoryError{"state not found"}
	ErrNetworkUnavailable = errors.New("network unavailable")
)

type RepositoryError struct {
	message string
}

func (e *RepositoryError) Error() string {
	return e.message
}

// GatewayError is a request the remote service answered but refused.
// Message is the server's own explanation, suitable for display.
type GatewayError struct {
	StatusCode int
	Message    string
}

func (e *GatewayError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request rejected with status %d", e.StatusCode)
	}
	return e.Message
}

// GatewayMessage extracts the server message from err, or returns err's
// text when it is not a GatewayError.
func GatewayMessage(err error) string {
	var gwErr *GatewayError
	if errors.As(err, &gwErr) {
		return gwErr.Error()
	}
	return err.Error()
}
