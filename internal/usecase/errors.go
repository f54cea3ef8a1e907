package usecase

import (
	"errors"
	"fmt"

	"storefront/internal/domain/repositories"
)

var (
	ErrAuthenticationFailed   = errors.New("authentication failed")
	ErrRegistrationFailed     = errors.New("registration failed")
	ErrExpiredCredential      = errors.New("credential expired")
	ErrLoginSuperseded        = errors.New("login superseded by a newer attempt")
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrEmptyCart              = errors.New("cart is empty")
	ErrUnknownProduct         = errors.New("unknown product")
	ErrInvalidOrderID         = errors.New("invalid order ID")
	ErrNoActionAvailable      = errors.New("no action available for order status")
	ErrNotAuthorized          = errors.New("role not authorized for action")
	ErrActionInFlight         = errors.New("action already in flight for order")
	ErrActionRejected         = errors.New("action rejected")
	ErrOrderNotCancellable    = errors.New("order can no longer be cancelled")
)

// remoteError maps a gateway failure onto kind, keeping the server message.
// Network failures pass through untouched so callers can tell them apart.
func remoteError(kind, err error) error {
	if errors.Is(err, repositories.ErrNetworkUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %s", kind, repositories.GatewayMessage(err))
}
