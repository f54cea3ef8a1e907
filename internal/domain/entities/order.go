package entities

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	OrderID    string          `json:"order_id"`
	CustomerID string          `json:"customer_id"`
	Items      []Item          `json:"items"`
	Total      decimal.Decimal `json:"total"`
	Status     Status          `json:"-"`
	// RawStatus is the status string exactly as the backend sent it.
	RawStatus string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type Item struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name,omitempty"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// StatusChange is one entry of an order's status history.
type StatusChange struct {
	Status    Status
	RawStatus string
	ChangedAt time.Time
	StaffID   string
	StaffName string
}

// Status is the fulfillment status of an order. StatusUnknown covers any
// value the backend introduced that this client does not know yet.
type Status int

const (
	StatusUnknown Status = iota
	StatusPending
	StatusCooking
	StatusPacking
	StatusOutForDelivery
	StatusDelivered
	StatusCancelled
)

// Statuses lists every known status in progression order, CANCELLED last.
var Statuses = []Status{
	StatusPending,
	StatusCooking,
	StatusPacking,
	StatusOutForDelivery,
	StatusDelivered,
	StatusCancelled,
}

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "PENDING"
	case StatusCooking:
		return "COOKING"
	case StatusPacking:
		return "PACKING"
	case StatusOutForDelivery:
		return "OUT_FOR_DELIVERY"
	case StatusDelivered:
		return "DELIVERED"
	case StatusCancelled:
		return "CANCELLED"
	case StatusUnknown:
		return "UNKNOWN"
	}
	return "UNKNOWN"
}

// WireValue returns the status string used by the order services.
func (s Status) WireValue() string {
	switch s {
	case StatusPending:
		return "PENDIENTE"
	case StatusCooking:
		return "COCINANDO"
	case StatusPacking:
		return "EMPACANDO"
	case StatusOutForDelivery:
		return "EN_REPARTO"
	case StatusDelivered:
		return "ENTREGADO"
	case StatusCancelled:
		return "CANCELADO"
	case StatusUnknown:
		return ""
	}
	return ""
}

// IsTerminal reports whether no transition leaves s.
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// ParseStatus accepts both the wire value and the canonical name.
// Unrecognized input yields StatusUnknown.
func ParseStatus(raw string) Status {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "PENDIENTE", "PENDING":
		return StatusPending
	case "COCINANDO", "COOKING":
		return StatusCooking
	case "EMPACANDO", "PACKING":
		return StatusPacking
	case "EN_REPARTO", "OUT_FOR_DELIVERY":
		return StatusOutForDelivery
	case "ENTREGADO", "DELIVERED":
		return StatusDelivered
	case "CANCELADO", "CANCELLED":
		return StatusCancelled
	default:
		return StatusUnknown
	}
}

// SetStatus keeps Status and RawStatus in sync.
func (o *Order) SetStatus(raw string) {
	o.RawStatus = raw
	o.Status = ParseStatus(raw)
}

// ComputeTotal returns the sum of price times quantity over all items.
func ComputeTotal(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}
