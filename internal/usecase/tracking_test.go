package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront/internal/domain/entities"
	"storefront/internal/domain/workflow"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestOrderTracker_Track(t *testing.T) {
	tests := []struct {
		raw       string
		step      int
		cancelled bool
		label     string
	}{
		{raw: "PENDIENTE", step: 0, label: "Order received"},
		{raw: "COOKING", step: 1, label: "In the kitchen"},
		{raw: "EMPACANDO", step: 2, label: "Packing"},
		{raw: "EN_REPARTO", step: 3, label: "On the way"},
		{raw: "ENTREGADO", step: 4, label: "Delivered"},
		{raw: "CANCELADO", step: 0, cancelled: true, label: "Cancelled"},
		{raw: "EN_REVISION", step: 0, label: "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			status := new(MockStatusGateway)
			status.On("GetOrderStatus", mock.Anything, "o-1").Return(&entities.Order{OrderID: "o-1", RawStatus: tt.raw}, nil)

			tracker := NewOrderTracker(new(MockOrderGateway), status, nil, testLogger())
			tracking, err := tracker.Track(context.Background(), "o-1")

			require.NoError(t, err)
			assert.Equal(t, tt.step, tracking.Step)
			assert.Equal(t, tt.cancelled, tracking.Cancelled)
			assert.Equal(t, tt.label, tracking.Label)
			assert.Equal(t, workflow.ProgressSteps, tracking.Steps)
			assert.Equal(t, tt.raw, tracking.Order.RawStatus)
		})
	}
}

func TestOrderTracker_RememberMergesProjections(t *testing.T) {
	tracker := NewOrderTracker(nil, nil, nil, testLogger())
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tracker.Remember(&entities.Order{
		OrderID:    "o-1",
		CustomerID: "u-1",
		Items:      []entities.Item{{ProductID: "P1", Quantity: 2, Price: decimal.NewFromInt(10)}},
		Total:      decimal.NewFromInt(20),
		Status:     entities.StatusPending,
		CreatedAt:  created,
	})

	merged := tracker.Remember(&entities.Order{OrderID: "o-1", RawStatus: "COCINANDO"})

	assert.Equal(t, entities.StatusCooking, merged.Status)
	assert.Equal(t, "u-1", merged.CustomerID)
	assert.Len(t, merged.Items, 1)
	assertDecimal(t, 20, merged.Total)
	assert.Equal(t, created, merged.CreatedAt)

	merged.Items[0].Quantity = 99
	cached, ok := tracker.Cached("o-1")
	require.True(t, ok)
	assert.Equal(t, 2, cached.Items[0].Quantity)
}

func TestOrderTracker_RememberLeavesArgumentUntouched(t *testing.T) {
	tracker := NewOrderTracker(nil, nil, nil, testLogger())
	order := &entities.Order{OrderID: "o-1", Status: entities.StatusPacking}

	first := tracker.Remember(order)
	assert.Equal(t, "EMPACANDO", first.RawStatus)

	order.Status = entities.StatusOutForDelivery
	second := tracker.Remember(order)
	assert.Equal(t, entities.StatusOutForDelivery, second.Status)

	assert.Empty(t, order.RawStatus)
}

func TestOrderTracker_RefreshFailure(t *testing.T) {
	status := new(MockStatusGateway)
	status.On("GetOrderStatus", mock.Anything, "o-1").Return(nil, errors.New("timeout"))

	tracker := NewOrderTracker(nil, status, nil, testLogger())

	_, err := tracker.Refresh(context.Background(), "o-1")
	assert.Error(t, err)

	_, ok := tracker.Cached("o-1")
	assert.False(t, ok)

	_, err = tracker.Refresh(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidOrderID)
}

func TestOrderTracker_Board(t *testing.T) {
	orders := new(MockOrderGateway)
	for _, status := range entities.Statuses {
		switch status {
		case entities.StatusPending:
			orders.On("ListOrdersByStatus", mock.Anything, status).
				Return([]entities.Order{*orderWithStatus("o-1", "u-1", status), *orderWithStatus("o-2", "u-2", status)}, nil)
		case entities.StatusCooking:
			orders.On("ListOrdersByStatus", mock.Anything, status).Return(nil, errors.New("service unavailable"))
		default:
			orders.On("ListOrdersByStatus", mock.Anything, status).Return([]entities.Order{}, nil)
		}
	}

	tracker := NewOrderTracker(orders, nil, nil, testLogger())
	board := tracker.Board(context.Background())

	assert.Len(t, board, len(entities.Statuses))
	assert.Len(t, board[entities.StatusPending], 2)
	assert.NotNil(t, board[entities.StatusCooking])
	assert.Empty(t, board[entities.StatusCooking])

	_, ok := tracker.Cached("o-2")
	assert.True(t, ok)
}

func TestOrderTracker_ListMine(t *testing.T) {
	ctx := context.Background()
	backend := newBackend()

	ana := newActor(t, backend, "ana@example.com", entities.RoleCustomer)
	luis := newActor(t, backend, "luis@example.com", entities.RoleCustomer)

	ana.placeOrder(t, product("P1", 10))
	ana.placeOrder(t, product("P2", 25))
	luis.placeOrder(t, product("P1", 10))

	mine, err := ana.tracker.ListMine(ctx)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
	for _, order := range mine {
		assert.Equal(t, ana.identity.UserID, order.CustomerID)
	}

	ana.session.Logout(ctx)
	_, err = ana.tracker.ListMine(ctx)
	assert.ErrorIs(t, err, ErrAuthenticationRequired)
}
