package memory

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"storefront/internal/domain/entities"
	"storefront/internal/domain/repositories"
	"storefront/internal/infrastructure/token"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestBackend(opts ...BackendOption) *Backend {
	return NewBackend("CHINAWOK_LIMA_CENTRO", append([]BackendOption{WithHashCost(bcrypt.MinCost)}, opts...)...)
}

func register(t *testing.T, b *Backend, email string, role entities.Role) string {
	t.Helper()
	result, err := b.Register(context.Background(), repositories.RegistrationRequest{
		GivenName:  "Rosa",
		FamilyName: "Quispe",
		Email:      email,
		Password:   "secret",
		Role:       role,
	})
	require.NoError(t, err)
	return result.UserID
}

func assertRejected(t *testing.T, err error, code int) {
	t.Helper()
	var gwErr *repositories.GatewayError
	require.True(t, errors.As(err, &gwErr), "expected gateway error, got %v", err)
	assert.Equal(t, code, gwErr.StatusCode)
}

func item(id string, qty int, price int64) entities.Item {
	return entities.Item{ProductID: id, Name: id, Quantity: qty, Price: decimal.NewFromInt(price)}
}

func TestBackend_RegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	b := newTestBackend(WithBackendClock(func() time.Time { return now }), WithTokenTTL(time.Hour))

	userID := register(t, b, "Rosa@Example.com", entities.RoleCook)

	result, err := b.Login(ctx, "rosa@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, userID, result.Profile.UserID)
	assert.Equal(t, "Rosa Quispe", result.Profile.DisplayName())

	identity, err := token.NewCodec().Decode(result.Credential)
	require.NoError(t, err)
	assert.Equal(t, userID, identity.UserID)
	assert.Equal(t, entities.RoleCook, identity.Role)
	assert.Equal(t, "CHINAWOK_LIMA_CENTRO", identity.TenantID)
	require.NotNil(t, identity.ExpiresAt)
	assert.Equal(t, now.Add(time.Hour).Unix(), identity.ExpiresAt.Unix())

	_, err = b.Login(ctx, "rosa@example.com", "wrong")
	assertRejected(t, err, http.StatusUnauthorized)

	_, err = b.Login(ctx, "nobody@example.com", "secret")
	assertRejected(t, err, http.StatusUnauthorized)
}

func TestBackend_RegisterRejections(t *testing.T) {
	b := newTestBackend()
	register(t, b, "rosa@example.com", entities.RoleCustomer)

	_, err := b.Register(context.Background(), repositories.RegistrationRequest{Email: "ROSA@example.com", Password: "x"})
	assertRejected(t, err, http.StatusConflict)

	_, err = b.Register(context.Background(), repositories.RegistrationRequest{Email: "", Password: "x"})
	assertRejected(t, err, http.StatusBadRequest)
}

func TestBackend_CreateOrderValidation(t *testing.T) {
	b := newTestBackend()
	ctx := context.Background()

	tests := []struct {
		name       string
		customerID string
		items      []entities.Item
	}{
		{name: "no customer", customerID: "", items: []entities.Item{item("P1", 1, 5)}},
		{name: "no items", customerID: "u-1", items: nil},
		{name: "zero quantity", customerID: "u-1", items: []entities.Item{item("P1", 0, 5)}},
		{name: "negative price", customerID: "u-1", items: []entities.Item{item("P1", 1, -5)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := b.CreateOrder(ctx, tt.customerID, tt.items)
			assertRejected(t, err, http.StatusBadRequest)
		})
	}
}

func TestBackend_Workflow(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend()

	customer := register(t, b, "ana@example.com", entities.RoleCustomer)
	cook := register(t, b, "cook@example.com", entities.RoleCook)
	courier := register(t, b, "courier@example.com", entities.RoleCourier)

	order, err := b.CreateOrder(ctx, customer, []entities.Item{item("P1", 2, 10), item("P2", 1, 5)})
	require.NoError(t, err)
	assert.Equal(t, "PENDIENTE", order.RawStatus)
	assert.True(t, decimal.NewFromInt(25).Equal(order.Total))

	err = b.AssignCook(ctx, order.OrderID, courier, "Courier")
	assertRejected(t, err, http.StatusForbidden)

	err = b.MarkPacked(ctx, order.OrderID, cook, "Cook")
	assertRejected(t, err, http.StatusForbidden)

	require.NoError(t, b.AssignCook(ctx, order.OrderID, cook, "Cook"))

	err = b.AssignCook(ctx, order.OrderID, cook, "Cook")
	assertRejected(t, err, http.StatusConflict)

	current, err := b.GetOrderStatus(ctx, order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, entities.StatusCooking, current.Status)
	assert.Equal(t, "COCINANDO", current.RawStatus)

	cooking, err := b.ListOrdersByStatus(ctx, entities.StatusCooking)
	require.NoError(t, err)
	assert.Len(t, cooking, 1)

	pending, err := b.ListOrdersByStatus(ctx, entities.StatusPending)
	require.NoError(t, err)
	assert.Empty(t, pending)

	history, err := b.GetOrderHistory(ctx, order.OrderID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "Cook", history[1].StaffName)

	err = b.AssignCook(ctx, "missing", cook, "Cook")
	assertRejected(t, err, http.StatusNotFound)

	_, err = b.GetOrderStatus(ctx, "missing")
	assert.ErrorIs(t, err, repositories.ErrOrderNotFound)
}

func TestBackend_CancelOrder(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend()

	owner := register(t, b, "ana@example.com", entities.RoleCustomer)
	stranger := register(t, b, "luis@example.com", entities.RoleCustomer)
	admin := register(t, b, "admin@example.com", entities.RoleAdmin)

	order, err := b.CreateOrder(ctx, owner, []entities.Item{item("P1", 1, 10)})
	require.NoError(t, err)

	assertRejected(t, b.CancelOrder(ctx, order.OrderID, stranger, ""), http.StatusForbidden)
	assertRejected(t, b.CancelOrder(ctx, "missing", owner, ""), http.StatusNotFound)

	require.NoError(t, b.CancelOrder(ctx, order.OrderID, admin, "closed"))
	assertRejected(t, b.CancelOrder(ctx, order.OrderID, owner, ""), http.StatusConflict)

	current, err := b.GetOrderStatus(ctx, order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, entities.StatusCancelled, current.Status)
}

func TestBackend_ListOrdersByCustomerNewestFirst(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	b := newTestBackend(WithBackendClock(func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}))

	first, err := b.CreateOrder(ctx, "u-1", []entities.Item{item("P1", 1, 10)})
	require.NoError(t, err)
	second, err := b.CreateOrder(ctx, "u-1", []entities.Item{item("P1", 1, 10)})
	require.NoError(t, err)
	_, err = b.CreateOrder(ctx, "u-2", []entities.Item{item("P1", 1, 10)})
	require.NoError(t, err)

	orders, err := b.ListOrdersByCustomer(ctx, "u-1")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, second.OrderID, orders[0].OrderID)
	assert.Equal(t, first.OrderID, orders[1].OrderID)
}
