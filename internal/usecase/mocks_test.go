package usecase

import (
	"context"
	"testing"
	"time"

	"storefront/internal/domain/entities"
	"storefront/internal/domain/repositories"
	"storefront/internal/infrastructure/logger"
	"storefront/internal/infrastructure/memory"
	"storefront/internal/infrastructure/token"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAuthGateway struct {
	mock.Mock
}

func (m *MockAuthGateway) Login(ctx context.Context, email, password string) (*repositories.LoginResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repositories.LoginResult), args.Error(1)
}

func (m *MockAuthGateway) Register(ctx context.Context, req repositories.RegistrationRequest) (*repositories.RegistrationResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repositories.RegistrationResult), args.Error(1)
}

type MockDecoder struct {
	mock.Mock
}

func (m *MockDecoder) Decode(raw string) (*entities.Identity, error) {
	args := m.Called(raw)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Identity), args.Error(1)
}

func (m *MockDecoder) IsExpired(identity *entities.Identity, now time.Time) bool {
	args := m.Called(identity, now)
	return args.Bool(0)
}

type MockStateStore struct {
	mock.Mock
}

func (m *MockStateStore) Load(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockStateStore) Save(ctx context.Context, key string, value []byte) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockStateStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

type MockOrderGateway struct {
	mock.Mock
}

func (m *MockOrderGateway) CreateOrder(ctx context.Context, customerID string, items []entities.Item) (*entities.Order, error) {
	args := m.Called(ctx, customerID, items)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Order), args.Error(1)
}

func (m *MockOrderGateway) ListOrdersByCustomer(ctx context.Context, customerID string) ([]entities.Order, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Order), args.Error(1)
}

func (m *MockOrderGateway) ListOrdersByStatus(ctx context.Context, status entities.Status) ([]entities.Order, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Order), args.Error(1)
}

func (m *MockOrderGateway) CancelOrder(ctx context.Context, orderID, cancelledBy, reason string) error {
	args := m.Called(ctx, orderID, cancelledBy, reason)
	return args.Error(0)
}

type MockFulfillmentGateway struct {
	mock.Mock
}

func (m *MockFulfillmentGateway) AssignCook(ctx context.Context, orderID, staffID, staffName string) error {
	return m.Called(ctx, orderID, staffID, staffName).Error(0)
}

func (m *MockFulfillmentGateway) MarkPacked(ctx context.Context, orderID, staffID, staffName string) error {
	return m.Called(ctx, orderID, staffID, staffName).Error(0)
}

func (m *MockFulfillmentGateway) AssignDelivery(ctx context.Context, orderID, staffID, staffName string) error {
	return m.Called(ctx, orderID, staffID, staffName).Error(0)
}

func (m *MockFulfillmentGateway) MarkDelivered(ctx context.Context, orderID, staffID, staffName string) error {
	return m.Called(ctx, orderID, staffID, staffName).Error(0)
}

type MockStatusGateway struct {
	mock.Mock
}

func (m *MockStatusGateway) GetOrderStatus(ctx context.Context, orderID string) (*entities.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Order), args.Error(1)
}

func (m *MockStatusGateway) GetOrderHistory(ctx context.Context, orderID string) ([]entities.StatusChange, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.StatusChange), args.Error(1)
}

type MockCatalogGateway struct {
	mock.Mock
}

func (m *MockCatalogGateway) ListProducts(ctx context.Context) ([]entities.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Product), args.Error(1)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishOrderPlaced(ctx context.Context, order *entities.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockEventPublisher) Close() {
	m.Called()
}

func testLogger() *logger.Logger {
	return logger.Discard()
}

func credentialFor(t *testing.T, userID string, role entities.Role, expiresAt time.Time) string {
	t.Helper()
	claims := token.Claims{
		TenantID: "CHINAWOK_LIMA_CENTRO",
		UserID:   userID,
		Email:    userID + "@example.com",
		Role:     role.WireValue(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return raw
}

// signedInSession returns a session authenticated as userID with role.
func signedInSession(t *testing.T, userID string, role entities.Role) *SessionStore {
	t.Helper()
	auth := new(MockAuthGateway)
	auth.On("Login", mock.Anything, mock.Anything, mock.Anything).Return(&repositories.LoginResult{
		Credential: credentialFor(t, userID, role, time.Now().Add(time.Hour)),
		Profile: &entities.Identity{
			UserID:     userID,
			Role:       role,
			GivenName:  "Test",
			FamilyName: role.String(),
		},
		RoleKnown: true,
	}, nil)

	session := NewSessionStore(auth, memory.NewStateStore(), token.NewCodec(), testLogger())
	_, err := session.Login(context.Background(), Credentials{Email: userID + "@example.com", Password: "secret"})
	require.NoError(t, err)
	return session
}
