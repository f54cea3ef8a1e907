package memory

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"storefront/internal/domain/entities"
	"storefront/internal/domain/repositories"
	"storefront/internal/domain/workflow"
	"storefront/internal/infrastructure/token"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Backend stands in for the remote user, product, order, fulfillment and
// status services. It enforces the workflow the way the real services do:
// transitions must follow the status order and the acting staff member's
// role is checked on every call.
type Backend struct {
	tenantID   string
	signingKey []byte
	tokenTTL   time.Duration
	hashCost   int
	now        func() time.Time

	mu       sync.RWMutex
	users    map[string]*userRecord
	orders   map[string]*entities.Order
	history  map[string][]entities.StatusChange
	products []entities.Product
}

type userRecord struct {
	identity     entities.Identity
	passwordHash []byte
}

type BackendOption func(*Backend)

func WithSigningKey(key []byte) BackendOption {
	return func(b *Backend) { b.signingKey = key }
}

func WithTokenTTL(ttl time.Duration) BackendOption {
	return func(b *Backend) { b.tokenTTL = ttl }
}

func WithHashCost(cost int) BackendOption {
	return func(b *Backend) { b.hashCost = cost }
}

func WithBackendClock(now func() time.Time) BackendOption {
	return func(b *Backend) { b.now = now }
}

func WithCatalog(products []entities.Product) BackendOption {
	return func(b *Backend) { b.products = append([]entities.Product(nil), products...) }
}

func NewBackend(tenantID string, opts ...BackendOption) *Backend {
	b := &Backend{
		tenantID:   tenantID,
		signingKey: []byte("offline-storefront"),
		tokenTTL:   8 * time.Hour,
		hashCost:   bcrypt.DefaultCost,
		now:        time.Now,
		users:      make(map[string]*userRecord),
		orders:     make(map[string]*entities.Order),
		history:    make(map[string][]entities.StatusChange),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Backend) Register(_ context.Context, req repositories.RegistrationRequest) (*repositories.RegistrationResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, rejected(http.StatusBadRequest, "email and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), b.hashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.users[email]; exists {
		return nil, rejected(http.StatusConflict, "a user with this email already exists")
	}

	user := &userRecord{
		identity: entities.Identity{
			TenantID:   b.tenantID,
			UserID:     uuid.NewString(),
			Email:      email,
			Role:       req.Role,
			GivenName:  req.GivenName,
			FamilyName: req.FamilyName,
			DocumentID: req.DocumentID,
		},
		passwordHash: hash,
	}
	b.users[email] = user

	return &repositories.RegistrationResult{TenantID: b.tenantID, UserID: user.identity.UserID}, nil
}

func (b *Backend) Login(_ context.Context, email, password string) (*repositories.LoginResult, error) {
	b.mu.RLock()
	user, exists := b.users[strings.ToLower(strings.TrimSpace(email))]
	b.mu.RUnlock()

	if !exists || bcrypt.CompareHashAndPassword(user.passwordHash, []byte(password)) != nil {
		return nil, rejected(http.StatusUnauthorized, "invalid credentials")
	}

	now := b.now()
	claims := token.Claims{
		TenantID: user.identity.TenantID,
		UserID:   user.identity.UserID,
		Email:    user.identity.Email,
		Role:     user.identity.Role.WireValue(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.identity.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(b.tokenTTL)),
		},
	}
	credential, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(b.signingKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign credential: %w", err)
	}

	profile := user.identity
	return &repositories.LoginResult{Credential: credential, Profile: &profile, RoleKnown: true}, nil
}

func (b *Backend) ListProducts(_ context.Context) ([]entities.Product, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]entities.Product(nil), b.products...), nil
}

func (b *Backend) CreateOrder(_ context.Context, customerID string, items []entities.Item) (*entities.Order, error) {
	if customerID == "" {
		return nil, rejected(http.StatusBadRequest, "customer_id is required")
	}
	if len(items) == 0 {
		return nil, rejected(http.StatusBadRequest, "items list cannot be empty")
	}
	for i, item := range items {
		if item.Quantity <= 0 {
			return nil, rejected(http.StatusBadRequest, fmt.Sprintf("item %d has invalid quantity", i))
		}
		if item.Price.IsNegative() {
			return nil, rejected(http.StatusBadRequest, fmt.Sprintf("item %d has invalid price", i))
		}
	}

	order := &entities.Order{
		OrderID:    uuid.NewString(),
		CustomerID: customerID,
		Items:      append([]entities.Item(nil), items...),
		Total:      entities.ComputeTotal(items),
		CreatedAt:  b.now(),
	}
	order.SetStatus(entities.StatusPending.WireValue())

	b.mu.Lock()
	defer b.mu.Unlock()

	b.orders[order.OrderID] = order
	b.record(order, "", "")
	return copyOrder(order), nil
}

func (b *Backend) ListOrdersByCustomer(_ context.Context, customerID string) ([]entities.Order, error) {
	return b.list(func(o *entities.Order) bool { return o.CustomerID == customerID }), nil
}

func (b *Backend) ListOrdersByStatus(_ context.Context, status entities.Status) ([]entities.Order, error) {
	return b.list(func(o *entities.Order) bool { return o.Status == status }), nil
}

func (b *Backend) CancelOrder(_ context.Context, orderID, cancelledBy, _ string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	order, exists := b.orders[orderID]
	if !exists {
		return rejected(http.StatusNotFound, "order not found")
	}

	actor := b.userByID(cancelledBy)
	if actor == nil || (actor.identity.Role != entities.RoleAdmin && actor.identity.UserID != order.CustomerID) {
		return rejected(http.StatusForbidden, "not allowed to cancel this order")
	}
	if !workflow.CanCancel(order.Status) {
		return rejected(http.StatusConflict, fmt.Sprintf("order is %s and can no longer be cancelled", order.RawStatus))
	}

	order.SetStatus(entities.StatusCancelled.WireValue())
	b.record(order, actor.identity.UserID, actor.identity.DisplayName())
	return nil
}

func (b *Backend) AssignCook(_ context.Context, orderID, staffID, staffName string) error {
	return b.advance(workflow.ActionAssignCook, orderID, staffID, staffName)
}

func (b *Backend) MarkPacked(_ context.Context, orderID, staffID, staffName string) error {
	return b.advance(workflow.ActionMarkPacked, orderID, staffID, staffName)
}

func (b *Backend) AssignDelivery(_ context.Context, orderID, staffID, staffName string) error {
	return b.advance(workflow.ActionAssignDelivery, orderID, staffID, staffName)
}

func (b *Backend) MarkDelivered(_ context.Context, orderID, staffID, staffName string) error {
	return b.advance(workflow.ActionMarkDelivered, orderID, staffID, staffName)
}

func (b *Backend) GetOrderStatus(_ context.Context, orderID string) (*entities.Order, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	order, exists := b.orders[orderID]
	if !exists {
		return nil, repositories.ErrOrderNotFound
	}
	return copyOrder(order), nil
}

func (b *Backend) GetOrderHistory(_ context.Context, orderID string) ([]entities.StatusChange, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if _, exists := b.orders[orderID]; !exists {
		return nil, repositories.ErrOrderNotFound
	}
	return append([]entities.StatusChange(nil), b.history[orderID]...), nil
}

func (b *Backend) advance(action workflow.Action, orderID, staffID, staffName string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	order, exists := b.orders[orderID]
	if !exists {
		return rejected(http.StatusNotFound, "order not found")
	}

	staff := b.userByID(staffID)
	if staff == nil || !workflow.CanPerform(action, staff.identity.Role) {
		return rejected(http.StatusForbidden, fmt.Sprintf("staff member may not %s", action))
	}
	if workflow.NextAction(order.Status) != action {
		return rejected(http.StatusConflict, fmt.Sprintf("order is %s, cannot %s", order.RawStatus, action))
	}

	order.SetStatus(workflow.Target(action).WireValue())
	b.record(order, staffID, staffName)
	return nil
}

// record appends the order's current status to its history. Callers hold
// b.mu.
func (b *Backend) record(order *entities.Order, staffID, staffName string) {
	b.history[order.OrderID] = append(b.history[order.OrderID], entities.StatusChange{
		Status:    order.Status,
		RawStatus: order.RawStatus,
		ChangedAt: b.now(),
		StaffID:   staffID,
		StaffName: staffName,
	})
}

// userByID scans the registry; callers hold b.mu.
func (b *Backend) userByID(userID string) *userRecord {
	for _, u := range b.users {
		if u.identity.UserID == userID {
			return u
		}
	}
	return nil
}

func (b *Backend) list(match func(*entities.Order) bool) []entities.Order {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := []entities.Order{}
	for _, o := range b.orders {
		if match(o) {
			out = append(out, *copyOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func copyOrder(order *entities.Order) *entities.Order {
	orderCopy := *order
	orderCopy.Items = append([]entities.Item(nil), order.Items...)
	return &orderCopy
}

func rejected(code int, message string) error {
	return &repositories.GatewayError{StatusCode: code, Message: message}
}
