package usecase

import (
	"context"
	"testing"

	"storefront/internal/domain/entities"
	"storefront/internal/domain/repositories"
	"storefront/internal/infrastructure/memory"
	"storefront/internal/infrastructure/token"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// actor is one client process talking to a shared offline backend.
type actor struct {
	identity *entities.Identity
	session  *SessionStore
	cart     *CartStore
	tracker  *OrderTracker
	orders   *OrderUseCase
	checkout *Checkout
}

func newBackend() *memory.Backend {
	return memory.NewBackend("CHINAWOK_LIMA_CENTRO",
		memory.WithHashCost(bcrypt.MinCost),
		memory.WithCatalog([]entities.Product{product("P1", 10), product("P2", 25)}),
	)
}

// newActor registers a user with role on backend and signs them in.
func newActor(t *testing.T, backend *memory.Backend, email string, role entities.Role) *actor {
	t.Helper()
	ctx := context.Background()
	log := testLogger()

	session := NewSessionStore(backend, memory.NewStateStore(), token.NewCodec(), log)
	_, err := session.Register(ctx, repositories.RegistrationRequest{
		GivenName:  "Test",
		FamilyName: role.String(),
		Email:      email,
		Password:   "secret",
		Role:       role,
	})
	require.NoError(t, err)

	identity, err := session.Login(ctx, Credentials{Email: email, Password: "secret"})
	require.NoError(t, err)

	cart := NewCartStore(memory.NewStateStore(), log)
	tracker := NewOrderTracker(backend, backend, session, log)

	return &actor{
		identity: identity,
		session:  session,
		cart:     cart,
		tracker:  tracker,
		orders:   NewOrderUseCase(session, backend, backend, tracker, log),
		checkout: NewCheckout(session, cart, backend, tracker, nil, log),
	}
}

// placeOrder fills the actor's cart and checks out.
func (a *actor) placeOrder(t *testing.T, products ...entities.Product) *entities.Order {
	t.Helper()
	ctx := context.Background()
	for _, p := range products {
		require.NoError(t, a.cart.AddItem(ctx, p))
	}
	order, err := a.checkout.PlaceOrder(ctx)
	require.NoError(t, err)
	return order
}
