package repositories

import (
	"context"

	"storefront/internal/domain/entities"
)

// StateStore keeps the client's durable blobs (the bearer credential and
// the cart) under fixed keys. Load returns ErrStateNotFound for a missing
// key; Delete of a missing key is not an error.
type StateStore interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// AuthGateway is the remote user service.
type AuthGateway interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Register(ctx context.Context, req RegistrationRequest) (*RegistrationResult, error)
}

type LoginResult struct {
	Credential string
	// Profile is the user record returned alongside the credential; nil
	// when the service sent none.
	Profile *entities.Identity
	// RoleKnown is false when the profile's role was missing or not
	// recognised; the role decoded from the credential applies then.
	RoleKnown bool
}

type RegistrationRequest struct {
	GivenName  string
	FamilyName string
	DocumentID string
	Email      string
	Password   string
	Role       entities.Role
}

type RegistrationResult struct {
	TenantID string
	UserID   string
}

// CatalogGateway is the remote product service.
type CatalogGateway interface {
	ListProducts(ctx context.Context) ([]entities.Product, error)
}
