// Package token decodes bearer credentials locally. Signatures are not
// verified: the decoded claims only drive what the client shows, and
// every remote call is authorized again by the backend.
package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/domain/entities"

	"github.com/golang-jwt/jwt/v5"
)

var ErrMalformedCredential = errors.New("malformed credential")

// Claims is the payload the user service puts in its access tokens.
type Claims struct {
	TenantID string `json:"tenant_id"`
	UserID   string `json:"user_id"`
	Email    string `json:"correo"`
	Role     string `json:"rol"`
	jwt.RegisteredClaims
}

type Codec struct {
	parser *jwt.Parser
}

func NewCodec() *Codec {
	return &Codec{parser: jwt.NewParser()}
}

func (c *Codec) Decode(raw string) (*entities.Identity, error) {
	claims := &Claims{}
	if _, _, err := c.parser.ParseUnverified(strings.TrimSpace(raw), claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCredential, err)
	}

	// Unknown roles get the least privileged one.
	role, _ := entities.ParseRole(claims.Role)

	identity := &entities.Identity{
		TenantID: claims.TenantID,
		UserID:   claims.UserID,
		Email:    claims.Email,
		Role:     role,
	}
	if claims.ExpiresAt != nil {
		expiresAt := claims.ExpiresAt.Time
		identity.ExpiresAt = &expiresAt
	}

	return identity, nil
}

// IsExpired is true iff the identity carries an expiry strictly before
// now, compared at second precision.
func (c *Codec) IsExpired(identity *entities.Identity, now time.Time) bool {
	if identity == nil || identity.ExpiresAt == nil {
		return false
	}
	return identity.ExpiresAt.Unix() < now.Unix()
}
