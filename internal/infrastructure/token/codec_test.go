package token

import (
	"encoding/base64"
	"testing"
	"time"

	"storefront/internal/domain/entities"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, claims Claims) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return raw
}

func TestCodec_Decode(t *testing.T) {
	codec := NewCodec()
	raw := signed(t, Claims{
		TenantID:         "CHINAWOK_LIMA_CENTRO",
		UserID:           "u-1",
		Email:            "cook@example.com",
		Role:             "COCINERO",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Unix(4102444800, 0))},
	})

	identity, err := codec.Decode(raw)

	require.NoError(t, err)
	assert.Equal(t, "CHINAWOK_LIMA_CENTRO", identity.TenantID)
	assert.Equal(t, "u-1", identity.UserID)
	assert.Equal(t, "cook@example.com", identity.Email)
	assert.Equal(t, entities.RoleCook, identity.Role)
	require.NotNil(t, identity.ExpiresAt)
	assert.Equal(t, int64(4102444800), identity.ExpiresAt.Unix())
	assert.Empty(t, identity.GivenName)
}

func TestCodec_Decode_UnknownRoleIsCustomer(t *testing.T) {
	identity, err := NewCodec().Decode(signed(t, Claims{UserID: "u-2", Role: "GERENTE"}))

	require.NoError(t, err)
	assert.Equal(t, entities.RoleCustomer, identity.Role)
	assert.Nil(t, identity.ExpiresAt)
}

func TestCodec_Decode_Malformed(t *testing.T) {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))

	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty", raw: ""},
		{name: "single segment", raw: "not-a-token"},
		{name: "payload not base64", raw: header + ".%%%.sig"},
		{name: "payload not json", raw: header + "." + base64.RawURLEncoding.EncodeToString([]byte("hello")) + ".sig"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			identity, err := NewCodec().Decode(tt.raw)
			assert.ErrorIs(t, err, ErrMalformedCredential)
			assert.Nil(t, identity)
		})
	}
}

func TestCodec_IsExpired(t *testing.T) {
	codec := NewCodec()
	at := func(sec int64) *time.Time {
		ts := time.Unix(sec, 0)
		return &ts
	}

	assert.True(t, codec.IsExpired(&entities.Identity{ExpiresAt: at(100)}, time.Unix(200, 0)))
	assert.False(t, codec.IsExpired(&entities.Identity{ExpiresAt: at(200)}, time.Unix(200, 0)))
	assert.False(t, codec.IsExpired(&entities.Identity{ExpiresAt: at(300)}, time.Unix(200, 0)))
	assert.False(t, codec.IsExpired(&entities.Identity{}, time.Unix(200, 0)))
}
