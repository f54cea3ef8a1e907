package entities

import (
	"strings"
	"time"
)

type Role int

const (
	RoleCustomer Role = iota
	RoleCook
	RolePacker
	RoleCourier
	RoleAdmin
)

var Roles = []Role{RoleCustomer, RoleCook, RolePacker, RoleCourier, RoleAdmin}

func (r Role) String() string {
	switch r {
	case RoleCustomer:
		return "CUSTOMER"
	case RoleCook:
		return "COOK"
	case RolePacker:
		return "PACKER"
	case RoleCourier:
		return "COURIER"
	case RoleAdmin:
		return "ADMIN"
	}
	return "CUSTOMER"
}

// WireValue returns the role string used by the user service.
func (r Role) WireValue() string {
	switch r {
	case RoleCustomer:
		return "USUARIO"
	case RoleCook:
		return "COCINERO"
	case RolePacker:
		return "DESPACHADOR"
	case RoleCourier:
		return "REPARTIDOR"
	case RoleAdmin:
		return "ADMIN"
	}
	return "USUARIO"
}

// IsStaff reports whether the role belongs to restaurant personnel.
func (r Role) IsStaff() bool {
	switch r {
	case RoleCook, RolePacker, RoleCourier, RoleAdmin:
		return true
	case RoleCustomer:
		return false
	}
	return false
}

// ParseRole accepts both the wire value and the canonical name.
func ParseRole(raw string) (Role, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "USUARIO", "CUSTOMER":
		return RoleCustomer, true
	case "COCINERO", "COOK":
		return RoleCook, true
	case "DESPACHADOR", "PACKER":
		return RolePacker, true
	case "REPARTIDOR", "COURIER":
		return RoleCourier, true
	case "ADMIN":
		return RoleAdmin, true
	default:
		return RoleCustomer, false
	}
}

// Identity is the claim set of a signed-in user. Profile fields
// (GivenName, FamilyName, DocumentID) are only known when the user
// service returned them at login.
type Identity struct {
	TenantID string
	UserID   string
	Email    string
	Role     Role
	// ExpiresAt is nil when the credential carries no expiry.
	ExpiresAt *time.Time

	GivenName  string
	FamilyName string
	DocumentID string
}

// DisplayName joins the profile names, falling back to the email.
func (i Identity) DisplayName() string {
	name := strings.TrimSpace(i.GivenName + " " + i.FamilyName)
	if name == "" {
		return i.Email
	}
	return name
}

type SessionStatus int

const (
	SessionUnknown SessionStatus = iota
	SessionAuthenticated
	SessionUnauthenticated
)

func (s SessionStatus) String() string {
	switch s {
	case SessionUnknown:
		return "UNKNOWN"
	case SessionAuthenticated:
		return "AUTHENTICATED"
	case SessionUnauthenticated:
		return "UNAUTHENTICATED"
	}
	return "UNKNOWN"
}

// Session is a point-in-time view of the session state. Identity is
// non-nil iff Status is SessionAuthenticated.
type Session struct {
	Status   SessionStatus
	Identity *Identity
}
