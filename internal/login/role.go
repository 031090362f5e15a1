package login

import (
	"strings"

	dErrors "portal/pkg/domain-errors"
)

// Role is the portal a user signs in to, in browser casing.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleVendor Role = "vendor"
	RoleCenter Role = "center"
)

// Roles lists the selectable roles in display order.
var Roles = []Role{RoleAdmin, RoleVendor, RoleCenter}

// ParseRole accepts a role in either casing.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	switch r {
	case RoleAdmin, RoleVendor, RoleCenter:
		return r, nil
	}
	return "", dErrors.New(dErrors.CodeInvalidInput, "unknown role: "+s)
}

// Backend returns the upper-case form the marketplace API expects.
func (r Role) Backend() string {
	return strings.ToUpper(string(r))
}

// RoleFromBackend normalizes a role string returned by the backend.
func RoleFromBackend(s string) Role {
	return Role(strings.ToLower(s))
}
