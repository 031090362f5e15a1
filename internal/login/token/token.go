// Package token reads claims from access tokens issued by the marketplace
// backend. The portal never holds the signing key, so signatures are not
// checked here; the backend verifies its own tokens on every call.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	dErrors "portal/pkg/domain-errors"
)

// Claims are the registered claims the portal cares about.
type Claims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// HasExpiry reports whether the token carried an exp claim.
func (c Claims) HasExpiry() bool {
	return !c.ExpiresAt.IsZero()
}

// Expired reports whether the token is past its exp claim at now.
func (c Claims) Expired(now time.Time) bool {
	return c.HasExpiry() && !now.Before(c.ExpiresAt)
}

var parser = jwt.NewParser()

// Inspect decodes a JWT without verifying it.
func Inspect(raw string) (*Claims, error) {
	if raw == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "token is empty")
	}

	var registered jwt.RegisteredClaims
	if _, _, err := parser.ParseUnverified(raw, &registered); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "malformed token")
	}

	claims := &Claims{Subject: registered.Subject}
	if registered.ExpiresAt != nil {
		claims.ExpiresAt = registered.ExpiresAt.Time
	}
	if registered.IssuedAt != nil {
		claims.IssuedAt = registered.IssuedAt.Time
	}
	return claims, nil
}
