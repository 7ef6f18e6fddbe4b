package domain

import (
	"context"
	"time"
)

// Roles recognized by the console login.
const (
	RoleAdmin  = "admin"
	RoleVendor = "vendor"
)

// TokenClaims is the authenticated identity carried by a verified token.
// EventID is set only for vendor tokens scoped to a single event.
type TokenClaims struct {
	Role    string
	EventID string
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated role.
type TokenIssuer interface {
	Issue(role, eventID string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns its claims.
type TokenVerifier interface {
	Verify(token string) (*TokenClaims, error)
}

// PasswordComparer compares a stored hash against a candidate password.
// Implementations may use bcrypt, argon2, etc.
type PasswordComparer interface {
	Compare(hash, password string) error
	Hash(password string) (string, error)
}

// AuthService authenticates the two console roles. Admin uses the configured
// admin password; vendors may use the admin password, the global vendor
// password, or the event-specific vendor password when eventID is given.
type AuthService interface {
	Login(ctx context.Context, role, password, eventID string) (token string, err error)
}
