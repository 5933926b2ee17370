package auth

import (
	"context"
	"errors"
	"time"
)

// Role is a coarse capability tag attached to a principal.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

// Token/credential failure kinds. These are recorded by the request
// authenticator and never surfaced to clients beyond a coarse 401.
var (
	ErrMalformedToken     = errors.New("malformed token")
	ErrInvalidSignature   = errors.New("invalid token signature")
	ErrTokenExpired       = errors.New("token expired")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Access decision failures.
var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("access denied")
)

// ErrNoSuchPrincipal is returned by a PrincipalStore when no authenticatable
// principal exists for the given identifier.
var ErrNoSuchPrincipal = errors.New("no such principal")

// Principal is an immutable snapshot of an account as seen by the auth
// layer. The password hash is opaque and never logged or serialized.
type Principal struct {
	ID           int64
	Roles        []Role
	PasswordHash string
}

// HasRole reports whether the principal holds the given role.
func (p *Principal) HasRole(role Role) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Identity is the per-request outcome of token validation: the principal id
// and its current roles. It is constructed once by the request
// authenticator and read-only thereafter.
type Identity struct {
	PrincipalID int64
	Roles       []Role
}

// HasRole reports whether the identity holds the given role.
func (id *Identity) HasRole(role Role) bool {
	if id == nil {
		return false
	}
	for _, r := range id.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// PrincipalStore looks up principals. Implementations return
// ErrNoSuchPrincipal when the account does not exist or cannot
// authenticate (e.g. deactivated); any other error is an infrastructure
// failure and must not be treated as an auth decision.
type PrincipalStore interface {
	PrincipalByID(ctx context.Context, id int64) (*Principal, error)
	PrincipalByEmail(ctx context.Context, email string) (*Principal, error)
}

// PasswordHasher hashes plaintext passwords and verifies them against
// stored hashes in constant time.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// Token is a decoded, verified identity token: who it asserts and until when.
type Token struct {
	Subject   string
	ExpiresAt time.Time
}

// TokenIssuer mints signed tokens. Issue returns the compact wire form and
// the absolute expiry.
type TokenIssuer interface {
	Issue(subject string, ttl time.Duration) (string, time.Time, error)
}

// TokenVerifier decodes and verifies a compact token string. Failures are
// one of ErrMalformedToken, ErrInvalidSignature, or ErrTokenExpired; the
// signature is always checked before expiry.
type TokenVerifier interface {
	ParseAndVerify(tokenString string) (Token, error)
}
