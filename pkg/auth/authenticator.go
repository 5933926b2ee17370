package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/bookmart-dev/bookmart/pkg/debug"
)

// Result is the outcome of request authentication. At most one of Identity
// and Failure is set: an anonymous request (no bearer token) has neither.
type Result struct {
	// Identity is the authenticated caller, nil when the request carried
	// no valid token.
	Identity *Identity

	// Failure records why a presented token was rejected. The request is
	// not refused here: a bad token on a public route must not block
	// access, so the allow/deny call is deferred to the decision stage.
	Failure error
}

// RequestAuthenticator turns an inbound request's bearer token into an
// Identity. It runs once per request, before any route logic.
type RequestAuthenticator struct {
	verifier TokenVerifier
	store    PrincipalStore
}

// NewRequestAuthenticator creates a RequestAuthenticator.
func NewRequestAuthenticator(verifier TokenVerifier, store PrincipalStore) *RequestAuthenticator {
	return &RequestAuthenticator{verifier: verifier, store: store}
}

// Authenticate extracts and verifies the bearer token and resolves the
// principal's current roles from the store. Roles are never trusted from
// inside the token, so a role revoked in the store takes effect on the
// very next request.
//
// The returned error is reserved for infrastructure failures (the store
// being unreachable); those must become a 5xx, not a denial.
func (a *RequestAuthenticator) Authenticate(ctx context.Context, r *http.Request) (Result, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return Result{}, nil
	}

	// Only the Bearer scheme is ours; anything else is treated as absent.
	if !strings.HasPrefix(header, "Bearer ") {
		return Result{}, nil
	}

	tokenString := strings.TrimPrefix(header, "Bearer ")
	if tokenString == "" {
		return Result{Failure: ErrMalformedToken}, nil
	}

	tok, err := a.verifier.ParseAndVerify(tokenString)
	if err != nil {
		debug.Log("auth", "token verification failed", "path", r.URL.Path, "error", err)
		return Result{Failure: err}, nil
	}

	principalID, err := strconv.ParseInt(tok.Subject, 10, 64)
	if err != nil {
		return Result{Failure: ErrMalformedToken}, nil
	}

	p, err := a.store.PrincipalByID(ctx, principalID)
	if err != nil {
		if errors.Is(err, ErrNoSuchPrincipal) {
			// Account removed after issuance: same as an invalid token.
			debug.Log("auth", "token subject no longer exists", "principal_id", principalID)
			return Result{Failure: ErrNoSuchPrincipal}, nil
		}
		return Result{}, fmt.Errorf("auth: resolving principal %d: %w", principalID, err)
	}

	return Result{Identity: &Identity{PrincipalID: p.ID, Roles: p.Roles}}, nil
}
