package auth

import (
	"context"
	"errors"
	"fmt"
)

// CredentialAuthenticator verifies login credentials against the principal
// store. It does not issue tokens; the login endpoint does that after a
// successful authentication.
type CredentialAuthenticator struct {
	store  PrincipalStore
	hasher PasswordHasher

	// dummyHash is verified against on the unknown-principal path so that
	// "no such account" and "wrong password" take comparable time.
	dummyHash string
}

// NewCredentialAuthenticator creates a CredentialAuthenticator.
func NewCredentialAuthenticator(store PrincipalStore, hasher PasswordHasher) (*CredentialAuthenticator, error) {
	dummy, err := hasher.Hash("bookmart-timing-equalizer")
	if err != nil {
		return nil, fmt.Errorf("auth: preparing dummy hash: %w", err)
	}
	return &CredentialAuthenticator{store: store, hasher: hasher, dummyHash: dummy}, nil
}

// Authenticate looks up the principal by email and verifies the password.
// Unknown accounts and wrong passwords both fail with
// ErrInvalidCredentials; an infrastructure failure in the store is
// returned as-is and must surface as a 5xx, never as a denial.
func (a *CredentialAuthenticator) Authenticate(ctx context.Context, email, plaintext string) (*Principal, error) {
	p, err := a.store.PrincipalByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNoSuchPrincipal) {
			a.hasher.Verify(plaintext, a.dummyHash)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("auth: principal lookup: %w", err)
	}

	if !a.hasher.Verify(plaintext, p.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return p, nil
}
