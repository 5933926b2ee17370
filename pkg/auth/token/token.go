// Package token signs and verifies the compact identity tokens of the
// bookmart API. Tokens are HMAC-SHA256 JWTs carrying only a subject (the
// principal id) and an expiry; roles are deliberately not embedded, they
// are re-resolved from the principal store on every request.
package token

import (
	"errors"
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/bookmart-dev/bookmart/pkg/auth"
)

// Config holds the codec configuration.
type Config struct {
	// Secret is the process-wide signing key. Required.
	Secret []byte

	// Clock returns the current time. Defaults to time.Now; tests inject
	// a fixed clock to exercise expiry without sleeping.
	Clock func() time.Time
}

// Codec issues and verifies compact HS256 tokens. It is stateless and safe
// for concurrent use; the secret is never mutated after construction.
type Codec struct {
	secret []byte
	now    func() time.Time
}

var (
	_ auth.TokenIssuer   = (*Codec)(nil)
	_ auth.TokenVerifier = (*Codec)(nil)
)

// New creates a Codec. The secret must be non-empty: a process without a
// signing key must refuse to start rather than silently disable
// authentication.
func New(cfg Config) (*Codec, error) {
	if len(cfg.Secret) == 0 {
		return nil, fmt.Errorf("token: signing secret is required")
	}
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}
	return &Codec{secret: cfg.Secret, now: now}, nil
}

// Issue mints a token for the given subject, expiring ttl from now.
// It returns the compact three-segment wire form and the absolute expiry.
func (c *Codec) Issue(subject string, ttl time.Duration) (string, time.Time, error) {
	if subject == "" {
		return "", time.Time{}, fmt.Errorf("token: subject is required")
	}
	expiresAt := c.now().Add(ttl)

	claims := jwtlib.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwtlib.NewNumericDate(expiresAt),
	}

	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("token: signing: %w", err)
	}
	return signed, expiresAt, nil
}

// ParseAndVerify decodes the wire form and verifies it against the signing
// key. The signature is verified before the expiry is checked, so a forged
// token is always rejected as auth.ErrInvalidSignature even when its
// claimed expiry has passed.
func (c *Codec) ParseAndVerify(tokenString string) (auth.Token, error) {
	parser := jwtlib.NewParser(
		jwtlib.WithValidMethods([]string{"HS256"}),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithTimeFunc(c.now),
	)

	var claims jwtlib.RegisteredClaims
	_, err := parser.ParseWithClaims(tokenString, &claims, func(t *jwtlib.Token) (interface{}, error) {
		return c.secret, nil
	})
	if err != nil {
		return auth.Token{}, classify(err)
	}

	if claims.Subject == "" {
		return auth.Token{}, auth.ErrMalformedToken
	}

	return auth.Token{
		Subject:   claims.Subject,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// classify maps golang-jwt parse errors onto the auth failure kinds.
// Anything not recognizably a signature or expiry failure is treated as
// malformed: when in doubt, the coarser (and equally denying) kind wins.
func classify(err error) error {
	switch {
	case errors.Is(err, jwtlib.ErrTokenSignatureInvalid):
		return auth.ErrInvalidSignature
	case errors.Is(err, jwtlib.ErrTokenExpired):
		return auth.ErrTokenExpired
	default:
		return auth.ErrMalformedToken
	}
}
