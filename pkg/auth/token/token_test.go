package token

import (
	"errors"
	"strings"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/bookmart-dev/bookmart/pkg/auth"
)

var testSecret = []byte("test-signing-secret")

// newTestCodec creates a codec with a fixed clock so expiry can be
// exercised without sleeping.
func newTestCodec(t *testing.T, at time.Time) *Codec {
	t.Helper()
	c, err := New(Config{Secret: testSecret, Clock: func() time.Time { return at }})
	if err != nil {
		t.Fatalf("creating codec: %v", err)
	}
	return c
}

func TestNew_RequiresSecret(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("expected error for empty secret, got nil")
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := newTestCodec(t, now)

	signed, expiresAt, err := c.Issue("42", time.Hour)
	if err != nil {
		t.Fatalf("issuing token: %v", err)
	}
	if got, want := expiresAt, now.Add(time.Hour); !got.Equal(want) {
		t.Errorf("expiry = %v, want %v", got, want)
	}
	if parts := strings.Split(signed, "."); len(parts) != 3 {
		t.Fatalf("token has %d segments, want 3", len(parts))
	}

	tok, err := c.ParseAndVerify(signed)
	if err != nil {
		t.Fatalf("verifying token: %v", err)
	}
	if tok.Subject != "42" {
		t.Errorf("subject = %q, want %q", tok.Subject, "42")
	}
	if !tok.ExpiresAt.Equal(expiresAt) {
		t.Errorf("parsed expiry = %v, want %v", tok.ExpiresAt, expiresAt)
	}
}

func TestCodec_EmptySubject(t *testing.T) {
	c := newTestCodec(t, time.Now())
	if _, _, err := c.Issue("", time.Hour); err == nil {
		t.Fatal("expected error for empty subject, got nil")
	}
}

// flipChar returns a base64url character guaranteed to decode to
// different bits than ch. Flipping to an adjacent character can change
// only padding bits at a segment boundary, which would leave the decoded
// signature unchanged.
func flipChar(ch byte) byte {
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
	idx := strings.IndexByte(alphabet, ch)
	if idx >= 0 && idx&0x30 == 0x10 {
		return 'A'
	}
	return 'Q'
}

func TestCodec_TamperedSignature(t *testing.T) {
	c := newTestCodec(t, time.Now())

	signed, _, err := c.Issue("42", time.Hour)
	if err != nil {
		t.Fatalf("issuing token: %v", err)
	}

	sigStart := strings.LastIndexByte(signed, '.') + 1
	for i := sigStart; i < len(signed); i++ {
		tampered := []byte(signed)
		tampered[i] = flipChar(tampered[i])

		_, err := c.ParseAndVerify(string(tampered))
		if !errors.Is(err, auth.ErrInvalidSignature) {
			t.Errorf("byte %d: error = %v, want ErrInvalidSignature", i, err)
		}
	}
}

func TestCodec_TamperedPayload(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := newTestCodec(t, now)

	signed, _, err := c.Issue("42", time.Hour)
	if err != nil {
		t.Fatalf("issuing token: %v", err)
	}

	// Swap in a payload claiming a different subject; the signature no
	// longer matches.
	parts := strings.Split(signed, ".")
	forged, _, err := c.Issue("43", time.Hour)
	if err != nil {
		t.Fatalf("issuing forged token: %v", err)
	}
	forgedParts := strings.Split(forged, ".")
	mixed := parts[0] + "." + forgedParts[1] + "." + parts[2]

	if _, err := c.ParseAndVerify(mixed); !errors.Is(err, auth.ErrInvalidSignature) {
		t.Errorf("error = %v, want ErrInvalidSignature", err)
	}
}

func TestCodec_Malformed(t *testing.T) {
	c := newTestCodec(t, time.Now())

	cases := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-token"},
		{"two segments", "aaaa.bbbb"},
		{"four segments", "aaaa.bbbb.cccc.dddd"},
		{"invalid base64", "a!a.b!b.c!c"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := c.ParseAndVerify(tc.token)
			if !errors.Is(err, auth.ErrMalformedToken) {
				t.Errorf("error = %v, want ErrMalformedToken", err)
			}
		})
	}
}

func TestCodec_Expired(t *testing.T) {
	issued := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := newTestCodec(t, issued)

	signed, _, err := c.Issue("42", time.Hour)
	if err != nil {
		t.Fatalf("issuing token: %v", err)
	}

	// Still valid one minute before expiry.
	before := newTestCodec(t, issued.Add(59*time.Minute))
	if _, err := before.ParseAndVerify(signed); err != nil {
		t.Fatalf("token rejected before expiry: %v", err)
	}

	// Rejected one minute after.
	after := newTestCodec(t, issued.Add(61*time.Minute))
	if _, err := after.ParseAndVerify(signed); !errors.Is(err, auth.ErrTokenExpired) {
		t.Errorf("error = %v, want ErrTokenExpired", err)
	}
}

// A forged token must fail on its signature even when it is also expired:
// expiry is a claim inside the payload and means nothing until the
// signature proves who wrote it.
func TestCodec_SignatureCheckedBeforeExpiry(t *testing.T) {
	issued := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	other, err := New(Config{
		Secret: []byte("a-different-secret"),
		Clock:  func() time.Time { return issued },
	})
	if err != nil {
		t.Fatalf("creating codec: %v", err)
	}
	forged, _, err := other.Issue("42", time.Hour)
	if err != nil {
		t.Fatalf("issuing token: %v", err)
	}

	c := newTestCodec(t, issued.Add(2*time.Hour))
	if _, err := c.ParseAndVerify(forged); !errors.Is(err, auth.ErrInvalidSignature) {
		t.Errorf("error = %v, want ErrInvalidSignature", err)
	}
}

func TestCodec_RejectsUnsignedAlgorithm(t *testing.T) {
	c := newTestCodec(t, time.Now())

	claims := jwtlib.RegisteredClaims{
		Subject:   "42",
		ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(time.Hour)),
	}
	unsigned, err := jwtlib.NewWithClaims(jwtlib.SigningMethodNone, claims).
		SignedString(jwtlib.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("building unsigned token: %v", err)
	}

	if _, err := c.ParseAndVerify(unsigned); err == nil {
		t.Fatal("unsigned token accepted")
	}
}

func TestCodec_MissingExpiry(t *testing.T) {
	c := newTestCodec(t, time.Now())

	claims := jwtlib.RegisteredClaims{Subject: "42"}
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(testSecret)
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}

	if _, err := c.ParseAndVerify(signed); err == nil {
		t.Fatal("token without expiry accepted")
	}
}

func TestCodec_MissingSubject(t *testing.T) {
	c := newTestCodec(t, time.Now())

	claims := jwtlib.RegisteredClaims{
		ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(time.Hour)),
	}
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(testSecret)
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}

	if _, err := c.ParseAndVerify(signed); !errors.Is(err, auth.ErrMalformedToken) {
		t.Errorf("error = %v, want ErrMalformedToken", err)
	}
}
