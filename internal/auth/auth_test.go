package auth_test

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"mosaic/internal/auth"
	"mosaic/internal/testsupport"
)

func newService(t *testing.T, opts ...testsupport.ConfigOption) *auth.Service {
	t.Helper()

	opts = append([]testsupport.ConfigOption{
		testsupport.WithUser("alice", "hunter2", "admin", "!👎"),
		testsupport.WithUser("bob", "swordfish", "user", ""),
	}, opts...)
	return auth.NewService(testsupport.NewConfig(t, opts...))
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	svc := newService(t)

	session, err := svc.Login("alice", "hunter2")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if session.Username != "alice" || session.Role != "admin" || session.Filter != "!👎" {
		t.Fatalf("unexpected session: %#v", session)
	}
	if session.ExpiresIn != int64(svc.TTL().Seconds()) {
		t.Fatalf("expiresIn = %d, want %d", session.ExpiresIn, int64(svc.TTL().Seconds()))
	}

	id, err := svc.Verify(session.Token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if id.Username != "alice" || id.Role != "admin" || id.Filter != "!👎" {
		t.Fatalf("unexpected identity: %#v", id)
	}
	if !id.Admin() {
		t.Fatal("expected admin identity")
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := newService(t)

	if _, err := svc.Login("alice", "wrong"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("wrong password: got %v", err)
	}
	if _, err := svc.Login("mallory", "hunter2"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("unknown user: got %v", err)
	}
}

func TestGuestSession(t *testing.T) {
	svc := newService(t, testsupport.WithGuest("!👎"))

	session, err := svc.GuestSession()
	if err != nil {
		t.Fatalf("GuestSession failed: %v", err)
	}
	if session.Username != "guest" || session.Role != auth.RoleGuest {
		t.Fatalf("unexpected guest session: %#v", session)
	}
	if session.Filter != "!👎" {
		t.Fatalf("guest filter = %q, want !👎", session.Filter)
	}

	id, err := svc.Verify(session.Token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if id.Admin() {
		t.Fatal("guest must not be admin")
	}
}

func TestGuestSessionDisabled(t *testing.T) {
	svc := newService(t)

	if _, err := svc.GuestSession(); !errors.Is(err, auth.ErrGuestDisabled) {
		t.Fatalf("got %v, want ErrGuestDisabled", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	svc := newService(t)

	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := svc.Verify(token); !errors.Is(err, auth.ErrInvalidToken) {
			t.Fatalf("Verify(%q) = %v, want ErrInvalidToken", token, err)
		}
	}
}

func TestVerifyRejectsForeignSignature(t *testing.T) {
	svc := newService(t)

	claims := &auth.Claims{
		Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-secret"))
	if err != nil {
		t.Fatalf("sign forged token: %v", err)
	}

	if _, err := svc.Verify(forged); !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("got %v, want ErrInvalidToken", err)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	svc := newService(t)

	claims := &auth.Claims{
		Role: "user",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "bob",
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign expired token: %v", err)
	}

	if _, err := svc.Verify(expired); !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("got %v, want ErrInvalidToken", err)
	}
}

func TestVerifyRejectsUnsignedAlgorithm(t *testing.T) {
	svc := newService(t)

	claims := &auth.Claims{
		Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none-alg token: %v", err)
	}

	if _, err := svc.Verify(unsigned); !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("got %v, want ErrInvalidToken", err)
	}
}
