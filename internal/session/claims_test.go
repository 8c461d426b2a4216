package session

import (
	"path/filepath"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"shopfront/internal/api"
	"shopfront/internal/credstore"
)

func newBareStore(t *testing.T) *Store {
	t.Helper()
	creds, err := credstore.NewFileStore(filepath.Join(t.TempDir(), "credentials"))
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	return NewStore(api.NewClient("http://localhost:0"), creds, nil)
}

func TestTokenExpiryReadsExpClaim(t *testing.T) {
	exp := time.Now().Add(2 * time.Hour).Truncate(time.Second)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"exp": exp.Unix(),
	}).SignedString([]byte("server-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	sess := newBareStore(t)
	sess.mu.Lock()
	sess.token = token
	sess.mu.Unlock()

	got, ok := sess.TokenExpiry()
	if !ok {
		t.Fatal("expected expiry from exp claim")
	}
	if !got.Equal(exp) {
		t.Fatalf("expected expiry %v, got %v", exp, got)
	}
}

func TestTokenExpiryHandlesOpaqueTokens(t *testing.T) {
	sess := newBareStore(t)

	if _, ok := sess.TokenExpiry(); ok {
		t.Fatal("no token should yield no expiry")
	}

	sess.mu.Lock()
	sess.token = "opaque-session-token"
	sess.mu.Unlock()
	if _, ok := sess.TokenExpiry(); ok {
		t.Fatal("opaque token should yield no expiry")
	}
}
