package cli

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"shopfront/internal/api"
	"shopfront/internal/cart"
	"shopfront/internal/credstore"
	"shopfront/internal/session"
	"shopfront/pkg/domain"
)

func newTestEnv(t *testing.T, handler http.Handler) (*Env, credstore.Store) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	creds, err := credstore.NewFileStore(filepath.Join(t.TempDir(), "credentials"))
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := api.NewClient(srv.URL)
	sess := session.NewStore(client, creds, logger)
	return &Env{
		Logger:  logger,
		Client:  client,
		Session: sess,
		Cart:    cart.NewStore(client, logger),
	}, creds
}

func TestGateBlocksUnauthenticatedWithoutNetworkCalls(t *testing.T) {
	var calls int32
	env, _ := newTestEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.NotFound(w, r)
	}))

	err := env.RequireAuth(context.Background())
	if !errors.Is(err, ErrSignInRequired) {
		t.Fatalf("expected ErrSignInRequired, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 0 {
		t.Fatalf("gate must short-circuit before the network, saw %d calls", got)
	}
}

func TestGatePassesWithRestoredSession(t *testing.T) {
	env, creds := newTestEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/auth/me" && r.Header.Get("Authorization") == "Bearer tok-ok" {
			_ = json.NewEncoder(w).Encode(domain.Principal{ID: "u1", Email: "user@example.com", Role: domain.RoleUser})
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))
	if err := creds.Save("tok-ok"); err != nil {
		t.Fatalf("seed token: %v", err)
	}

	if err := env.RequireAuth(context.Background()); err != nil {
		t.Fatalf("expected gate to pass, got %v", err)
	}
	if env.Session.Principal() == nil {
		t.Fatal("expected restored principal")
	}
}

func TestGateBlocksStaleSession(t *testing.T) {
	env, creds := newTestEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	if err := creds.Save("tok-stale"); err != nil {
		t.Fatalf("seed token: %v", err)
	}

	err := env.RequireAuth(context.Background())
	if !errors.Is(err, ErrSignInRequired) {
		t.Fatalf("expected ErrSignInRequired for stale token, got %v", err)
	}
	if stored, _ := creds.Load(); stored != "" {
		t.Fatal("stale token should have been cleared")
	}
}
