package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"shopfront/internal/api"
	"shopfront/internal/credstore"
	"shopfront/pkg/domain"
)

func newFileStore(t *testing.T) credstore.Store {
	t.Helper()
	store, err := credstore.NewFileStore(filepath.Join(t.TempDir(), "credentials"))
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	return store
}

func authHandler(t *testing.T, calls *int32) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			atomic.AddInt32(calls, 1)
		}
		switch r.URL.Path {
		case "/api/auth/login":
			var body struct {
				Email    string `json:"email"`
				Password string `json:"password"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body.Email != "user@example.com" || body.Password != "user123" {
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Invalid credentials"})
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"token": "tok-valid",
				"user":  domain.Principal{ID: "u1", Name: "User", Email: body.Email, Role: domain.RoleUser},
			})
		case "/api/auth/register":
			w.WriteHeader(http.StatusCreated)
		case "/api/auth/me":
			if r.Header.Get("Authorization") != "Bearer tok-valid" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_ = json.NewEncoder(w).Encode(domain.Principal{ID: "u1", Name: "User", Email: "user@example.com", Role: domain.RoleUser})
		default:
			http.NotFound(w, r)
		}
	}
}

func TestLoginStoresSessionAndDurableToken(t *testing.T) {
	srv := httptest.NewServer(authHandler(t, nil))
	defer srv.Close()

	creds := newFileStore(t)
	client := api.NewClient(srv.URL)
	sess := NewStore(client, creds, nil)

	if err := sess.Login(context.Background(), "user@example.com", "user123"); err != nil {
		t.Fatalf("login: %v", err)
	}
	principal := sess.Principal()
	if principal == nil || principal.Email != "user@example.com" {
		t.Fatalf("expected principal with login email, got %+v", principal)
	}
	if sess.Token() == "" {
		t.Fatal("expected non-empty token after login")
	}
	stored, err := creds.Load()
	if err != nil {
		t.Fatalf("load stored token: %v", err)
	}
	if stored != sess.Token() {
		t.Fatalf("durable token %q does not match store token %q", stored, sess.Token())
	}
}

func TestLoginFailureLeavesPriorSessionUntouched(t *testing.T) {
	srv := httptest.NewServer(authHandler(t, nil))
	defer srv.Close()

	creds := newFileStore(t)
	client := api.NewClient(srv.URL)
	sess := NewStore(client, creds, nil)

	if err := sess.Login(context.Background(), "user@example.com", "user123"); err != nil {
		t.Fatalf("login: %v", err)
	}

	err := sess.Login(context.Background(), "user@example.com", "wrong")
	if err == nil {
		t.Fatal("expected login failure")
	}
	if err.Error() != "Invalid credentials" {
		t.Fatalf("expected server detail message, got %q", err.Error())
	}
	if sess.Principal() == nil || sess.Token() != "tok-valid" {
		t.Fatal("failed login must leave the prior session untouched")
	}
	if stored, _ := creds.Load(); stored != "tok-valid" {
		t.Fatalf("durable token changed on failed login: %q", stored)
	}
}

func TestRegisterValidatesLocally(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(authHandler(t, &calls))
	defer srv.Close()

	sess := NewStore(api.NewClient(srv.URL), newFileStore(t), nil)

	cases := []struct {
		name string
		form RegisterForm
		want string
	}{
		{
			name: "password mismatch",
			form: RegisterForm{Name: "U", Email: "u@e.c", Password: "secret1", ConfirmPassword: "secret2", AcceptTerms: true},
			want: "Passwords do not match",
		},
		{
			name: "short password",
			form: RegisterForm{Name: "U", Email: "u@e.c", Password: "abc", ConfirmPassword: "abc", AcceptTerms: true},
			want: "Password must be at least 6 characters long",
		},
		{
			name: "terms not accepted",
			form: RegisterForm{Name: "U", Email: "u@e.c", Password: "secret1", ConfirmPassword: "secret1"},
			want: "Please accept the terms and conditions",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := sess.Register(context.Background(), tc.form)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if vErr.Message != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, vErr.Message)
			}
		})
	}
	if got := atomic.LoadInt32(&calls); got != 0 {
		t.Fatalf("validation failures must not reach the network, saw %d calls", got)
	}
}

func TestRegisterDoesNotAuthenticate(t *testing.T) {
	srv := httptest.NewServer(authHandler(t, nil))
	defer srv.Close()

	sess := NewStore(api.NewClient(srv.URL), newFileStore(t), nil)

	form := RegisterForm{Name: "U", Email: "u@e.c", Password: "secret1", ConfirmPassword: "secret1", AcceptTerms: true}
	if err := sess.Register(context.Background(), form); err != nil {
		t.Fatalf("register: %v", err)
	}
	if sess.Principal() != nil || sess.Token() != "" {
		t.Fatal("register must not authenticate; caller routes to login")
	}
}

func TestUnauthorizedResponseClearsWholeSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.Handle("/api/auth/", authHandler(t, nil))
	mux.HandleFunc("/api/cart", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "token expired"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	creds := newFileStore(t)
	client := api.NewClient(srv.URL)
	sess := NewStore(client, creds, nil)

	if err := sess.Login(context.Background(), "user@example.com", "user123"); err != nil {
		t.Fatalf("login: %v", err)
	}

	// Any authed call coming back 401 tears the session down via the
	// subscription, not just auth-layer calls.
	if _, err := client.GetCart(context.Background()); err == nil {
		t.Fatal("expected cart fetch to fail")
	}
	if sess.Principal() != nil {
		t.Fatal("principal should be cleared after 401")
	}
	if sess.Token() != "" {
		t.Fatal("token should be cleared after 401")
	}
	if stored, _ := creds.Load(); stored != "" {
		t.Fatalf("durable token should be cleared after 401, got %q", stored)
	}
}

func TestLogoutClearsSessionAndStorage(t *testing.T) {
	srv := httptest.NewServer(authHandler(t, nil))
	defer srv.Close()

	creds := newFileStore(t)
	sess := NewStore(api.NewClient(srv.URL), creds, nil)

	if err := sess.Login(context.Background(), "user@example.com", "user123"); err != nil {
		t.Fatalf("login: %v", err)
	}
	sess.Logout()

	if sess.Principal() != nil || sess.Token() != "" {
		t.Fatal("logout must clear principal and token")
	}
	if stored, _ := creds.Load(); stored != "" {
		t.Fatalf("logout must clear durable storage, got %q", stored)
	}
}

func TestRestoreRebuildsSessionFromDurableToken(t *testing.T) {
	srv := httptest.NewServer(authHandler(t, nil))
	defer srv.Close()

	creds := newFileStore(t)
	if err := creds.Save("tok-valid"); err != nil {
		t.Fatalf("seed token: %v", err)
	}
	sess := NewStore(api.NewClient(srv.URL), creds, nil)

	if err := sess.Restore(context.Background()); err != nil {
		t.Fatalf("restore: %v", err)
	}
	principal := sess.Principal()
	if principal == nil || principal.ID != "u1" {
		t.Fatalf("expected restored principal, got %+v", principal)
	}
}

func TestRestoreWithStaleTokenClearsQuietly(t *testing.T) {
	srv := httptest.NewServer(authHandler(t, nil))
	defer srv.Close()

	creds := newFileStore(t)
	if err := creds.Save("tok-stale"); err != nil {
		t.Fatalf("seed token: %v", err)
	}
	sess := NewStore(api.NewClient(srv.URL), creds, nil)

	if err := sess.Restore(context.Background()); err != nil {
		t.Fatalf("restore with stale token should not error: %v", err)
	}
	if sess.Principal() != nil || sess.Token() != "" {
		t.Fatal("stale token must leave no session behind")
	}
	if stored, _ := creds.Load(); stored != "" {
		t.Fatalf("stale durable token should be cleared, got %q", stored)
	}
}

func TestRestoreWithNoTokenMakesNoNetworkCall(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(authHandler(t, &calls))
	defer srv.Close()

	sess := NewStore(api.NewClient(srv.URL), newFileStore(t), nil)
	if err := sess.Restore(context.Background()); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 0 {
		t.Fatalf("restore without a token must not call the server, saw %d calls", got)
	}
}

func TestExternalSignInRequiresCode(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(authHandler(t, &calls))
	defer srv.Close()

	sess := NewStore(api.NewClient(srv.URL), newFileStore(t), nil)
	err := sess.CompleteExternalSignIn(context.Background(), "  ")
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 0 {
		t.Fatalf("missing code must not reach the network, saw %d calls", got)
	}
}

func TestExternalSignInExchangesCode(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/google/callback", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Code string `json:"code"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Code != "one-time-code" {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"detail": "code already used"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"token": "tok-google",
			"user":  domain.Principal{ID: "u2", Name: "G User", Email: "g@example.com", Role: domain.RoleUser},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	creds := newFileStore(t)
	sess := NewStore(api.NewClient(srv.URL), creds, nil)

	if err := sess.CompleteExternalSignIn(context.Background(), "one-time-code"); err != nil {
		t.Fatalf("external sign-in: %v", err)
	}
	if sess.Token() != "tok-google" {
		t.Fatalf("expected exchanged token, got %q", sess.Token())
	}

	// Second use of the code fails with the server's message and leaves the
	// established session alone.
	err := sess.CompleteExternalSignIn(context.Background(), "one-time-code-used")
	if err == nil || err.Error() != "code already used" {
		t.Fatalf("expected server detail, got %v", err)
	}
	if sess.Token() != "tok-google" {
		t.Fatal("failed exchange must not disturb the current session")
	}
}
