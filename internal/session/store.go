// Package session owns the authentication lifecycle: the current principal,
// the credential token, and its durable copy. All three are updated under one
// lock so no reader ever observes a half-cleared session.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"shopfront/internal/api"
	"shopfront/internal/credstore"
	"shopfront/pkg/domain"
)

const minPasswordLength = 6

// ValidationError is a locally detected form error, produced before any
// network call. Its message is display-ready.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Store is the identity store. It is the api client's token source and
// subscribes to its unauthenticated event, so a 401 anywhere tears the
// session down exactly like an explicit logout.
type Store struct {
	client *api.Client
	creds  credstore.Store
	logger *slog.Logger

	mu        sync.RWMutex
	principal *domain.Principal
	token     string
}

// NewStore wires the identity store to the api client and durable storage.
func NewStore(client *api.Client, creds credstore.Store, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		client: client,
		creds:  creds,
		logger: logger,
	}
	client.SetTokenSource(s)
	client.OnUnauthenticated(s.handleUnauthenticated)
	return s
}

// Token returns the current bearer token, or "" when signed out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Principal returns a copy of the current principal, or nil when signed out.
func (s *Store) Principal() *domain.Principal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.principal == nil {
		return nil
	}
	p := *s.principal
	return &p
}

// Authenticated reports whether a principal is present.
func (s *Store) Authenticated() bool {
	return s.Principal() != nil
}

// Login exchanges credentials for a session. On failure the prior session,
// if any, is left untouched and the returned error carries a display-ready
// message.
func (s *Store) Login(ctx context.Context, email, password string) error {
	user, token, err := s.client.LoginUser(ctx, email, password)
	if err != nil {
		s.logger.Debug("login failed", "email", email, "error", err)
		return fmt.Errorf("%s", api.Detail(err, "Login failed. Please check your credentials."))
	}
	if err := s.commit(user, token); err != nil {
		return err
	}
	s.logger.Debug("login succeeded", "user_id", user.ID)
	return nil
}

// RegisterForm is the new-account form as collected from the user.
type RegisterForm struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
	AcceptTerms     bool
}

// Register validates the form locally, then submits it. Validation failures
// never reach the network. A successful registration does not authenticate;
// the caller routes to login.
func (s *Store) Register(ctx context.Context, form RegisterForm) error {
	if form.Password != form.ConfirmPassword {
		return &ValidationError{Message: "Passwords do not match"}
	}
	if len(form.Password) < minPasswordLength {
		return &ValidationError{Message: fmt.Sprintf("Password must be at least %d characters long", minPasswordLength)}
	}
	if !form.AcceptTerms {
		return &ValidationError{Message: "Please accept the terms and conditions"}
	}
	params := api.RegisterParams{
		Name:     strings.TrimSpace(form.Name),
		Email:    strings.TrimSpace(form.Email),
		Password: form.Password,
		Role:     string(domain.RoleUser),
	}
	if err := s.client.RegisterUser(ctx, params); err != nil {
		return fmt.Errorf("%s", api.Detail(err, "Registration failed. Please try again."))
	}
	return nil
}

// CompleteExternalSignIn exchanges a provider-issued one-time code for a
// session. Codes are single use server-side; this never retries.
func (s *Store) CompleteExternalSignIn(ctx context.Context, code string) error {
	if strings.TrimSpace(code) == "" {
		return &ValidationError{Message: "No authorization code received"}
	}
	user, token, err := s.client.ExchangeAuthCode(ctx, code)
	if err != nil {
		return fmt.Errorf("%s", api.Detail(err, "Authentication failed"))
	}
	return s.commit(user, token)
}

// Restore loads the durable token and re-fetches the principal. Call once at
// startup. A missing token is not an error; a rejected token has already
// been cleared by the unauthenticated handler by the time this returns.
func (s *Store) Restore(ctx context.Context) error {
	token, err := s.creds.Load()
	if err != nil {
		return fmt.Errorf("load credentials: %w", err)
	}
	if token == "" {
		return nil
	}
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	user, err := s.client.Me(ctx)
	if err != nil {
		if api.IsUnauthorized(err) {
			return nil
		}
		return fmt.Errorf("restore session: %w", err)
	}
	s.mu.Lock()
	s.principal = &user
	s.mu.Unlock()
	return nil
}

// Logout clears the session and its durable copy. It needs no network call
// and always succeeds; a storage failure is logged and the in-memory session
// is gone regardless.
func (s *Store) Logout() {
	s.clear("logout")
}

func (s *Store) handleUnauthenticated() {
	s.clear("unauthenticated")
}

// commit makes the durable copy first so the stored token can never lag a
// session the user believes is active.
func (s *Store) commit(user domain.Principal, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.creds.Save(token); err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	s.principal = &user
	s.token = token
	return nil
}

func (s *Store) clear(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.principal == nil && s.token == "" {
		return
	}
	s.principal = nil
	s.token = ""
	if err := s.creds.Clear(); err != nil {
		s.logger.Warn("clear stored credentials", "reason", reason, "error", err)
	}
	s.logger.Debug("session cleared", "reason", reason)
}
