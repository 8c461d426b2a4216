package cli

import (
	"context"
	"errors"
)

// ErrSignInRequired is returned by commands invoked without an authenticated
// session. The check happens here in the view layer, before any cart store
// call, so an unauthenticated mutation never reaches the network.
var ErrSignInRequired = errors.New("Please sign in first: shopfront login")

// RequireAuth restores the durable session and verifies a principal is
// present. Cart-mutating commands and checkout call this before touching the
// cart store; the cart store itself has no identity dependency.
func (e *Env) RequireAuth(ctx context.Context) error {
	if err := e.Session.Restore(ctx); err != nil {
		return err
	}
	if !e.Session.Authenticated() {
		return ErrSignInRequired
	}
	return nil
}
