// Package credstore persists the credential token across process restarts.
// Only the identity store writes here; everything else reads the token
// through the identity store so there is a single source of truth.
package credstore

// Store persists one opaque bearer token.
type Store interface {
	// Load returns the stored token, or "" when none is stored.
	Load() (string, error)
	// Save replaces the stored token.
	Save(token string) error
	// Clear removes the stored token. Clearing an empty store is a no-op.
	Clear() error
}
