package credstore

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "credentials")
	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}

	// Missing file reads as no token, not an error.
	token, err := store.Load()
	if err != nil {
		t.Fatalf("load empty: %v", err)
	}
	if token != "" {
		t.Fatalf("expected empty token, got %q", token)
	}

	if err := store.Save("tok-abc"); err != nil {
		t.Fatalf("save: %v", err)
	}
	token, err = store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if token != "tok-abc" {
		t.Fatalf("expected tok-abc, got %q", token)
	}

	// Save replaces, never appends.
	if err := store.Save("tok-def"); err != nil {
		t.Fatalf("save replacement: %v", err)
	}
	token, _ = store.Load()
	if token != "tok-def" {
		t.Fatalf("expected tok-def, got %q", token)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("expected credentials file removed")
	}
	// Clearing again is a no-op.
	if err := store.Clear(); err != nil {
		t.Fatalf("clear empty: %v", err)
	}
}

func TestFileStoreRequiresPath(t *testing.T) {
	if _, err := NewFileStore("  "); err == nil {
		t.Fatal("expected error for blank path")
	}
}

func TestFileStorePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials")
	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	if err := store.Save("secret"); err != nil {
		t.Fatalf("save: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("expected 0600 token file, got %o", perm)
	}
}
