package credstore

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func TestRedisStoreRoundTrip(t *testing.T) {
	redis := miniredis.RunT(t)
	store := NewRedisStore(redis.Addr(), "", "test:token")

	token, err := store.Load()
	if err != nil {
		t.Fatalf("load empty: %v", err)
	}
	if token != "" {
		t.Fatalf("expected empty token, got %q", token)
	}

	if err := store.Save("tok-xyz"); err != nil {
		t.Fatalf("save: %v", err)
	}
	token, err = store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if token != "tok-xyz" {
		t.Fatalf("expected tok-xyz, got %q", token)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	token, _ = store.Load()
	if token != "" {
		t.Fatalf("expected cleared token, got %q", token)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("clear empty: %v", err)
	}
}

func TestRedisStoreDefaultKey(t *testing.T) {
	redis := miniredis.RunT(t)
	store := NewRedisStore(redis.Addr(), "", "")
	if err := store.Save("tok"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if got, err := redis.Get("shopfront:token"); err != nil || got != "tok" {
		t.Fatalf("expected token under default key, got %q (%v)", got, err)
	}
}
