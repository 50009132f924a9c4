package repository

import (
	"context"
	"testing"
)

func TestMaxResolutionDefaultAndOverride(t *testing.T) {
	r := NewSettingsRepository(openTestDB(t))
	ctx := context.Background()

	n, err := r.MaxResolution(ctx)
	if err != nil {
		t.Fatalf("max resolution: %v", err)
	}
	if n != DefaultMaxResolution {
		t.Fatalf("default = %d, want %d", n, DefaultMaxResolution)
	}

	if err := r.SetMaxResolution(ctx, 1280); err != nil {
		t.Fatalf("set: %v", err)
	}
	if n, _ = r.MaxResolution(ctx); n != 1280 {
		t.Fatalf("after set = %d, want 1280", n)
	}

	// Overwrite, not insert-only.
	if err := r.SetMaxResolution(ctx, 800); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if n, _ = r.MaxResolution(ctx); n != 800 {
		t.Fatalf("after overwrite = %d, want 800", n)
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	r := NewSettingsRepository(openTestDB(t))
	ctx := context.Background()

	_, ok, err := r.PasswordHash(ctx)
	if err != nil {
		t.Fatalf("password hash: %v", err)
	}
	if ok {
		t.Fatal("fresh gallery reports a password hash")
	}

	if err := r.SetPasswordHash(ctx, []byte("$argon2id$...")); err != nil {
		t.Fatalf("set: %v", err)
	}
	hash, ok, err := r.PasswordHash(ctx)
	if err != nil || !ok {
		t.Fatalf("get after set: ok=%v err=%v", ok, err)
	}
	if string(hash) != "$argon2id$..." {
		t.Fatalf("hash = %q", hash)
	}
}
