package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
)

func TestFSStoreRoundTrip(t *testing.T) {
	s, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()

	payload := []byte{0xff, 0xd8, 0xff, 0xe0, 1, 2, 3}
	if err := s.Put(ctx, "a.jpg", bytes.NewReader(payload), int64(len(payload)), "image/jpeg"); err != nil {
		t.Fatalf("put: %v", err)
	}

	rc, err := s.Get(ctx, "a.jpg")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer rc.Close()
	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("payload mismatch: %v != %v", got, payload)
	}

	names, err := s.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(names) != 1 || names[0] != "a.jpg" {
		t.Fatalf("list = %v, want [a.jpg]", names)
	}

	if err := s.Delete(ctx, "a.jpg"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, "a.jpg"); !errors.Is(err, ErrBlobNotFound) {
		t.Fatalf("get deleted: got %v, want ErrBlobNotFound", err)
	}
	if err := s.Delete(ctx, "a.jpg"); !errors.Is(err, ErrBlobNotFound) {
		t.Fatalf("delete again: got %v, want ErrBlobNotFound", err)
	}
}

func TestFSStoreConfinesNames(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFSStore(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()

	// A path-shaped name collapses to its basename inside the root.
	if err := s.Put(ctx, "../../escape.jpg", bytes.NewReader([]byte("x")), 1, ""); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := s.Get(ctx, "escape.jpg"); err != nil {
		t.Fatalf("confined blob not found: %v", err)
	}
}
