package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/huntline/phrasehound/internal/db"
)

func TestSetGet(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	if err := s.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Set: %v", err)
	}

	data, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(data) != "v" {
		t.Errorf("Get = %q, want %q", data, "v")
	}
}

func TestGet_Missing(t *testing.T) {
	s := NewStore()

	_, err := s.Get(context.Background(), "nope")
	if !errors.Is(err, db.ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestDel(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	if err := s.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Del(ctx, "k"); err != nil {
		t.Fatalf("Del: %v", err)
	}
	if _, err := s.Get(ctx, "k"); !errors.Is(err, db.ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound after Del, got %v", err)
	}

	// deleting a missing key is not an error
	if err := s.Del(ctx, "k"); err != nil {
		t.Errorf("Del of missing key: %v", err)
	}
}

func TestTTLExpiry(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	base := time.Date(2025, 10, 22, 12, 0, 0, 0, time.UTC)
	current := base
	s.now = func() time.Time { return current }

	if err := s.SetWithTTL(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("SetWithTTL: %v", err)
	}

	if _, err := s.Get(ctx, "k"); err != nil {
		t.Fatalf("Get before expiry: %v", err)
	}

	current = base.Add(time.Minute)
	if _, err := s.Get(ctx, "k"); !errors.Is(err, db.ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound after expiry, got %v", err)
	}
}

func TestGetCopies(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	if err := s.Set(ctx, "k", []byte("abc")); err != nil {
		t.Fatalf("Set: %v", err)
	}

	first, _ := s.Get(ctx, "k")
	first[0] = 'z'

	second, _ := s.Get(ctx, "k")
	if string(second) != "abc" {
		t.Errorf("stored value was mutated through a returned slice: %q", second)
	}
}
