package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/huntline/phrasehound/internal/db/memory"
	"github.com/huntline/phrasehound/internal/domain"
	"github.com/huntline/phrasehound/internal/domain/daterange"
	"github.com/huntline/phrasehound/internal/domain/flow"
)

// mockStore implements the consumer interface for error-path tests.
type mockStore struct {
	getFn        func(ctx context.Context, key string) ([]byte, error)
	setWithTTLFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
	delFn        func(ctx context.Context, key string) error
}

func (m *mockStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, nil
}

func (m *mockStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setWithTTLFn != nil {
		return m.setWithTTLFn(ctx, key, value, ttl)
	}
	return nil
}

func (m *mockStore) Del(ctx context.Context, key string) error {
	if m.delFn != nil {
		return m.delFn(ctx, key)
	}
	return nil
}

func newRepo() *Repo {
	return New(memory.NewStore(), "phrasehound:", time.Hour)
}

func TestSaveLoadRoundtrip(t *testing.T) {
	ctx := context.Background()
	r := newRepo()

	s := flow.New(42)
	if err := r.Save(ctx, s); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := r.Load(ctx, 42)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.ChatID() != 42 || got.State() != flow.AwaitingDateRange {
		t.Fatalf("Load = chat %d state %q", got.ChatID(), got.State())
	}
	if _, ok := got.DateRange(); ok {
		t.Fatal("fresh session should have no range")
	}
}

func TestSaveLoad_KeepsRange(t *testing.T) {
	ctx := context.Background()
	r := newRepo()

	rng, err := daterange.Parse("2025-10-22 — 2025-10-25")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	s := flow.New(42)
	if err := s.AcceptRange(rng); err != nil {
		t.Fatalf("AcceptRange: %v", err)
	}
	if err := r.Save(ctx, s); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := r.Load(ctx, 42)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.State() != flow.AwaitingSeeds {
		t.Errorf("state = %q, want %q", got.State(), flow.AwaitingSeeds)
	}
	gotRng, ok := got.DateRange()
	if !ok {
		t.Fatal("range lost in roundtrip")
	}
	if gotRng.SinceParam() != "2025-10-22" || gotRng.UntilParam() != "2025-10-25" {
		t.Errorf("range = %s", gotRng)
	}
}

func TestLoad_Missing(t *testing.T) {
	r := newRepo()

	_, err := r.Load(context.Background(), 99)
	if !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestLoad_CorruptPayload(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	r := New(store, "phrasehound:", time.Hour)

	if err := store.Set(ctx, r.key(42), []byte("not json")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := r.Load(ctx, 42); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("corrupt payload: expected ErrSessionNotFound, got %v", err)
	}

	if err := store.Set(ctx, r.key(43), []byte(`{"chat_id":43,"state":"weird"}`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := r.Load(ctx, 43); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("unknown state: expected ErrSessionNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	r := newRepo()

	if err := r.Save(ctx, flow.New(42)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := r.Delete(ctx, 42); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := r.Load(ctx, 42); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound after delete, got %v", err)
	}
}

func TestSave_StoreError(t *testing.T) {
	boom := errors.New("boom")
	r := New(&mockStore{
		setWithTTLFn: func(context.Context, string, []byte, time.Duration) error { return boom },
	}, "phrasehound:", time.Hour)

	err := r.Save(context.Background(), flow.New(42))
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped store error, got %v", err)
	}
}
