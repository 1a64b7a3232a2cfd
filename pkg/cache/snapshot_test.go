package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupManager(t *testing.T, ttl time.Duration) (*Manager, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewManager(client, ttl), mr
}

func TestRepoKey(t *testing.T) {
	if got := RepoKey("acme"); got != "repolang:repos:acme" {
		t.Errorf("RepoKey(acme) = %q, want repolang:repos:acme", got)
	}
}

func TestManager_SetGet(t *testing.T) {
	m, _ := setupManager(t, time.Minute)
	ctx := context.Background()

	payload := []byte(`{"repos": [{"name": "a", "language": "Go"}]}`)
	if err := m.Set(ctx, RepoKey("acme"), payload); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, err := m.Get(ctx, RepoKey("acme"))
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("Get() = %q, want %q", got, payload)
	}
}

func TestManager_GetMiss(t *testing.T) {
	m, _ := setupManager(t, time.Minute)

	_, err := m.Get(context.Background(), RepoKey("unknown"))
	if !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("Get(missing) error = %v, want ErrCacheMiss", err)
	}
}

func TestManager_Expiry(t *testing.T) {
	m, mr := setupManager(t, time.Minute)
	ctx := context.Background()

	if err := m.Set(ctx, RepoKey("acme"), []byte("data")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	mr.FastForward(2 * time.Minute)

	_, err := m.Get(ctx, RepoKey("acme"))
	if !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("Get(expired) error = %v, want ErrCacheMiss", err)
	}
}

func TestManager_Delete(t *testing.T) {
	m, _ := setupManager(t, time.Minute)
	ctx := context.Background()

	if err := m.Set(ctx, RepoKey("acme"), []byte("data")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := m.Delete(ctx, RepoKey("acme")); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	_, err := m.Get(ctx, RepoKey("acme"))
	if !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("Get(deleted) error = %v, want ErrCacheMiss", err)
	}
}

func TestNewManager_DefaultTTL(t *testing.T) {
	m, _ := setupManager(t, 0)
	if m.TTL() != 15*time.Minute {
		t.Errorf("TTL() = %v, want 15m default", m.TTL())
	}
}
