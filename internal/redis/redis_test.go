package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// unreachableClient points at a closed port so every command fails fast.
func unreachableClient(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestOTPStore_ReserveSurfacesConnectionErrors(t *testing.T) {
	store := NewOTPStore(unreachableClient(t))

	ok, err := store.Reserve(context.Background(), "1234", "ride-1")
	if err == nil {
		t.Fatal("expected an error from an unreachable server")
	}
	if ok {
		t.Error("a failed reservation must not report the code as free")
	}
	if err := store.Release(context.Background(), "1234", "ride-1"); err == nil {
		t.Error("expected Release to fail")
	}
}

func TestCacheStore_ErrorIsNotAMiss(t *testing.T) {
	store := NewCacheStore(unreachableClient(t), "idempotency:")

	data, found, err := store.Get(context.Background(), "k")
	if err == nil {
		t.Fatal("expected an error from an unreachable server")
	}
	if found || data != nil {
		t.Errorf("expected no data, got found=%v data=%q", found, data)
	}

	if err := store.Set(context.Background(), "k", []byte("v"), time.Minute); err == nil {
		t.Error("expected Set to fail")
	}
}
