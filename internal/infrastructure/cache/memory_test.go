package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	type payload struct {
		Symbol string  `json:"symbol"`
		Price  float64 `json:"price"`
	}

	if err := store.Set(ctx, "k", payload{Symbol: "BTCUSDT", Price: 101.5}, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	var got payload
	found, err := store.Get(ctx, "k", &got)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !found {
		t.Fatal("expected hit")
	}
	if got.Symbol != "BTCUSDT" || got.Price != 101.5 {
		t.Errorf("unexpected payload %+v", got)
	}
}

func TestMemoryStoreMiss(t *testing.T) {
	store := NewMemoryStore()
	var dest string
	found, err := store.Get(context.Background(), "missing", &dest)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if found {
		t.Error("expected miss")
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Set(ctx, "k", "v", time.Nanosecond); err != nil {
		t.Fatalf("set: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	var dest string
	found, _ := store.Get(ctx, "k", &dest)
	if found {
		t.Error("expected entry to expire")
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	store.Set(ctx, "k", 1, 0)
	store.Delete(ctx, "k")

	var dest int
	if found, _ := store.Get(ctx, "k", &dest); found {
		t.Error("expected delete to remove the entry")
	}
}
