package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/espalier/pkg/adapters/redis"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/ports/tests"
	backend "github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T, opts ...redis.Option) (*redis.Store, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})

	return redis.NewFromClient(client, opts...), mr
}

func TestRedisStore_Contract(t *testing.T) {
	store, _ := newTestStore(t)
	tests.RunStoreContract(t, store)
}

func TestRedisStore_TTL(t *testing.T) {
	store, mr := newTestStore(t, redis.WithTTL(time.Minute), redis.WithPrefix("test:run:"))
	ctx := context.Background()

	run := &domain.RunRecord{
		ID:      "short-lived",
		GraphID: "g1",
		Status:  domain.RunCompleted,
		State:   domain.SharedState{"ok": true},
	}
	if err := store.Save(ctx, run); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if mr.TTL("test:run:short-lived") != time.Minute {
		t.Errorf("expected 1m TTL on record key, got %v", mr.TTL("test:run:short-lived"))
	}

	// Past the TTL the record itself is gone. The ZSET index is pruned
	// lazily by score on List, so the id may linger there until then.
	mr.FastForward(2 * time.Minute)

	if _, err := store.Get(ctx, "short-lived"); err == nil {
		t.Error("expected expired run to be gone")
	}
}
