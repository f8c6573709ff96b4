package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	c := NewMemoryCache().WithClock(func() time.Time { return now })

	if err := c.Set(ctx, "k", []byte("v"), 5*time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, hit, err := c.Get(ctx, "k")
	if err != nil || !hit {
		t.Fatalf("Get: hit=%v err=%v", hit, err)
	}
	if string(got) != "v" {
		t.Fatalf("Get: %q", got)
	}

	// Still live one tick before the TTL elapses.
	now = now.Add(5*time.Minute - time.Second)
	if _, hit, _ := c.Get(ctx, "k"); !hit {
		t.Fatal("Get: expired before TTL")
	}

	now = now.Add(2 * time.Second)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Fatal("Get: entry survived past TTL")
	}
}

func TestMemoryCacheMissAndRemove(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	if _, hit, err := c.Get(ctx, "absent"); hit || err != nil {
		t.Fatalf("Get absent: hit=%v err=%v", hit, err)
	}

	if err := c.Set(ctx, "a", []byte("1"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := c.Set(ctx, "b", []byte("2"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := c.Remove(ctx, "a", "b", "ghost"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Fatal("Remove: key a survived")
	}
	if _, hit, _ := c.Get(ctx, "b"); hit {
		t.Fatal("Remove: key b survived")
	}
}

func TestMemoryCacheCopiesValues(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	src := []byte("original")
	if err := c.Set(ctx, "k", src, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	src[0] = 'X'

	got, _, _ := c.Get(ctx, "k")
	if string(got) != "original" {
		t.Fatalf("stored value aliased caller buffer: %q", got)
	}
}
