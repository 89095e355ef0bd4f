package cache

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestInMemoryCache_GetSet(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache(3600) // 1 hour TTL

	c.Set(ctx, "t_key1", "value1")

	val, ok := c.Get(ctx, "t_key1")
	if !ok {
		t.Error("Get should return true for existing key")
	}
	if val != "value1" {
		t.Errorf("Get returned %q, want %q", val, "value1")
	}

	// Test missing key
	val, ok = c.Get(ctx, "nonexistent")
	if ok {
		t.Error("Get should return false for missing key")
	}
	if val != "" {
		t.Errorf("Get should return empty string for missing key, got %q", val)
	}
}

func TestInMemoryCache_TTL(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache(1) // 1 second TTL

	c.Set(ctx, "t_key1", "value1")

	if val, ok := c.Get(ctx, "t_key1"); !ok || val != "value1" {
		t.Error("Value should be available immediately after set")
	}

	time.Sleep(1100 * time.Millisecond)

	if _, ok := c.Get(ctx, "t_key1"); ok {
		t.Error("Value should be expired after TTL")
	}
	if c.Len() != 0 {
		t.Error("Expired entry should be removed on read")
	}
}

func TestInMemoryCache_ExpiryKeepsFreshSet(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache(60)

	for i := 0; i < 500; i++ {
		c.mu.Lock()
		c.cache["t_key"] = cacheEntry{value: "stale", timestamp: time.Now().Add(-time.Hour)}
		c.mu.Unlock()

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			c.Get(ctx, "t_key")
		}()
		go func() {
			defer wg.Done()
			c.Set(ctx, "t_key", "fresh")
		}()
		wg.Wait()

		if val, ok := c.Get(ctx, "t_key"); !ok || val != "fresh" {
			t.Fatalf("iteration %d: Get = %q, %v; a fresh Set was evicted", i, val, ok)
		}
	}
}

func TestInMemoryCache_NoTTL(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache(0)

	c.Set(ctx, "t_key1", "value1")

	if val, ok := c.Get(ctx, "t_key1"); !ok || val != "value1" {
		t.Error("Value should be available with no TTL")
	}
}

func TestInMemoryCache_Overwrite(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache(3600)

	c.Set(ctx, "t_key1", "value1")
	c.Set(ctx, "t_key1", "value2")

	if val, _ := c.Get(ctx, "t_key1"); val != "value2" {
		t.Errorf("Value should be overwritten, got %q, want %q", val, "value2")
	}
}

func TestInMemoryCache_Delete(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache(0)

	c.Set(ctx, "t_key1", "value1")
	c.Delete(ctx, "t_key1")
	c.Delete(ctx, "t_missing")

	if _, ok := c.Get(ctx, "t_key1"); ok {
		t.Error("Deleted key should be gone")
	}
}

func TestInMemoryCache_ClearAndCountOnlyTouchPrefix(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache(3600)

	c.Set(ctx, "t_key1", "value1")
	c.Set(ctx, "t_key2", "value2")
	c.Set(ctx, "settings", "{}")

	if n := c.Count(ctx); n != 2 {
		t.Errorf("Count = %d, want 2", n)
	}
	if n := c.Clear(ctx); n != 2 {
		t.Errorf("Clear removed %d, want 2", n)
	}
	if c.Count(ctx) != 0 {
		t.Error("Cleared cache should have no translation entries")
	}
	if _, ok := c.Get(ctx, "settings"); !ok {
		t.Error("Clear must leave foreign keys alone")
	}
}

func TestInMemoryCache_Entries(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache(0)

	c.Set(ctx, "t_a", "1")
	c.Set(ctx, "other", "2")

	entries, err := c.Entries(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries["t_a"] != "1" {
		t.Errorf("Entries = %v", entries)
	}
}

func TestInMemoryCache_Concurrent(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache(3600)
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			c.Set(ctx, "t_"+string(rune('a'+i%26)), "value")
		}(i)
		go func(i int) {
			defer wg.Done()
			c.Get(ctx, "t_"+string(rune('a'+i%26)))
		}(i)
	}

	wg.Wait()

	if c.Count(ctx) != 26 {
		t.Errorf("Count = %d, want 26", c.Count(ctx))
	}
}

func TestNop(t *testing.T) {
	ctx := context.Background()
	var s Store = Nop{}

	s.Set(ctx, "t_a", "1")
	if _, ok := s.Get(ctx, "t_a"); ok {
		t.Error("Nop should never hit")
	}
	if s.Count(ctx) != 0 || s.Clear(ctx) != 0 {
		t.Error("Nop should be empty")
	}
}
