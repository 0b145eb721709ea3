package store

import (
	"fmt"
	"testing"

	"mercator-hq/themis/pkg/rules"
)

func ruleSetFor(firm string) *rules.RuleSet {
	return &rules.RuleSet{FirmName: firm}
}

func TestFIFOCache_PutGet(t *testing.T) {
	cache := newFIFOCache(3)

	if _, ok := cache.Get("missing"); ok {
		t.Error("Get() on empty cache reported a hit")
	}

	cache.Put("alpha", ruleSetFor("Alpha"))
	got, ok := cache.Get("alpha")
	if !ok || got.FirmName != "Alpha" {
		t.Errorf("Get(alpha) = %v, %v", got, ok)
	}
	if cache.Len() != 1 {
		t.Errorf("Len() = %d, want 1", cache.Len())
	}
}

func TestFIFOCache_EvictsOldestFirst(t *testing.T) {
	cache := newFIFOCache(3)
	for _, key := range []string{"a", "b", "c"} {
		if _, didEvict := cache.Put(key, ruleSetFor(key)); didEvict {
			t.Fatalf("Put(%s) evicted below the bound", key)
		}
	}

	evicted, didEvict := cache.Put("d", ruleSetFor("d"))
	if !didEvict || evicted != "a" {
		t.Fatalf("Put(d) evicted %q (%v), want oldest key %q", evicted, didEvict, "a")
	}
	if _, ok := cache.Get("a"); ok {
		t.Error("evicted entry still retrievable")
	}
	if cache.Len() != 3 {
		t.Errorf("Len() = %d, want bound of 3", cache.Len())
	}

	evicted, didEvict = cache.Put("e", ruleSetFor("e"))
	if !didEvict || evicted != "b" {
		t.Errorf("second eviction removed %q, want %q", evicted, "b")
	}
}

func TestFIFOCache_ReplaceKeepsQueuePosition(t *testing.T) {
	cache := newFIFOCache(2)
	cache.Put("a", ruleSetFor("a-v1"))
	cache.Put("b", ruleSetFor("b"))

	// Replacing "a" must not refresh its position: it stays oldest.
	if _, didEvict := cache.Put("a", ruleSetFor("a-v2")); didEvict {
		t.Fatal("replacing an existing key evicted an entry")
	}

	got, _ := cache.Get("a")
	if got.FirmName != "a-v2" {
		t.Errorf("replaced value = %q, want a-v2", got.FirmName)
	}

	evicted, didEvict := cache.Put("c", ruleSetFor("c"))
	if !didEvict || evicted != "a" {
		t.Errorf("Put(c) evicted %q, want %q (replace must not reset age)", evicted, "a")
	}
}

func TestFIFOCache_Delete(t *testing.T) {
	cache := newFIFOCache(3)
	cache.Put("a", ruleSetFor("a"))
	cache.Put("b", ruleSetFor("b"))
	cache.Put("c", ruleSetFor("c"))

	cache.Delete("b")
	cache.Delete("b") // idempotent

	if cache.Len() != 2 {
		t.Errorf("Len() = %d after delete, want 2", cache.Len())
	}

	keys := cache.Keys()
	if len(keys) != 2 || keys[0] != "a" || keys[1] != "c" {
		t.Errorf("Keys() = %v, want [a c]", keys)
	}

	// Queue stays consistent: next eviction at the bound removes "a".
	cache.Put("d", ruleSetFor("d"))
	evicted, didEvict := cache.Put("e", ruleSetFor("e"))
	if !didEvict || evicted != "a" {
		t.Errorf("Put(e) evicted %q, want %q", evicted, "a")
	}
}

func TestFIFOCache_BoundHolds(t *testing.T) {
	const bound = 100
	cache := newFIFOCache(bound)

	for i := 0; i < bound+50; i++ {
		cache.Put(fmt.Sprintf("firm-%d", i), ruleSetFor("x"))
		if cache.Len() > bound {
			t.Fatalf("Len() = %d exceeds bound %d", cache.Len(), bound)
		}
	}
	if cache.Len() != bound {
		t.Errorf("Len() = %d, want %d", cache.Len(), bound)
	}

	// The survivors are exactly the most recent `bound` inserts.
	if _, ok := cache.Get("firm-49"); ok {
		t.Error("firm-49 should have been evicted")
	}
	if _, ok := cache.Get("firm-50"); !ok {
		t.Error("firm-50 should still be cached")
	}
}
