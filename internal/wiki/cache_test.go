package wiki

import (
	"fmt"
	"testing"
)

// TestContentCacheEviction tests insertion-order capacity eviction.
func TestContentCacheEviction(t *testing.T) {
	t.Parallel()

	const capacity = 5
	cache := NewContentCache(capacity)

	for i := 0; i < capacity+1; i++ {
		cache.Put(fmt.Sprintf("Page %d", i), fmt.Sprintf("content %d", i))
	}

	if cache.Len() != capacity {
		t.Errorf("Len() = %d, want %d", cache.Len(), capacity)
	}

	// The first-inserted key must be gone.
	if _, ok := cache.Get("Page 0"); ok {
		t.Error("oldest entry should have been evicted")
	}

	// All later keys survive.
	for i := 1; i <= capacity; i++ {
		if _, ok := cache.Get(fmt.Sprintf("Page %d", i)); !ok {
			t.Errorf("entry %d missing", i)
		}
	}
}

// TestContentCacheKeyNormalization tests case and whitespace folding.
func TestContentCacheKeyNormalization(t *testing.T) {
	t.Parallel()

	cache := NewContentCache(10)
	cache.Put("Dog", "woof")

	for _, title := range []string{"Dog", "dog", "  Dog  ", "DOG"} {
		got, ok := cache.Get(title)
		if !ok {
			t.Errorf("Get(%q) missed", title)
			continue
		}
		if got != "woof" {
			t.Errorf("Get(%q) = %q, want woof", title, got)
		}
	}
}

// TestContentCacheReplaceKeepsOrder tests that re-putting an existing
// key replaces the value without counting as a new insertion.
func TestContentCacheReplaceKeepsOrder(t *testing.T) {
	t.Parallel()

	cache := NewContentCache(2)
	cache.Put("A", "1")
	cache.Put("B", "2")
	cache.Put("A", "updated")

	if got, _ := cache.Get("A"); got != "updated" {
		t.Errorf("Get(A) = %q, want updated", got)
	}
	if cache.Len() != 2 {
		t.Errorf("Len() = %d, want 2", cache.Len())
	}

	// A is still the oldest insertion, so it is the one evicted next.
	cache.Put("C", "3")
	if _, ok := cache.Get("A"); ok {
		t.Error("A should have been evicted as the oldest insertion")
	}
	if _, ok := cache.Get("B"); !ok {
		t.Error("B should survive")
	}
}

// TestContentCacheClear tests the full-clear operation.
func TestContentCacheClear(t *testing.T) {
	t.Parallel()

	cache := NewContentCache(10)
	cache.Put("Dog", "woof")
	cache.Put("Cat", "meow")

	cache.Clear()

	if cache.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", cache.Len())
	}
	if _, ok := cache.Get("Dog"); ok {
		t.Error("cleared entry still present")
	}

	// The cache remains usable after a clear.
	cache.Put("Dog", "again")
	if got, _ := cache.Get("Dog"); got != "again" {
		t.Errorf("Get after Clear = %q, want again", got)
	}
}
