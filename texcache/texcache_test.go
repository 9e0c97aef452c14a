package texcache

import "testing"

func fillCounting(calls *int) FillFunc {
	return func(key Key, out *[BlockTexels]RGBA) {
		*calls++
		for i := range out {
			out[i] = RGBA{uint8(key.BlockX), uint8(key.BlockY), uint8(key.Level), 255}
		}
	}
}

func TestLookupSameCoordinatesIdenticalValues(t *testing.T) {
	c := New()
	var calls int
	fill := fillCounting(&calls)

	key := Key{TextureID: 1, Version: 0, Level: 0, BlockX: 2, BlockY: 3}
	a := *c.Lookup(key, fill)
	b := *c.Lookup(key, fill)

	if a != b {
		t.Fatalf("two lookups at the same key returned different values: %v vs %v", a, b)
	}
	if calls != 1 {
		t.Fatalf("fill called %d times, want 1 (second lookup should hit)", calls)
	}
}

func TestVersionBumpForcesMiss(t *testing.T) {
	c := New()
	var calls int
	fill := fillCounting(&calls)

	k1 := Key{TextureID: 1, Version: 0, Level: 0, BlockX: 0, BlockY: 0}
	k2 := Key{TextureID: 1, Version: 1, Level: 0, BlockX: 0, BlockY: 0}

	c.Lookup(k1, fill)
	c.Lookup(k2, fill)

	if calls != 2 {
		t.Fatalf("fill called %d times, want 2 (version bump must force a miss)", calls)
	}
	if c.Profile().Misses != 2 {
		t.Fatalf("misses = %d, want 2", c.Profile().Misses)
	}
}

func TestEvictsLeastRecentlyUsedWithinSet(t *testing.T) {
	c := New()
	var calls int
	fill := fillCounting(&calls)

	// Construct 5 keys that hash to the same set to force eviction
	// within a 4-way set. hash only depends on (TextureID>>4, Level,
	// BlockX, BlockY<<1); varying Version alone keeps the same set.
	base := Key{TextureID: 16, Level: 0, BlockX: 0, BlockY: 0}
	var keys []Key
	for v := uint32(0); v < 5; v++ {
		k := base
		k.Version = v
		keys = append(keys, k)
	}

	for _, k := range keys[:4] {
		c.Lookup(k, fill)
	}
	if calls != 4 {
		t.Fatalf("expected 4 fills to populate all 4 ways, got %d", calls)
	}

	// Touch key 0 so it is not the LRU victim.
	c.Lookup(keys[0], fill)
	if calls != 4 {
		t.Fatalf("re-touching key 0 should hit, got %d fills", calls)
	}

	// key 1 is now the least-recently-used of the 4 resident entries and
	// should be evicted to make room for key 4.
	c.Lookup(keys[4], fill)
	if calls != 5 {
		t.Fatalf("expected a miss inserting a 5th key into a full 4-way set, got %d fills", calls)
	}

	c.Lookup(keys[1], fill)
	if calls != 6 {
		t.Fatalf("expected key 1 to have been evicted, got %d fills", calls)
	}
}

func TestInvalidateDropsAllEntriesForTexture(t *testing.T) {
	c := New()
	var calls int
	fill := fillCounting(&calls)

	k := Key{TextureID: 7, Version: 0, Level: 0, BlockX: 1, BlockY: 1}
	c.Lookup(k, fill)
	c.Invalidate(7)
	c.Lookup(k, fill)

	if calls != 2 {
		t.Fatalf("fill called %d times, want 2 (invalidate must force a miss)", calls)
	}
}
