// Package texcache implements the per-goroutine, set-associative texel
// block cache (C3): 256 sets x 4 ways, each entry holding a 4x4 RGBA
// texel block.
//
// Grounded on gogpu-gg/internal/cache's generic LRU (lru.go, cache.go),
// re-specialized from an unbounded map-backed cache to the spec's literal
// fixed-size set/way addressing (spec.md §4.3), since a map can't express
// "256 sets x 4 ways" hashing or its hit/miss profiling hooks directly.
// One Cache belongs to exactly one worker goroutine and is never shared
// (spec.md: "the cache is not shared across threads"), so it needs no
// locking.
package texcache

const (
	// Sets is the number of hash buckets.
	Sets = 256
	// Ways is the number of entries (associativity) per set.
	Ways = 4
	// BlockDim is the edge length of a cached texel block (4x4).
	BlockDim = 4
	// BlockTexels is the total texel count per cached block.
	BlockTexels = BlockDim * BlockDim
)

// RGBA is a single texel, stored as straight (non-premultiplied) 8-bit
// channels, matching the texture storage format spec.md §3 describes
// ("tightly packed RGBA8").
type RGBA [4]uint8

// Key identifies one cached 4x4 texel block. Keying on (TextureID,
// Version, Level, BlockX, BlockY) rather than (TextureID, Level, BlockX,
// BlockY) alone resolves the spec's documented latent bug (§9 Open
// Questions): a tex_sub_image_2d that bumps the texture's version is now
// guaranteed to miss instead of silently serving a stale block until
// eviction.
type Key struct {
	TextureID uint32
	Version   uint32
	Level     uint8
	BlockX    int32
	BlockY    int32
}

type entry struct {
	key   Key
	valid bool
	texels [BlockTexels]RGBA
	lru    uint64
}

// Profile accumulates hit/miss counts for one cache instance, reported to
// the thread-local profile spec.md §4.3 mentions.
type Profile struct {
	Hits   uint64
	Misses uint64
}

// FillFunc reads the 4x4 block at (level, bx, by) for the texture
// identified by key.TextureID/key.Version. Implementations must apply
// out-of-bounds sampling as zero (transparent black), per spec.md §4.3.
type FillFunc func(key Key, out *[BlockTexels]RGBA)

// Cache is one worker's texel block cache. Not safe for concurrent use —
// exactly one goroutine may own a Cache.
type Cache struct {
	sets    [Sets][Ways]entry
	counter uint64
	profile Profile
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{}
}

// hash implements spec.md §4.3's literal hash rule:
// ((tex_ptr>>4) xor level xor bx xor (by<<1)) mod 256, with the stable
// texture id standing in for the pointer. Version does not enter the
// hash: every version of a block maps to the same set, and the full Key
// comparison in Lookup is what tells versions apart.
func hash(k Key) int {
	h := uint32(k.TextureID)>>4 ^ uint32(k.Level) ^ uint32(k.BlockX) ^ uint32(k.BlockY)<<1
	return int(h % Sets)
}

// Lookup returns the texel block for key, filling it via fill on a miss.
// On hit it updates the entry's LRU order and returns the cached block;
// on miss it evicts the first invalid way, or else the least-recently-used
// way, refills it via fill, and returns the fresh block.
//
// Returns a pointer into the cache's internal storage; callers must not
// retain it past the next Lookup call on the same Cache, mirroring the
// teacher's in-place LRU node reuse.
func (c *Cache) Lookup(key Key, fill FillFunc) *[BlockTexels]RGBA {
	c.counter++
	set := &c.sets[hash(key)]

	for i := range set {
		e := &set[i]
		if e.valid && e.key == key {
			e.lru = c.counter
			c.profile.Hits++
			return &e.texels
		}
	}

	// Miss: prefer an invalid (never-used) way, else evict oldest LRU.
	victim := 0
	oldest := set[0].lru
	foundInvalid := false
	for i := range set {
		if !set[i].valid {
			victim = i
			foundInvalid = true
			break
		}
		if set[i].lru < oldest {
			oldest = set[i].lru
			victim = i
		}
	}
	_ = foundInvalid

	e := &set[victim]
	e.key = key
	e.valid = true
	e.lru = c.counter
	fill(key, &e.texels)

	c.profile.Misses++
	return &e.texels
}

// Profile returns a snapshot of the cache's hit/miss counters.
func (c *Cache) Profile() Profile {
	return c.profile
}

// Invalidate drops every entry tagged with textureID, regardless of
// version.
func (c *Cache) Invalidate(textureID uint32) {
	for s := range c.sets {
		for w := range c.sets[s] {
			if c.sets[s][w].valid && c.sets[s][w].key.TextureID == textureID {
				c.sets[s][w].valid = false
			}
		}
	}
}
