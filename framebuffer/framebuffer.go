// Package framebuffer implements the tiled framebuffer (C2): color, depth
// and stencil planes split into fixed-size tiles, each with a per-tile
// lock and scratch copy-in/copy-out, plus atomic depth-first pixel writes
// outside a tile's critical section.
//
// Grounded on gogpu-gg/internal/parallel's tile.go/tile_grid.go/tile_pool.go
// (tile sizing, flat row-major tile addressing, TilesInRect), generalized
// from a single RGBA byte plane to three atomic
// planes (color/depth/stencil) with CAS-based depth-resolved writes, per
// spec.md §4.2 — the teacher's tiles are exclusively single-goroutine
// owned and never contended, so it has no analogue for the outside-tile
// atomic path.
package framebuffer

import (
	"math"
	"runtime"
	"sync/atomic"

	"github.com/gogpu/microgles/glenum"
	"github.com/gogpu/microgles/scheduler"
)

// DefaultTileSize is the framebuffer tile edge in pixels (spec.md §4.2).
const DefaultTileSize = 16

// Tile owns a scratch copy of its rectangle's pixels while a fragment-tile
// job has it checked out via Enter/Leave.
type Tile struct {
	X0, Y0 int // top-left, in framebuffer pixel space
	W, H   int

	locked atomic.Bool // spin-lock flag guarding scratch access

	scratchColor   []uint32
	scratchDepth   []float32
	scratchStencil []uint8
}

// Framebuffer is the tiled color/depth/stencil target.
//
// Framebuffer is safe for concurrent use: plane writes outside a tile
// scope are atomic/CAS-based, and tiles serialize access via their own
// spin-lock flag (spec.md §4.2, §5).
type Framebuffer struct {
	width, height int
	tileSize      int
	tilesX, tilesY int
	colorSpec     glenum.ColorSpec

	color   []atomic.Uint32 // packed 0xAARRGGBB, stored as written for either colorSpec
	depth   []atomic.Uint32 // float32 bits
	stencil []atomic.Uint32 // low byte significant

	tiles []*Tile

	refcount atomic.Int32
}

// New creates a framebuffer of the given dimensions. tileSize <= 0 uses
// DefaultTileSize. The initial refcount is 1 (the caller's own reference).
func New(width, height, tileSize int, spec glenum.ColorSpec) *Framebuffer {
	if tileSize <= 0 {
		tileSize = DefaultTileSize
	}
	n := width * height
	fb := &Framebuffer{
		width:     width,
		height:    height,
		tileSize:  tileSize,
		tilesX:    ceilDiv(width, tileSize),
		tilesY:    ceilDiv(height, tileSize),
		colorSpec: spec,
		color:     make([]atomic.Uint32, n),
		depth:     make([]atomic.Uint32, n),
		stencil:   make([]atomic.Uint32, n),
	}
	fb.refcount.Store(1)
	fb.tiles = make([]*Tile, fb.tilesX*fb.tilesY)
	for ty := 0; ty < fb.tilesY; ty++ {
		for tx := 0; tx < fb.tilesX; tx++ {
			x0 := tx * tileSize
			y0 := ty * tileSize
			w := min(tileSize, width-x0)
			h := min(tileSize, height-y0)
			fb.tiles[ty*fb.tilesX+tx] = &Tile{
				X0: x0, Y0: y0, W: w, H: h,
				scratchColor:   make([]uint32, w*h),
				scratchDepth:   make([]float32, w*h),
				scratchStencil: make([]uint8, w*h),
			}
		}
	}
	return fb
}

func ceilDiv(a, b int) int { return (a + b - 1) / b }
func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Width and Height report the framebuffer's pixel dimensions.
func (fb *Framebuffer) Width() int  { return fb.width }
func (fb *Framebuffer) Height() int { return fb.height }

// TileSize reports the configured tile edge.
func (fb *Framebuffer) TileSize() int { return fb.tileSize }

// TilesX and TilesY report the tile grid dimensions.
func (fb *Framebuffer) TilesX() int { return fb.tilesX }
func (fb *Framebuffer) TilesY() int { return fb.tilesY }

// Retain increments the reference count. Any job holding a Framebuffer
// pointer must Retain at submission and Release at completion, per
// spec.md §4.2, because a fragment-tile job may outlive the API-level
// release.
func (fb *Framebuffer) Retain() {
	fb.refcount.Add(1)
}

// Release decrements the reference count. Destruction is deferred until
// the count reaches zero (spec.md's Framebuffer invariant (c)); this
// implementation's "destruction" is simply letting Go's GC reclaim the
// planes/tiles, which Release makes eligible for by dropping the last
// reference.
func (fb *Framebuffer) Release() {
	if fb.refcount.Add(-1) == 0 {
		fb.tiles = nil
		fb.color = nil
		fb.depth = nil
		fb.stencil = nil
	}
}

// RefCount returns the current reference count.
func (fb *Framebuffer) RefCount() int32 {
	return fb.refcount.Load()
}

func (fb *Framebuffer) inBounds(x, y int) bool {
	return x >= 0 && x < fb.width && y >= 0 && y < fb.height
}

func (fb *Framebuffer) index(x, y int) int {
	return y*fb.width + x
}

// TileAt returns the tile at tile-grid coordinates (tx, ty), or nil if out
// of range.
func (fb *Framebuffer) TileAt(tx, ty int) *Tile {
	if tx < 0 || tx >= fb.tilesX || ty < 0 || ty >= fb.tilesY {
		return nil
	}
	return fb.tiles[ty*fb.tilesX+tx]
}

// EnterTile acquires t's spin-lock and copies its rectangle out of the
// shared planes into the tile's scratch buffers, returning the scratch
// slices for the fragment-tile stage to read/write directly without
// further atomic traffic. LeaveTile must be called to copy the scratch
// back and release the lock (spec.md §4.2, §5's tile critical section).
func (fb *Framebuffer) EnterTile(t *Tile) (color []uint32, depth []float32, stencil []uint8) {
	for !t.locked.CompareAndSwap(false, true) {
		runtime.Gosched()
	}
	i := 0
	for row := 0; row < t.H; row++ {
		py := t.Y0 + row
		for col := 0; col < t.W; col++ {
			px := t.X0 + col
			idx := fb.index(px, py)
			t.scratchColor[i] = fb.color[idx].Load()
			t.scratchDepth[i] = math.Float32frombits(fb.depth[idx].Load())
			t.scratchStencil[i] = uint8(fb.stencil[idx].Load())
			i++
		}
	}
	return t.scratchColor, t.scratchDepth, t.scratchStencil
}

// LeaveTile copies t's scratch buffers back into the shared planes and
// releases the lock acquired by EnterTile.
func (fb *Framebuffer) LeaveTile(t *Tile) {
	i := 0
	for row := 0; row < t.H; row++ {
		py := t.Y0 + row
		for col := 0; col < t.W; col++ {
			px := t.X0 + col
			idx := fb.index(px, py)
			fb.color[idx].Store(t.scratchColor[i])
			fb.depth[idx].Store(math.Float32bits(t.scratchDepth[i]))
			fb.stencil[idx].Store(uint32(t.scratchStencil[i]))
			i++
		}
	}
	t.locked.Store(false)
}

// TilesInRect returns every tile intersecting the pixel rectangle
// [x,x+w) x [y,y+h), clipped to framebuffer bounds.
func (fb *Framebuffer) TilesInRect(x, y, w, h int) []*Tile {
	if w <= 0 || h <= 0 {
		return nil
	}
	x1, y1 := max0(x), max0(y)
	x2, y2 := min(x+w, fb.width), min(y+h, fb.height)
	if x1 >= x2 || y1 >= y2 {
		return nil
	}
	tx1, ty1 := x1/fb.tileSize, y1/fb.tileSize
	tx2, ty2 := (x2-1)/fb.tileSize, (y2-1)/fb.tileSize

	var out []*Tile
	for ty := ty1; ty <= ty2; ty++ {
		for tx := tx1; tx <= tx2; tx++ {
			if t := fb.TileAt(tx, ty); t != nil {
				out = append(out, t)
			}
		}
	}
	return out
}

func max0(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

// SetPixel implements the spec.md §4.2 depth-first atomic write for use
// *outside* a tile critical section: it loads the current depth, and while
// the new depth compares "less" under fn, attempts a CAS; on success it
// stores the color. The tile-scope path (EnterTile/LeaveTile) does not
// use it: the fragment stage compares and stores depth on the tile's
// scratch buffer directly while it holds the tile lock.
func (fb *Framebuffer) SetPixel(x, y int, color uint32, depth float32, fn glenum.CompareFunc) bool {
	if !fb.inBounds(x, y) {
		return false
	}
	return fb.TestAndSetDepth(fb.index(x, y), color, depth, fn)
}

// TestAndSetDepth performs the CAS depth-test loop against plane index i
// directly; SetPixel uses it for writes outside a tile scope.
func (fb *Framebuffer) TestAndSetDepth(i int, color uint32, depth float32, fn glenum.CompareFunc) bool {
	newBits := math.Float32bits(depth)
	for {
		oldBits := fb.depth[i].Load()
		old := math.Float32frombits(oldBits)
		if !glenum.Compare(fn, depth, old) {
			return false
		}
		if fb.depth[i].CompareAndSwap(oldBits, newBits) {
			fb.color[i].Store(color)
			return true
		}
		// Lost the race: retry against whatever depth won.
	}
}

// Color loads the color plane at (x, y). Returns 0 if out of bounds.
func (fb *Framebuffer) Color(x, y int) uint32 {
	if !fb.inBounds(x, y) {
		return 0
	}
	return fb.color[fb.index(x, y)].Load()
}

// Depth loads the depth plane at (x, y).
func (fb *Framebuffer) Depth(x, y int) float32 {
	if !fb.inBounds(x, y) {
		return 0
	}
	return math.Float32frombits(fb.depth[fb.index(x, y)].Load())
}

// Stencil loads the stencil plane at (x, y).
func (fb *Framebuffer) Stencil(x, y int) uint8 {
	if !fb.inBounds(x, y) {
		return 0
	}
	return uint8(fb.stencil[fb.index(x, y)].Load())
}

// SetStencil stores the stencil plane at (x, y) unconditionally (stencil
// updates are not depth-raced; the fragment stage serializes them under
// the tile lock or, outside a tile, accepts last-writer-wins like the
// color plane does after a successful depth CAS).
func (fb *Framebuffer) SetStencil(x, y int, s uint8) {
	if !fb.inBounds(x, y) {
		return
	}
	fb.stencil[fb.index(x, y)].Store(uint32(s))
}

// Clear fills all three planes synchronously.
func (fb *Framebuffer) Clear(color uint32, depth float32, stencil uint8) {
	depthBits := math.Float32bits(depth)
	for i := range fb.color {
		fb.color[i].Store(color)
		fb.depth[i].Store(depthBits)
		fb.stencil[i].Store(uint32(stencil))
	}
}

// ClearAsync submits the clear as a Framebuffer-tagged scheduler task
// rather than performing it synchronously (spec.md §4.2: "clear may be
// requested synchronously or asynchronously via the scheduler"). fb is
// retained for the duration of the submitted task and released when it
// completes, so a caller may drop its own reference immediately after
// calling ClearAsync without the framebuffer being destroyed before the
// clear runs.
func (fb *Framebuffer) ClearAsync(s *scheduler.Scheduler, workerID int, color uint32, depth float32, stencil uint8) {
	fb.Retain()
	s.Submit(workerID, scheduler.Task{
		Stage: scheduler.Framebuffer,
		Fn: func() {
			defer fb.Release()
			fb.Clear(color, depth, stencil)
		},
	})
}

// ReadPixels copies the color plane of the rectangle [x,x+w)x[y,y+h) into
// dst as tightly packed RGBA8 bytes, row-major, top-to-bottom. dst must be
// at least w*h*4 bytes. Coordinates are clipped to the framebuffer bounds;
// the dst bytes of out-of-bounds rows/columns are left unchanged.
func (fb *Framebuffer) ReadPixels(x, y, w, h int, dst []byte) {
	need := w * h * 4
	if len(dst) < need {
		return
	}
	for row := 0; row < h; row++ {
		py := y + row
		for col := 0; col < w; col++ {
			px := x + col
			off := (row*w + col) * 4
			if !fb.inBounds(px, py) {
				continue
			}
			c := fb.color[fb.index(px, py)].Load()
			// Packed as 0xAARRGGBB; unpack to RGBA byte order.
			dst[off+0] = byte(c >> 16)
			dst[off+1] = byte(c >> 8)
			dst[off+2] = byte(c)
			dst[off+3] = byte(c >> 24)
		}
	}
}
