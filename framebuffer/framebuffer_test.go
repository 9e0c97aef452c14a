package framebuffer

import (
	"sync"
	"testing"

	"github.com/gogpu/microgles/glenum"
	"github.com/gogpu/microgles/scheduler"
)

func TestOutOfBoundsPixelRejected(t *testing.T) {
	fb := New(8, 8, 4, glenum.ARGB8888)

	if fb.SetPixel(-1, 0, 0xFFFFFFFF, 0, glenum.Always) {
		t.Fatal("negative x accepted")
	}
	if fb.SetPixel(8, 0, 0xFFFFFFFF, 0, glenum.Always) {
		t.Fatal("x == width accepted")
	}
	if fb.SetPixel(0, 8, 0xFFFFFFFF, 0, glenum.Always) {
		t.Fatal("y == height accepted")
	}
	if !fb.SetPixel(7, 7, 0xFFFFFFFF, 0, glenum.Always) {
		t.Fatal("boundary pixel (width-1, height-1) rejected")
	}
}

func TestDepthLessPassesOnCloserFragment(t *testing.T) {
	fb := New(4, 4, 4, glenum.ARGB8888)
	fb.Clear(0, 1.0, 0)

	if !fb.SetPixel(0, 0, 0xAA, 0.4, glenum.Less) {
		t.Fatal("0.4 < 1.0 should pass")
	}
	if fb.Color(0, 0) != 0xAA {
		t.Fatalf("color = %x, want 0xAA", fb.Color(0, 0))
	}
	if fb.SetPixel(0, 0, 0xBB, 0.6, glenum.Less) {
		t.Fatal("0.6 < 0.4 is false, write should fail")
	}
	if fb.Color(0, 0) != 0xAA {
		t.Fatalf("color after failed depth test changed to %x", fb.Color(0, 0))
	}
}

func TestClearResetsAllPlanes(t *testing.T) {
	fb := New(2, 2, 4, glenum.ARGB8888)
	fb.SetPixel(0, 0, 0xFF, 0, glenum.Always)
	fb.SetStencil(0, 0, 5)

	fb.Clear(0x10203040, 0.75, 9)

	if fb.Color(0, 0) != 0x10203040 {
		t.Fatalf("color after clear = %x", fb.Color(0, 0))
	}
	if fb.Depth(0, 0) != 0.75 {
		t.Fatalf("depth after clear = %v", fb.Depth(0, 0))
	}
	if fb.Stencil(0, 0) != 9 {
		t.Fatalf("stencil after clear = %v", fb.Stencil(0, 0))
	}
}

func TestClearAsyncAppliesBeforeWaitReturns(t *testing.T) {
	sch := scheduler.New(2, false)
	defer sch.Close()

	fb := New(4, 4, 4, glenum.ARGB8888)
	fb.ClearAsync(sch, -1, 0xABCDEF01, 0.25, 3)
	sch.Wait()

	if fb.Color(0, 0) != 0xABCDEF01 {
		t.Fatalf("color after ClearAsync+Wait = %x", fb.Color(0, 0))
	}
	if fb.RefCount() != 1 {
		t.Fatalf("refcount after async clear completed = %d, want 1", fb.RefCount())
	}
}

func TestTilesInRectCoversExactGrid(t *testing.T) {
	fb := New(32, 16, 16, glenum.ARGB8888)
	if fb.TilesX() != 2 || fb.TilesY() != 1 {
		t.Fatalf("tile grid = %dx%d, want 2x1", fb.TilesX(), fb.TilesY())
	}

	tiles := fb.TilesInRect(0, 0, 32, 16)
	if len(tiles) != 2 {
		t.Fatalf("TilesInRect full extent = %d tiles, want 2", len(tiles))
	}

	tiles = fb.TilesInRect(20, 0, 4, 4)
	if len(tiles) != 1 || tiles[0] != fb.TileAt(1, 0) {
		t.Fatalf("TilesInRect(20,0,4,4) should hit only tile (1,0)")
	}
}

func TestEnterLeaveTileRoundTrips(t *testing.T) {
	fb := New(8, 8, 4, glenum.ARGB8888)
	fb.Clear(0, 1.0, 0)

	tile := fb.TileAt(0, 0)
	color, depth, stencil := fb.EnterTile(tile)
	for i := range color {
		color[i] = 0x42424242
		depth[i] = 0.1
		stencil[i] = 7
	}
	fb.LeaveTile(tile)

	if fb.Color(0, 0) != 0x42424242 {
		t.Fatalf("color after LeaveTile = %x", fb.Color(0, 0))
	}
	if fb.Depth(0, 0) != 0.1 {
		t.Fatalf("depth after LeaveTile = %v", fb.Depth(0, 0))
	}
	if fb.Stencil(0, 0) != 7 {
		t.Fatalf("stencil after LeaveTile = %v", fb.Stencil(0, 0))
	}
}

func TestConcurrentEnterTileIsSerialized(t *testing.T) {
	fb := New(4, 4, 4, glenum.ARGB8888)
	tile := fb.TileAt(0, 0)

	var wg sync.WaitGroup
	const iterations = 200
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				color, _, _ := fb.EnterTile(tile)
				color[0]++
				fb.LeaveTile(tile)
			}
		}()
	}
	wg.Wait()

	if fb.Color(0, 0) != 4*iterations {
		t.Fatalf("color(0,0) = %d, want %d (lost updates under contended tile access)", fb.Color(0, 0), 4*iterations)
	}
}

func TestRetainReleaseDefersDestruction(t *testing.T) {
	fb := New(2, 2, 2, glenum.ARGB8888)
	fb.Retain()
	if fb.RefCount() != 2 {
		t.Fatalf("refcount after Retain = %d, want 2", fb.RefCount())
	}
	fb.Release()
	if fb.RefCount() != 1 {
		t.Fatalf("refcount after one Release = %d, want 1", fb.RefCount())
	}
	if fb.Color(0, 0) != 0 {
		t.Fatal("framebuffer should still be usable while refcount > 0")
	}
	fb.Release()
	if fb.RefCount() != 0 {
		t.Fatalf("refcount after final Release = %d, want 0", fb.RefCount())
	}
}

func TestReadPixelsPacksRGBAInOrder(t *testing.T) {
	fb := New(2, 1, 2, glenum.ARGB8888)
	// 0xAARRGGBB
	fb.SetPixel(0, 0, 0xFF112233, 0, glenum.Always)
	fb.SetPixel(1, 0, 0x80405060, 0, glenum.Always)

	dst := make([]byte, 2*1*4)
	fb.ReadPixels(0, 0, 2, 1, dst)

	want := []byte{0x11, 0x22, 0x33, 0xFF, 0x40, 0x50, 0x60, 0x80}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("dst[%d] = %x, want %x", i, dst[i], want[i])
		}
	}
}
