package memtrack

import (
	"sync"
	"testing"
)

func TestAllocFreeBalancesToZero(t *testing.T) {
	tr := New(nil)

	h1 := tr.Alloc(128, StageVertex, "test", 1)
	h2 := tr.Alloc(256, StageRaster, "test", 2)
	if tr.Current() != 384 {
		t.Fatalf("current = %d, want 384", tr.Current())
	}

	tr.Free(h1)
	tr.Free(h2)

	if tr.Current() != 0 {
		t.Fatalf("current after free = %d, want 0", tr.Current())
	}
	if tr.Peak() != 384 {
		t.Fatalf("peak = %d, want 384", tr.Peak())
	}
	if leaks := tr.Shutdown(); len(leaks) != 0 {
		t.Fatalf("unexpected leaks: %v", leaks)
	}
}

func TestShutdownReportsLeak(t *testing.T) {
	tr := New(nil)
	tr.Alloc(64, StageFragment, "leaky", 7)

	leaks := tr.Shutdown()
	if len(leaks) != 1 {
		t.Fatalf("leaks = %d, want 1", len(leaks))
	}
	if leaks[0].Size != 64 || leaks[0].Stage != StageFragment {
		t.Fatalf("unexpected leak record: %+v", leaks[0])
	}
}

func TestFreeUnknownHandleIsNoop(t *testing.T) {
	tr := New(nil)
	tr.Free(0)
	tr.Free(Handle(999))
	if tr.Current() != 0 {
		t.Fatalf("current = %d, want 0", tr.Current())
	}
}

func TestNegativeSizePropagatesNullHandle(t *testing.T) {
	tr := New(nil)
	if h := tr.Alloc(-1, StageVertex, "test", 1); h != 0 {
		t.Fatalf("expected zero handle for negative size, got %d", h)
	}
}

func TestPerStageAccounting(t *testing.T) {
	tr := New(nil)
	tr.Alloc(10, StageVertex, "t", 0)
	tr.Alloc(20, StageVertex, "t", 0)
	tr.Alloc(5, StageRaster, "t", 0)

	if got := tr.StageCurrent(StageVertex); got != 30 {
		t.Fatalf("vertex current = %d, want 30", got)
	}
	if got := tr.StageCurrent(StageRaster); got != 5 {
		t.Fatalf("raster current = %d, want 5", got)
	}
}

func TestPoolAcquireReleaseExhaustion(t *testing.T) {
	type node struct{ v int }
	p := NewPool(2, StageVertex, 64, nil, func() *node { return &node{} })

	a := p.Acquire()
	b := p.Acquire()
	if a == nil || b == nil {
		t.Fatal("expected two non-nil acquires")
	}
	if c := p.Acquire(); c != nil {
		t.Fatal("expected exhaustion to return nil")
	}

	p.Release(a)
	if p.Available() != 1 {
		t.Fatalf("available = %d, want 1", p.Available())
	}
	if d := p.Acquire(); d != a {
		t.Fatal("expected released node to be re-acquired")
	}
}

func TestPoolReleaseBeyondCapacityIsDropped(t *testing.T) {
	type node struct{}
	p := NewPool(1, StageVertex, 8, nil, func() *node { return &node{} })

	a := p.Acquire()
	p.Release(a)
	p.Release(&node{}) // extra node beyond capacity
	if p.Available() != 1 {
		t.Fatalf("available = %d, want 1 (extra release must be dropped)", p.Available())
	}
}

func TestTrackerConcurrentAllocFree(t *testing.T) {
	tr := New(nil)
	const n = 200
	var wg sync.WaitGroup
	handles := make([]Handle, n)
	var mu sync.Mutex

	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			h := tr.Alloc(16, StageFragment, "concurrent", i)
			mu.Lock()
			handles[i] = h
			mu.Unlock()
		}(i)
	}
	wg.Wait()

	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			tr.Free(handles[i])
		}(i)
	}
	wg.Wait()

	if tr.Current() != 0 {
		t.Fatalf("current = %d, want 0 after concurrent drain", tr.Current())
	}
}
