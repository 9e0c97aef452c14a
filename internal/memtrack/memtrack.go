// Package memtrack implements the stage-tagged allocation ledger (C1):
// every live allocation the core makes through it is indexed by a logical
// handle under one mutex, with running current/peak totals overall and
// per pipeline stage. It also provides bounded, pre-populated object pools
// layered on top, used by the pipeline job pools.
//
// Go's garbage collector makes raw alloc/free interception impossible to
// do faithfully; memtrack instead tracks *logical* allocations (callers
// mint a size+stage+site and get back a handle to pair with a later
// Free), which is enough to reproduce the leak/peak accounting contract
// spec.md §4.1 and §8 describe ("total current memory after shutdown
// equals zero iff all live allocations are released").
package memtrack

import (
	"fmt"
	"log/slog"
	"sync"
)

// Stage tags an allocation or pool to one of the pipeline stages, matching
// the scheduler's stage tags (C6) plus Framebuffer for clear/present work.
type Stage int

const (
	StageVertex Stage = iota
	StagePrimitive
	StageRaster
	StageFragment
	StageFramebuffer
	StageCount
)

func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "Vertex"
	case StagePrimitive:
		return "Primitive"
	case StageRaster:
		return "Raster"
	case StageFragment:
		return "Fragment"
	case StageFramebuffer:
		return "Framebuffer"
	default:
		return "Unknown"
	}
}

// record describes one live logical allocation.
type record struct {
	size   int
	stage  Stage
	origin string
	line   int
}

// LeakReport describes one allocation still live at shutdown.
type LeakReport struct {
	Size   int
	Stage  Stage
	Origin string
	Line   int
}

// Tracker is the allocation ledger. The zero value is not usable; use New.
//
// Tracker is safe for concurrent use: every mutation is serialized by one
// mutex, matching spec.md §4.1's "growable dynamic array protected by one
// mutex" description.
type Tracker struct {
	mu     sync.Mutex
	live   map[uint64]record
	nextID uint64

	current int64
	peak    int64

	currentByStage [StageCount]int64
	peakByStage    [StageCount]int64

	logger *slog.Logger
}

// New creates an empty tracker. A nil logger falls back to slog.Default().
func New(logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		live:   make(map[uint64]record),
		logger: logger,
	}
}

// Handle identifies one logical allocation returned by Alloc. The zero
// Handle is never issued and is safe to treat as "no allocation" (the
// null-propagation failure mode spec.md §4.1 requires for a failed alloc).
type Handle uint64

// Alloc records a new allocation of size bytes tagged with stage and an
// origin site (file/function name and line, for leak reports). Returns the
// zero Handle if size is negative (the allocator-failure propagation path;
// memtrack never itself fails to "allocate" since it tracks, it doesn't
// back real memory).
func (t *Tracker) Alloc(size int, stage Stage, origin string, line int) Handle {
	if size < 0 {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	t.nextID++
	id := t.nextID
	t.live[id] = record{size: size, stage: stage, origin: origin, line: line}

	t.current += int64(size)
	if t.current > t.peak {
		t.peak = t.current
	}
	t.currentByStage[stage] += int64(size)
	if t.currentByStage[stage] > t.peakByStage[stage] {
		t.peakByStage[stage] = t.currentByStage[stage]
	}

	return Handle(id)
}

// Calloc is Alloc for a zero-initialized allocation of count*size bytes.
// Go slices are already zeroed on creation, so this differs from Alloc
// only in the size computation (count*size, with overflow treated as a
// failure per spec.md's "allocation size overflow" InvalidValue case).
func (t *Tracker) Calloc(count, size int, stage Stage, origin string, line int) Handle {
	if count < 0 || size < 0 {
		return 0
	}
	total := count * size
	if size != 0 && total/size != count {
		return 0 // overflow
	}
	return t.Alloc(total, stage, origin, line)
}

// Realloc updates the recorded size of an existing allocation, adjusting
// the running totals. Returns false if h is not a live handle.
func (t *Tracker) Realloc(h Handle, newSize int) bool {
	if newSize < 0 {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	r, ok := t.live[uint64(h)]
	if !ok {
		return false
	}
	delta := int64(newSize - r.size)
	t.current += delta
	if t.current > t.peak {
		t.peak = t.current
	}
	t.currentByStage[r.stage] += delta
	if t.currentByStage[r.stage] > t.peakByStage[r.stage] {
		t.peakByStage[r.stage] = t.currentByStage[r.stage]
	}
	r.size = newSize
	t.live[uint64(h)] = r
	return true
}

// Free releases a previously recorded allocation. Freeing an unknown or
// zero handle is a no-op, matching the "propagate null, do not record"
// failure mode for a previously-failed Alloc.
func (t *Tracker) Free(h Handle) {
	if h == 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	r, ok := t.live[uint64(h)]
	if !ok {
		return
	}
	delete(t.live, uint64(h))
	t.current -= int64(r.size)
	t.currentByStage[r.stage] -= int64(r.size)
}

// Current returns total current live bytes across all stages.
func (t *Tracker) Current() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// Peak returns the historical peak of total live bytes.
func (t *Tracker) Peak() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.peak
}

// StageCurrent returns current live bytes for one stage.
func (t *Tracker) StageCurrent(stage Stage) int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.currentByStage[stage]
}

// StagePeak returns the historical peak for one stage.
func (t *Tracker) StagePeak(stage Stage) int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.peakByStage[stage]
}

// Shutdown reports every still-live allocation as a leak (logged at warn
// level) and emits the final totals at info level. It returns the leak
// list so callers (e.g. a test-harness exit code per spec.md §6) can act
// on a non-empty result.
func (t *Tracker) Shutdown() []LeakReport {
	t.mu.Lock()
	defer t.mu.Unlock()

	leaks := make([]LeakReport, 0, len(t.live))
	for _, r := range t.live {
		leaks = append(leaks, LeakReport{Size: r.size, Stage: r.stage, Origin: r.origin, Line: r.line})
	}

	for _, l := range leaks {
		t.logger.Warn("memtrack: leaked allocation",
			slog.Int("size", l.Size),
			slog.String("stage", l.Stage.String()),
			slog.String("origin", fmt.Sprintf("%s:%d", l.Origin, l.Line)))
	}
	t.logger.Info("memtrack: shutdown totals",
		slog.Int64("current", t.current),
		slog.Int64("peak", t.peak),
		slog.Int("leaks", len(leaks)))

	return leaks
}
