package pipeline

import (
	"github.com/gogpu/microgles/framebuffer"
	"github.com/gogpu/microgles/internal/memtrack"
	"github.com/gogpu/microgles/matrix"
	"github.com/gogpu/microgles/plugin"
	"github.com/gogpu/microgles/rcontext"
	"github.com/gogpu/microgles/scheduler"
	"github.com/gogpu/microgles/texcache"
)

// poolCapacity is the fixed capacity for the VertexJob/RasterJob/
// FragmentTileJob pools (spec.md §4.1: "Dedicated pools exist for
// VertexJob, RasterJob, FragmentTileJob with capacity 512 each").
const poolCapacity = 512

// jobByteSize is the logical per-item size memtrack accounts pool
// preallocation against, matching spec.md §3's "256-byte aligned work
// items" description (used for bookkeeping only; Go does not let callers
// force struct alignment/padding).
const jobByteSize = 256

// VertexJob carries the three object-space input vertices a draw call
// gathered plus a retained framebuffer reference (spec.md §3: "each job
// owns exactly one lifecycle: allocated from its stage pool, submitted
// once, freed by the worker that executes it").
type VertexJob struct {
	Input Triangle
	FB    *framebuffer.Framebuffer
}

// PrimitiveJob carries the three vertex-stage-transformed vertices.
type PrimitiveJob struct {
	Triangle Triangle
	FB       *framebuffer.Framebuffer
	Shading  ShadingState
}

// RasterJob carries a culled, screen-space triangle ready for tile
// bucketing.
type RasterJob struct {
	Triangle Triangle
	FB       *framebuffer.Framebuffer
	Shading  ShadingState
	// Color is the single flat color used for the core's non-interpolated
	// fill (spec.md §4.7 Raster: "a single color (from v0 in the core;
	// interpolation is a refinement knob)").
	Color [4]float32
	// MinDepth is the triangle's minimum NDC-mapped depth across its
	// three vertices.
	MinDepth float32
	// Sprite, when true, selects the sprite-mode UV centering of spec.md
	// §4.7 step 1 instead of the triangle framebuffer-space mapping.
	Sprite bool
	// Bilinear propagates the effective magnification filter so the
	// fragment stage need not re-derive it from ShadingState.
	Bilinear bool
}

// FragmentTileJob is the unit of parallelism for the fragment stage: one
// job covers one tile-aligned rectangle of one triangle.
type FragmentTileJob struct {
	FB       *framebuffer.Framebuffer
	Tile     *framebuffer.Tile
	Rect     TileRect
	Color    [4]float32
	MinDepth float32
	Shading  ShadingState
	Sprite   bool
	Bilinear bool

	// TextureID/TextureVersion identify the texture bound to unit 0 at
	// Raster-snapshot time; 0 means unbound. The fragment stage's texture
	// cache keys every block lookup on this pair rather than the texture
	// table's live version, so a tex_sub_image_2d that lands mid-tile
	// doesn't shift the cache key out from under fragments already
	// shading against this job's snapshot. Carrying the id+version rather
	// than a raw pointer matches spec.md §9's design note ("the texture
	// identity in cache entries must be a stable id plus the version, not
	// a raw pointer").
	TextureID      uint32
	TextureVersion uint32
}

// TileRect is the pixel rectangle a FragmentTileJob shades, clipped to
// both the triangle's bounding box and the owning tile's bounds.
type TileRect struct {
	X0, Y0, X1, Y1 int // half-open: [X0,X1) x [Y0,Y1)
}

// Pipeline ties the four stages together with the pools, worker-local
// texture caches, plugin hooks, and scheduler the stages need to run.
//
// Pipeline is created once per gles.Context and is safe for concurrent
// use by every scheduler worker: the only mutable shared state it exposes
// (the job pools) is itself internally synchronized.
type Pipeline struct {
	RC      *rcontext.RenderContext
	Sched   *scheduler.Scheduler
	Plugins *plugin.Registry
	Tracker *memtrack.Tracker

	vertexPool *memtrack.Pool[VertexJob]
	rasterPool *memtrack.Pool[RasterJob]
	fragPool   *memtrack.Pool[FragmentTileJob]

	texCaches []*texcache.Cache // one per scheduler worker, thread-local

	mvp []mvpCache // one per scheduler worker, thread-local mvp memo

	// PerspectiveCorrect is the module-wide default for ShadingState's
	// toggle (§9 Open Question 1); draws may be extended to override it
	// per-call in a refinement.
	PerspectiveCorrect bool
}

// mvpCache memoizes the combined projection*modelview matrix for one
// worker so unrelated vertex jobs don't recompute it when neither
// matrix's version has changed (spec.md §4.7 Vertex: "Snapshot projection
// and modelview versions; if either changed, recompute mvp").
type mvpCache struct {
	mvp                       matrix.Mat4
	modelviewVer, projVer     uint32
	valid                     bool
}

// New creates a Pipeline wired to rc/sched/plugins/tracker, with one
// texture cache and mvp memo slot per scheduler worker.
func New(rc *rcontext.RenderContext, sched *scheduler.Scheduler, plugins *plugin.Registry, tracker *memtrack.Tracker) *Pipeline {
	workers := sched.Workers()
	p := &Pipeline{
		RC:        rc,
		Sched:     sched,
		Plugins:   plugins,
		Tracker:   tracker,
		texCaches: make([]*texcache.Cache, workers),
		mvp:       make([]mvpCache, workers),
	}
	for i := range p.texCaches {
		p.texCaches[i] = texcache.New()
	}
	p.vertexPool = memtrack.NewPool(poolCapacity, memtrack.StageVertex, jobByteSize, tracker, func() *VertexJob { return &VertexJob{} })
	p.rasterPool = memtrack.NewPool(poolCapacity, memtrack.StageRaster, jobByteSize, tracker, func() *RasterJob { return &RasterJob{} })
	p.fragPool = memtrack.NewPool(poolCapacity, memtrack.StageFragment, jobByteSize, tracker, func() *FragmentTileJob { return &FragmentTileJob{} })
	return p
}

// workerSlot clamps a caller-identified worker id into this pipeline's
// per-worker slice bounds, falling back to slot 0 for the API thread
// (negative id), matching the scheduler's own workerID convention.
func (p *Pipeline) workerSlot(workerID int) int {
	if workerID < 0 || workerID >= len(p.texCaches) {
		return 0
	}
	return workerID
}

// AcquireVertexJob pops a VertexJob from the pool, falling back to a
// fresh heap allocation on exhaustion (spec.md §4.1: "pool exhaustion
// returns null; caller falls back to direct alloc or drops the job" — the
// vertex stage is cheap enough that falling back, rather than dropping,
// is the better default for a draw call already committed to running).
func (p *Pipeline) AcquireVertexJob() *VertexJob {
	if j := p.vertexPool.Acquire(); j != nil {
		return j
	}
	return &VertexJob{}
}

func (p *Pipeline) releaseVertexJob(j *VertexJob) {
	*j = VertexJob{}
	p.vertexPool.Release(j)
}

func (p *Pipeline) acquireRasterJob() *RasterJob {
	if j := p.rasterPool.Acquire(); j != nil {
		return j
	}
	return &RasterJob{}
}

func (p *Pipeline) releaseRasterJob(j *RasterJob) {
	*j = RasterJob{}
	p.rasterPool.Release(j)
}

func (p *Pipeline) acquireFragmentTileJob() *FragmentTileJob {
	if j := p.fragPool.Acquire(); j != nil {
		return j
	}
	return &FragmentTileJob{}
}

func (p *Pipeline) releaseFragmentTileJob(j *FragmentTileJob) {
	*j = FragmentTileJob{}
	p.fragPool.Release(j)
}

// SubmitVertex enqueues job as a Vertex-tagged scheduler task. job.FB must
// already be Retain'd by the caller; ownership of that reference transfers
// to the job, which releases it once the stage chain bottoms out.
func (p *Pipeline) SubmitVertex(workerID int, job *VertexJob) {
	p.Sched.Submit(workerID, scheduler.Task{
		Stage: scheduler.Vertex,
		Fn:    func() { p.runVertex(workerID, job) },
	})
}
