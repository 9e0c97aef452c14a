// Package pipeline implements the four pipeline stages (C7): vertex,
// primitive assembly/cull, raster, and fragment-tile. Each stage is a task
// function submitted to the scheduler with a stage tag; a stage's final
// action is submitting the next stage's task, which is what gives the
// pipeline its per-primitive ordering guarantee (spec.md §5).
//
// Grounded on gogpu-gg/internal/parallel/rasterizer.go's per-tile
// work-splitting shape (ParallelRasterizer.ExecuteAll closures submitted
// to the WorkerPool) for the Raster -> FragmentTile fan-out, and
// tile.go/tile_grid.go for tile-bucketing a triangle's bounding box.
// Shading math (Lambertian lighting, fog, texenv, alpha-test, blend) has
// no teacher analogue — gg is a 2D vector/text library with no lighting
// model — and is modeled directly on spec.md §4.7 and
// _examples/original_source/src/gl_api_lighting.c.
package pipeline

import (
	"github.com/gogpu/microgles/matrix"
	"github.com/gogpu/microgles/rcontext"
)

// Vertex is the per-vertex record the pipeline carries between stages:
// position (clip/object space depending on stage), normal, straight RGBA
// color, texcoord, and point size (spec.md §3).
type Vertex struct {
	Position  matrix.Vec4
	Normal    matrix.Vec3
	Color     [4]float32
	TexCoord  [4]float32
	PointSize float32
}

// Triangle is exactly three Vertex values, in winding order.
type Triangle [3]Vertex

// Fragment is one shaded pixel sample: integer position, packed
// 0xAARRGGBB color, and interpolated depth (spec.md §3).
type Fragment struct {
	X, Y  int
	Color uint32
	Depth float32
}

// ShadingState is a consistent, per-draw snapshot of every RenderContext
// group the fragment path consumes. It is captured once, in the vertex
// stage, and threaded unchanged through Primitive -> Raster -> every
// FragmentTileJob spawned for the triangle, so all of a triangle's
// fragment-tile jobs shade against one coherent state even if the API
// thread mutates RenderContext again before those jobs run (spec.md §4.4's
// snapshot discipline, applied at draw rather than per-pixel granularity).
type ShadingState struct {
	TexEnv    [rcontext.MaxTextureUnits]rcontext.TextureEnv
	Fog       rcontext.Fog
	AlphaTest rcontext.AlphaTest
	Blend     rcontext.Blend
	Depth     rcontext.Depth
	Masks     rcontext.WriteMask

	// PerspectiveCorrect carries the perspective-correction hint to the
	// fragment stage, which does not read it: UVs are framebuffer-space
	// for either value, and no barycentric interpolation path exists.
	PerspectiveCorrect bool
}

// snapshotShadingState captures every group ShadingState needs from rc in
// one pass, using the version-guarded Snapshot readers rcontext provides.
func snapshotShadingState(rc *rcontext.RenderContext, perspectiveCorrect bool) ShadingState {
	var s ShadingState
	for i := range s.TexEnv {
		s.TexEnv[i], _ = rc.TextureEnv[i].Snapshot()
	}
	s.Fog, _ = rc.Fog.Snapshot()
	s.AlphaTest, _ = rc.AlphaTest.Snapshot()
	s.Blend, _ = rc.Blend.Snapshot()
	s.Depth, _ = rc.Depth.Snapshot()
	s.Masks = rc.Masks
	s.PerspectiveCorrect = perspectiveCorrect
	return s
}
