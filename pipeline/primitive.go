package pipeline

import (
	"github.com/gogpu/microgles/glenum"
	"github.com/gogpu/microgles/scheduler"
)

// screenVertex is a vertex stage's clip-space output mapped to screen
// pixel coordinates plus resolved [near,far] depth, used only within the
// primitive/raster stages.
type screenVertex struct {
	x, y, z float32 // x,y in framebuffer pixel space; z in [0,1]
}

func (p *Pipeline) toScreen(v Vertex) screenVertex {
	vp := p.RC.Viewport
	w := v.Position[3]
	if w == 0 {
		w = 1
	}
	ndcX := v.Position[0] / w
	ndcY := v.Position[1] / w
	ndcZ := v.Position[2] / w

	return screenVertex{
		x: float32(vp.X) + (ndcX*0.5+0.5)*float32(vp.Width),
		y: float32(vp.Y) + (1-(ndcY*0.5+0.5))*float32(vp.Height),
		z: ndcZ*0.5 + 0.5,
	}
}

// submitPrimitive enqueues job as a Primitive-tagged scheduler task.
func (p *Pipeline) submitPrimitive(workerID int, job *PrimitiveJob) {
	p.Sched.Submit(workerID, scheduler.Task{
		Stage: scheduler.Primitive,
		Fn:    func() { p.runPrimitive(workerID, job) },
	})
}

// runPrimitive implements the Primitive stage (spec.md §4.7): compute the
// signed 2D screen-space edge area of (v0,v1,v2); if culling would
// discard the triangle, drop it and release the framebuffer reference
// (the stage chain bottoms out here for culled triangles). Otherwise
// acquire a RasterJob, copy the triangle/shading state, and submit it.
func (p *Pipeline) runPrimitive(workerID int, job *PrimitiveJob) {
	p.Plugins.Invoke(scheduler.Primitive, job, helperFor(p, workerID))

	s0 := p.toScreen(job.Triangle[0])
	s1 := p.toScreen(job.Triangle[1])
	s2 := p.toScreen(job.Triangle[2])

	area := (s1.x-s0.x)*(s2.y-s0.y) - (s2.x-s0.x)*(s1.y-s0.y)

	if p.cullTriangle(area) {
		job.FB.Release()
		return
	}

	minDepth := s0.z
	if s1.z < minDepth {
		minDepth = s1.z
	}
	if s2.z < minDepth {
		minDepth = s2.z
	}

	raster := p.acquireRasterJob()
	raster.Triangle = job.Triangle
	raster.FB = job.FB
	raster.Shading = job.Shading
	raster.Color = job.Triangle[0].Color
	raster.MinDepth = minDepth
	raster.Bilinear = job.Shading.TexEnv[0].MagFilter.IsLinear()

	p.submitRaster(workerID, raster, s0, s1, s2)
}

// cullTriangle applies spec.md §4.7's literal rule ("if <= 0, cull") when
// culling is enabled, honoring the configured winding convention; when
// culling is disabled every triangle passes regardless of area sign.
func (p *Pipeline) cullTriangle(area float32) bool {
	cull, _ := p.RC.Cull.Snapshot()
	if on, _ := cull.Enabled.Get(); !on {
		return false
	}
	// toScreen flips y (screen y grows downward), so a triangle wound
	// counter-clockwise in NDC has a negative area here and a clockwise
	// one a positive area. The CCW front-face convention flips the sign
	// so that front faces pass and back faces cull.
	if cull.Front == glenum.CCW {
		area = -area
	}
	return area <= 0
}
