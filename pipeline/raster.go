package pipeline

import (
	"github.com/gogpu/microgles/scheduler"
)

// submitRaster enqueues job as a Raster-tagged scheduler task. s0..s2 are
// the triangle's already-computed screen-space vertices, passed along so
// the raster stage doesn't redo the clip-space -> screen transform.
func (p *Pipeline) submitRaster(workerID int, job *RasterJob, s0, s1, s2 screenVertex) {
	p.Sched.Submit(workerID, scheduler.Task{
		Stage: scheduler.Raster,
		Fn:    func() { p.runRaster(workerID, job, s0, s1, s2) },
	})
}

// runRaster implements the Raster stage (spec.md §4.7): compute the
// integer bounding box clipped to framebuffer bounds, stride it by the
// framebuffer's tile size, and submit one FragmentTileJob per
// intersected tile.
func (p *Pipeline) runRaster(workerID int, job *RasterJob, s0, s1, s2 screenVertex) {
	p.Plugins.Invoke(scheduler.Raster, job, helperFor(p, workerID))

	fb := job.FB
	minX, maxX := minOf3(s0.x, s1.x, s2.x), maxOf3(s0.x, s1.x, s2.x)
	minY, maxY := minOf3(s0.y, s1.y, s2.y), maxOf3(s0.y, s1.y, s2.y)

	x0, y0 := clampInt(floorf(minX), 0, fb.Width()), clampInt(floorf(minY), 0, fb.Height())
	x1, y1 := clampInt(ceilf(maxX), 0, fb.Width()), clampInt(ceilf(maxY), 0, fb.Height())

	if x0 >= x1 || y0 >= y1 {
		fb.Release()
		p.releaseRasterJob(job)
		return
	}

	tileSize := fb.TileSize()
	texID := job.Shading.TexEnv[0].BoundTexture
	var texVer uint32
	if tex := p.RC.Textures.Get(texID); tex != nil {
		texVer = tex.Version
	}

	for ty := y0 - y0%tileSize; ty < y1; ty += tileSize {
		rectY0, rectY1 := max(ty, y0), min2(ty+tileSize, y1)
		for tx := x0 - x0%tileSize; tx < x1; tx += tileSize {
			rectX0, rectX1 := max(tx, x0), min2(tx+tileSize, x1)

			tile := fb.TileAt(tx/tileSize, ty/tileSize)
			if tile == nil {
				continue
			}

			fb.Retain()
			frag := p.acquireFragmentTileJob()
			frag.FB = fb
			frag.Tile = tile
			frag.Rect = TileRect{X0: rectX0, Y0: rectY0, X1: rectX1, Y1: rectY1}
			frag.Color = job.Color
			frag.MinDepth = job.MinDepth
			frag.Shading = job.Shading
			frag.Sprite = job.Sprite
			frag.Bilinear = job.Bilinear
			frag.TextureID = texID
			frag.TextureVersion = texVer

			p.submitFragmentTile(workerID, frag)
		}
	}

	fb.Release()
	p.releaseRasterJob(job)
}

func minOf3(a, b, c float32) float32 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

func maxOf3(a, b, c float32) float32 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}

func floorf(v float32) int {
	i := int(v)
	if v < float32(i) {
		i--
	}
	return i
}

func ceilf(v float32) int {
	i := int(v)
	if v > float32(i) {
		i++
	}
	return i
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func min2(a, b int) int {
	if a < b {
		return a
	}
	return b
}
