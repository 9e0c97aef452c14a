package gles

import (
	"github.com/gogpu/microgles/framebuffer"
	"github.com/gogpu/microgles/glenum"
	"github.com/gogpu/microgles/rcontext"
	"github.com/gogpu/microgles/scheduler"
)

// DrawArrays records a draw_arrays call into the command ring (spec.md
// §4.5): the per-triangle vertex-job expansion itself runs on a scheduler
// worker once the ring is flushed, rather than blocking the calling
// (API) thread.
func (c *Context) DrawArrays(mode glenum.PrimitiveMode, first, count int) {
	c.ring.Record(c.Sched, apiWorker, scheduler.Task{
		Stage: scheduler.Vertex,
		Fn:    func() { c.Draw.DrawArrays(apiWorker, mode, first, count) },
	})
}

// DrawElements records a draw_elements call into the command ring.
// indices is captured by reference: the caller must not mutate it before
// the ring is flushed (spec.md §4.9 does not require a defensive copy,
// matching the teacher corpus's "caller owns its buffers until the call
// returns" convention).
func (c *Context) DrawElements(mode glenum.PrimitiveMode, count int, indexType rcontext.ArrayType, indices []byte) {
	c.ring.Record(c.Sched, apiWorker, scheduler.Task{
		Stage: scheduler.Vertex,
		Fn:    func() { c.Draw.DrawElements(apiWorker, mode, count, indexType, indices) },
	})
}

// ClearColorf sets the color used by Clear's color-plane fill.
func (c *Context) ClearColorf(r, g, b, a float32) {
	c.RC.ClearColor = rcontext.Color{R: r, G: g, B: b, A: a}
}

// ClearDepthf sets the depth value used by Clear's depth-plane fill.
func (c *Context) ClearDepthf(depth float32) {
	c.RC.ClearDepth = depth
}

// ClearStencil sets the stencil value used by Clear's stencil-plane fill.
func (c *Context) ClearStencil(s uint32) {
	c.RC.ClearStencil = s
}

// Clear fills the bound framebuffer's planes from the current clear
// color/depth/stencil, recorded through the command ring like any other
// deferred GPU work (spec.md §4.2: "clear may be requested synchronously
// or asynchronously via the scheduler").
func (c *Context) Clear() {
	fb := c.activeFB()
	color := packClearColor(c.RC.ClearColor)
	depth := c.RC.ClearDepth
	stencil := uint8(c.RC.ClearStencil)
	c.ring.Record(c.Sched, apiWorker, scheduler.Task{
		Stage: scheduler.Framebuffer,
		Fn:    func() { fb.ClearAsync(c.Sched, apiWorker, color, depth, stencil) },
	})
}

func (c *Context) activeFB() *framebuffer.Framebuffer {
	if c.Draw.BoundFB != nil {
		return c.Draw.BoundFB
	}
	return c.defaultFB
}

func packClearColor(col rcontext.Color) uint32 {
	r := clampByte(col.R)
	g := clampByte(col.G)
	b := clampByte(col.B)
	a := clampByte(col.A)
	return uint32(a)<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

func clampByte(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v * 255)
}

// ReadPixels copies the color plane of [x,x+w)x[y,y+h) from the bound
// framebuffer into dst as tightly packed RGBA8. Finish is implied first so
// the read observes every draw/clear recorded before it (spec.md §7:
// "shutdown waits for all in-flight work").
func (c *Context) ReadPixels(x, y, w, h int, dst []byte) {
	c.Finish()
	c.activeFB().ReadPixels(x, y, w, h, dst)
}

// Flush drains the command ring, submitting every recorded task to the
// scheduler, without waiting for them to complete (spec.md §6: "Finish/
// Flush").
func (c *Context) Flush() {
	c.ring.Flush(c.Sched, apiWorker)
}

// Finish flushes the command ring and blocks until every submitted task
// (including the work it recursively submits) has completed.
func (c *Context) Finish() {
	c.Flush()
	c.Sched.Wait()
}
