// Package draw implements the draw front-end (C9): translates
// DrawArrays/DrawElements calls into per-triangle VertexJobs, resolving
// array/buffer bindings and filling missing vertex components with their
// GL ES 1.1 defaults.
//
// Grounded on spec.md §4.9 and
// _examples/original_source/src/gl_api_draw.c /
// src/gl_api_vertex_array.c for the stride/default-component rules; no
// teacher (gogpu/gg) analogue exists since gg's 2D API takes explicit
// path/point arguments rather than bound client arrays.
package draw

import (
	"math"

	"github.com/gogpu/microgles/framebuffer"
	"github.com/gogpu/microgles/glenum"
	"github.com/gogpu/microgles/pipeline"
	"github.com/gogpu/microgles/rcontext"
)

// FrontEnd drives pipeline vertex-job submission from draw calls.
type FrontEnd struct {
	RC        *rcontext.RenderContext
	Pipeline  *pipeline.Pipeline
	DefaultFB *framebuffer.Framebuffer
	BoundFB   *framebuffer.Framebuffer // nil selects DefaultFB

	// CurrentNormal/CurrentColor/CurrentTexCoord are the context's
	// "current" vertex attribute values (set by Normal3/Color4/
	// MultiTexCoord4) used whenever the corresponding array is disabled.
	CurrentNormal   [3]float32
	CurrentColor    [4]float32
	CurrentTexCoord [4]float32
	CurrentPointSize float32
}

// New creates a FrontEnd bound to rc/p, with defaultFB as the
// zero-binding fallback target (spec.md §4.9: "selects the bound
// framebuffer, falling back to the default").
func New(rc *rcontext.RenderContext, p *pipeline.Pipeline, defaultFB *framebuffer.Framebuffer) *FrontEnd {
	return &FrontEnd{
		RC:               rc,
		Pipeline:         p,
		DefaultFB:        defaultFB,
		CurrentColor:     [4]float32{1, 1, 1, 1},
		CurrentTexCoord:  [4]float32{0, 0, 0, 1},
		CurrentPointSize: 1,
	}
}

func (d *FrontEnd) activeFB() *framebuffer.Framebuffer {
	if d.BoundFB != nil {
		return d.BoundFB
	}
	return d.DefaultFB
}

func validMode(m glenum.PrimitiveMode) bool {
	return m <= glenum.TriangleFan
}

// DrawArrays implements spec.md §4.9's draw_arrays. The core expands
// only the Triangles case into vertex jobs; other valid primitive modes
// are accepted (no error) but produce no jobs, per spec.md's "core ships
// the Triangles case; strips/fans are a straightforward refinement."
func (d *FrontEnd) DrawArrays(workerID int, mode glenum.PrimitiveMode, first, count int) {
	if !validMode(mode) {
		d.RC.SetError(workerID, glenum.InvalidEnum)
		return
	}
	if count == 0 {
		return // spec.md §8: "draw_arrays(Triangles, 0, 0) is a no-op with no error"
	}
	if count < 0 || first < 0 {
		d.RC.SetError(workerID, glenum.InvalidValue)
		return
	}
	if !d.RC.Arrays.Vertex.Enabled {
		d.RC.SetError(workerID, glenum.InvalidOperation)
		return
	}
	fb := d.activeFB()
	if fb == nil {
		d.RC.SetError(workerID, glenum.InvalidOperation)
		return
	}
	if mode != glenum.Triangles {
		return
	}

	for i := first; i+2 < first+count; i += 3 {
		d.submitTriangle(workerID, fb, i, i+1, i+2)
	}
}

// DrawElements implements spec.md §4.9's draw_elements: resolves the
// element buffer binding identically to array buffers, then expands into
// draw_arrays-shaped triangles using the resolved index list rather than
// a sequential range.
func (d *FrontEnd) DrawElements(workerID int, mode glenum.PrimitiveMode, count int, indexType rcontext.ArrayType, indices []byte) {
	if !validMode(mode) {
		d.RC.SetError(workerID, glenum.InvalidEnum)
		return
	}
	if count == 0 {
		return
	}
	if count < 0 {
		d.RC.SetError(workerID, glenum.InvalidValue)
		return
	}
	if !d.RC.Arrays.Vertex.Enabled {
		d.RC.SetError(workerID, glenum.InvalidOperation)
		return
	}
	fb := d.activeFB()
	if fb == nil {
		d.RC.SetError(workerID, glenum.InvalidOperation)
		return
	}
	if mode != glenum.Triangles {
		return
	}

	src := indices
	if eb := d.RC.BufferBinding.ElementArray; eb != 0 {
		if buf := d.RC.Buffers.Get(eb); buf != nil {
			src = buf.Data
		} else {
			src = nil
		}
	}

	idx := make([]int, count)
	for i := 0; i < count; i++ {
		idx[i] = readIndex(src, indexType, i)
	}

	for i := 0; i+2 < count; i += 3 {
		d.submitTriangle(workerID, fb, idx[i], idx[i+1], idx[i+2])
	}
}

func readIndex(data []byte, t rcontext.ArrayType, i int) int {
	switch t {
	case rcontext.UByteType:
		if i >= len(data) {
			return 0
		}
		return int(data[i])
	default: // ShortType: 16-bit unsigned index per GL ES 1.1
		off := i * 2
		if off+2 > len(data) {
			return 0
		}
		return int(data[off]) | int(data[off+1])<<8
	}
}

func (d *FrontEnd) submitTriangle(workerID int, fb *framebuffer.Framebuffer, i0, i1, i2 int) {
	tri := pipeline.Triangle{
		d.gatherVertex(i0),
		d.gatherVertex(i1),
		d.gatherVertex(i2),
	}
	fb.Retain()
	job := d.Pipeline.AcquireVertexJob()
	job.Input = tri
	job.FB = fb
	d.Pipeline.SubmitVertex(workerID, job)
}

// gatherVertex assembles one Vertex from the bound client arrays at
// index i, filling missing components with spec.md §4.9's defaults.
func (d *FrontEnd) gatherVertex(i int) pipeline.Vertex {
	v := pipeline.Vertex{
		Position:  [4]float32{0, 0, 0, 1},
		PointSize: d.CurrentPointSize,
	}

	if pos, ok := d.readArray(&d.RC.Arrays.Vertex, i, 4); ok {
		v.Position = [4]float32{pos[0], pos[1], pos[2], pos[3]}
		if d.RC.Arrays.Vertex.Size < 4 {
			v.Position[3] = 1
		}
		if d.RC.Arrays.Vertex.Size < 3 {
			v.Position[2] = 0
		}
	}

	if n, ok := d.readArray(&d.RC.Arrays.Normal, i, 3); ok {
		v.Normal = [3]float32{n[0], n[1], n[2]}
	} else {
		v.Normal = d.CurrentNormal
	}

	if c, ok := d.readArray(&d.RC.Arrays.Color, i, 4); ok {
		v.Color = [4]float32{c[0], c[1], c[2], c[3]}
		if d.RC.Arrays.Color.Size == 3 {
			v.Color[3] = 1
		}
	} else {
		v.Color = d.CurrentColor
	}

	if tc, ok := d.readArray(&d.RC.Arrays.TexCoord, i, 4); ok {
		v.TexCoord = [4]float32{tc[0], tc[1], tc[2], tc[3]}
		if d.RC.Arrays.TexCoord.Size < 4 {
			v.TexCoord[3] = 1
		}
		if d.RC.Arrays.TexCoord.Size < 3 {
			v.TexCoord[2] = 0
		}
	} else {
		v.TexCoord = d.CurrentTexCoord
	}

	return v
}

// readArray decodes up to maxComponents of array a's vertex i into out,
// returning ok=false if a is disabled. Components beyond a.Size are left
// at zero in out; the caller applies its own per-attribute default
// padding (alpha=1, w=1, r=0 for texcoord, etc.).
func (d *FrontEnd) readArray(a *rcontext.ClientArray, i, maxComponents int) (out [4]float32, ok bool) {
	if !a.Enabled {
		return out, false
	}
	bytes := d.arrayBytes(a)
	if bytes == nil {
		return out, false
	}

	compSize := componentSize(a.Type)
	stride := a.Stride
	if stride == 0 {
		stride = a.Size * compSize
	}
	base := i * stride

	n := a.Size
	if n > maxComponents {
		n = maxComponents
	}
	for c := 0; c < n; c++ {
		off := base + c*compSize
		out[c] = readComponent(bytes, a.Type, off)
	}
	return out, true
}

// arrayBytes resolves a's backing storage: client memory directly, or a
// byte offset into the bound array buffer (spec.md §4.9).
func (d *FrontEnd) arrayBytes(a *rcontext.ClientArray) []byte {
	if a.BufferID == 0 {
		return a.Pointer
	}
	buf := d.RC.Buffers.Get(a.BufferID)
	if buf == nil || a.Offset < 0 || a.Offset >= len(buf.Data) {
		return nil
	}
	return buf.Data[a.Offset:]
}

func componentSize(t rcontext.ArrayType) int {
	switch t {
	case rcontext.UByteType:
		return 1
	case rcontext.ShortType:
		return 2
	default: // Float32Type, FixedType
		return 4
	}
}

func readComponent(b []byte, t rcontext.ArrayType, off int) float32 {
	switch t {
	case rcontext.UByteType:
		if off >= len(b) {
			return 0
		}
		return float32(b[off]) / 255
	case rcontext.ShortType:
		if off+2 > len(b) {
			return 0
		}
		v := int16(uint16(b[off]) | uint16(b[off+1])<<8)
		return float32(v)
	case rcontext.FixedType:
		if off+4 > len(b) {
			return 0
		}
		bits := uint32(b[off]) | uint32(b[off+1])<<8 | uint32(b[off+2])<<16 | uint32(b[off+3])<<24
		return float32(int32(bits)) / 65536
	default: // Float32Type
		if off+4 > len(b) {
			return 0
		}
		bits := uint32(b[off]) | uint32(b[off+1])<<8 | uint32(b[off+2])<<16 | uint32(b[off+3])<<24
		return math.Float32frombits(bits)
	}
}
