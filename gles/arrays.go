package gles

import "github.com/gogpu/microgles/rcontext"

// ClientArrayKind enumerates EnableClientState/DisableClientState's target
// array (spec.md §4.4's four client arrays).
type ClientArrayKind uint8

const (
	VertexArray ClientArrayKind = iota
	ColorArray
	NormalArray
	TexCoordArray
)

func (c *Context) arrayFor(kind ClientArrayKind) *rcontext.ClientArray {
	switch kind {
	case ColorArray:
		return &c.RC.Arrays.Color
	case NormalArray:
		return &c.RC.Arrays.Normal
	case TexCoordArray:
		return &c.RC.Arrays.TexCoord
	default:
		return &c.RC.Arrays.Vertex
	}
}

// EnableClientState enables kind's client array.
func (c *Context) EnableClientState(kind ClientArrayKind) {
	a := c.arrayFor(kind)
	a.Enabled = true
	a.Touch()
}

// DisableClientState disables kind's client array.
func (c *Context) DisableClientState(kind ClientArrayKind) {
	a := c.arrayFor(kind)
	a.Enabled = false
	a.Touch()
}

// arrayPointer is the shared implementation behind VertexPointer/
// ColorPointer/NormalPointer/TexCoordPointer: every one of them resolves
// to the same ClientArray fields, differing only in which array and
// default component count the original API hard-codes (spec.md §4.9).
//
// When an ARRAY_BUFFER is currently bound, pointer is ignored and offset
// is recorded as a byte offset into that buffer instead (spec.md §4.9:
// "when an array buffer is bound, pointers are byte offsets into that
// buffer's storage"); otherwise pointer is the client-memory backing
// bytes and offset is ignored.
func (c *Context) arrayPointer(kind ClientArrayKind, size int, t rcontext.ArrayType, stride int, pointer []byte, offset int) {
	a := c.arrayFor(kind)
	a.Size = size
	a.Type = t
	a.Stride = stride
	a.BufferID = c.RC.BufferBinding.Array
	if a.BufferID != 0 {
		a.Pointer = nil
		a.Offset = offset
	} else {
		a.Pointer = pointer
		a.Offset = 0
	}
	a.Touch()
}

// VertexPointer describes the vertex position array (size is 2, 3 or 4
// components). offset is consulted only when an ARRAY_BUFFER is bound.
func (c *Context) VertexPointer(size int, t rcontext.ArrayType, stride int, pointer []byte, offset int) {
	c.arrayPointer(VertexArray, size, t, stride, pointer, offset)
}

// ColorPointer describes the per-vertex color array (size is 3 or 4).
func (c *Context) ColorPointer(size int, t rcontext.ArrayType, stride int, pointer []byte, offset int) {
	c.arrayPointer(ColorArray, size, t, stride, pointer, offset)
}

// NormalPointer describes the per-vertex normal array (always 3
// components; size is implied).
func (c *Context) NormalPointer(t rcontext.ArrayType, stride int, pointer []byte, offset int) {
	c.arrayPointer(NormalArray, 3, t, stride, pointer, offset)
}

// TexCoordPointer describes the per-vertex texture coordinate array for
// the unit selected by ClientActiveTexture (only unit 0 feeds sampling;
// see ClientActiveTexture's doc comment).
func (c *Context) TexCoordPointer(size int, t rcontext.ArrayType, stride int, pointer []byte, offset int) {
	if c.clientActiveTexture != 0 {
		return
	}
	c.arrayPointer(TexCoordArray, size, t, stride, pointer, offset)
}
