package gles

import "github.com/gogpu/microgles/glenum"

// BufferTarget enumerates BindBuffer's two binding points.
type BufferTarget uint8

const (
	ArrayBuffer BufferTarget = iota
	ElementArrayBuffer
)

// GenBuffers allocates n buffer ids.
func (c *Context) GenBuffers(n int) []uint32 {
	return c.RC.Buffers.Gen(n)
}

// DeleteBuffers frees the given buffer ids, unbinding them first if bound.
func (c *Context) DeleteBuffers(ids []uint32) {
	for _, id := range ids {
		if c.RC.BufferBinding.Array == id {
			c.RC.BufferBinding.Array = 0
		}
		if c.RC.BufferBinding.ElementArray == id {
			c.RC.BufferBinding.ElementArray = 0
		}
		c.RC.Buffers.Delete(id)
	}
}

// BindBuffer records id as target's bound buffer (0 unbinds).
func (c *Context) BindBuffer(target BufferTarget, id uint32) {
	switch target {
	case ArrayBuffer:
		c.RC.BufferBinding.Array = id
	case ElementArrayBuffer:
		c.RC.BufferBinding.ElementArray = id
	}
}

// BufferData replaces the entire backing store of the buffer bound to
// target.
func (c *Context) BufferData(target BufferTarget, data []byte) {
	id := c.bufferID(target)
	if id == 0 {
		c.RC.SetError(apiWorker, glenum.InvalidOperation)
		return
	}
	c.RC.Buffers.Data(id, data)
}

// BufferSubData overwrites a byte range of the buffer bound to target.
func (c *Context) BufferSubData(target BufferTarget, offset int, data []byte) {
	id := c.bufferID(target)
	if id == 0 {
		c.RC.SetError(apiWorker, glenum.InvalidOperation)
		return
	}
	c.RC.Buffers.SubData(id, offset, data)
}

func (c *Context) bufferID(target BufferTarget) uint32 {
	if target == ElementArrayBuffer {
		return c.RC.BufferBinding.ElementArray
	}
	return c.RC.BufferBinding.Array
}
