package draw

import (
	"math"
	"testing"

	"github.com/gogpu/microgles/framebuffer"
	"github.com/gogpu/microgles/glenum"
	"github.com/gogpu/microgles/pipeline"
	"github.com/gogpu/microgles/plugin"
	"github.com/gogpu/microgles/rcontext"
	"github.com/gogpu/microgles/scheduler"
)

func newTestFrontEnd(t *testing.T) (*FrontEnd, *scheduler.Scheduler, *framebuffer.Framebuffer) {
	t.Helper()
	rc := rcontext.New(2)
	rc.Viewport = rcontext.Viewport{Width: 8, Height: 8}
	sched := scheduler.New(2, false)
	p := pipeline.New(rc, sched, plugin.New(), nil)
	fb := framebuffer.New(8, 8, 0, glenum.ARGB8888)
	return New(rc, p, fb), sched, fb
}

func TestDrawArraysZeroCountIsNoop(t *testing.T) {
	d, sched, _ := newTestFrontEnd(t)
	defer sched.Close()
	d.RC.Arrays.Vertex.Enabled = true

	d.DrawArrays(0, glenum.Triangles, 0, 0)
	sched.Wait()

	if got := d.RC.GetError(0); got != glenum.NoError {
		t.Fatalf("GetError = %v, want NoError", got)
	}
}

func TestDrawArraysWithoutVertexArrayRecordsInvalidOperation(t *testing.T) {
	d, sched, _ := newTestFrontEnd(t)
	defer sched.Close()

	d.DrawArrays(0, glenum.Triangles, 0, 3)

	if got := d.RC.GetError(0); got != glenum.InvalidOperation {
		t.Fatalf("GetError = %v, want InvalidOperation", got)
	}
}

func TestDrawArraysInvalidModeRecordsInvalidEnum(t *testing.T) {
	d, sched, _ := newTestFrontEnd(t)
	defer sched.Close()
	d.RC.Arrays.Vertex.Enabled = true

	d.DrawArrays(0, glenum.PrimitiveMode(255), 0, 3)

	if got := d.RC.GetError(0); got != glenum.InvalidEnum {
		t.Fatalf("GetError = %v, want InvalidEnum", got)
	}
}

func TestDrawArraysSubmitsTriangleAndFills(t *testing.T) {
	d, sched, fb := newTestFrontEnd(t)
	defer sched.Close()

	positions := []byte{}
	appendF32 := func(v float32) {
		bits := float32bits(v)
		positions = append(positions, byte(bits), byte(bits>>8), byte(bits>>16), byte(bits>>24))
	}
	// Triangle covering (0,0)-(7,0)-(0,7) in clip space already (identity
	// mvp/viewport maps [-1,1] NDC to [0,8) pixel space; use NDC coords
	// directly since modelview/projection default to identity).
	verts := [][2]float32{{-1, 1}, {1, 1}, {-1, -1}}
	for _, v := range verts {
		appendF32(v[0])
		appendF32(v[1])
		appendF32(0)
		appendF32(1)
	}

	d.RC.Arrays.Vertex = rcontext.ClientArray{Enabled: true, Pointer: positions, Size: 4, Type: rcontext.Float32Type}
	d.CurrentColor = [4]float32{1, 0, 0, 1}

	d.DrawArrays(0, glenum.Triangles, 0, 3)
	sched.Wait()

	c := fb.Color(0, 0)
	if c>>16&0xFF != 255 {
		t.Fatalf("pixel (0,0) red channel = %d, want 255 (color=%#x)", c>>16&0xFF, c)
	}
}

func float32bits(f float32) uint32 {
	return math.Float32bits(f)
}
