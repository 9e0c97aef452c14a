package gles

import (
	"math"
	"testing"

	"github.com/gogpu/microgles/glenum"
	"github.com/gogpu/microgles/rcontext"
)

func newTestContext(t *testing.T) *Context {
	t.Helper()
	ctx, err := NewContext(8, 8, WithThreads(2))
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	t.Cleanup(ctx.Destroy)
	return ctx
}

func TestNewContextRejectsNonPositiveDimensions(t *testing.T) {
	if _, err := NewContext(0, 8); err != ErrInvalidDimensions {
		t.Fatalf("err = %v, want ErrInvalidDimensions", err)
	}
	if _, err := NewContext(8, -1); err != ErrInvalidDimensions {
		t.Fatalf("err = %v, want ErrInvalidDimensions", err)
	}
}

func TestNewContextRejectsNegativeThreads(t *testing.T) {
	if _, err := NewContext(8, 8, WithThreads(-1)); err != ErrInvalidThreadCount {
		t.Fatalf("err = %v, want ErrInvalidThreadCount", err)
	}
}

func TestEnableDisableIsEnabledRoundTrips(t *testing.T) {
	ctx := newTestContext(t)

	if ctx.IsEnabled(CapBlend) {
		t.Fatal("Blend should start disabled")
	}
	ctx.Enable(CapBlend)
	if !ctx.IsEnabled(CapBlend) {
		t.Fatal("Blend should be enabled after Enable")
	}
	ctx.Disable(CapBlend)
	if ctx.IsEnabled(CapBlend) {
		t.Fatal("Blend should be disabled after Disable")
	}
}

func TestMatrixStackPushPopRestoresMatrix(t *testing.T) {
	ctx := newTestContext(t)

	ctx.MatrixMode(glenum.ModelviewMode)
	ctx.LoadIdentity()
	before := ctx.RC.Modelview.Stack.Top()

	ctx.PushMatrix()
	ctx.Translate(1, 2, 3)
	ctx.PopMatrix()

	after := ctx.RC.Modelview.Stack.Top()
	if before != after {
		t.Fatalf("matrix after push/translate/pop = %v, want %v", after, before)
	}
}

func TestPushMatrixOverflowRecordsStackOverflow(t *testing.T) {
	ctx := newTestContext(t)
	ctx.MatrixMode(glenum.ProjectionMode) // depth 2: two pushes succeed, the third overflows

	ctx.PushMatrix()
	ctx.PushMatrix()
	if got := ctx.GetError(-1); got != glenum.NoError {
		t.Fatalf("first two pushes GetError = %v, want NoError", got)
	}
	ctx.PushMatrix()
	if got := ctx.GetError(-1); got != glenum.StackOverflow {
		t.Fatalf("third push GetError = %v, want StackOverflow", got)
	}
}

func TestPopMatrixUnderflowRecordsStackUnderflow(t *testing.T) {
	ctx := newTestContext(t)
	ctx.PopMatrix()
	if got := ctx.GetError(-1); got != glenum.StackUnderflow {
		t.Fatalf("GetError = %v, want StackUnderflow", got)
	}
}

func TestClearFillsFramebuffer(t *testing.T) {
	ctx := newTestContext(t)
	ctx.ClearColorf(0, 1, 0, 1)
	ctx.Clear()
	ctx.Finish()

	pixels := make([]byte, 8*8*4)
	ctx.ReadPixels(0, 0, 8, 8, pixels)
	if pixels[0] != 0 || pixels[1] != 255 || pixels[2] != 0 {
		t.Fatalf("pixel(0,0) = %v, want green", pixels[0:4])
	}
}

func TestDrawArraysFlowsThroughCommandRing(t *testing.T) {
	ctx := newTestContext(t)
	ctx.ClearColorf(0, 0, 0, 1)
	ctx.Clear()

	ctx.Color4(1, 0, 0, 1)
	ctx.EnableClientState(VertexArray)

	var positions []byte
	for _, v := range [][2]float32{{-1, 1}, {1, 1}, {-1, -1}} {
		positions = appendFloat32(positions, v[0], v[1], 0, 1)
	}
	ctx.VertexPointer(4, rcontext.Float32Type, 0, positions, 0)

	ctx.DrawArrays(glenum.Triangles, 0, 3)
	ctx.Finish()

	pixels := make([]byte, 8*8*4)
	ctx.ReadPixels(0, 0, 8, 8, pixels)
	if pixels[0] != 255 {
		t.Fatalf("pixel(0,0) red = %d, want 255", pixels[0])
	}
}

func appendFloat32(dst []byte, vs ...float32) []byte {
	for _, v := range vs {
		bits := math.Float32bits(v)
		dst = append(dst, byte(bits), byte(bits>>8), byte(bits>>16), byte(bits>>24))
	}
	return dst
}

func TestGetErrorConsumesFirstErrorOnly(t *testing.T) {
	ctx := newTestContext(t)
	ctx.RC.SetError(-1, glenum.InvalidEnum)
	ctx.RC.SetError(-1, glenum.InvalidValue) // should be dropped, first wins

	if got := ctx.GetError(-1); got != glenum.InvalidEnum {
		t.Fatalf("GetError = %v, want InvalidEnum", got)
	}
	if got := ctx.GetError(-1); got != glenum.NoError {
		t.Fatalf("second GetError = %v, want NoError (consumed)", got)
	}
}

func TestFixedPointHelpersRoundTrip(t *testing.T) {
	f := FloatToFixed(1.5)
	if got := f.ToFloat32(); math.Abs(float64(got-1.5)) > 1e-4 {
		t.Fatalf("ToFloat32 = %v, want ~1.5", got)
	}
}
