package rcontext

import (
	"testing"

	"github.com/gogpu/microgles/glenum"
	"github.com/gogpu/microgles/matrix"
)

func TestNewDefaults(t *testing.T) {
	rc := New(4)
	if rc.Modelview.Stack.MaxDepth() != modelviewStackDepth {
		t.Fatalf("modelview max depth = %d, want %d", rc.Modelview.Stack.MaxDepth(), modelviewStackDepth)
	}
	if rc.Projection.Stack.MaxDepth() != projectionStackDepth {
		t.Fatalf("projection max depth = %d, want %d", rc.Projection.Stack.MaxDepth(), projectionStackDepth)
	}
	if rc.Depth.Func != glenum.Less {
		t.Fatalf("default depth func = %v, want Less", rc.Depth.Func)
	}
	if !rc.Masks.Red || !rc.Masks.Depth {
		t.Fatal("default write masks should be all-enabled")
	}
}

func TestMatrixGroupVersionBumpsOnTouch(t *testing.T) {
	rc := New(1)
	v0 := rc.Modelview.Version()
	rc.Modelview.Stack.Load(matrix.Translate(1, 2, 3))
	rc.Modelview.Touch()
	if rc.Modelview.Version() != v0+1 {
		t.Fatalf("version after Touch = %d, want %d", rc.Modelview.Version(), v0+1)
	}
}

func TestPushMatrixOverflowSetsStackOverflowAndLeavesUnchanged(t *testing.T) {
	rc := New(1)
	// projection stack has max depth 2: exhaust it then expect overflow.
	rc.Projection.PushMatrix(rc, -1)
	rc.Projection.PushMatrix(rc, -1)
	if kind := rc.GetError(-1); kind != glenum.NoError {
		t.Fatalf("unexpected error after two valid pushes: %v", kind)
	}

	rc.Projection.Stack.Load(matrix.Translate(9, 9, 9))
	before := rc.Projection.Stack.Top()

	rc.Projection.PushMatrix(rc, -1)
	if kind := rc.GetError(-1); kind != glenum.StackOverflow {
		t.Fatalf("error after overflowing push = %v, want StackOverflow", kind)
	}
	if rc.Projection.Stack.Top() != before {
		t.Fatal("overflowing push must leave the top matrix unchanged")
	}
}

func TestPopMatrixUnderflowSetsStackUnderflow(t *testing.T) {
	rc := New(1)
	rc.Modelview.PopMatrix(rc, -1)
	if kind := rc.GetError(-1); kind != glenum.StackUnderflow {
		t.Fatalf("error after popping base matrix = %v, want StackUnderflow", kind)
	}
}

func TestGetErrorClearsAndFirstErrorWins(t *testing.T) {
	rc := New(1)
	rc.SetError(-1, glenum.InvalidValue)
	rc.SetError(-1, glenum.InvalidEnum) // should be ignored: an error is already pending

	if kind := rc.GetError(-1); kind != glenum.InvalidValue {
		t.Fatalf("GetError = %v, want InvalidValue (first error wins)", kind)
	}
	if kind := rc.GetError(-1); kind != glenum.NoError {
		t.Fatalf("GetError after clear = %v, want NoError", kind)
	}
}

func TestErrorSlotsAreIndependentPerWorker(t *testing.T) {
	rc := New(2)
	rc.SetError(0, glenum.InvalidOperation)
	rc.SetError(1, glenum.OutOfMemory)

	if kind := rc.GetError(0); kind != glenum.InvalidOperation {
		t.Fatalf("worker 0 error = %v, want InvalidOperation", kind)
	}
	if kind := rc.GetError(1); kind != glenum.OutOfMemory {
		t.Fatalf("worker 1 error = %v, want OutOfMemory", kind)
	}
	if kind := rc.GetError(-1); kind != glenum.NoError {
		t.Fatalf("API thread slot should be unaffected by worker sets, got %v", kind)
	}
}

func TestBlendSnapshotReflectsLatestWriteAfterTouch(t *testing.T) {
	rc := New(1)
	rc.Blend.Src = glenum.SrcAlpha
	rc.Blend.Dst = glenum.OneMinusSrcAlpha
	rc.Blend.Touch()

	snap, version := rc.Blend.Snapshot()
	if snap.Src != glenum.SrcAlpha || snap.Dst != glenum.OneMinusSrcAlpha {
		t.Fatalf("snapshot = %+v, want Src=SrcAlpha Dst=OneMinusSrcAlpha", snap)
	}
	if version != rc.Blend.Version() {
		t.Fatalf("snapshot version = %d, want %d", version, rc.Blend.Version())
	}
}

func TestLightSnapshotReturnsCopyNotPointer(t *testing.T) {
	rc := New(1)
	rc.Lights[0].Ambient = Color{R: 1}
	snap, _ := rc.Lights[0].Snapshot()
	rc.Lights[0].Ambient = Color{R: 0.5}

	if snap.Ambient.R != 1 {
		t.Fatalf("snapshot should be unaffected by later mutation, got %v", snap.Ambient.R)
	}
}
