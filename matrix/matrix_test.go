package matrix

import "testing"

const tol = 1e-5

func approxEq(a, b float32) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < tol
}

func approxVec4(a, b Vec4) bool {
	for i := range a {
		if !approxEq(a[i], b[i]) {
			return false
		}
	}
	return true
}

func TestIdentityTransformIsNoop(t *testing.T) {
	v := Vec4{1, 2, 3, 1}
	got := MulVec4(Identity(), v)
	if !approxVec4(got, v) {
		t.Fatalf("got %v, want %v", got, v)
	}
}

func TestTranslateTransform(t *testing.T) {
	m := Translate(1, 2, 3)
	got := MulVec4(m, Vec4{0, 0, 0, 1})
	want := Vec4{1, 2, 3, 1}
	if !approxVec4(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestScaleTransform(t *testing.T) {
	m := Scale(2, 3, 4)
	got := MulVec4(m, Vec4{1, 1, 1, 1})
	want := Vec4{2, 3, 4, 1}
	if !approxVec4(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestMulMatchesManualProduct(t *testing.T) {
	l := Translate(1, 0, 0)
	r := Scale(2, 2, 2)
	combined := Mul(l, r)

	v := Vec4{1, 1, 1, 1}
	got := MulVec4(combined, v)
	want := MulVec4(l, MulVec4(r, v))
	if !approxVec4(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestStackPushPopBalancedIsIdentityRoundTrip(t *testing.T) {
	s := NewStack(32)
	s.Load(Translate(5, 6, 7))
	before := s.Top()

	if err := s.Push(); err != nil {
		t.Fatalf("push: %v", err)
	}
	s.Mult(Scale(2, 2, 2))
	if err := s.Pop(); err != nil {
		t.Fatalf("pop: %v", err)
	}

	after := s.Top()
	if after != before {
		t.Fatalf("matrix not restored: got %v, want %v", after, before)
	}
}

func TestStackOverflowLeavesMatrixUnchanged(t *testing.T) {
	s := NewStack(1)
	if err := s.Push(); err != nil {
		t.Fatalf("unexpected error on first push: %v", err)
	}
	before := s.Top()

	if err := s.Push(); err != ErrStackOverflow {
		t.Fatalf("expected ErrStackOverflow, got %v", err)
	}
	if s.Top() != before {
		t.Fatal("matrix changed after failed push")
	}
	if s.Depth() != 2 {
		t.Fatalf("depth = %d, want 2", s.Depth())
	}
}

// TestStack32PushesThenOverflow mirrors spec.md's concrete scenario 3:
// 32 successive push_matrix() calls succeed, and the 33rd records
// StackOverflow.
func TestStack32PushesThenOverflow(t *testing.T) {
	s := NewStack(32)
	for i := 0; i < 32; i++ {
		if err := s.Push(); err != nil {
			t.Fatalf("push %d: %v", i+1, err)
		}
	}
	if err := s.Push(); err != ErrStackOverflow {
		t.Fatalf("33rd push: got %v, want overflow", err)
	}
}

func TestStackUnderflow(t *testing.T) {
	s := NewStack(4)
	if err := s.Pop(); err != ErrStackUnderflow {
		t.Fatalf("expected ErrStackUnderflow, got %v", err)
	}
}
