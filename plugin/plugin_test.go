package plugin

import (
	"testing"

	"github.com/gogpu/microgles/scheduler"
)

func TestRegisterInvokeOrder(t *testing.T) {
	r := New()
	var order []string
	r.Register(scheduler.Fragment, "a", func(job any, h Helper) { order = append(order, "a") })
	r.Register(scheduler.Fragment, "b", func(job any, h Helper) { order = append(order, "b") })

	r.Invoke(scheduler.Fragment, nil, nil)

	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Fatalf("order = %v, want [a b]", order)
	}
}

func TestRegisterRejectsBeyondMax(t *testing.T) {
	r := New()
	for i := 0; i < MaxHooksPerStage; i++ {
		if !r.Register(scheduler.Vertex, "h", func(job any, h Helper) {}) {
			t.Fatalf("registration %d unexpectedly rejected", i)
		}
	}
	if r.Register(scheduler.Vertex, "overflow", func(job any, h Helper) {}) {
		t.Fatal("5th registration should have been rejected")
	}
}

func TestResolveTextureFirstMatchWins(t *testing.T) {
	r := New()
	r.RegisterDecoder("png", func(file string) uint32 { return 0 })
	r.RegisterDecoder("ktx", func(file string) uint32 {
		if file == "a.ktx" {
			return 7
		}
		return 0
	})

	if got := r.ResolveTexture("a.ktx"); got != 7 {
		t.Fatalf("ResolveTexture = %d, want 7", got)
	}
	if got := r.ResolveTexture("missing.bin"); got != 0 {
		t.Fatalf("ResolveTexture(unresolvable) = %d, want 0", got)
	}
}
