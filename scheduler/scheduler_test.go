package scheduler

import (
	"sync/atomic"
	"testing"
)

func TestSubmitAndWaitRunsAllTasks(t *testing.T) {
	s := New(4, false)
	defer s.Close()

	var n int64
	const total = 500
	for i := 0; i < total; i++ {
		s.Submit(i%s.Workers(), Task{Fn: func() { atomic.AddInt64(&n, 1) }, Stage: Fragment})
	}
	s.Wait()

	if got := atomic.LoadInt64(&n); got != total {
		t.Fatalf("executed %d tasks, want %d", got, total)
	}
}

func TestStealingDistributesWorkAcrossWorkers(t *testing.T) {
	s := New(4, false)
	defer s.Close()

	var n int64
	const total = localDequeCapacity + globalQueueCapacity
	// Submit everything to worker 0's local deque path via global overflow
	// by flooding worker 0 so others must steal. total fills both queues
	// exactly; Submit drops whatever arrives once both are full.
	for i := 0; i < total; i++ {
		s.Submit(0, Task{Fn: func() { atomic.AddInt64(&n, 1) }, Stage: Raster})
	}
	s.Wait()

	if got := atomic.LoadInt64(&n); got != total {
		t.Fatalf("executed %d tasks, want %d", got, total)
	}
}

func TestTaskGraphOrderingPerPrimitive(t *testing.T) {
	// Each "primitive" runs stage A then, as A's last action, submits
	// stage B. Verify B always observes A's write for the same primitive,
	// matching spec.md §5's per-primitive ordering guarantee.
	s := New(8, false)
	defer s.Close()

	const n = 300
	results := make([]int, n)
	for i := 0; i < n; i++ {
		i := i
		s.Submit(i%s.Workers(), Task{Stage: Vertex, Fn: func() {
			results[i] = 1
			s.Submit(i%s.Workers(), Task{Stage: Primitive, Fn: func() {
				if results[i] != 1 {
					t.Errorf("primitive stage for %d observed stale vertex result %d", i, results[i])
				}
				results[i] = 2
			}})
		}})
	}
	s.Wait()

	for i, v := range results {
		if v != 2 {
			t.Fatalf("primitive %d did not complete its stage chain, got %d", i, v)
		}
	}
}

func TestCloseDrainsPendingWork(t *testing.T) {
	s := New(2, false)
	var n int64
	for i := 0; i < 50; i++ {
		s.Submit(0, Task{Stage: Vertex, Fn: func() { atomic.AddInt64(&n, 1) }})
	}
	s.Close()

	if got := atomic.LoadInt64(&n); got != 50 {
		t.Fatalf("executed %d of 50 tasks before shutdown drained them", got)
	}
}

func TestReportMergesCounters(t *testing.T) {
	s := New(4, true)
	defer s.Close()

	for i := 0; i < 40; i++ {
		s.Submit(i%s.Workers(), Task{Stage: Fragment, Fn: func() {}})
	}
	s.Wait()

	r := s.Report()
	if r.ByStage[Fragment].Executed != 40 {
		t.Fatalf("executed = %d, want 40", r.ByStage[Fragment].Executed)
	}
}

func TestSubmitAfterCloseIsNoop(t *testing.T) {
	s := New(2, false)
	s.Close()

	var ran bool
	s.Submit(0, Task{Fn: func() { ran = true }})
	if ran {
		t.Fatal("task ran after Close")
	}
}
