package cmdring

import (
	"sync/atomic"
	"testing"

	"github.com/gogpu/microgles/scheduler"
)

func TestRecordAndFlushRunsEveryTask(t *testing.T) {
	s := scheduler.New(4, false)
	defer s.Close()

	r := New()
	var n int64
	const total = 200
	for i := 0; i < total; i++ {
		r.Record(s, 0, scheduler.Task{Stage: scheduler.Vertex, Fn: func() {
			atomic.AddInt64(&n, 1)
		}})
	}
	if got := r.Pending(); got != total {
		t.Fatalf("pending = %d, want %d", got, total)
	}
	r.Flush(s, 0)
	if got := r.Pending(); got != 0 {
		t.Fatalf("pending after flush = %d, want 0", got)
	}
	s.Wait()

	if got := atomic.LoadInt64(&n); got != total {
		t.Fatalf("executed %d tasks, want %d", got, total)
	}
}

func TestRecordPastCapacityAutoFlushes(t *testing.T) {
	s := scheduler.New(2, false)
	defer s.Close()

	r := New()
	var n int64
	const total = Capacity + 50
	for i := 0; i < total; i++ {
		r.Record(s, 0, scheduler.Task{Stage: scheduler.Raster, Fn: func() {
			atomic.AddInt64(&n, 1)
		}})
	}
	r.Flush(s, 0)
	s.Wait()

	if got := atomic.LoadInt64(&n); got != total {
		t.Fatalf("executed %d tasks, want %d", got, total)
	}
}

func TestFlushOnEmptyRingIsNoop(t *testing.T) {
	s := scheduler.New(1, false)
	defer s.Close()

	r := New()
	r.Flush(s, 0) // must not panic or hang
	s.Wait()
}
