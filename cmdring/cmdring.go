// Package cmdring implements the command ring (C5): a fixed-capacity,
// single-producer record-and-flush buffer that decouples API-thread
// recording from scheduler submission.
//
// Grounded on gogpu-gg/recording.Recorder's capture shape (a slice of
// commands built up by API-surface calls, later played back to a
// Backend), narrowed from Recorder's general command variety and growable
// slice to the core's single "submit task" discriminator and literal
// fixed-1024-slot ring with explicit head/tail per spec.md §4.5.
package cmdring

import (
	"sync/atomic"

	"github.com/gogpu/microgles/scheduler"
)

// Capacity is the fixed slot count spec.md §4.5 specifies.
const Capacity = 1024

// Ring is the single-producer command ring. Exactly one goroutine (the
// API thread) may call Record and Flush; concurrent callers would race on
// head/tail the way spec.md §4.5 explicitly scopes to "single producer".
//
// The core's only slot discriminator is "submit task" (spec.md §4.5), so
// a slot is simply a scheduler.Task; there is no separate opcode field.
type Ring struct {
	slots [Capacity]scheduler.Task
	head  atomic.Uint64
	tail  atomic.Uint64
}

// New creates an empty ring.
func New() *Ring {
	return &Ring{}
}

// Pending returns the number of slots recorded since the last flush.
func (r *Ring) Pending() int {
	return int(r.tail.Load() - r.head.Load())
}

// Record appends one task. If the ring is full (tail-head >= Capacity),
// Record first flushes via s, then appends, matching spec.md §4.5's "on
// record, if tail - head >= capacity, the producer first flushes".
func (r *Ring) Record(s *scheduler.Scheduler, workerID int, t scheduler.Task) {
	if r.Pending() >= Capacity {
		r.Flush(s, workerID)
	}
	tail := r.tail.Load()
	r.slots[tail%Capacity] = t
	r.tail.Store(tail + 1) // release: publishes the slot write above
}

// Flush drains every pending slot by forwarding it to the scheduler, then
// equalizes head and tail.
func (r *Ring) Flush(s *scheduler.Scheduler, workerID int) {
	head := r.head.Load()
	tail := r.tail.Load()
	for i := head; i != tail; i++ {
		t := r.slots[i%Capacity]
		if t.Fn != nil {
			s.Submit(workerID, t)
		}
	}
	r.head.Store(tail)
}
