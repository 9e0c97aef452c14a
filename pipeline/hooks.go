package pipeline

import "github.com/gogpu/microgles/scheduler"

// schedHelper adapts *scheduler.Scheduler to plugin.Helper, letting a
// plugin hook submit additional tasks without importing the scheduler
// package directly (spec.md §4.8: "plugins may also submit additional
// tasks via a helper that delegates to the scheduler").
type schedHelper struct {
	p        *Pipeline
	workerID int
}

func (h schedHelper) Submit(workerID int, t scheduler.Task) {
	h.p.Sched.Submit(workerID, t)
}

func helperFor(p *Pipeline, workerID int) schedHelper {
	return schedHelper{p: p, workerID: workerID}
}
