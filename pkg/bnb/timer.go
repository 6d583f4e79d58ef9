package bnb

import "time"

// Timer accumulates the time spent in one phase of the search.
type Timer struct {
	Total time.Duration
	Count int

	start time.Time
}

func (t *Timer) Start() { t.start = time.Now() }

func (t *Timer) Stop() {
	if t.start.IsZero() {
		return
	}
	t.Total += time.Since(t.start)
	t.Count++
	t.start = time.Time{}
}

// Mean is the average duration of one timed call.
func (t *Timer) Mean() time.Duration {
	if t.Count == 0 {
		return 0
	}
	return t.Total / time.Duration(t.Count)
}

// Timers holds one Timer per search phase. They are diagnostics only.
type Timers struct {
	Switch   Timer // node activation
	Relax    Timer // bound oracle
	Feasible Timer // feasible extraction
	Branch   Timer
}
