package bnb

import (
	"math"
	"time"
)

// SearchStatus is the terminal state of a search.
type SearchStatus int

const (
	// NonOptimalSolutionFound means the search stopped before proving the
	// incumbent optimal. The incumbent may be nil.
	NonOptimalSolutionFound SearchStatus = iota
	// OptimalSolutionFound means the incumbent is within epsilon of the
	// global upper bound, or the frontier was exhausted with an incumbent.
	OptimalSolutionFound
)

func (s SearchStatus) String() string {
	if s == OptimalSolutionFound {
		return "optimal"
	}
	return "non-optimal"
}

// Result is the outcome of a search.
type Result struct {
	Status    SearchStatus
	Incumbent Solution // nil when no feasible solution was found
	Score     float64  // WorstScore when Incumbent is nil

	// UpperBound is the best bound over the unexplored part of the tree.
	UpperBound float64
	Gap        float64

	Processed int
	Stats     FathomStats
	Timers    Timers
	Duration  time.Duration

	TimedOut    bool
	NodeLimited bool

	// SpaceRemaining is the estimated fraction of the tree left unexplored.
	SpaceRemaining float64

	// IncumbentTrace lists every accepted incumbent score in order.
	IncumbentTrace []float64
}

// Optimal reports whether the incumbent was proven optimal.
func (r *Result) Optimal() bool { return r.Status == OptimalSolutionFound }

// relativeGap is |ub - inc| / |inc|. It is +Inf without an incumbent or
// when inc is zero and the bound differs from it.
func relativeGap(ub, inc float64) float64 {
	if math.IsInf(inc, -1) {
		return math.Inf(1)
	}
	if ub == inc {
		return 0
	}
	if inc == 0 {
		return math.Inf(1)
	}
	return math.Abs(ub-inc) / math.Abs(inc)
}
