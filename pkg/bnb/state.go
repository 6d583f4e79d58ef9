package bnb

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/matzehuels/bnbsearch/pkg/observability"
)

// heartbeatInterval is the period of the progress log line of a long search.
const heartbeatInterval = 10 * time.Second

// Options carries the collaborators of a solver. The zero value is valid.
type Options struct {
	// Logger receives progress and warnings. Defaults to log.Default().
	Logger *log.Logger

	// Evaluator is notified of incumbents. Defaults to NoopEvaluator.
	Evaluator IncumbentEvaluator

	// Hooks receives per-node events. Defaults to observability.Solver().
	Hooks observability.SolverHooks
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	if o.Evaluator == nil {
		o.Evaluator = NoopEvaluator{}
	}
	if o.Hooks == nil {
		o.Hooks = observability.Solver()
	}
	return o
}

// search is the state shared by the solver loops for one Solve call.
type search struct {
	cfg    Config
	logger *log.Logger
	eval   IncumbentEvaluator
	hooks  observability.SolverHooks

	started time.Time

	incumbent      Solution
	incumbentScore float64
	trace          []float64

	stats     FathomStats
	timers    Timers
	processed int

	// trackSpace is false for orderers that revisit nodes.
	trackSpace bool
	// absoluteGap closes nodes on bound - score instead of the relative gap.
	absoluteGap bool
	logSpace   float64

	heartbeat rate.Sometimes
}

func newSearch(cfg Config, opts Options, initial Solution, initialScore float64) *search {
	s := &search{
		cfg:            cfg,
		logger:         opts.Logger,
		eval:           opts.Evaluator,
		hooks:          opts.Hooks,
		started:        time.Now(),
		incumbentScore: WorstScore,
		trackSpace:     true,
		heartbeat:      rate.Sometimes{Interval: heartbeatInterval},
	}
	if initial != nil {
		if math.IsNaN(initialScore) {
			panic("bnb: initial incumbent has NaN score")
		}
		s.incumbent = initial
		s.incumbentScore = initialScore
		s.trace = append(s.trace, initialScore)
	}
	return s
}

func (s *search) elapsed() time.Duration { return time.Since(s.started) }

func (s *search) timedOut() bool {
	return s.cfg.Timeout > 0 && s.elapsed() > s.cfg.Timeout
}

func (s *search) nodeLimited() bool {
	return s.cfg.NodeLimit > 0 && s.processed >= s.cfg.NodeLimit
}

// withinEpsilon reports whether score is close enough to bound to stop
// improving on it.
func (s *search) withinEpsilon(bound, score float64) bool {
	if s.absoluteGap {
		return bound-score <= s.cfg.Epsilon
	}
	return relativeGap(bound, score) <= s.cfg.Epsilon
}

// timeRemaining is zero when there is no timeout.
func (s *search) timeRemaining() time.Duration {
	if s.cfg.Timeout <= 0 {
		return 0
	}
	return max(time.Nanosecond, s.cfg.Timeout-s.elapsed())
}

// stop reports why the loop must end before processing another node.
func (s *search) stop(ctx context.Context, res *Result) (bool, error) {
	if s.timedOut() {
		res.TimedOut = true
		s.logger.Info("search timed out", "elapsed", s.elapsed().Truncate(time.Millisecond), "processed", s.processed)
		return true, nil
	}
	if err := ctx.Err(); err != nil {
		return true, err
	}
	if s.nodeLimited() {
		res.NodeLimited = true
		s.logger.Info("node limit reached", "processed", s.processed)
		return true, nil
	}
	return false, nil
}

func (s *search) activate(ctx context.Context, ws Workspace, n Node) (Active, error) {
	s.timers.Switch.Start()
	a, err := ws.Activate(ctx, n)
	s.timers.Switch.Stop()
	if err != nil {
		return nil, err
	}
	a.UpdateTimeRemaining(s.timeRemaining())
	return a, nil
}

// bound runs the bound oracle and tightens the node's cached bound. An
// oracle failure is reported as StatusUnknown.
func (s *search) bound(ctx context.Context, a Active) *RelaxedSolution {
	n := a.Node()
	s.timers.Relax.Start()
	r, err := a.Bound(ctx, s.incumbentScore)
	s.timers.Relax.Stop()
	if err != nil || r == nil || math.IsNaN(r.Score) {
		s.logger.Warn("bound oracle failed", "node", n.ID(), "err", err)
		return &RelaxedSolution{Status: StatusUnknown, Score: n.OptimisticBound()}
	}
	r.Score = min(r.Score, n.OptimisticBound())
	n.SetOptimisticBound(r.Score)
	return r
}

// evaluate runs the fathom and incumbent checks on a bounded node and
// reports whether the node must be branched. Fathomed nodes are recorded.
func (s *search) evaluate(ctx context.Context, a Active, r *RelaxedSolution) bool {
	n := a.Node()
	switch r.Status {
	case StatusInfeasible:
		s.fathom(ctx, n, FathomInfeasible)
		return false
	case StatusUnknown:
		s.logger.Warn("bound status unknown, pruning node", "node", n.ID(), "depth", n.Depth())
		s.fathom(ctx, n, FathomPruned)
		return false
	case StatusPruned:
		s.fathom(ctx, n, FathomPruned)
		return false
	}
	if r.Score <= s.incumbentScore {
		s.fathom(ctx, n, FathomPruned)
		return false
	}

	sol := s.feasible(ctx, a)
	if sol != nil {
		s.offer(ctx, sol, n.ID())
		if r.Status == StatusOptimal && s.withinEpsilon(r.Score, sol.Score()) {
			s.fathom(ctx, n, FathomCompletelySolved)
			return false
		}
	}
	if r.Score <= s.incumbentScore {
		s.fathom(ctx, n, FathomPruned)
		return false
	}
	return true
}

func (s *search) feasible(ctx context.Context, a Active) Solution {
	s.timers.Feasible.Start()
	sol, err := a.FeasibleSolution(ctx)
	s.timers.Feasible.Stop()
	if err != nil {
		s.logger.Warn("feasible extraction failed", "node", a.Node().ID(), "err", err)
		return nil
	}
	return sol
}

func (s *search) branch(ctx context.Context, a Active) []Node {
	s.timers.Branch.Start()
	children, err := a.Branch(ctx)
	s.timers.Branch.Stop()
	if err != nil {
		s.logger.Warn("branching failed", "node", a.Node().ID(), "err", err)
		return nil
	}
	parent := a.Node()
	for _, c := range children {
		c.SetOptimisticBound(min(c.OptimisticBound(), parent.OptimisticBound()))
	}
	return children
}

// offer replaces the incumbent if sol strictly improves on it.
func (s *search) offer(ctx context.Context, sol Solution, nodeID int) bool {
	score := sol.Score()
	if math.IsNaN(score) {
		panic(fmt.Sprintf("bnb: feasible solution of node %d has NaN score", nodeID))
	}
	if score <= s.incumbentScore {
		return false
	}
	prev := s.incumbentScore
	s.incumbent, s.incumbentScore = sol, score
	s.trace = append(s.trace, score)

	if math.IsInf(prev, -1) {
		s.logger.Info("first incumbent", "score", score, "node", nodeID, "processed", s.processed)
	} else {
		s.logger.Info("incumbent improved", "score", score, "delta", score-prev, "node", nodeID)
	}
	s.eval.EvalIncumbent(ctx, sol, score)
	s.hooks.OnIncumbent(ctx, score, nodeID)
	return true
}

func (s *search) fathom(ctx context.Context, n Node, reason FathomStatus) {
	s.stats.Fathom(n, reason)
	if s.trackSpace {
		s.logSpace = logSubtract(s.logSpace, n.LogSpace())
	}
	s.logger.Debug("fathomed", "node", n.ID(), "depth", n.Depth(), "reason", reason, "bound", n.OptimisticBound())
	s.hooks.OnNodeProcessed(ctx, nodeEvent(n, reason.String(), 0))
}

func (s *search) expanded(ctx context.Context, n Node, children int) {
	s.hooks.OnNodeProcessed(ctx, nodeEvent(n, "expanded", children))
}

func (s *search) tick(ub float64, frontier int) {
	s.heartbeat.Do(func() {
		s.logger.Info("searching",
			"elapsed", s.elapsed().Truncate(time.Second),
			"processed", s.processed,
			"frontier", frontier,
			"incumbent", s.incumbentScore,
			"bound", ub,
			"remaining", RemainingFraction(s.logSpace),
		)
	})
}

// finish fills res from the search state. ub is the best bound over the
// unexplored part of the tree.
func (s *search) finish(ctx context.Context, res *Result, ub float64, solver string) {
	ub = max(ub, s.incumbentScore)
	res.Incumbent = s.incumbent
	res.Score = s.incumbentScore
	res.UpperBound = ub
	res.Gap = relativeGap(ub, s.incumbentScore)
	res.Processed = s.processed
	res.Stats = s.stats
	res.Timers = s.timers
	res.Duration = s.elapsed()
	res.IncumbentTrace = s.trace
	res.SpaceRemaining = RemainingFraction(s.logSpace)
	if !s.trackSpace {
		res.SpaceRemaining = math.NaN()
	}
	if s.incumbent != nil && s.withinEpsilon(ub, s.incumbentScore) {
		res.Status = OptimalSolutionFound
	} else {
		res.Status = NonOptimalSolutionFound
	}

	s.eval.EvalIncumbent(ctx, s.incumbent, s.incumbentScore)
	s.hooks.OnSearchComplete(ctx, observability.SearchSummary{
		Status:      res.Status.String(),
		Score:       res.Score,
		UpperBound:  res.UpperBound,
		Gap:         res.Gap,
		Processed:   res.Processed,
		Fathomed:    res.Stats.NumFathomed(),
		Duration:    res.Duration,
		TimedOut:    res.TimedOut,
		NodeLimited: res.NodeLimited,
	})
	s.logger.Info("search finished",
		"solver", solver,
		"status", res.Status,
		"score", res.Score,
		"bound", res.UpperBound,
		"gap", res.Gap,
		"processed", res.Processed,
		"fathomed", res.Stats.NumFathomed(),
		"elapsed", res.Duration.Truncate(time.Millisecond),
	)
}

func nodeEvent(n Node, outcome string, children int) observability.NodeEvent {
	return observability.NodeEvent{
		ID:       n.ID(),
		ParentID: n.ParentID(),
		Depth:    n.Depth(),
		Side:     n.Side(),
		Bound:    n.OptimisticBound(),
		Outcome:  outcome,
		Children: children,
	}
}
