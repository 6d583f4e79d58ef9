package bnb

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/matzehuels/bnbsearch/pkg/errors"
)

func solveWith(t *testing.T, ws *treeWorkspace, cfg Config, opts Options) *Result {
	t.Helper()
	solver, err := New(ws, cfg, opts)
	require.NoError(t, err)
	res, err := solver.Solve(context.Background(), ws.root(), nil, WorstScore)
	require.NoError(t, err)
	return res
}

func TestSolversFindOptimum(t *testing.T) {
	exhaustive := []OrdererKind{OrdererDFS, OrdererBFS, OrdererDFSBFC, OrdererPlungingBFS}
	for _, solver := range []SolverKind{SolverLazy, SolverEager} {
		for _, kind := range exhaustive {
			for _, slack := range []float64{0, 3} {
				t.Run(fmt.Sprintf("%s/%s/slack=%g", solver, kind, slack), func(t *testing.T) {
					ws := newTreeWorkspace(8, modLeaves)
					ws.slack = slack
					cfg := DefaultConfig()
					cfg.Solver = solver
					cfg.Orderer.Kind = kind

					res := solveWith(t, ws, cfg, quietOptions())
					require.Equal(t, OptimalSolutionFound, res.Status)
					require.NotNil(t, res.Incumbent)
					assert.Equal(t, ws.best(), res.Score)
					assert.Equal(t, res.Score, res.Incumbent.Score())
					assert.LessOrEqual(t, res.Gap, cfg.Epsilon)
					assert.GreaterOrEqual(t, res.UpperBound, res.Score)
					assert.Less(t, res.Processed, 2*len(ws.leaves), "pruning must skip part of the tree")
				})
			}
		}
	}
}

func TestLazySolverStopsWithinRelativeEpsilon(t *testing.T) {
	run := func(eps float64) (*treeWorkspace, *Result) {
		ws := newTreeWorkspace(10, modLeaves)
		ws.slack = 2
		cfg := DefaultConfig()
		cfg.Epsilon = eps
		return ws, solveWith(t, ws, cfg, quietOptions())
	}

	ws, exact := run(0)
	require.Equal(t, OptimalSolutionFound, exact.Status)
	assert.Equal(t, ws.best(), exact.Score)

	_, loose := run(0.5)
	require.Equal(t, OptimalSolutionFound, loose.Status)
	require.NotNil(t, loose.Incumbent)
	assert.LessOrEqual(t, loose.Gap, 0.5)
	assert.GreaterOrEqual(t, loose.Score*1.5, ws.best())
	assert.Less(t, loose.Processed*4, exact.Processed)
}

func TestEagerSolverStopsWithinAbsoluteEpsilon(t *testing.T) {
	run := func(eps float64) (*treeWorkspace, *Result) {
		ws := newTreeWorkspace(10, modLeaves)
		ws.slack = 2
		cfg := DefaultConfig()
		cfg.Solver = SolverEager
		cfg.Epsilon = eps
		return ws, solveWith(t, ws, cfg, quietOptions())
	}

	ws, exact := run(0)
	require.Equal(t, OptimalSolutionFound, exact.Status)
	assert.Equal(t, ws.best(), exact.Score)

	// A relative gap of 10 would accept almost any incumbent; the eager
	// solver must stay within 10 points of the optimum.
	_, loose := run(10)
	require.Equal(t, OptimalSolutionFound, loose.Status)
	require.NotNil(t, loose.Incumbent)
	assert.GreaterOrEqual(t, loose.Score, ws.best()-10)
	assert.Less(t, loose.Processed, exact.Processed)
}

// loosenOrderer raises the bounds of the root's children after the solver
// has queued them, so the global upper bound goes up once.
type loosenOrderer struct {
	*PQOrderer
}

func (o loosenOrderer) AddChildren(e Expansion) {
	if e.Parent.Depth() == 0 {
		for _, c := range e.Children {
			c.SetOptimisticBound(c.OptimisticBound() + 1000)
		}
	}
	o.PQOrderer.AddChildren(e)
}

func TestLazySolverWarnsWhenUpperBoundIncreases(t *testing.T) {
	ws := newTreeWorkspace(6, modLeaves)
	ws.slack = 1
	root := ws.root()
	root.SetOptimisticBound(ws.best() + 6)

	var buf bytes.Buffer
	opts := quietOptions()
	opts.Logger = log.New(&buf)

	solver := NewLazySolver(ws, loosenOrderer{NewBFSOrderer()}, DefaultConfig(), opts)
	res, err := solver.Solve(context.Background(), root, nil, WorstScore)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "global upper bound increased")
	assert.Equal(t, OptimalSolutionFound, res.Status)
	assert.Equal(t, ws.best(), res.Score)
	assert.Greater(t, res.Processed, 3)
}

func TestLazySolverRejectsUnboundedSampling(t *testing.T) {
	ws := newTreeWorkspace(8, modLeaves)
	ws.slack = 10
	cfg := DefaultConfig()

	solver := NewLazySolver(ws, NewRandomWalkOrderer(6, NewRand(1)), cfg, quietOptions())
	res, err := solver.Solve(context.Background(), ws.root(), nil, WorstScore)
	assert.Nil(t, res)
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidConfig))
	assert.Zero(t, ws.activations)

	cfg.NodeLimit = 10
	solver = NewLazySolver(ws, NewRandomWalkOrderer(6, NewRand(1)), cfg, quietOptions())
	res, err = solver.Solve(context.Background(), ws.root(), nil, WorstScore)
	require.NoError(t, err)
	assert.True(t, res.NodeLimited)
	assert.Equal(t, 10, res.Processed)
}

func TestLazySolverIncumbentsAreMonotone(t *testing.T) {
	ws := newTreeWorkspace(8, func(i int) float64 { return float64(i%97 + 1) })
	ws.slack = 5
	cfg := DefaultConfig()
	cfg.Orderer.Kind = OrdererDFS

	var evaluated []float64
	hooks := &recordingHooks{}
	opts := quietOptions()
	opts.Hooks = hooks
	opts.Evaluator = IncumbentEvaluatorFunc(func(_ context.Context, sol Solution, score float64) {
		if sol != nil {
			evaluated = append(evaluated, score)
		}
	})

	res := solveWith(t, ws, cfg, opts)
	require.NotEmpty(t, res.IncumbentTrace)
	for i := 1; i < len(res.IncumbentTrace); i++ {
		assert.Greater(t, res.IncumbentTrace[i], res.IncumbentTrace[i-1])
	}
	assert.Equal(t, res.IncumbentTrace, hooks.incumbents)
	// Improvements plus the final report.
	assert.Len(t, evaluated, len(res.IncumbentTrace)+1)
	assert.Equal(t, res.Score, evaluated[len(evaluated)-1])
}

func TestLazySolverEmitsOneEventPerNode(t *testing.T) {
	ws := newTreeWorkspace(6, modLeaves)
	ws.slack = 2
	hooks := &recordingHooks{}
	opts := quietOptions()
	opts.Hooks = hooks

	res := solveWith(t, ws, DefaultConfig(), opts)
	assert.Equal(t, 1, hooks.started)
	assert.Equal(t, 1, hooks.completed)
	assert.Len(t, hooks.events, res.Processed)
	assert.Equal(t, "optimal", hooks.summary.Status)

	expanded := 0
	for _, ev := range hooks.events {
		if ev.Outcome == "expanded" {
			expanded++
			assert.Equal(t, 2, ev.Children)
		}
	}
	assert.Equal(t, res.Processed-res.Stats.NumFathomed(), expanded)
}

func TestLazySolverSpaceRemaining(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Orderer.Kind = OrdererDFS
	cfg.NodeLimit = 4
	ws := newTreeWorkspace(6, modLeaves)
	ws.slack = 10

	res := solveWith(t, ws, cfg, quietOptions())
	assert.Greater(t, res.SpaceRemaining, 0.0)
	assert.LessOrEqual(t, res.SpaceRemaining, 1.0)
}

func TestLazySolverNodeLimit(t *testing.T) {
	ws := newTreeWorkspace(8, modLeaves)
	ws.slack = 10
	cfg := DefaultConfig()
	cfg.NodeLimit = 3

	res := solveWith(t, ws, cfg, quietOptions())
	assert.True(t, res.NodeLimited)
	assert.Equal(t, 3, res.Processed)
	assert.Equal(t, NonOptimalSolutionFound, res.Status)
	assert.Greater(t, res.UpperBound, res.Score)
	assert.Greater(t, res.Gap, cfg.Epsilon)
}

func TestLazySolverTimeout(t *testing.T) {
	ws := newTreeWorkspace(10, modLeaves)
	ws.slack = 10
	ws.delay = 2 * time.Millisecond
	cfg := DefaultConfig()
	cfg.Timeout = 5 * time.Millisecond

	res := solveWith(t, ws, cfg, quietOptions())
	assert.True(t, res.TimedOut)
	assert.Equal(t, NonOptimalSolutionFound, res.Status)
	assert.GreaterOrEqual(t, res.Processed, 1)
	assert.Less(t, res.Processed, 20)
}

func TestLazySolverCancelledContext(t *testing.T) {
	ws := newTreeWorkspace(6, modLeaves)
	solver, err := New(ws, DefaultConfig(), quietOptions())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := solver.Solve(ctx, ws.root(), nil, WorstScore)
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res)
	assert.Zero(t, res.Processed)
	assert.Equal(t, NonOptimalSolutionFound, res.Status)
}

func TestLazySolverInitialIncumbent(t *testing.T) {
	ws := newTreeWorkspace(6, modLeaves)
	initial := treeSolution{leaf: -1, score: ws.best()}

	solver, err := New(ws, DefaultConfig(), quietOptions())
	require.NoError(t, err)
	res, err := solver.Solve(context.Background(), ws.root(), initial, initial.score)
	require.NoError(t, err)

	assert.Equal(t, OptimalSolutionFound, res.Status)
	assert.Equal(t, initial, res.Incumbent)
	assert.Equal(t, 1, res.Processed)
	assert.Equal(t, 1, res.Stats.NumPruned)
}

func TestLazySolverInfeasibleRoot(t *testing.T) {
	ws := newTreeWorkspace(4, func(int) float64 { return WorstScore })
	res := solveWith(t, ws, DefaultConfig(), quietOptions())

	assert.Equal(t, NonOptimalSolutionFound, res.Status)
	assert.Nil(t, res.Incumbent)
	assert.Equal(t, 1, res.Stats.NumInfeasible)
	assert.True(t, math.IsInf(res.Gap, 1))
	assert.Zero(t, res.SpaceRemaining)
}

func TestLazySolverPrunesOnOracleFailure(t *testing.T) {
	ws := newTreeWorkspace(4, modLeaves)
	ws.slack = 1
	ws.failBound = true
	res := solveWith(t, ws, DefaultConfig(), quietOptions())

	// Only the root bounds; both children fail and count as pruned.
	assert.Equal(t, 3, res.Processed)
	assert.Equal(t, 2, res.Stats.NumPruned)
	require.NotNil(t, res.Incumbent)
}

func TestLazySolverPanicsOnNaNScore(t *testing.T) {
	ws := newTreeWorkspace(4, modLeaves)
	ws.nanFeasible = true
	solver, err := New(ws, DefaultConfig(), quietOptions())
	require.NoError(t, err)
	assert.Panics(t, func() {
		_, _ = solver.Solve(context.Background(), ws.root(), nil, WorstScore)
	})
}

func TestLazySolverSamplingOrderers(t *testing.T) {
	for _, kind := range []OrdererKind{OrdererRandomWalk, OrdererDepthStratified} {
		t.Run(string(kind), func(t *testing.T) {
			ws := newTreeWorkspace(8, modLeaves)
			ws.slack = 10
			cfg := DefaultConfig()
			cfg.Orderer.Kind = kind
			cfg.Orderer.MaxDepth = 6
			cfg.NodeLimit = 50

			res := solveWith(t, ws, cfg, quietOptions())
			assert.True(t, res.NodeLimited)
			assert.Equal(t, 50, res.Processed)
			assert.LessOrEqual(t, res.Score, ws.best())
			assert.True(t, math.IsNaN(res.SpaceRemaining))
			assert.GreaterOrEqual(t, res.UpperBound, res.Score)
		})
	}
}

func TestEagerSolverNeverQueuesDominatedChildren(t *testing.T) {
	ws := newTreeWorkspace(6, modLeaves)
	cfg := DefaultConfig()
	cfg.Solver = SolverEager
	res := solveWith(t, ws, cfg, quietOptions())

	require.Equal(t, OptimalSolutionFound, res.Status)
	// Exact bounds keep the search on the optimal path; siblings are
	// pruned when popped.
	assert.Equal(t, ws.best(), res.Score)
	assert.LessOrEqual(t, res.Processed, 2*6+1)
}

func TestEagerSolverNodeLimit(t *testing.T) {
	ws := newTreeWorkspace(8, modLeaves)
	ws.slack = 10
	cfg := DefaultConfig()
	cfg.Solver = SolverEager
	cfg.NodeLimit = 5

	res := solveWith(t, ws, cfg, quietOptions())
	assert.True(t, res.NodeLimited)
	assert.Equal(t, NonOptimalSolutionFound, res.Status)
	assert.Greater(t, res.UpperBound, res.Score)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	ws := newTreeWorkspace(2, modLeaves)

	cfg := DefaultConfig()
	cfg.Orderer.Kind = OrdererRandomWalk
	_, err := New(ws, cfg, Options{})
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidConfig), "sampling without a limit")

	cfg.NodeLimit = 10
	cfg.Solver = SolverEager
	_, err = New(ws, cfg, Options{})
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidConfig), "eager with a sampling orderer")

	cfg = DefaultConfig()
	cfg.Epsilon = -1
	_, err = New(ws, cfg, Options{})
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidConfig))

	cfg = DefaultConfig()
	cfg.Orderer.MinPlungeDepthProp = 0.9
	_, err = New(ws, cfg, Options{})
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidConfig))
}

func TestChildInheritsParentBound(t *testing.T) {
	parent := &treeNode{BaseNode: NewRootNode(0)}
	parent.SetOptimisticBound(12)
	parent.SetWarmStart("basis")

	child := NewChildNode(1, parent, 1, -math.Ln2)
	assert.Equal(t, 12.0, child.OptimisticBound())
	assert.Equal(t, 1, child.Depth())
	assert.Equal(t, 0, child.ParentID())
	assert.Equal(t, 1, child.Side())
	assert.Equal(t, WarmStart("basis"), child.WarmStart())
	assert.InDelta(t, -math.Ln2, child.LogSpace(), 1e-12)
	assert.Equal(t, -1, parent.ParentID())
}
