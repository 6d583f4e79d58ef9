package bnb

import "context"

// IncumbentEvaluator is notified of incumbents: once when the search
// starts, on every strict improvement, and once when it ends. sol may be
// nil when no incumbent exists.
type IncumbentEvaluator interface {
	EvalIncumbent(ctx context.Context, sol Solution, score float64)
}

// IncumbentEvaluatorFunc adapts a function to IncumbentEvaluator.
type IncumbentEvaluatorFunc func(ctx context.Context, sol Solution, score float64)

func (f IncumbentEvaluatorFunc) EvalIncumbent(ctx context.Context, sol Solution, score float64) {
	f(ctx, sol, score)
}

// NoopEvaluator ignores every incumbent.
type NoopEvaluator struct{}

func (NoopEvaluator) EvalIncumbent(context.Context, Solution, float64) {}
