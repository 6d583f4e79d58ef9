package bnb

import (
	"context"
	"math"
	"time"
)

// Score sentinels for a maximization problem.
var (
	// WorstScore is the incumbent score before any solution is known.
	WorstScore = math.Inf(-1)

	// BestScore is the optimistic bound of a node nothing is known about.
	BestScore = math.Inf(1)
)

// Status is the outcome reported by a bound oracle for one node.
type Status int

const (
	StatusOptimal Status = iota
	StatusFeasible
	StatusInfeasible
	StatusUnknown
	StatusPruned
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusFeasible:
		return "feasible"
	case StatusInfeasible:
		return "infeasible"
	case StatusUnknown:
		return "unknown"
	case StatusPruned:
		return "pruned"
	}
	return "invalid"
}

// Solution is a concrete feasible candidate.
// Score must never be NaN.
type Solution interface {
	Score() float64
}

// DeltaValuer is implemented by relaxed solution payloads that can report
// the value of a branched quantity, identified by the key returned from
// [BranchDelta.DeltaKey].
type DeltaValuer interface {
	DeltaValue(key int) (float64, bool)
}

// BranchDelta is implemented by child nodes that know which quantity the
// branching decision that created them constrains.
type BranchDelta interface {
	DeltaKey() int
}

// RelaxedSolution is the possibly fractional solution of a node's relaxation.
// The solver may lower Score to the bound inherited from the parent.
type RelaxedSolution struct {
	Status Status
	Score  float64

	// Values exposes the relaxed values to the child orderer. May be nil.
	Values DeltaValuer
}

// WarmStart is an opaque token produced by a bound oracle and reused by
// the children of the node that produced it.
type WarmStart any

// Node is a node of the implicit search tree.
//
// Parents are referenced by ID only; a node never owns its parent. The
// frontier holds the only strong reference to a node until it is popped.
type Node interface {
	ID() int
	// ParentID is -1 for the root.
	ParentID() int
	Depth() int
	// Side identifies which branch of the parent this node is (0 or 1).
	Side() int

	// OptimisticBound is the cached bound. It may be stale until the node
	// has been activated and bounded.
	OptimisticBound() float64
	SetOptimisticBound(b float64)

	// LogSpace is the log of the fraction of the solution space covered
	// by this node's subtree. Used for progress reporting only.
	LogSpace() float64

	WarmStart() WarmStart
	SetWarmStart(w WarmStart)
}

// Active is the handle to a node that currently owns the workspace.
// All bound, feasibility and branching calls go through it.
type Active interface {
	Node() Node

	// Bound computes the node's relaxation. The oracle may stop early and
	// report StatusPruned once it proves the bound cannot beat
	// incumbentScore.
	Bound(ctx context.Context, incumbentScore float64) (*RelaxedSolution, error)

	// FeasibleSolution returns a feasible candidate derived from the last
	// relaxation, or nil when none is available.
	FeasibleSolution(ctx context.Context) (Solution, error)

	// Branch partitions the node into children. An empty result marks a
	// leaf. Must be called after Bound.
	Branch(ctx context.Context) ([]Node, error)

	// UpdateTimeRemaining tells the oracle how much of the time budget is
	// left. Zero means the search has no timeout.
	UpdateTimeRemaining(d time.Duration)
}

// Workspace is the stateful, expensive bound-computation context shared
// by every node of one search. The solver owns it and activates exactly
// one node at a time.
type Workspace interface {
	Activate(ctx context.Context, n Node) (Active, error)
}

// BaseNode implements the bookkeeping part of [Node]. Domain nodes embed it.
type BaseNode struct {
	id       int
	parentID int
	depth    int
	side     int
	bound    float64
	logSpace float64
	warm     WarmStart
}

// NewRootNode returns the bookkeeping for a root with the given id.
// The root's bound starts at BestScore and it covers the whole space.
func NewRootNode(id int) BaseNode {
	return BaseNode{id: id, parentID: -1, bound: BestScore}
}

// NewChildNode returns the bookkeeping for a child of parent. The child
// inherits the parent's bound and warm start; logSpaceDelta (<= 0) is
// added to the parent's log-space.
func NewChildNode(id int, parent Node, side int, logSpaceDelta float64) BaseNode {
	return BaseNode{
		id:       id,
		parentID: parent.ID(),
		depth:    parent.Depth() + 1,
		side:     side,
		bound:    parent.OptimisticBound(),
		logSpace: parent.LogSpace() + logSpaceDelta,
		warm:     parent.WarmStart(),
	}
}

func (b *BaseNode) ID() int                      { return b.id }
func (b *BaseNode) ParentID() int                { return b.parentID }
func (b *BaseNode) Depth() int                   { return b.depth }
func (b *BaseNode) Side() int                    { return b.side }
func (b *BaseNode) OptimisticBound() float64     { return b.bound }
func (b *BaseNode) SetOptimisticBound(v float64) { b.bound = v }
func (b *BaseNode) LogSpace() float64            { return b.logSpace }
func (b *BaseNode) WarmStart() WarmStart         { return b.warm }
func (b *BaseNode) SetWarmStart(w WarmStart)     { b.warm = w }
