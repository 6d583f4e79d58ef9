package bnb

import (
	"iter"
	"math/rand"

	errs "github.com/matzehuels/bnbsearch/pkg/errors"
)

// ErrEmptyFrontier is returned by Remove on an empty frontier. It signals
// a logic error in the caller, never a normal end of search.
var ErrEmptyFrontier = errs.New(errs.ErrCodeEmptyFrontier, "remove from empty frontier")

// Expansion is one parent's branching result handed to a NodeOrderer.
type Expansion struct {
	Parent      Node
	Relaxed     *RelaxedSolution
	RootRelaxed *RelaxedSolution
	Children    []Node
}

// NodeOrderer is a frontier policy.
type NodeOrderer interface {
	Add(n Node)
	// AddChildren adds the children of one expansion, letting the policy
	// use the relaxed solutions to order them.
	AddChildren(e Expansion)
	Remove() (Node, error)
	Size() int
	IsEmpty() bool
	Clear()
	All() iter.Seq[Node]
}

// discarder is implemented by non-exhaustive orderers that drop nodes
// without returning them. The solver uses the callback to keep its bound
// queue in sync, and never claims optimality from their frontier.
type discarder interface {
	OnDiscard(fn func(Node))
}

// OrdererKind names a frontier policy.
type OrdererKind string

const (
	OrdererDFS             OrdererKind = "dfs"
	OrdererBFS             OrdererKind = "bfs"
	OrdererDFSBFC          OrdererKind = "dfs-bfc"
	OrdererPlungingBFS     OrdererKind = "plunging-bfs"
	OrdererDepthStratified OrdererKind = "depth-stratified"
	OrdererRandomWalk      OrdererKind = "random-walk"
)

// OrdererKinds lists every supported policy in display order.
var OrdererKinds = []OrdererKind{
	OrdererDFS,
	OrdererBFS,
	OrdererDFSBFC,
	OrdererPlungingBFS,
	OrdererDepthStratified,
	OrdererRandomWalk,
}

// Exhaustive reports whether the policy explores every unfathomed node.
func (k OrdererKind) Exhaustive() bool {
	return k != OrdererDepthStratified && k != OrdererRandomWalk
}

// ParseOrdererKind validates s as an OrdererKind.
func ParseOrdererKind(s string) (OrdererKind, error) {
	for _, k := range OrdererKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", errs.New(errs.ErrCodeInvalidConfig, "unknown node orderer %q", s)
}

// NewNodeOrderer builds the frontier policy selected by cfg.
func NewNodeOrderer(cfg OrdererConfig, child ChildOrderer, rng *rand.Rand) (NodeOrderer, error) {
	if rng == nil {
		rng = NewRand(cfg.Seed)
	}
	if child == nil {
		child = NewLPGuidedChildOrderer(rng)
	}
	switch cfg.Kind {
	case OrdererDFS:
		return NewDFSOrderer(child), nil
	case OrdererBFS:
		return NewBFSOrderer(), nil
	case OrdererDFSBFC:
		return NewDFSBFCOrderer(), nil
	case OrdererPlungingBFS:
		return NewPlungingBFSOrderer(cfg.MinPlungeDepthProp, cfg.MaxPlungeDepthProp), nil
	case OrdererDepthStratified:
		return NewDepthStratifiedSampler(cfg.MaxDepth, rng), nil
	case OrdererRandomWalk:
		return NewRandomWalkOrderer(cfg.MaxDepth, rng), nil
	}
	return nil, errs.New(errs.ErrCodeInvalidConfig, "unknown node orderer %q", cfg.Kind)
}
