package bnb

import (
	"math/rand"
	"time"

	errs "github.com/matzehuels/bnbsearch/pkg/errors"
)

// DefaultEpsilon is the optimality gap at which a search stops.
const DefaultEpsilon = 1e-5

// SolverKind selects the search loop.
type SolverKind string

const (
	SolverLazy  SolverKind = "lazy"
	SolverEager SolverKind = "eager"
)

// ChildOrderKind selects the ChildOrderer used by stack-based orderers.
type ChildOrderKind string

const (
	ChildOrderLPGuided ChildOrderKind = "lp-guided"
	ChildOrderFixed    ChildOrderKind = "fixed"
)

// OrdererConfig selects and parameterizes a NodeOrderer.
type OrdererConfig struct {
	Kind OrdererKind

	// MaxDepth bounds the dives of the sampling orderers.
	MaxDepth int

	// Plunge proportions of the plunging best-first orderer.
	MinPlungeDepthProp float64
	MaxPlungeDepthProp float64

	// Seed for every random choice of the search. Zero selects a fixed default.
	Seed int64
}

// Config controls one search.
type Config struct {
	Solver SolverKind

	// Epsilon is the optimality gap: relative for the lazy solver, absolute
	// for the eager one.
	Epsilon float64

	Timeout    time.Duration // zero disables the timeout
	NodeLimit  int           // zero disables the node limit
	Orderer    OrdererConfig
	ChildOrder ChildOrderKind
}

// DefaultConfig returns a lazy best-first configuration.
func DefaultConfig() Config {
	return Config{
		Solver:  SolverLazy,
		Epsilon: DefaultEpsilon,
		Orderer: OrdererConfig{
			Kind:               OrdererBFS,
			MaxDepth:           DefaultMaxDepth,
			MinPlungeDepthProp: DefaultMinPlungeDepthProp,
			MaxPlungeDepthProp: DefaultMaxPlungeDepthProp,
		},
		ChildOrder: ChildOrderLPGuided,
	}
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	switch c.Solver {
	case SolverLazy, SolverEager:
	default:
		return errs.New(errs.ErrCodeInvalidConfig, "unknown solver %q", c.Solver)
	}
	switch c.ChildOrder {
	case ChildOrderLPGuided, ChildOrderFixed:
	default:
		return errs.New(errs.ErrCodeInvalidConfig, "unknown child order %q", c.ChildOrder)
	}
	if err := errs.ValidateNonNegative("epsilon", c.Epsilon); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidConfig, err, "invalid epsilon")
	}
	if c.Timeout < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "timeout must not be negative")
	}
	if c.NodeLimit < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "node limit must not be negative")
	}
	if !c.Orderer.Kind.Exhaustive() && c.Timeout == 0 && c.NodeLimit == 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "orderer %q never exhausts the tree and needs a timeout or node limit", c.Orderer.Kind)
	}
	return c.Orderer.Validate()
}

// Validate reports the first invalid field.
func (c OrdererConfig) Validate() error {
	if _, err := ParseOrdererKind(string(c.Kind)); err != nil {
		return err
	}
	if c.MaxDepth < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "max depth must not be negative")
	}
	if err := errs.ValidateProportion("min plunge depth proportion", c.MinPlungeDepthProp); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidConfig, err, "invalid orderer")
	}
	if err := errs.ValidateProportion("max plunge depth proportion", c.MaxPlungeDepthProp); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidConfig, err, "invalid orderer")
	}
	if c.MaxPlungeDepthProp < c.MinPlungeDepthProp {
		return errs.New(errs.ErrCodeInvalidConfig, "max plunge depth proportion below min")
	}
	return nil
}

// NewChildOrderer builds the ChildOrderer selected by c.
func (c Config) NewChildOrderer(rng *rand.Rand) ChildOrderer {
	if c.ChildOrder == ChildOrderFixed {
		return FixedChildOrderer{}
	}
	return NewLPGuidedChildOrderer(rng)
}
