package bnb

// FathomStatus is the reason a node was closed without being branched.
type FathomStatus int

const (
	// FathomPruned: the node's bound cannot beat the incumbent.
	FathomPruned FathomStatus = iota
	// FathomInfeasible: the node's relaxation has no solution.
	FathomInfeasible
	// FathomCompletelySolved: the node's relaxation is integral and optimal.
	FathomCompletelySolved
	// FathomBottomedOut: the node cannot be branched further.
	FathomBottomedOut
)

func (s FathomStatus) String() string {
	switch s {
	case FathomPruned:
		return "pruned"
	case FathomInfeasible:
		return "infeasible"
	case FathomCompletelySolved:
		return "completely-solved"
	case FathomBottomedOut:
		return "bottomed-out"
	}
	return "invalid"
}

// FathomStats counts fathomed nodes by reason.
type FathomStats struct {
	NumPruned           int
	NumInfeasible       int
	NumCompletelySolved int
	NumBottomedOut      int

	depthSum int
}

// Fathom records that n was fathomed for reason s.
func (f *FathomStats) Fathom(n Node, s FathomStatus) {
	switch s {
	case FathomPruned:
		f.NumPruned++
	case FathomInfeasible:
		f.NumInfeasible++
	case FathomCompletelySolved:
		f.NumCompletelySolved++
	case FathomBottomedOut:
		f.NumBottomedOut++
	default:
		return
	}
	f.depthSum += n.Depth()
}

func (f *FathomStats) NumFathomed() int {
	return f.NumPruned + f.NumInfeasible + f.NumCompletelySolved + f.NumBottomedOut
}

// AverageDepth is the mean depth of fathomed nodes, 0 when none were fathomed.
func (f *FathomStats) AverageDepth() float64 {
	n := f.NumFathomed()
	if n == 0 {
		return 0
	}
	return float64(f.depthSum) / float64(n)
}
