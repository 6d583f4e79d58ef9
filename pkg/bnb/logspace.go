package bnb

import "math"

// logSubtract returns log(exp(a) - exp(b)), or -Inf when b >= a.
func logSubtract(a, b float64) float64 {
	if math.IsInf(b, -1) {
		return a
	}
	if b >= a {
		return math.Inf(-1)
	}
	return a + math.Log1p(-math.Exp(b-a))
}

// RemainingFraction converts a log-space remainder into a fraction of the
// whole search space in [0, 1].
func RemainingFraction(logSpace float64) float64 {
	return min(1, math.Exp(logSpace))
}
