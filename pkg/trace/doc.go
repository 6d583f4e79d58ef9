// Package trace records the tree explored by a branch-and-bound search and
// renders it as a node-link diagram.
//
// A [Recorder] implements observability.SolverHooks. Pass it to the solver
// through bnb.Options.Hooks, or register it globally:
//
//	rec := trace.NewRecorder(0)
//	res, err := solver.Solve(ctx, root, nil, bnb.WorstScore) // with Options{Hooks: rec}
//	dot := trace.ToDOT(rec.Snapshot(), trace.Options{Detailed: true})
//	svg, err := trace.RenderSVG(dot)
//
// Nodes are colored by how they were closed: expanded nodes are white,
// pruned grey, infeasible red, completely solved green and bottomed-out
// yellow. Nodes that produced an incumbent get a thick outline.
package trace
