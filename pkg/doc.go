// Package pkg provides the core libraries for bnbsearch branch-and-bound search.
//
// # Overview
//
// bnbsearch separates a generic branch-and-bound engine from the problem it
// searches. The engine only sees nodes, bounds and feasible solutions; the
// problem supplies a workspace that computes them. The pkg directory is
// organized into four areas:
//
//  1. [bnb] - The search engine (solvers, node orderers, child orderers)
//  2. [knapsack] - A 0/1 knapsack workspace with an LP relaxation bound
//  3. [runner] - Orchestration (config → solve → cache → history)
//  4. [cache], [history], [trace] - Result caching, run records, tree rendering
//
// # Architecture
//
// The typical data flow through bnbsearch:
//
//	Problem file (TOML)
//	         ↓
//	    [knapsack] package (workspace + root node)
//	         ↓
//	    [bnb] package (lazy or eager solver, frontier policy)
//	         ↓
//	    [runner] package (cache lookup, history record)
//	         ↓
//	    Result, run record, rendered search tree
//
// # Quick Start
//
// Solve an instance directly with the engine:
//
//	p, _ := knapsack.Load("camping.toml")
//	ws, _ := knapsack.NewWorkspace(p, 0)
//	solver, _ := bnb.New(ws, bnb.DefaultConfig(), bnb.Options{})
//	res, _ := solver.Solve(ctx, ws.Root(), nil, bnb.WorstScore)
//
// Or through a runner that caches proven optima and records every run:
//
//	r := runner.NewRunner(fileCache, nil, history.NewMemoryStore(), logger)
//	s, _ := r.Solve(ctx, p, bnb.DefaultConfig(), runner.Options{})
//
// # Main Packages
//
// [bnb] - Lazy and eager solvers over an abstract [bnb.Workspace]. Node
// orderers: depth-first, best-first, depth-first then best-first, plunging
// best-first, and two sampling orderers (depth-stratified and random walk)
// that revisit nodes and therefore never prove optimality on their own.
//
// [knapsack] - Dantzig LP bound with warm-started greedy walks, memoized in
// an LRU cache, and fixed-item sets kept as roaring bitmaps.
//
// [config] - TOML configuration for solver, orderer, cache and history.
//
// [cache] - File, Redis and null caches behind one interface. Keys are derived
// from the problem content and every result-changing option.
//
// [history] - Run records in a JSON-lines file, MongoDB or memory.
//
// [trace] - Records the explored tree through solver hooks and renders it
// as DOT, SVG, PNG or PDF.
//
// [observability] - Hook interfaces for solver and cache events.
//
// [errors] - Structured error codes shared by every package.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/bnb/...                # Specific package
//	go test -run Example ./pkg/...       # Examples only
//
// [bnb]: https://pkg.go.dev/github.com/matzehuels/bnbsearch/pkg/bnb
// [knapsack]: https://pkg.go.dev/github.com/matzehuels/bnbsearch/pkg/knapsack
// [runner]: https://pkg.go.dev/github.com/matzehuels/bnbsearch/pkg/runner
// [config]: https://pkg.go.dev/github.com/matzehuels/bnbsearch/pkg/config
// [cache]: https://pkg.go.dev/github.com/matzehuels/bnbsearch/pkg/cache
// [history]: https://pkg.go.dev/github.com/matzehuels/bnbsearch/pkg/history
// [trace]: https://pkg.go.dev/github.com/matzehuels/bnbsearch/pkg/trace
// [observability]: https://pkg.go.dev/github.com/matzehuels/bnbsearch/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/bnbsearch/pkg/errors
package pkg
