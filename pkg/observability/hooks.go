// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about search runs and cache operations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Event payloads only use plain values so that the search engine can emit
// them without this package importing the engine.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetSolverHooks(trace.NewRecorder())
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// The engine calls hooks to emit events:
//
//	observability.Solver().OnSearchStart(ctx, "lazy", "bfs")
//	// ... search ...
//	observability.Solver().OnSearchComplete(ctx, summary)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Solver Hooks
// =============================================================================

// NodeEvent describes the outcome of processing one search node.
type NodeEvent struct {
	ID       int
	ParentID int
	Depth    int
	Side     int
	Bound    float64

	// Outcome is "expanded" or the fathom reason ("pruned", "infeasible",
	// "completely-solved", "bottomed-out").
	Outcome string

	// Children is the number of children pushed back into the frontier.
	Children int
}

// SearchSummary describes a finished search.
type SearchSummary struct {
	Status      string
	Score       float64
	UpperBound  float64
	Gap         float64
	Processed   int
	Fathomed    int
	Duration    time.Duration
	TimedOut    bool
	NodeLimited bool
}

// SolverHooks receives events from branch-and-bound solvers.
type SolverHooks interface {
	OnSearchStart(ctx context.Context, solver, orderer string)
	OnNodeProcessed(ctx context.Context, ev NodeEvent)
	OnIncumbent(ctx context.Context, score float64, nodeID int)
	OnSearchComplete(ctx context.Context, s SearchSummary)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopSolverHooks is a no-op implementation of SolverHooks.
type NoopSolverHooks struct{}

func (NoopSolverHooks) OnSearchStart(context.Context, string, string)   {}
func (NoopSolverHooks) OnNodeProcessed(context.Context, NodeEvent)      {}
func (NoopSolverHooks) OnIncumbent(context.Context, float64, int)       {}
func (NoopSolverHooks) OnSearchComplete(context.Context, SearchSummary) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	solverHooks SolverHooks = NoopSolverHooks{}
	cacheHooks  CacheHooks  = NoopCacheHooks{}
	hooksMu     sync.RWMutex
)

// SetSolverHooks registers custom solver hooks.
// This should be called once at application startup before any search runs.
func SetSolverHooks(h SolverHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		solverHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Solver returns the registered solver hooks.
func Solver() SolverHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return solverHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	solverHooks = NoopSolverHooks{}
	cacheHooks = NoopCacheHooks{}
}
