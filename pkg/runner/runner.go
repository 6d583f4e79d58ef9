// Package runner executes knapsack searches with result caching and run
// history. Both the solve and trace CLI commands go through a [Runner] so
// the caching logic lives in one place.
package runner

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/bnbsearch/pkg/bnb"
	"github.com/matzehuels/bnbsearch/pkg/cache"
	errs "github.com/matzehuels/bnbsearch/pkg/errors"
	"github.com/matzehuels/bnbsearch/pkg/history"
	"github.com/matzehuels/bnbsearch/pkg/knapsack"
	"github.com/matzehuels/bnbsearch/pkg/observability"
)

// Runner solves problems through a cache and records every run.
//
// The Runner holds no per-run state. Multiple goroutines can share one
// Runner as long as the cache and history backends are safe for
// concurrent use.
type Runner struct {
	Cache   cache.Cache
	Keyer   cache.Keyer
	History history.Store
	Logger  *log.Logger

	// TTL is the lifetime of cached entries. Zero selects cache.TTLSolve.
	TTL time.Duration

	// MemoSize is passed to knapsack.NewWorkspace.
	MemoSize int
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer
// selects cache.DefaultKeyer and a nil store keeps history in memory.
func NewRunner(c cache.Cache, keyer cache.Keyer, store history.Store, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if store == nil {
		store = history.NewMemoryStore()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:   c,
		Keyer:   keyer,
		History: store,
		Logger:  logger,
	}
}

// Options tune a single Solve call.
type Options struct {
	// Refresh skips the cache lookup. The result is still stored.
	Refresh bool

	// Cold starts the search without the greedy incumbent.
	Cold bool

	// Hooks receives search events, e.g. a trace.Recorder.
	Hooks observability.SolverHooks

	// Evaluator is notified of every incumbent.
	Evaluator bnb.IncumbentEvaluator
}

// Summary is the serializable outcome of one run. Values are finite: an
// undefined gap is -1 and a run without a solution has HasSolution false.
type Summary struct {
	RunID       string `json:"run_id"`
	Problem     string `json:"problem"`
	ProblemHash string `json:"problem_hash"`
	Solver      string `json:"solver"`
	Orderer     string `json:"orderer"`

	Status      string   `json:"status"`
	HasSolution bool     `json:"has_solution"`
	Items       []string `json:"items"`
	Value       float64  `json:"value"`
	Weight      float64  `json:"weight"`
	UpperBound  float64  `json:"upper_bound"`
	Gap         float64  `json:"gap"`

	Processed   int           `json:"processed"`
	Fathomed    int           `json:"fathomed"`
	Duration    time.Duration `json:"duration"`
	TimedOut    bool          `json:"timed_out"`
	NodeLimited bool          `json:"node_limited"`
	Trace       []float64     `json:"trace"`

	Cached    bool      `json:"-"`
	StartedAt time.Time `json:"-"`

	// Result is the raw search result. It is nil for cached runs.
	Result *bnb.Result `json:"-"`
}

// Optimal reports whether the run proved its solution optimal.
func (s *Summary) Optimal() bool { return s.Status == bnb.OptimalSolutionFound.String() }

// SolveKeyOpts returns the cache key options for cfg.
func SolveKeyOpts(cfg bnb.Config) cache.SolveKeyOpts {
	opts := cache.SolveKeyOpts{
		Solver:     string(cfg.Solver),
		Orderer:    string(cfg.Orderer.Kind),
		ChildOrder: string(cfg.ChildOrder),
		Epsilon:    cfg.Epsilon,
		MaxDepth:   cfg.Orderer.MaxDepth,
		Seed:       cfg.Orderer.Seed,
	}
	if cfg.Orderer.Kind == bnb.OrdererPlungingBFS {
		opts.MinPlunge = cfg.Orderer.MinPlungeDepthProp
		opts.MaxPlunge = cfg.Orderer.MaxPlungeDepthProp
	}
	return opts
}

// Solve runs cfg on p. Only optimal results are cached, so limits such as
// Timeout and NodeLimit are not part of the cache key.
//
// When ctx is cancelled mid-search the partial summary is returned
// together with the error.
func (r *Runner) Solve(ctx context.Context, p *knapsack.Problem, cfg bnb.Config, opts Options) (*Summary, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	started := time.Now()
	hash := p.Hash()
	key := r.Keyer.SolveKey(hash, SolveKeyOpts(cfg))

	if !opts.Refresh {
		if s, ok := r.lookup(ctx, key); ok {
			s.RunID = uuid.NewString()
			s.Cached = true
			s.StartedAt = started
			r.Logger.Info("solve cache hit", "problem", p.Name, "value", s.Value)
			r.record(ctx, s)
			return s, nil
		}
	}

	s, err := r.search(ctx, p, cfg, opts)
	if s == nil {
		return nil, err
	}
	s.RunID = uuid.NewString()
	s.ProblemHash = hash
	s.StartedAt = started

	if err == nil && s.Optimal() {
		r.store(ctx, key, "solve", s)
	}
	r.record(ctx, s)
	return s, err
}

func (r *Runner) search(ctx context.Context, p *knapsack.Problem, cfg bnb.Config, opts Options) (*Summary, error) {
	ws, err := knapsack.NewWorkspace(p, r.MemoSize)
	if err != nil {
		return nil, err
	}
	solver, err := bnb.New(ws, cfg, bnb.Options{
		Logger:    r.Logger,
		Evaluator: opts.Evaluator,
		Hooks:     opts.Hooks,
	})
	if err != nil {
		return nil, err
	}

	var (
		initial bnb.Solution
		score   = bnb.WorstScore
	)
	if !opts.Cold {
		g := knapsack.Greedy(p)
		initial, score = g, g.Value
	}

	res, err := solver.Solve(ctx, ws.Root(), initial, score)
	if res == nil {
		return nil, err
	}
	hits, misses := ws.MemoStats()
	r.Logger.Debug("relaxation memo", "hits", hits, "misses", misses)
	return summarize(p, cfg, res), err
}

func summarize(p *knapsack.Problem, cfg bnb.Config, res *bnb.Result) *Summary {
	s := &Summary{
		Problem:     p.Name,
		Solver:      string(cfg.Solver),
		Orderer:     string(cfg.Orderer.Kind),
		Status:      res.Status.String(),
		UpperBound:  finite(res.UpperBound, 0),
		Gap:         finite(res.Gap, -1),
		Processed:   res.Processed,
		Fathomed:    res.Stats.NumFathomed(),
		Duration:    res.Duration,
		TimedOut:    res.TimedOut,
		NodeLimited: res.NodeLimited,
		Trace:       res.IncumbentTrace,
		Result:      res,
	}
	if sol, ok := res.Incumbent.(*knapsack.Solution); ok && sol != nil {
		s.HasSolution = true
		s.Items = sol.Names(p)
		s.Value = sol.Value
		s.Weight = sol.Weight
	}
	return s
}

func finite(v, fallback float64) float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return fallback
	}
	return v
}

func (r *Runner) lookup(ctx context.Context, key string) (*Summary, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache lookup failed", "error", err)
		return nil, false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, "solve")
		return nil, false
	}
	var s Summary
	if err := json.Unmarshal(data, &s); err != nil {
		r.Logger.Warn("discarding corrupt cache entry", "key", key, "error", err)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, "solve")
	return &s, true
}

func (r *Runner) store(ctx context.Context, key, keyType string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		r.Logger.Warn("encode cache entry", "error", err)
		return
	}
	r.storeBytes(ctx, key, keyType, data)
}

func (r *Runner) storeBytes(ctx context.Context, key, keyType string, data []byte) {
	ttl := r.TTL
	if ttl <= 0 {
		ttl = cache.TTLSolve
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// record saves s to the history store. Failures are logged, never returned.
func (r *Runner) record(ctx context.Context, s *Summary) {
	rec := history.Record{
		ID:           s.RunID,
		Problem:      s.Problem,
		ProblemHash:  s.ProblemHash,
		Solver:       s.Solver,
		Orderer:      s.Orderer,
		Status:       s.Status,
		HasIncumbent: s.HasSolution,
		Score:        s.Value,
		UpperBound:   s.UpperBound,
		Gap:          s.Gap,
		Processed:    s.Processed,
		Fathomed:     s.Fathomed,
		Duration:     s.Duration,
		Cached:       s.Cached,
		StartedAt:    s.StartedAt,
	}
	if err := r.History.Save(ctx, rec); err != nil {
		r.Logger.Warn("history write failed", "run", s.RunID, "error", err)
	}
}

// Close releases the cache and the history store.
func (r *Runner) Close(ctx context.Context) error {
	var first error
	if r.Cache != nil {
		first = r.Cache.Close()
	}
	if r.History != nil {
		if err := r.History.Close(ctx); err != nil && first == nil {
			first = errs.Wrap(errs.ErrCodeStorage, err, "close history")
		}
	}
	return first
}
