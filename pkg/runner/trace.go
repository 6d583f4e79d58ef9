package runner

import (
	"context"

	"github.com/matzehuels/bnbsearch/pkg/bnb"
	"github.com/matzehuels/bnbsearch/pkg/cache"
	errs "github.com/matzehuels/bnbsearch/pkg/errors"
	"github.com/matzehuels/bnbsearch/pkg/knapsack"
	"github.com/matzehuels/bnbsearch/pkg/observability"
	"github.com/matzehuels/bnbsearch/pkg/trace"
)

// Trace output formats.
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
	FormatPNG = "png"
	FormatPDF = "pdf"
)

// TraceOptions configure a rendered search tree.
type TraceOptions struct {
	Format   string
	Detailed bool
	// MaxNodes caps the recorded tree. Zero selects trace.DefaultMaxNodes.
	MaxNodes int
	Refresh  bool
}

// Artifact is a rendered search tree.
type Artifact struct {
	Data   []byte
	Format string
	Cached bool

	// Tree and Summary are nil for cached artifacts.
	Tree    *trace.Tree
	Summary *Summary
}

// Trace solves p while recording the explored tree and renders it. The
// solve cache is bypassed because a cached result carries no tree; the
// rendered artifact is cached when the search was optimal.
func (r *Runner) Trace(ctx context.Context, p *knapsack.Problem, cfg bnb.Config, opts TraceOptions) (*Artifact, error) {
	if opts.Format == "" {
		opts.Format = FormatSVG
	}
	switch opts.Format {
	case FormatDOT, FormatSVG, FormatPNG, FormatPDF:
	default:
		return nil, errs.New(errs.ErrCodeInvalidInput, "unsupported trace format %q", opts.Format)
	}
	if opts.MaxNodes <= 0 {
		opts.MaxNodes = trace.DefaultMaxNodes
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	key := r.Keyer.ArtifactKey(p.Hash(), cache.ArtifactKeyOpts{
		Solve:    SolveKeyOpts(cfg),
		Format:   opts.Format,
		Detailed: opts.Detailed,
		MaxNodes: opts.MaxNodes,
	})
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "artifact")
			return &Artifact{Data: data, Format: opts.Format, Cached: true}, nil
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
	}

	rec := trace.NewRecorder(opts.MaxNodes)
	s, err := r.Solve(ctx, p, cfg, Options{Refresh: true, Hooks: rec})
	if err != nil {
		return nil, err
	}
	tree := rec.Snapshot()

	data, err := render(tree, opts)
	if err != nil {
		return nil, err
	}
	if s.Optimal() {
		r.storeBytes(ctx, key, "artifact", data)
	}
	return &Artifact{Data: data, Format: opts.Format, Tree: tree, Summary: s}, nil
}

func render(t *trace.Tree, opts TraceOptions) ([]byte, error) {
	dot := trace.ToDOT(t, trace.Options{Detailed: opts.Detailed})
	var (
		data []byte
		err  error
	)
	switch opts.Format {
	case FormatDOT:
		return []byte(dot), nil
	case FormatSVG:
		data, err = trace.RenderSVG(dot)
	case FormatPNG:
		data, err = trace.RenderPNG(dot, 2)
	case FormatPDF:
		data, err = trace.RenderPDF(dot)
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "render %s", opts.Format)
	}
	return data, nil
}
