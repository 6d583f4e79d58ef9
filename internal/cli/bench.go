package cli

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/bnbsearch/pkg/bnb"
	errs "github.com/matzehuels/bnbsearch/pkg/errors"
	"github.com/matzehuels/bnbsearch/pkg/knapsack"
	"github.com/matzehuels/bnbsearch/pkg/runner"
)

// defaultSampleLimit bounds sampling orderers in a bench without limits.
const defaultSampleLimit = 2000

// benchRow is the outcome of one orderer.
type benchRow struct {
	kind    bnb.OrdererKind
	summary *runner.Summary
	err     error
}

// benchCommand creates the bench command.
func (c *CLI) benchCommand() *cobra.Command {
	var (
		flags       searchFlags
		orderers    string
		sampleLimit int
		parallel    int
		verify      bool
		cached      bool
	)

	cmd := &cobra.Command{
		Use:   "bench <problem.toml>",
		Short: "Compare node orderers on one instance",
		Long: `Run the same instance with every node orderer concurrently and print a
comparison table.

Sampling orderers never exhaust the tree; when neither --timeout nor
--node-limit is set they stop after --sample-limit nodes.`,
		Example: `  bnbsearch bench cargo.toml
  bnbsearch bench cargo.toml --orderers bfs,dfs,plunging-bfs --verify`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeProblemFile,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, base, err := c.resolveConfig(cmd, &flags)
			if err != nil {
				return err
			}
			kinds, err := parseOrdererList(orderers)
			if err != nil {
				return err
			}
			p, err := knapsack.Load(args[0])
			if err != nil {
				return err
			}

			r, err := c.newRunner(ctx, cfg)
			if err != nil {
				return err
			}
			defer r.Close(context.Background())
			r.Logger = newLogger(os.Stderr, log.WarnLevel)

			spin := newSpinner(ctx, os.Stderr, fmt.Sprintf("Running %d orderers on %s", len(kinds), p.Name))
			spin.Start()
			start := time.Now()
			rows, err := runBench(ctx, r, p, base, kinds, benchOptions{
				sampleLimit: sampleLimit,
				parallel:    parallel,
				refresh:     !cached,
			})
			spin.Stop()
			if err != nil {
				return err
			}

			var optimum *knapsack.Solution
			if verify {
				optimum, err = knapsack.BruteForce(p)
				if err != nil {
					return err
				}
			}

			fmt.Println(StyleTitle.Render(fmt.Sprintf("%s · %d items · capacity %s", p.Name, len(p.Items), fmtScore(p.Capacity))))
			fmt.Println(benchTable(rows, optimum))
			printDetail("Total %s", time.Since(start).Round(time.Millisecond))
			return verifyRows(rows, optimum)
		},
	}

	addSearchFlags(cmd, &flags)
	cmd.Flags().StringVar(&orderers, "orderers", "", "comma-separated orderers (default: all)")
	cmd.Flags().IntVar(&sampleLimit, "sample-limit", defaultSampleLimit, "node limit for sampling orderers without a limit")
	cmd.Flags().IntVarP(&parallel, "parallel", "p", 0, "concurrent searches (0 = GOMAXPROCS)")
	cmd.Flags().BoolVar(&verify, "verify", false, "check optimal values against brute force")
	cmd.Flags().BoolVar(&cached, "cached", false, "reuse cached results")

	return cmd
}

type benchOptions struct {
	sampleLimit int
	parallel    int
	refresh     bool
}

// runBench solves p once per orderer. A configuration the solver rejects
// (e.g. eager with a sampling orderer) is reported in its row; any other
// error aborts the bench.
func runBench(ctx context.Context, r *runner.Runner, p *knapsack.Problem, base bnb.Config, kinds []bnb.OrdererKind, opts benchOptions) ([]benchRow, error) {
	rows := make([]benchRow, len(kinds))
	g, gctx := errgroup.WithContext(ctx)
	limit := opts.parallel
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	g.SetLimit(limit)

	for i, k := range kinds {
		g.Go(func() error {
			sc := base
			sc.Orderer.Kind = k
			if !k.Exhaustive() && sc.Timeout == 0 && sc.NodeLimit == 0 {
				sc.NodeLimit = opts.sampleLimit
			}
			s, err := r.Solve(gctx, p, sc, runner.Options{Refresh: opts.refresh})
			if errs.Is(err, errs.ErrCodeInvalidConfig) {
				rows[i] = benchRow{kind: k, err: err}
				return nil
			}
			if err != nil {
				return err
			}
			rows[i] = benchRow{kind: k, summary: s}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rows, nil
}

func parseOrdererList(s string) ([]bnb.OrdererKind, error) {
	if s == "" {
		return bnb.OrdererKinds, nil
	}
	var kinds []bnb.OrdererKind
	for _, name := range strings.Split(s, ",") {
		k, err := bnb.ParseOrdererKind(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

func benchTable(rows []benchRow, optimum *knapsack.Solution) string {
	headers := []string{"Orderer", "Status", "Value", "Bound", "Gap", "Nodes", "Fathomed", "Time"}
	if optimum != nil {
		headers = append(headers, "Verified")
	}
	t := newTable(headers...)
	for _, row := range rows {
		if row.err != nil {
			cells := []string{string(row.kind), "n/a", "-", "-", "-", "-", "-", "-"}
			if optimum != nil {
				cells = append(cells, "-")
			}
			t.Row(cells...)
			continue
		}
		s := row.summary
		value := "-"
		if s.HasSolution {
			value = fmtScore(s.Value)
		}
		status := s.Status
		if s.Cached {
			status += " (" + iconCached + ")"
		}
		cells := []string{
			string(row.kind),
			status,
			value,
			fmtScore(s.UpperBound),
			fmtGap(s.Gap),
			fmt.Sprint(s.Processed),
			fmt.Sprint(s.Fathomed),
			s.Duration.Round(time.Microsecond).String(),
		}
		if optimum != nil {
			cells = append(cells, verifyMark(s, optimum))
		}
		t.Row(cells...)
	}
	return t.Render()
}

func verifyMark(s *runner.Summary, optimum *knapsack.Solution) string {
	switch {
	case !s.Optimal():
		return "-"
	case s.Value == optimum.Value:
		return iconSuccess
	}
	return iconError
}

// verifyRows fails when a run claimed optimality with a wrong value.
func verifyRows(rows []benchRow, optimum *knapsack.Solution) error {
	if optimum == nil {
		return nil
	}
	for _, row := range rows {
		if row.summary != nil && verifyMark(row.summary, optimum) == iconError {
			return errs.New(errs.ErrCodeInternal, "orderer %s claimed optimum %s, brute force found %s",
				row.kind, fmtScore(row.summary.Value), fmtScore(optimum.Value))
		}
	}
	return nil
}
