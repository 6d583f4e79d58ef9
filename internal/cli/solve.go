package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/bnbsearch/pkg/bnb"
	"github.com/matzehuels/bnbsearch/pkg/knapsack"
	"github.com/matzehuels/bnbsearch/pkg/runner"
)

// solveCommand creates the solve command.
func (c *CLI) solveCommand() *cobra.Command {
	var (
		flags   searchFlags
		refresh bool
		cold    bool
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "solve <problem.toml>",
		Short: "Solve a knapsack instance",
		Long: `Solve a 0/1 knapsack instance by branch and bound.

The search starts from the greedy packing unless --cold is given. Proven
optimal results are cached by problem content and search settings.`,
		Example: `  bnbsearch solve camping.toml
  bnbsearch solve cargo.toml -o plunging-bfs --timeout 30s
  bnbsearch solve cargo.toml -o random-walk -n 5000 --seed 7`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeProblemFile,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, sc, err := c.resolveConfig(cmd, &flags)
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

			spin := newSpinner(ctx, os.Stderr, "Solving "+p.Name)
			if !jsonOut {
				spin.Start()
			}
			eval := bnb.IncumbentEvaluatorFunc(func(_ context.Context, sol bnb.Solution, score float64) {
				if sol != nil {
					spin.SetMessage("Solving %s · incumbent %s", p.Name, fmtScore(score))
				}
			})

			prog := newProgress(c.loggerFor(ctx))
			s, err := r.Solve(ctx, p, sc, runner.Options{Refresh: refresh, Cold: cold, Evaluator: eval})
			spin.Stop()
			if s == nil {
				return err
			}
			if err != nil {
				printWarning("Search interrupted, reporting the best packing so far")
			} else {
				prog.done("Solved " + p.Name)
			}

			if jsonOut {
				data, mErr := json.MarshalIndent(s, "", "  ")
				if mErr != nil {
					return mErr
				}
				fmt.Println(string(data))
				return err
			}
			printSummary(s)
			if err == nil {
				printNewline()
				printNextStep("Render the search tree", "bnbsearch trace "+args[0]+" -O tree.svg")
			}
			return err
		},
	}

	addSearchFlags(cmd, &flags)
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore cached results")
	cmd.Flags().BoolVar(&cold, "cold", false, "start without the greedy incumbent")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the result as JSON")

	return cmd
}

// printSummary prints the outcome of one run.
func printSummary(s *runner.Summary) {
	switch {
	case !s.HasSolution:
		printWarning("No feasible packing found")
	case s.Optimal():
		printSuccess("Optimal value %s", StyleNumber.Render(fmtScore(s.Value)))
	default:
		printWarning("Best value %s, not proven optimal", fmtScore(s.Value))
	}

	if s.HasSolution {
		items := strings.Join(s.Items, ", ")
		if items == "" {
			items = "(none)"
		}
		printKeyValue("Items", items)
		printKeyValue("Weight", fmtScore(s.Weight))
	}
	printKeyValue("Upper bound", fmtScore(s.UpperBound))
	printKeyValue("Gap", fmtGap(s.Gap))
	printKeyValue("Search", s.Solver+" / "+s.Orderer)
	if s.TimedOut {
		printDetail("stopped by timeout")
	}
	if s.NodeLimited {
		printDetail("stopped by node limit")
	}
	printRunStats(s.Processed, s.Duration, s.Cached)
}
