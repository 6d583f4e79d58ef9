package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/bnbsearch/pkg/errors"
	"github.com/matzehuels/bnbsearch/pkg/knapsack"
	"github.com/matzehuels/bnbsearch/pkg/runner"
)

// traceCommand creates the trace command.
func (c *CLI) traceCommand() *cobra.Command {
	var (
		flags    searchFlags
		output   string
		format   string
		detailed bool
		maxNodes int
		refresh  bool
	)

	cmd := &cobra.Command{
		Use:   "trace <problem.toml>",
		Short: "Render the explored search tree",
		Long: `Solve an instance while recording every processed node and render the
tree. Nodes are colored by outcome and incumbent nodes are outlined.

The format follows the output extension (.dot, .svg, .png, .pdf) unless
--format is given. PNG and PDF need rsvg-convert from librsvg.`,
		Example: `  bnbsearch trace camping.toml -O tree.svg
  bnbsearch trace cargo.toml -o dfs -O tree.dot --detailed`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeProblemFile,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if format == "" {
				format = formatFromPath(output)
			}
			if output == "" {
				output = "tree." + format
			}
			if err := errs.ValidatePath(output); err != nil {
				return err
			}

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

			spin := newSpinner(ctx, os.Stderr, "Tracing "+p.Name)
			spin.Start()
			art, err := r.Trace(ctx, p, sc, runner.TraceOptions{
				Format:   format,
				Detailed: detailed,
				MaxNodes: maxNodes,
				Refresh:  refresh,
			})
			spin.Stop()
			if err != nil {
				return err
			}

			if err := os.WriteFile(output, art.Data, 0644); err != nil {
				return errs.Wrap(errs.ErrCodeStorage, err, "write %s", output)
			}

			if art.Tree != nil {
				printSuccess("Rendered %d nodes, depth %d", len(art.Tree.Nodes), art.Tree.MaxDepth())
				if art.Tree.Truncated {
					printWarning("Tree truncated; raise --max-nodes to record more")
				}
				printSummary(art.Summary)
			} else {
				printSuccess("Rendered search tree")
				printRunStats(0, 0, true)
			}
			printFile(output)
			return nil
		},
	}

	addSearchFlags(cmd, &flags)
	cmd.Flags().StringVarP(&output, "output", "O", "", "output file (default tree.<format>)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: dot, svg, png, pdf")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "label nodes with bounds and visit counts")
	cmd.Flags().IntVar(&maxNodes, "max-nodes", 0, "maximum recorded nodes (0 = default)")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore cached renderings")
	completeTraceFormat(cmd)

	return cmd
}

// formatFromPath infers the output format from the file extension.
func formatFromPath(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	switch ext {
	case runner.FormatDOT, runner.FormatSVG, runner.FormatPNG, runner.FormatPDF:
		return ext
	case "gv":
		return runner.FormatDOT
	}
	return runner.FormatSVG
}
