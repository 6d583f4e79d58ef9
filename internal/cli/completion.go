package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/bnbsearch/pkg/bnb"
	"github.com/matzehuels/bnbsearch/pkg/runner"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for bnbsearch.

Besides subcommands and flags, the scripts complete problem files (*.toml),
solver and orderer names, and trace output formats.

  $ source <(bnbsearch completion bash)
  $ bnbsearch completion zsh > "${fpath[1]}/_bnbsearch"
  $ bnbsearch completion fish > ~/.config/fish/completions/bnbsearch.fish
  PS> bnbsearch completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}

	return cmd
}

// completeProblemFile completes the single problem argument with TOML files.
func completeProblemFile(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return []string{"toml"}, cobra.ShellCompDirectiveFilterFileExt
}

// completeSearchFlags registers value completions for the flags added by
// addSearchFlags.
func completeSearchFlags(cmd *cobra.Command) {
	orderers := make([]string, len(bnb.OrdererKinds))
	for i, k := range bnb.OrdererKinds {
		orderers[i] = string(k)
	}
	values := map[string][]string{
		"solver":      {string(bnb.SolverLazy), string(bnb.SolverEager)},
		"orderer":     orderers,
		"child-order": {string(bnb.ChildOrderLPGuided), string(bnb.ChildOrderFixed)},
	}
	for name, choices := range values {
		_ = cmd.RegisterFlagCompletionFunc(name, cobra.FixedCompletions(choices, cobra.ShellCompDirectiveNoFileComp))
	}
}

// completeTraceFormat registers the output formats of the trace command.
func completeTraceFormat(cmd *cobra.Command) {
	formats := []string{runner.FormatDOT, runner.FormatSVG, runner.FormatPNG, runner.FormatPDF}
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(formats, cobra.ShellCompDirectiveNoFileComp))
}
