package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/bnbsearch/pkg/history"
)

// historyCommand creates the history command.
func (c *CLI) historyCommand() *cobra.Command {
	var (
		limit   int
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			store, err := newHistory(ctx, cfg)
			if err != nil {
				return err
			}
			defer store.Close(context.Background())

			records, err := store.List(ctx, limit)
			if err != nil {
				return err
			}

			if jsonOut {
				data, err := json.MarshalIndent(records, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(data))
				return nil
			}
			if len(records) == 0 {
				printInfo("No runs recorded")
				return nil
			}
			fmt.Println(historyTable(records))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "number of runs to show (0 = all)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print records as JSON")

	return cmd
}

func historyTable(records []history.Record) string {
	t := newTable("Run", "Started", "Problem", "Search", "Status", "Value", "Gap", "Nodes", "Time", "")
	for _, r := range records {
		value := "-"
		if r.HasIncumbent {
			value = fmtScore(r.Score)
		}
		source := iconFresh
		if r.Cached {
			source = iconCached
		}
		id := r.ID
		if len(id) > 8 {
			id = id[:8]
		}
		t.Row(
			id,
			r.StartedAt.Local().Format("2006-01-02 15:04"),
			r.Problem,
			r.Solver+"/"+r.Orderer,
			r.Status,
			value,
			fmtGap(r.Gap),
			fmt.Sprint(r.Processed),
			r.Duration.String(),
			source,
		)
	}
	return t.Render()
}
