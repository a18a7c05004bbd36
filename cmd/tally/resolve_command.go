package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"tally/internal/identity"
)

func newResolveCommand(ctx *commandContext) *cobra.Command {
	var rosterPath string

	cmd := &cobra.Command{
		Use:   "resolve <name>...",
		Short: "Show how noisy name tokens map onto the roster",
		Long: "Resolve runs the fuzzy identity matcher over the given tokens " +
			"without touching the OCR engine, which makes it useful for tuning " +
			"the matching thresholds against real screenshot misreads.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			roster, err := identity.LoadRoster(rosterPath)
			if err != nil {
				return err
			}

			resolver := identity.NewResolver(cfg.Matching)
			rows := make([]table.Row, 0, len(args))
			for _, token := range args {
				match := resolver.Resolve(token, roster)
				matched := "-"
				if match.Accepted {
					matched = match.Member.DisplayName
				}
				rows = append(rows, table.Row{
					token,
					matched,
					match.Candidate,
					fmt.Sprintf("%.3f", match.Score),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				table.Row{"Token", "Matched", "Closest", "Score"}, rows, 4))
			return nil
		},
	}

	cmd.Flags().StringVar(&rosterPath, "roster", "", "Path to the member roster file")
	_ = cmd.MarkFlagRequired("roster")

	return cmd
}
