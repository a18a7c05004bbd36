package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"tally/internal/store"
)

func newResultsCommand(ctx *commandContext) *cobra.Command {
	var (
		community string
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "results",
		Short: "List stored capture results",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				summaries, err := st.ListRecent(cmd.Context(), community, limit)
				if err != nil {
					return err
				}
				if len(summaries) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No stored captures")
					return nil
				}
				rows := make([]table.Row, 0, len(summaries))
				for _, s := range summaries {
					rows = append(rows, table.Row{
						s.ID,
						s.CompletedAt.Local().Format("2006-01-02 15:04"),
						s.CommunityID,
						s.OwnerID,
						s.Workflow,
						s.Names,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					table.Row{"ID", "Completed", "Community", "Owner", "Workflow", "Names"}, rows, 1, 6))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&community, "community", "", "Only list captures for this community")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of captures to list")

	cmd.AddCommand(newResultsShowCommand(ctx))
	return cmd
}

func newResultsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one capture with its per-round breakdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid capture id %q", args[0])
			}
			return ctx.withStore(func(st *store.Store) error {
				record, err := st.LoadRecord(cmd.Context(), id)
				if err != nil {
					return err
				}
				printRecord(cmd, record)
				return nil
			})
		},
	}
}

func printRecord(cmd *cobra.Command, record store.Record) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Capture %s (%s, community %s, owner %s)\n",
		record.SessionID, record.Workflow, record.CommunityID, record.OwnerID)
	fmt.Fprintf(out, "Completed %s, %d round(s)\n",
		record.CompletedAt.Local().Format("2006-01-02 15:04"), len(record.Rounds))

	headers := table.Row{"Name", "Total"}
	rightAligned := []int{2}
	for i := range record.Rounds {
		headers = append(headers, fmt.Sprintf("R%d", i+1))
		rightAligned = append(rightAligned, i+3)
	}

	rows := make([]table.Row, 0, len(record.Totals))
	for _, name := range sortedNames(record.Totals) {
		row := table.Row{name, record.Totals[name]}
		for _, round := range record.Rounds {
			if score, ok := round[name]; ok {
				row = append(row, score)
			} else {
				row = append(row, "-")
			}
		}
		rows = append(rows, row)
	}
	fmt.Fprintln(out, renderTable(headers, rows, rightAligned...))

	if len(record.Unresolved) > 0 {
		fmt.Fprintf(out, "Unresolved names: %s\n", strings.Join(record.Unresolved, ", "))
	}
}

func (c *commandContext) withStore(fn func(*store.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	st, err := store.Open(cfg)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st)
}
