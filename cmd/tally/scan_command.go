package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"tally/internal/admission"
	"tally/internal/aggregate"
	"tally/internal/identity"
	"tally/internal/session"
	"tally/internal/store"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var (
		rosterPath string
		community  string
		owner      string
		workflow   string
		picks      []string
		acceptTop  bool
	)

	cmd := &cobra.Command{
		Use:   "scan <image>...",
		Short: "Run OCR over result screenshots and store the scores",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			roster, err := identity.LoadRoster(rosterPath)
			if err != nil {
				return err
			}
			resolved, err := parsePicks(picks)
			if err != nil {
				return err
			}

			app, err := ctx.buildApp(roster)
			if err != nil {
				return err
			}
			defer app.Close()

			record, views, err := runScan(cmd, app, scanRequest{
				community: community,
				owner:     owner,
				workflow:  workflow,
				images:    args,
				picks:     resolved,
				acceptTop: acceptTop,
			})
			if err != nil {
				return err
			}
			printScanResult(cmd, record, views)
			return nil
		},
	}

	cmd.Flags().StringVar(&rosterPath, "roster", "", "Path to the member roster file")
	cmd.Flags().StringVar(&community, "community", "default", "Community the capture belongs to")
	cmd.Flags().StringVar(&owner, "owner", "cli", "Requester identifier")
	cmd.Flags().StringVar(&workflow, "workflow", "capture", "Workflow label stored with the results")
	cmd.Flags().StringArrayVar(&picks, "pick", nil, "Resolve a score conflict, as name=value (repeatable)")
	cmd.Flags().BoolVar(&acceptTop, "accept-top", false, "Resolve remaining conflicts with their most frequent value")
	_ = cmd.MarkFlagRequired("roster")

	return cmd
}

type scanRequest struct {
	community string
	owner     string
	workflow  string
	images    []string
	picks     map[string]int64
	acceptTop bool
}

func runScan(cmd *cobra.Command, app *app, req scanRequest) (store.Record, session.View, error) {
	ctx := cmd.Context()

	decision := app.coord.RequestAccess(ctx, req.community, req.owner, req.workflow)
	if decision.State != admission.StateGranted && decision.State != admission.StateReserved {
		return store.Record{}, session.View{}, fmt.Errorf("engine busy for community %s (state %s)", req.community, decision.State)
	}
	if _, err := app.manager.Create(ctx, req.community, req.owner, req.workflow); err != nil {
		return store.Record{}, session.View{}, err
	}
	abort := func(err error) (store.Record, session.View, error) {
		_, _ = app.manager.Cancel(ctx, req.owner)
		return store.Record{}, session.View{}, err
	}

	batch := make([][]byte, 0, len(req.images))
	for _, path := range req.images {
		data, err := os.ReadFile(path)
		if err != nil {
			return abort(fmt.Errorf("read image %s: %w", path, err))
		}
		batch = append(batch, data)
	}

	limit := app.cfg.Session.MaxBatchImages
	for len(batch) > 0 {
		chunk := batch
		if limit > 0 && len(chunk) > limit {
			chunk = chunk[:limit]
		}
		summary, err := app.manager.SubmitImages(ctx, req.owner, chunk)
		if err != nil {
			return abort(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Processed %d image(s), %d failed\n", summary.Processed, summary.Failed)
		batch = batch[len(chunk):]
	}

	if _, err := app.manager.Done(req.owner); err != nil {
		return abort(err)
	}
	view, err := app.manager.Analyze(req.owner)
	if err != nil {
		return abort(err)
	}

	if view.Stage == session.StageResolvingConflicts {
		view, err = resolveConflicts(app, req, view)
		if err != nil {
			printConflicts(cmd, view.Conflicts)
			return abort(err)
		}
	}

	record, err := app.manager.Confirm(ctx, req.owner)
	if err != nil {
		return store.Record{}, session.View{}, err
	}
	return record, view, nil
}

func resolveConflicts(app *app, req scanRequest, view session.View) (session.View, error) {
	for _, conflict := range view.Conflicts {
		value, picked := req.picks[conflict.Name]
		switch {
		case picked:
		case req.acceptTop:
			value = conflict.Candidates[0].Value
		default:
			return view, fmt.Errorf("unresolved score conflicts remain; re-run with --pick %q or --accept-top", conflict.Name+"=<value>")
		}
		next, err := app.manager.ResolveConflict(req.owner, conflict.Name, value)
		if err != nil {
			if errors.Is(err, aggregate.ErrUnknownValue) {
				return view, fmt.Errorf("pick for %s: value %d was not observed", conflict.Name, value)
			}
			return view, err
		}
		view = next
	}
	return view, nil
}

func parsePicks(picks []string) (map[string]int64, error) {
	if len(picks) == 0 {
		return nil, nil
	}
	out := make(map[string]int64, len(picks))
	for _, pick := range picks {
		name, raw, ok := strings.Cut(pick, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --pick %q, expected name=value", pick)
		}
		value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid --pick %q: %w", pick, err)
		}
		out[name] = value
	}
	return out, nil
}

func printConflicts(cmd *cobra.Command, conflicts []aggregate.Conflict) {
	if len(conflicts) == 0 {
		return
	}
	rows := make([]table.Row, 0, len(conflicts))
	for _, conflict := range conflicts {
		parts := make([]string, 0, len(conflict.Candidates))
		for _, candidate := range conflict.Candidates {
			parts = append(parts, fmt.Sprintf("%d (seen %d×)", candidate.Value, candidate.Count))
		}
		rows = append(rows, table.Row{conflict.Name, strings.Join(parts, ", ")})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(table.Row{"Name", "Observed Values"}, rows))
}

func printScanResult(cmd *cobra.Command, record store.Record, view session.View) {
	out := cmd.OutOrStdout()

	rows := make([]table.Row, 0, len(record.Totals))
	for _, name := range sortedNames(record.Totals) {
		rows = append(rows, table.Row{name, record.Totals[name]})
	}
	fmt.Fprintln(out, renderTable(table.Row{"Name", "Score"}, rows, 2))
	fmt.Fprintf(out, "Saved capture %s (%d names)\n", record.SessionID, len(record.Totals))

	if len(view.Unmatched) > 0 {
		fmt.Fprintln(out, "Unmatched names kept verbatim:")
		for _, match := range view.Unmatched {
			fmt.Fprintf(out, "  %s (closest: %s, score %.2f)\n", match.Token, match.Candidate, match.Score)
		}
	}
	if len(view.Failures) > 0 {
		fmt.Fprintln(out, "Failed images:")
		for _, failure := range view.Failures {
			fmt.Fprintf(out, "  image %d: %s\n", failure.Image, failure.Reason)
		}
	}
}
