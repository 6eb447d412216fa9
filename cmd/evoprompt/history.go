package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/XiaoConstantine/evoprompt-go/pkg/history"
)

func newHistoryCommand() *cobra.Command {
	var (
		dbPath string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List or inspect archived optimization runs",
		Args:  cobra.MaximumNArgs(1),
		Example: `  # List recent runs
  evoprompt history --db runs.db

  # Show one run in full
  evoprompt history 4f3a... --db runs.db`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := history.NewStore(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			if len(args) == 1 {
				return showRun(cmd, store, args[0])
			}
			return listRuns(cmd, store, limit)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "runs.db", "SQLite file holding the run archive")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to list")

	return cmd
}

func listRuns(cmd *cobra.Command, store *history.Store, limit int) error {
	runs, err := store.ListRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no archived runs")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTARTED\tSTATUS\tSCORE\tMODEL\tPROMPT")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.3f\t%s\t%s\n",
			shortID(run.ID),
			run.StartedAt.Local().Format("2006-01-02 15:04"),
			run.Status,
			run.BestScore,
			run.Model,
			truncate(run.SeedPrompt, 40))
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, store *history.Store, runID string) error {
	run, err := store.GetRun(cmd.Context(), runID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run:        %s\n", run.ID)
	fmt.Fprintf(out, "Started:    %s\n", run.StartedAt.Local().Format("2006-01-02 15:04:05"))
	if run.FinishedAt != nil {
		fmt.Fprintf(out, "Finished:   %s\n", run.FinishedAt.Local().Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintf(out, "Status:     %s\n", run.Status)
	fmt.Fprintf(out, "Provider:   %s (%s)\n", run.Provider, run.Model)
	if run.Goal != "" {
		fmt.Fprintf(out, "Goal:       %s\n", run.Goal)
	}
	fmt.Fprintf(out, "Evaluated:  %d prompts over %d generations\n", run.PromptsEvaluated, run.Generations)
	fmt.Fprintf(out, "Tokens:     %d in / %d out\n", run.Usage.InputTokens, run.Usage.OutputTokens)
	fmt.Fprintf(out, "\nSeed prompt:\n%s\n", run.SeedPrompt)
	if run.BestPrompt != "" {
		fmt.Fprintf(out, "\nBest prompt (score %.3f):\n%s\n", run.BestScore, run.BestPrompt)
	}
	return nil
}

func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}

func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
