package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"echosurvey/internal/ledger"
)

func newReportCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var runID string

	cmd := &cobra.Command{
		Use:   "report <surveydir>",
		Short: "Show recent runs and the failures of the latest one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			layout, err := ctx.openLayout(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			path := resolveSurveyPath(layout.Root, cfg.Ledger.File)
			if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
				fmt.Fprintln(out, "no runs recorded")
				return nil
			}

			store, err := ledger.Open(path)
			if err != nil {
				return fmt.Errorf("open run ledger: %w", err)
			}
			defer store.Close()

			runCtx := cmd.Context()
			runs, err := store.Runs(runCtx, limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "no runs recorded")
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					shortID(run.ID),
					run.Command,
					run.Status,
					run.StartedAt.Local().Format("2006-01-02 15:04:05"),
					formatDuration(run.Duration()),
					formatCount(run.Succeeded),
					formatCount(run.Failed),
					formatCount(run.Skipped),
				})
			}
			fmt.Fprintln(out, renderTable(out,
				[]string{"Run", "Command", "Status", "Started", "Duration", "Succeeded", "Failed", "Skipped"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
			))

			selected := runs[0]
			if id := strings.TrimSpace(runID); id != "" {
				run, err := findRun(runs, id)
				if err != nil {
					loaded, loadErr := store.Run(runCtx, id)
					if loadErr != nil {
						return fmt.Errorf("run %s: %w", id, loadErr)
					}
					run = *loaded
				}
				selected = run
			}

			items, err := store.Items(runCtx, selected.ID, ledger.OutcomeFailed)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Fprintf(out, "No failures in run %s\n", shortID(selected.ID))
				return nil
			}
			fmt.Fprintf(out, "Failures in run %s (%s):\n", shortID(selected.ID), selected.Command)
			fmt.Fprintln(out, renderTable(out, []string{"Stage", "Item", "Class", "Reason"}, itemRows(items), nil))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of runs to list")
	cmd.Flags().StringVar(&runID, "run", "", "Show failures for this run ID or ID prefix")
	return cmd
}

func findRun(runs []ledger.Run, prefix string) (ledger.Run, error) {
	for _, run := range runs {
		if strings.HasPrefix(run.ID, prefix) {
			return run, nil
		}
	}
	return ledger.Run{}, ledger.ErrNotFound
}
