package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"echosurvey/internal/config"
	"echosurvey/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor [surveydir]",
		Short: "Check tools, map layers, and an optional survey directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			var surveyDir string
			if len(args) == 1 {
				surveyDir, err = config.ExpandPath(args[0])
				if err != nil {
					return fmt.Errorf("resolve survey directory: %w", err)
				}
			}

			results := preflight.RunAll(cmd.Context(), cfg, surveyDir)
			rows := make([][]string, 0, len(results))
			for _, r := range results {
				status := "ok"
				if !r.Passed {
					status = "FAIL"
				}
				rows = append(rows, []string{r.Name, status, r.Detail})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(out, []string{"Check", "Status", "Detail"}, rows, nil))
			if preflight.Failed(results) {
				return errors.New("one or more checks failed")
			}
			fmt.Fprintln(out, "All checks passed")
			return nil
		},
	}
}
