package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"echosurvey/internal/logging"
	"echosurvey/internal/survey"
	"echosurvey/internal/workflow"
)

type pipelineFunc func(context.Context, *workflow.Runner) (*workflow.Report, error)

func newInitCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "init <basedir> <cruise>",
		Short: "Create the survey directory layout",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			layout, err := ctx.surveyLayout(args[0], args[1])
			if err != nil {
				return err
			}
			if err := layout.Ensure(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Survey root: %s\n", layout.Root)
			for _, dir := range layout.Dirs() {
				fmt.Fprintf(out, "  %s\n", dir)
			}
			return nil
		},
	}
}

func newConvertCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "convert <basedir> <cruise>",
		Short: "Convert raw captures to netCDF",
		Long: "Scaffold the survey layout, then decode every raw capture without a converted file. " +
			"Failed captures get an error log in the error directory.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			layout, err := ctx.surveyLayout(args[0], args[1])
			if err != nil {
				return err
			}
			return ctx.runPipeline(cmd, layout, true, func(c context.Context, r *workflow.Runner) (*workflow.Report, error) {
				return r.Convert(c)
			})
		},
	}
}

func newSurveyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "survey <basedir> <cruise>",
		Short: "Append survey summary rows and ping-interval charts",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			layout, err := ctx.surveyLayout(args[0], args[1])
			if err != nil {
				return err
			}
			return ctx.runPipeline(cmd, layout, false, func(c context.Context, r *workflow.Runner) (*workflow.Report, error) {
				return r.Survey(c)
			})
		},
	}
}

func newDailyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "daily <surveydir> <date>",
		Short:   "Calibrate one day and plot its echograms and ship tracks",
		Example: "  echosurvey daily /data/shimada/sh1707 D20170720",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			layout, err := ctx.openLayout(args[0])
			if err != nil {
				return err
			}
			date := args[1]
			return ctx.runPipeline(cmd, layout, false, func(c context.Context, r *workflow.Runner) (*workflow.Report, error) {
				return r.Daily(c, date)
			})
		},
	}
}

func newTenDayCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "tenday <surveydir>",
		Short: "Plot ship tracks for every ten observation dates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			layout, err := ctx.openLayout(args[0])
			if err != nil {
				return err
			}
			return ctx.runPipeline(cmd, layout, false, func(c context.Context, r *workflow.Runner) (*workflow.Report, error) {
				return r.TenDay(c)
			})
		},
	}
}

func (c *commandContext) runPipeline(cmd *cobra.Command, layout survey.Layout, scaffold bool, fn pipelineFunc) (err error) {
	sess, err := c.openSession(cmd, layout, scaffold)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			sess.logger.Warn("session cleanup failed", logging.Error(cerr))
		}
	}()

	report, runErr := fn(cmd.Context(), sess.runner)
	if report != nil {
		printReport(cmd.OutOrStdout(), report)
	}
	return runErr
}
