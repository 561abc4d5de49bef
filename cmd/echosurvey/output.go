package main

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"echosurvey/internal/ledger"
	"echosurvey/internal/workflow"
)

var (
	printer   = message.NewPrinter(language.English)
	titleCase = cases.Title(language.English)
)

func stageLabel(stage string) string {
	return titleCase.String(strings.ReplaceAll(stage, "_", " "))
}

func formatCount(n int) string {
	return printer.Sprintf("%d", n)
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return d.Round(100 * time.Millisecond).String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// printReport writes the per-stage tally and the failure list of a run.
func printReport(out io.Writer, report *workflow.Report) {
	fmt.Fprintf(out, "%s run %s finished in %s\n", titleCase.String(report.Command), shortID(report.RunID), formatDuration(report.Duration()))

	type tally struct{ ok, failed, skipped int }
	var stages []string
	counts := map[string]*tally{}
	for _, item := range report.Items {
		t, seen := counts[item.Stage]
		if !seen {
			t = &tally{}
			counts[item.Stage] = t
			stages = append(stages, item.Stage)
		}
		switch item.Outcome {
		case ledger.OutcomeSucceeded:
			t.ok++
		case ledger.OutcomeFailed:
			t.failed++
		case ledger.OutcomeSkipped:
			t.skipped++
		}
	}
	if len(stages) == 0 {
		fmt.Fprintln(out, "Nothing to do")
		return
	}

	rows := make([][]string, 0, len(stages))
	for _, stage := range stages {
		t := counts[stage]
		rows = append(rows, []string{stageLabel(stage), formatCount(t.ok), formatCount(t.failed), formatCount(t.skipped)})
	}
	fmt.Fprintln(out, renderTable(out,
		[]string{"Stage", "Succeeded", "Failed", "Skipped"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight},
	))

	failures := report.Failures()
	if len(failures) == 0 {
		return
	}
	failureRows := make([][]string, 0, len(failures))
	for _, f := range failures {
		reason := ""
		if f.Err != nil {
			reason = f.Err.Error()
		}
		failureRows = append(failureRows, []string{stageLabel(f.Stage), f.Item, string(f.Class), reason})
	}
	fmt.Fprintln(out, "Failures:")
	fmt.Fprintln(out, renderTable(out, []string{"Stage", "Item", "Class", "Reason"}, failureRows, nil))
}

func itemRows(items []ledger.Item) [][]string {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{stageLabel(item.Stage), item.Item, item.FailureClass, item.Message})
	}
	slices.SortStableFunc(rows, func(a, b []string) int { return strings.Compare(a[0], b[0]) })
	return rows
}
