package main

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"keel/internal/journal"
	"keel/internal/report"
)

const (
	ansiReset = "\x1b[0m"
	ansiRed   = "\x1b[31m"
	ansiGreen = "\x1b[32m"
)

// finishRun stamps the run, renders its report, and maps data failures to the
// check-failure exit status.
func finishRun(cmd *cobra.Command, ctx context.Context, store *journal.Store, runID string, jsonOut bool) error {
	if err := store.FinishRun(ctx, runID); err != nil {
		return err
	}

	built, err := report.Build(ctx, store, runID, "")
	if err != nil {
		return err
	}
	if err := renderReport(cmd, built, jsonOut); err != nil {
		return err
	}
	if built.Summary.Failed() {
		return errChecksFailed
	}
	return nil
}

func renderReport(cmd *cobra.Command, built *report.Report, jsonOut bool) error {
	if jsonOut {
		return writeJSON(cmd, built)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %s (%s), started %s\n",
		built.Run.ID, built.Run.Op, humanize.Time(built.Run.StartedAt))
	if duration := built.Duration(); duration > 0 {
		fmt.Fprintf(out, "Finished in %s\n", duration.Round(time.Millisecond))
	}

	if rows := built.SummaryRows(); len(rows) > 0 {
		fmt.Fprintln(out, renderTable([]string{"outcome", "count"}, rows, 1))
	} else {
		fmt.Fprintln(out, "No targets processed")
	}
	if rows := built.ProblemRows(); len(rows) > 0 {
		fmt.Fprintln(out, renderTable([]string{"target", "outcome", "detail"}, rows))
	}

	fmt.Fprintln(out, statusLine(built.Summary, isTerminal(out)))
	return nil
}

func statusLine(summary journal.Summary, colorize bool) string {
	if summary.Failed() {
		line := fmt.Sprintf("FAIL: %d of %d targets need attention",
			summary[journal.OutcomeFailed]+summary[journal.OutcomeReview], summary.Total())
		if colorize {
			return ansiRed + line + ansiReset
		}
		return line
	}
	line := fmt.Sprintf("OK: %d targets", summary.Total())
	if colorize {
		return ansiGreen + line + ansiReset
	}
	return line
}
