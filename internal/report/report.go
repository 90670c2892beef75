// Package report assembles human and machine readable summaries of journal
// runs.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"keel/internal/journal"
	"keel/internal/services"
)

// Journal is the read side of the run journal.
type Journal interface {
	Run(ctx context.Context, runID string) (*journal.Run, error)
	LatestRun(ctx context.Context, op journal.Op) (*journal.Run, error)
	Records(ctx context.Context, runID string) ([]journal.Record, error)
	Summarize(ctx context.Context, runID string) (journal.Summary, error)
}

// Report is one run with its outcome summary and the records that need
// attention.
type Report struct {
	Run      journal.Run      `json:"run"`
	Summary  journal.Summary  `json:"summary"`
	Problems []journal.Record `json:"problems,omitempty"`
}

// Build assembles the report for a run. An empty runID selects the most
// recent run, optionally restricted to one operation.
func Build(ctx context.Context, store Journal, runID string, op journal.Op) (*Report, error) {
	var run *journal.Run
	var err error
	if runID != "" {
		run, err = store.Run(ctx, runID)
	} else {
		run, err = store.LatestRun(ctx, op)
	}
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, services.Wrap(services.ErrNotFound, "report", "build", "no runs journalled", nil)
	}

	summary, err := store.Summarize(ctx, run.ID)
	if err != nil {
		return nil, err
	}
	records, err := store.Records(ctx, run.ID)
	if err != nil {
		return nil, err
	}

	report := &Report{Run: *run, Summary: summary}
	for _, record := range records {
		switch record.Outcome {
		case journal.OutcomeFailed, journal.OutcomeReview:
			report.Problems = append(report.Problems, record)
		}
	}
	return report, nil
}

// JSON renders the report for machine consumption.
func (r *Report) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// Duration returns the run's elapsed time, or zero when still unfinished.
func (r *Report) Duration() time.Duration {
	if r.Run.FinishedAt == nil {
		return 0
	}
	return r.Run.FinishedAt.Sub(r.Run.StartedAt)
}

// SummaryRows returns table rows of outcome counts in a stable order.
func (r *Report) SummaryRows() [][]string {
	order := []journal.Outcome{
		journal.OutcomePassed,
		journal.OutcomeRepaired,
		journal.OutcomeUpdated,
		journal.OutcomeConfirmed,
		journal.OutcomeWithdrawn,
		journal.OutcomeRemoved,
		journal.OutcomeSkipped,
		journal.OutcomeFailed,
		journal.OutcomeReview,
	}
	var rows [][]string
	for _, outcome := range order {
		if count, ok := r.Summary[outcome]; ok {
			rows = append(rows, []string{string(outcome), fmt.Sprint(count)})
		}
	}
	return rows
}

// ProblemRows returns table rows for the records that need attention.
func (r *Report) ProblemRows() [][]string {
	rows := make([][]string, 0, len(r.Problems))
	for _, record := range r.Problems {
		rows = append(rows, []string{record.Target, string(record.Outcome), record.Detail})
	}
	return rows
}
