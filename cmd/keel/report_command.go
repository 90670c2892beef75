package main

import (
	"github.com/spf13/cobra"

	"keel/internal/journal"
	"keel/internal/report"
)

func newReportCommand(ctx *commandContext) *cobra.Command {
	var runID string
	var opName string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show the outcome of a journalled run",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openJournal()
			if err != nil {
				return err
			}
			defer store.Close()

			built, err := report.Build(cmd.Context(), store, runID, journal.Op(opName))
			if err != nil {
				return err
			}
			return renderReport(cmd, built, ctx.jsonOutput())
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "Run identifier (default the most recent run)")
	cmd.Flags().StringVar(&opName, "op", "", "Restrict the latest-run lookup to one operation")
	return cmd
}
