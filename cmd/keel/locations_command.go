package main

import (
	"github.com/spf13/cobra"

	"keel/internal/journal"
	"keel/internal/locations"
)

func newLocationsCommand(ctx *commandContext) *cobra.Command {
	locationsCmd := &cobra.Command{
		Use:   "locations",
		Short: "Product location bookkeeping",
	}
	locationsCmd.AddCommand(newLocationsBackfillCommand(ctx))
	return locationsCmd
}

func newLocationsBackfillCommand(ctx *commandContext) *cobra.Command {
	var file string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "backfill [files...]",
		Short: "Load product location documents into the warehouse",
		Long: "Each document is validated and written in its own transaction, " +
			"so an invalid file is reported without blocking the others.",
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := readTargets(cmd, args, file)
			if err != nil {
				return err
			}

			log, err := ctx.logger()
			if err != nil {
				return err
			}
			warehouse, err := ctx.openWarehouse()
			if err != nil {
				return err
			}
			defer warehouse.Close()
			if !dryRun {
				release, err := ctx.acquireLock()
				if err != nil {
					return err
				}
				defer release()
			}
			store, err := ctx.openJournal()
			if err != nil {
				return err
			}
			defer store.Close()

			backfiller := &locations.Backfiller{Warehouse: warehouse, Log: log, DryRun: dryRun}

			run, err := store.BeginRun(cmd.Context(), journal.OpBackfill)
			if err != nil {
				return err
			}
			for _, result := range backfiller.Run(cmd.Context(), files) {
				err := store.Record(cmd.Context(), run.ID, journal.OpBackfill,
					result.Path, result.Outcome, detailWithError(result.Detail, result.Err))
				if err != nil {
					return err
				}
			}

			return finishRun(cmd, cmd.Context(), store, run.ID, ctx.jsonOutput())
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "File listing documents, one per line (- for stdin)")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Validate documents without writing")
	return cmd
}
