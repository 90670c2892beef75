package main

import (
	"github.com/spf13/cobra"

	"keel/internal/journal"
	"keel/internal/sweep"
)

func newCopyCommand(ctx *commandContext) *cobra.Command {
	copyCmd := &cobra.Command{
		Use:   "copy",
		Short: "Off-site copy verification",
	}
	copyCmd.AddCommand(newCopyConfirmCommand(ctx))
	return copyCmd
}

func newCopyConfirmCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "confirm <source-collection> <dest-collection>",
		Short: "Confirm that every object under source has an identical copy under dest",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := ctx.logger()
			if err != nil {
				return err
			}
			catalog, err := ctx.catalog()
			if err != nil {
				return err
			}
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

			confirmer := &sweep.Confirmer{Catalog: catalog, Log: log, DryRun: dryRun}

			run, err := store.BeginRun(cmd.Context(), journal.OpCopyConfirm)
			if err != nil {
				return err
			}
			results, err := confirmer.Run(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			for _, result := range results {
				err := store.Record(cmd.Context(), run.ID, journal.OpCopyConfirm,
					result.Path, result.Outcome, detailWithError(result.Detail, result.Err))
				if err != nil {
					return err
				}
			}

			return finishRun(cmd, cmd.Context(), store, run.ID, ctx.jsonOutput())
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Compare without marking confirmed copies")
	return cmd
}
