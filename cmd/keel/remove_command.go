package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"keel/internal/journal"
	"keel/internal/sweep"
)

func newRemoveCommand(ctx *commandContext) *cobra.Command {
	removeCmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove data objects from the catalog",
	}
	removeCmd.AddCommand(newRemoveSafeCommand(ctx))
	return removeCmd
}

func newRemoveSafeCommand(ctx *commandContext) *cobra.Command {
	var file string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "safe [paths...]",
		Short: "Remove objects whose off-site copy is doubly confirmed",
		Long: "An object is removed only when it carries a confirmation AVU " +
			"matching its current checksum and the journal holds a matching " +
			"copy-confirm record. Removed objects are listed in a manifest file.",
		RunE: func(cmd *cobra.Command, args []string) error {
			targets, err := readTargets(cmd, args, file)
			if err != nil {
				return err
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
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

			remover := &sweep.Remover{
				Catalog:       catalog,
				Confirmations: store,
				Log:           log,
				ManifestDir:   cfg.Paths.ManifestDir,
				DryRun:        dryRun,
			}

			run, err := store.BeginRun(cmd.Context(), journal.OpSafeRemove)
			if err != nil {
				return err
			}
			results, manifestPath, err := remover.Run(cmd.Context(), targets)
			if err != nil {
				return err
			}
			for _, result := range results {
				err := store.Record(cmd.Context(), run.ID, journal.OpSafeRemove,
					result.Path, result.Outcome, detailWithError(result.Detail, result.Err))
				if err != nil {
					return err
				}
			}
			if manifestPath != "" && !ctx.jsonOutput() {
				fmt.Fprintf(cmd.OutOrStdout(), "Manifest: %s\n", manifestPath)
			}

			return finishRun(cmd, cmd.Context(), store, run.ID, ctx.jsonOutput())
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "File of target paths, one per line (- for stdin)")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Report what would be removed without removing")
	return cmd
}
