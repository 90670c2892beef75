package main

import (
	"github.com/spf13/cobra"

	"keel/internal/consent"
	"keel/internal/journal"
)

func newWithdrawCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "withdraw",
		Short: "Lock down data for samples whose consent was withdrawn",
		Long: "Queries the warehouse for consent-withdrawn samples, flags every " +
			"data object belonging to them and removes read access from all but " +
			"the administrative users.",
		RunE: func(cmd *cobra.Command, args []string) error {
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

			withdrawer := &consent.Withdrawer{
				Warehouse:  warehouse,
				Catalog:    catalog,
				Log:        log,
				AdminUsers: cfg.IRODS.AdminUsers,
				Zone:       cfg.IRODS.Zone,
				DryRun:     dryRun,
			}

			run, err := store.BeginRun(cmd.Context(), journal.OpWithdrawConsent)
			if err != nil {
				return err
			}
			results, err := withdrawer.Run(cmd.Context())
			if err != nil {
				return err
			}
			for _, result := range results {
				err := store.Record(cmd.Context(), run.ID, journal.OpWithdrawConsent,
					result.Path, result.Outcome, detailWithError(result.Detail, result.Err))
				if err != nil {
					return err
				}
			}

			return finishRun(cmd, cmd.Context(), store, run.ID, ctx.jsonOutput())
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Report what would change without changing it")
	return cmd
}
