package main

import (
	"time"

	"github.com/spf13/cobra"

	"keel/internal/journal"
	"keel/internal/secondary"
)

const defaultUpdateWindow = 24 * time.Hour

func newUpdateCommand(ctx *commandContext) *cobra.Command {
	updateCmd := &cobra.Command{
		Use:   "update",
		Short: "Bring catalog metadata in step with the warehouse",
	}
	updateCmd.AddCommand(newUpdateSecondaryCommand(ctx))
	updateCmd.AddCommand(newUpdateOntCommand(ctx))
	return updateCmd
}

type windowFlags struct {
	since  string
	until  string
	window time.Duration
}

func (w *windowFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&w.since, "since", "", "Window start, RFC 3339 (default --until minus --window)")
	cmd.Flags().StringVar(&w.until, "until", "", "Window end, RFC 3339 (default now)")
	cmd.Flags().DurationVar(&w.window, "window", defaultUpdateWindow, "Window length when --since is not given")
}

func newUpdateSecondaryCommand(ctx *commandContext) *cobra.Command {
	var flags windowFlags
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "secondary",
		Short: "Update sample and study metadata on Illumina data objects",
		RunE: func(cmd *cobra.Command, args []string) error {
			since, until, err := parseWindow(flags.since, flags.until, flags.window)
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

			updater := &secondary.Updater{
				Warehouse: warehouse,
				Catalog:   catalog,
				Log:       log,
				Zone:      cfg.IRODS.Zone,
				DryRun:    dryRun,
			}

			run, err := store.BeginRun(cmd.Context(), journal.OpUpdateSecondary)
			if err != nil {
				return err
			}
			results, err := updater.Run(cmd.Context(), since, until)
			if err != nil {
				return err
			}
			for _, result := range results {
				err := store.Record(cmd.Context(), run.ID, journal.OpUpdateSecondary,
					result.Path, result.Outcome, detailWithError(result.Detail, result.Err))
				if err != nil {
					return err
				}
			}

			return finishRun(cmd, cmd.Context(), store, run.ID, ctx.jsonOutput())
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Report what would change without changing it")
	return cmd
}

func newUpdateOntCommand(ctx *commandContext) *cobra.Command {
	var flags windowFlags
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "ont",
		Short: "Annotate ONT run collections for changed flowcells",
		RunE: func(cmd *cobra.Command, args []string) error {
			since, until, err := parseWindow(flags.since, flags.until, flags.window)
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

			updater := &secondary.OntUpdater{
				Warehouse:      warehouse,
				Catalog:        catalog,
				Log:            log,
				RootCollection: cfg.IRODS.OntRootCollection,
				DryRun:         dryRun,
			}

			run, err := store.BeginRun(cmd.Context(), journal.OpUpdateONT)
			if err != nil {
				return err
			}
			results, err := updater.Run(cmd.Context(), since, until)
			if err != nil {
				return err
			}
			for _, result := range results {
				err := store.Record(cmd.Context(), run.ID, journal.OpUpdateONT,
					result.Path, result.Outcome, detailWithError(result.Detail, result.Err))
				if err != nil {
					return err
				}
			}

			return finishRun(cmd, cmd.Context(), store, run.ID, ctx.jsonOutput())
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Report what would change without changing it")
	return cmd
}
