package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"keel/internal/batch"
	"keel/internal/check"
	"keel/internal/config"
	"keel/internal/irods"
)

type checkerBuilder func(cfg *config.Config, catalog *irods.Client, log *slog.Logger) check.Checker

func newCheckCommand(ctx *commandContext) *cobra.Command {
	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Verify data objects without changing them",
	}
	checkCmd.AddCommand(newCheckSubcommand(ctx, "checksums", "Compare md5 metadata against replica checksums", buildChecksumChecker, false))
	checkCmd.AddCommand(newCheckSubcommand(ctx, "metadata", "Verify the common metadata set", buildMetadataChecker, false))
	checkCmd.AddCommand(newCheckSubcommand(ctx, "replicas", "Verify replica counts and validity", buildReplicaChecker, false))
	return checkCmd
}

func newRepairCommand(ctx *commandContext) *cobra.Command {
	repairCmd := &cobra.Command{
		Use:   "repair",
		Short: "Repair what the corresponding checks flag",
	}
	repairCmd.AddCommand(newCheckSubcommand(ctx, "checksums", "Rewrite md5 metadata to the replica consensus", buildChecksumChecker, true))
	repairCmd.AddCommand(newCheckSubcommand(ctx, "metadata", "Fill in missing common metadata", buildMetadataChecker, true))
	repairCmd.AddCommand(newCheckSubcommand(ctx, "replicas", "Trim stale replicas and replicate missing ones", buildReplicaChecker, true))
	return repairCmd
}

func buildChecksumChecker(_ *config.Config, catalog *irods.Client, log *slog.Logger) check.Checker {
	return &check.ChecksumChecker{Catalog: catalog, Log: log}
}

func buildMetadataChecker(cfg *config.Config, catalog *irods.Client, log *slog.Logger) check.Checker {
	return &check.MetadataChecker{
		Catalog:   catalog,
		Log:       log,
		Creator:   cfg.IRODS.Creator,
		Publisher: cfg.IRODS.Publisher,
	}
}

func buildReplicaChecker(cfg *config.Config, catalog *irods.Client, log *slog.Logger) check.Checker {
	return &check.ReplicaChecker{
		Catalog:  catalog,
		Log:      log,
		Expected: cfg.IRODS.ExpectedReplicas,
		Resource: cfg.IRODS.DefaultResource,
	}
}

func newCheckSubcommand(ctx *commandContext, use, short string, build checkerBuilder, repair bool) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   use + " [paths...]",
		Short: short,
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
			if repair {
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

			checker := build(cfg, catalog, log)
			op := checker.Op(repair)
			run, err := store.BeginRun(cmd.Context(), op)
			if err != nil {
				return err
			}

			findings, err := batch.Map(cmd.Context(), cfg.Workers.Count, targets,
				func(ctx context.Context, target string) (check.Finding, error) {
					return checker.Check(ctx, target, repair), nil
				})
			if err != nil {
				return err
			}
			for _, finding := range findings {
				err := store.Record(cmd.Context(), run.ID, op, finding.Path,
					finding.Outcome, detailWithError(finding.Detail, finding.Err))
				if err != nil {
					return err
				}
			}

			return finishRun(cmd, cmd.Context(), store, run.ID, ctx.jsonOutput())
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "File of target paths, one per line (- for stdin)")
	return cmd
}
