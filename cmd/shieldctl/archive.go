package main

import (
	"context"
	"fmt"

	"github.com/healthshield/mentions-bot/internal/app"
	"github.com/healthshield/mentions-bot/internal/models"
	"github.com/healthshield/mentions-bot/internal/storage"
	"github.com/spf13/cobra"
)

const runFilePrefix = "mentions-"

func newArchiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Inspect archived ingestion runs",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List archived run files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withArchive(cmd, func(ctx context.Context, archive storage.ArchiveInterface) error {
				files, err := archive.List(ctx, runFilePrefix)
				if err != nil {
					return err
				}
				for _, f := range files {
					fmt.Fprintln(cmd.OutOrStdout(), f)
				}
				return nil
			})
		},
	}

	show := &cobra.Command{
		Use:   "show FILE",
		Short: "Print an archived run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withArchive(cmd, func(ctx context.Context, archive storage.ArchiveInterface) error {
				record, err := storage.LoadRun(ctx, archive, args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), record)
			})
		},
	}

	cmd.AddCommand(list, show)
	return cmd
}

func withArchive(cmd *cobra.Command, fn func(ctx context.Context, archive storage.ArchiveInterface) error) error {
	return withApp(cmd, func(ctx context.Context, a *app.App) error {
		if a.Archive == nil {
			return fmt.Errorf("%w: set AZURE_STORAGE_ACCOUNT or ARCHIVE_DIR", models.ErrConfiguration)
		}
		return fn(ctx, a.Archive)
	})
}
