package main

import (
	"context"

	"github.com/healthshield/mentions-bot/internal/app"
	"github.com/healthshield/mentions-bot/internal/monitoring"
	"github.com/spf13/cobra"
)

func newScrapeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scrape",
		Short: "Run one RSS ingestion",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				result, err := a.Monitoring.RunScrape(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), result)
			})
		},
	}
}

func newSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search",
		Short: "Run one web search ingestion",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				result, err := a.Monitoring.RunSearch(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), result)
			})
		},
	}
}

func newBackfillCmd() *cobra.Command {
	return newJobCmd("backfill-locations", "Fill in locations of stored mentions that have none",
		func(s *monitoring.Service) func(context.Context, int) (*monitoring.JobResult, error) {
			return s.BackfillLocations
		})
}

func newCleanCmd() *cobra.Command {
	return newJobCmd("clean-metadata", "Fill in missing media names, keywords, locations and summaries",
		func(s *monitoring.Service) func(context.Context, int) (*monitoring.JobResult, error) {
			return s.CleanMetadata
		})
}

func newJobCmd(use, short string, job func(*monitoring.Service) func(context.Context, int) (*monitoring.JobResult, error)) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				result, err := job(a.Monitoring)(ctx, limit)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), result)
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", monitoring.DefaultJobLimit, "maximum mentions to examine")
	return cmd
}
