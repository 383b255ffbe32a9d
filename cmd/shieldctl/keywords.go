package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/healthshield/mentions-bot/internal/app"
	"github.com/healthshield/mentions-bot/internal/keywords"
	"github.com/spf13/cobra"
)

func newKeywordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keywords",
		Short: "Manage the keywords ingestion matches against",
	}

	add := &cobra.Command{
		Use:   "add KEYWORD",
		Short: "Add an enabled keyword",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				kw, err := keywords.NewManager(a.Store).Add(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %q (%s)\n", kw.Keyword, kw.ID)
				return nil
			})
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List enabled keywords",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				kws, err := keywords.NewManager(a.Store).Active(ctx)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tKEYWORD\tCREATED")
				for _, kw := range kws {
					fmt.Fprintf(w, "%s\t%s\t%s\n", kw.ID, kw.Keyword, kw.CreatedAt)
				}
				return w.Flush()
			})
		},
	}

	var hard bool
	remove := &cobra.Command{
		Use:   "remove ID",
		Short: "Disable a keyword, or delete it with --hard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				if err := keywords.NewManager(a.Store).Remove(ctx, args[0], hard); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
				return nil
			})
		},
	}
	remove.Flags().BoolVar(&hard, "hard", false, "delete the keyword instead of disabling it")

	cmd.AddCommand(add, list, remove)
	return cmd
}
