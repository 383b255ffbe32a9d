package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/healthshield/mentions-bot/internal/app"
	"github.com/healthshield/mentions-bot/internal/keywords"
	"github.com/healthshield/mentions-bot/internal/models"
	"github.com/healthshield/mentions-bot/internal/sources"
	"github.com/spf13/cobra"
)

func newCheckSourcesCmd() *cobra.Command {
	var terms []string

	cmd := &cobra.Command{
		Use:   "check-sources",
		Short: "Fetch every configured source once and report what it returns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				if len(terms) == 0 {
					kws, err := keywords.NewManager(a.Store).Active(ctx)
					if err != nil {
						return err
					}
					terms = models.KeywordTexts(kws)
				}
				if len(terms) == 0 {
					return fmt.Errorf("%w: no active keywords, pass --keyword", models.ErrValidation)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Checking sources for %s\n", strings.Join(terms, ", "))
				fmt.Fprintln(out, strings.Repeat("-", 40))

				all := append(append([]sources.Source{}, a.Feeds...), a.Search)
				failed := 0
				for _, src := range all {
					if !checkSource(ctx, out, src, terms) {
						failed++
					}
				}
				if failed > 0 {
					return fmt.Errorf("%d of %d sources failed", failed, len(all))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVarP(&terms, "keyword", "k", nil, "keywords to check with (default: active keywords)")
	return cmd
}

// checkSource reports false only when an enabled source returns an error.
func checkSource(ctx context.Context, out io.Writer, src sources.Source, terms []string) bool {
	fmt.Fprintf(out, "%s... ", src.GetName())
	if !src.IsEnabled() {
		fmt.Fprintln(out, "DISABLED (missing API key)")
		return true
	}

	items, err := src.FetchItems(ctx, terms)
	if err != nil {
		fmt.Fprintf(out, "ERROR: %v\n", err)
		return false
	}

	matched := 0
	for _, item := range items {
		if len(keywords.Match(item.Title+" "+item.Summary, terms)) > 0 {
			matched++
		}
	}
	fmt.Fprintf(out, "OK (%d items, %d matching)\n", len(items), matched)
	if len(items) > 0 {
		fmt.Fprintf(out, "   sample: %q\n", items[0].Title)
	}
	return true
}
