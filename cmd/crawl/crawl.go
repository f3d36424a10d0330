// Package crawl implements the one-shot crawl command.
package crawl

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jonesrussell/north-cloud/leadscan/cmd/common"
	"github.com/jonesrussell/north-cloud/leadscan/internal/crawler"
)

// Command returns the crawl command.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "crawl <domain>...",
		Short: "Crawl domains and print what was found",
		Long: `Crawls each domain the same way the HTTP API does, persists the records
and prints a summary table. Domains run concurrently up to the crawl pool
size.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := crawler.ValidateDomains(args); err != nil {
				return err
			}

			p, err := common.NewPipeline(cmd.Context())
			if err != nil {
				return err
			}
			defer p.Close()

			results := make([]crawler.Result, len(args))
			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(p.Deps.Config.Crawler.WithDefaults().Pool.PoolSize)
			for i, d := range args {
				g.Go(func() error {
					results[i] = p.Services.Crawler.Crawl(ctx, d)
					return nil
				})
			}
			_ = g.Wait()

			Render(cmd.OutOrStdout(), results)
			return nil
		},
	}
}

// Render prints crawl results as a table.
func Render(w io.Writer, results []crawler.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Domain", "Outcome", "Pages", "Emails", "Phones", "Suggested Email", "Error"})

	for _, r := range results {
		var emails, phones []string
		if r.Asset != nil {
			emails, phones = r.Asset.Emails, r.Asset.Phones
		}
		errText := ""
		if r.Err != nil {
			errText = r.Err.Error()
		}
		t.AppendRow(table.Row{
			r.Domain,
			r.Outcome,
			r.PagesFetched,
			strings.Join(emails, "\n"),
			strings.Join(phones, "\n"),
			r.SuggestedEmail,
			errText,
		})
	}
	t.AppendFooter(table.Row{"", "", "", "", "", "Domains", fmt.Sprint(len(results))})
	t.Render()
}
