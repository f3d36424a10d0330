// Package scan implements the one-shot scan command.
package scan

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/leadscan/cmd/common"
	"github.com/jonesrussell/north-cloud/leadscan/internal/domain"
	"github.com/jonesrussell/north-cloud/leadscan/internal/scanner"
)

// Command returns the scan command.
func Command() *cobra.Command {
	var (
		scanners    []string
		showReports bool
	)

	cmd := &cobra.Command{
		Use:   "scan <domain>...",
		Short: "Run scanners against crawled domains",
		Long: `Runs the named scanners in order against each previously crawled domain,
records the reports and prints a summary table. The first unknown or failing
scanner stops the remaining ones for that domain.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := common.NewPipeline(cmd.Context())
			if err != nil {
				return err
			}
			defer p.Close()

			if err := p.Services.Scanners.Validate(scanners); err != nil {
				return err
			}

			results := make([]scanner.Result, 0, len(args))
			for _, d := range args {
				results = append(results, p.Services.Scans.Scan(cmd.Context(), d, scanners))
			}

			out := cmd.OutOrStdout()
			Render(out, results)
			if showReports {
				for _, r := range results {
					for _, report := range r.Reports {
						fmt.Fprintf(out, "\n%s\n", report.Report)
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&scanners, "scanner", []string{string(scanner.KindSeo)},
		"scanner to run, repeatable (SeoScanner, TrackerConsentScanner)")
	cmd.Flags().BoolVar(&showReports, "reports", false, "print the full report text")

	return cmd
}

// Render prints scan results as a table, one row per report plus one per
// failed unit.
func Render(w io.Writer, results []scanner.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Domain", "Scanner", "Flagged", "Error"})

	for _, r := range results {
		for _, report := range r.Reports {
			t.AppendRow(table.Row{r.Domain, report.Scanner, domain.FlaggedLabel(report.Flagged), ""})
		}
		if r.Err != nil {
			t.AppendRow(table.Row{r.Domain, "", "", r.Err.Error()})
		}
	}
	t.Render()
}
