// Package httpd implements the command that runs the HTTP API.
package httpd

import (
	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/leadscan/cmd/common"
	"github.com/jonesrussell/north-cloud/leadscan/internal/bootstrap"
)

// Command returns the httpd command.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "httpd",
		Short: "Run the HTTP API with the crawl and scan workers",
		Long: `Serves POST /api/crawl and POST /api/scan, the status streams
/api/stream-crawl-status and /api/stream-scan-status, the asset and report
listings, /health and /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := common.NewDeps()
			if err != nil {
				return err
			}
			return bootstrap.Start(cmd.Context(), deps)
		},
	}
}
