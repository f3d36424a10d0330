// Package cmd implements the leadscan command-line interface.
package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jonesrussell/north-cloud/leadscan/cmd/crawl"
	"github.com/jonesrussell/north-cloud/leadscan/cmd/httpd"
	"github.com/jonesrussell/north-cloud/leadscan/cmd/migrate"
	"github.com/jonesrussell/north-cloud/leadscan/cmd/scan"
)

// version is set at build time with -ldflags "-X ...cmd.version=...".
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "leadscan",
	Short: "Crawl domains for contact details and scan them for SEO and tracking issues",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default is ./config.yml or ./config/config.yml)")
	flags.Bool("debug", false, "enable debug logging")
	flags.String("log-level", "", "log level override (debug, info, warn, error)")

	mustBind("config", "config")
	mustBind("debug", "debug")
	mustBind("log_level", "log-level")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("leadscan %s\n", version)
		},
	})

	rootCmd.AddCommand(httpd.Command())
	rootCmd.AddCommand(crawl.Command())
	rootCmd.AddCommand(scan.Command())
	rootCmd.AddCommand(migrate.Command())
}

// initConfig lets LEADSCAN_CONFIG, LEADSCAN_DEBUG and LEADSCAN_LOG_LEVEL
// stand in for the flags.
func initConfig() {
	viper.SetEnvPrefix("LEADSCAN")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()
}

func mustBind(key, flag string) {
	if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(fmt.Sprintf("bind flag %s: %v", flag, err))
	}
}
