// Package migrate implements the database migration commands.
package migrate

import (
	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/leadscan/cmd/common"
	"github.com/jonesrussell/north-cloud/leadscan/internal/database"
)

// Command returns the migrate command with its up and down subcommands.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back PostgreSQL schema migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := common.NewDeps()
			if err != nil {
				return err
			}
			db, err := database.NewPostgresConnection(cmd.Context(), deps.Config.Database)
			if err != nil {
				return err
			}
			defer db.Close()
			return database.MigrateUp(db, deps.Logger)
		},
	})

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := common.NewDeps()
			if err != nil {
				return err
			}
			db, err := database.NewPostgresConnection(cmd.Context(), deps.Config.Database)
			if err != nil {
				return err
			}
			defer db.Close()
			return database.MigrateDown(db, steps, deps.Logger)
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")
	cmd.AddCommand(down)

	return cmd
}
