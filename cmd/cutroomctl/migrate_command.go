package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cutroom/internal/repository/postgres"
)

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back schema migrations",
	}

	run := func(direction postgres.MigrateDirection) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			pool, err := ctx.openPool(cmd.Context())
			if err != nil {
				return err
			}
			if err := postgres.Migrate(pool, direction, ctx.logger); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrations %s: done\n", direction)
			return nil
		}
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE:  run(postgres.MigrateUp),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		Args:  cobra.NoArgs,
		RunE:  run(postgres.MigrateDown),
	})

	return cmd
}
