package main

import (
	"os"

	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var actorFlag string
	var envFileFlag string
	var jsonFlag bool

	ctx := newCommandContext(&actorFlag, &envFileFlag, &jsonFlag)

	rootCmd := &cobra.Command{
		Use:           "cutroomctl",
		Short:         "Operate a cutroom media backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := ctx.ensureConfig()
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			ctx.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&actorFlag, "actor", os.Getenv("CUTROOM_ACTOR"), "User ID to act as (capability checks apply)")
	rootCmd.PersistentFlags().StringVar(&envFileFlag, "env-file", "", "Load environment from this file instead of .env")
	rootCmd.PersistentFlags().BoolVar(&jsonFlag, "json", false, "Print results as JSON")

	rootCmd.AddCommand(newMigrateCommand(ctx))
	rootCmd.AddCommand(newTreeCommand(ctx))
	rootCmd.AddCommand(newPathCommand(ctx))
	rootCmd.AddCommand(newDeleteFolderCommand(ctx))
	rootCmd.AddCommand(newVersionsCommand(ctx))
	rootCmd.AddCommand(newRollbackCommand(ctx))
	rootCmd.AddCommand(newCompareCommand(ctx))

	return rootCmd
}
