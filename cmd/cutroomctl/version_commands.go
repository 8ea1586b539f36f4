package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newVersionsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "versions <asset-id>",
		Short: "List an asset's versions; * marks the active one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := ctx.actor()
			if err != nil {
				return err
			}
			svc, err := ctx.ensureServices(cmd.Context())
			if err != nil {
				return err
			}

			history, err := svc.Versions.ListVersions(cmd.Context(), actor, args[0])
			if err != nil {
				return err
			}
			if ctx.asJSON() {
				return writeJSON(cmd, history)
			}

			headers := []string{"", "Version", "Size", "Resolution", "Duration", "Created", "Notes", "ID"}
			aligns := []columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, versionRows(history, time.Now()), aligns))
			return nil
		},
	}
}

func newRollbackCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rollback <asset-id> <version-id>",
		Short: "Point an asset at an earlier version",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := ctx.actor()
			if err != nil {
				return err
			}
			svc, err := ctx.ensureServices(cmd.Context())
			if err != nil {
				return err
			}

			asset, err := svc.Versions.RollbackToVersion(cmd.Context(), actor, args[0], args[1])
			if err != nil {
				return err
			}
			if ctx.asJSON() {
				return writeJSON(cmd, asset)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s now at version %d (%s)\n", asset.Name, asset.CurrentVersionNumber, formatSize(asset.SizeBytes))
			return nil
		},
	}
}

func newCompareCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "compare <version-a> <version-b>",
		Short: "Show how version b differs from version a",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := ctx.actor()
			if err != nil {
				return err
			}
			svc, err := ctx.ensureServices(cmd.Context())
			if err != nil {
				return err
			}

			cmp, err := svc.Versions.CompareVersions(cmd.Context(), actor, args[0], args[1])
			if err != nil {
				return err
			}
			if ctx.asJSON() {
				return writeJSON(cmd, cmp)
			}

			duration := "unknown"
			if cmp.DurationChange != nil {
				duration = formatDurationChange(*cmp.DurationChange)
			}
			resolution := "same"
			if cmp.ResolutionChanged {
				resolution = "changed"
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"", "Change"}, [][]string{
				{"size", formatSizeChange(cmp.SizeChange)},
				{"duration", duration},
				{"resolution", resolution},
			}, nil))
			return nil
		},
	}
}
