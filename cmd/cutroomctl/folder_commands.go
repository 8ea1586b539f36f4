package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newTreeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "tree <project-id>",
		Short: "Show a project's folder tree",
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

			tree, err := svc.Folders.GetTree(cmd.Context(), actor, args[0])
			if err != nil {
				return err
			}
			if ctx.asJSON() {
				return writeJSON(cmd, tree)
			}

			rows := treeRows(tree)
			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Project is empty")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Name", "Kind", "Contents", "ID"}, rows, nil))
			return nil
		},
	}
}

func newPathCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "path <folder-id>",
		Short: "Print a folder's path from the project root",
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

			path, err := svc.Folders.GetPath(cmd.Context(), actor, args[0])
			if err != nil {
				return err
			}
			if ctx.asJSON() {
				return writeJSON(cmd, path)
			}
			fmt.Fprintln(cmd.OutOrStdout(), path.Path)
			return nil
		},
	}
}

func newDeleteFolderCommand(ctx *commandContext) *cobra.Command {
	var confirm bool

	cmd := &cobra.Command{
		Use:   "delete-folder <folder-id>",
		Short: "Delete a folder with all subfolders, assets and their blobs",
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

			folder, err := svc.Folders.GetFolder(cmd.Context(), actor, args[0])
			if err != nil {
				return err
			}
			if !confirm {
				return fmt.Errorf("refusing to delete %q (%d subfolders, %d assets at top level) without --yes",
					folder.Path, folder.ChildCount, folder.AssetCount)
			}

			report, err := svc.Deletion.DeleteFolder(cmd.Context(), actor, folder.ID)
			if err != nil {
				return err
			}
			if ctx.asJSON() {
				return writeJSON(cmd, report)
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"", strings.TrimSuffix(folder.Path, "/")}, reportRows(report), nil))
			if report.FailedBlobCount > 0 {
				cmd.PrintErrf("warning: %d blobs could not be deleted and are orphaned\n", report.FailedBlobCount)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&confirm, "yes", false, "Confirm the deletion")
	return cmd
}
