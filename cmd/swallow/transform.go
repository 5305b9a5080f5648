package main

import (
	"context"

	"github.com/aretw0/swallow/internal/cli"
	"github.com/aretw0/swallow/pkg/workspace"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <transformation> <Type.Name> [args...]",
		Short: "Apply a symbol transformation from the catalog",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			project, _ := cmd.Flags().GetString("project")
			return withRuntime(cmd, func(ctx context.Context, rt *cli.Runtime, ws *workspace.Workspace) error {
				res, err := rt.Engine.Run(ctx, ws, args[0], project, args[1], args[2:])
				if err != nil {
					return err
				}
				return rt.Report(ctx, cmd.OutOrStdout(), res, dryRun)
			})
		},
	}
	addDryRun(cmd)
	cmd.Flags().String("project", "", "Project that must declare the function")
	return cmd
}

func newEditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <document> <transformation> [args...]",
		Short: "Apply a document transformation from the catalog",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			return withRuntime(cmd, func(ctx context.Context, rt *cli.Runtime, ws *workspace.Workspace) error {
				res, err := rt.Engine.Edit(ctx, ws, args[0], args[1], args[2:])
				if err != nil {
					return err
				}
				return rt.Report(ctx, cmd.OutOrStdout(), res, dryRun)
			})
		},
	}
	addDryRun(cmd)
	return cmd
}
