package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/swallow/internal/cli"
	"github.com/spf13/cobra"
)

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <manifest>",
		Short: "Store a manifest as the configured workspace",
		Long:  `Reads a workspace manifest from disk and writes it to the configured store under the workspace locator. With store.backend set to redis this seeds a shared workspace.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			return withConfig(cmd, func(ctx context.Context, rt *cli.Runtime) error {
				if err := rt.Import(ctx, data); err != nil {
					return err
				}
				if _, err := rt.Engine.Open(ctx); err != nil {
					return fmt.Errorf("imported manifest does not open: %w", err)
				}
				cli.PrintSystemMessage(cmd.OutOrStdout(), "Imported %s as %s.", args[0], rt.Config.Workspace)
				return nil
			})
		},
	}
}
