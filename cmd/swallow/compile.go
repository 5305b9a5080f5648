package main

import (
	"context"
	"fmt"

	"github.com/aretw0/swallow/internal/cli"
	"github.com/aretw0/swallow/internal/presentation/graph"
	"github.com/aretw0/swallow/pkg/workspace"
	"github.com/spf13/cobra"
)

func newCompileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile every project in dependency order",
		Long:  `Compiles each project after the projects it references and prints the completion order. With --graph, prints the project graph as Mermaid instead.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			showGraph, _ := cmd.Flags().GetBool("graph")
			return withRuntime(cmd, func(ctx context.Context, rt *cli.Runtime, ws *workspace.Workspace) error {
				if showGraph {
					fmt.Fprint(cmd.OutOrStdout(), graph.Projects(ws))
					return nil
				}
				order, err := rt.Engine.Compile(ctx, ws)
				if err != nil {
					return err
				}
				for _, id := range order {
					fmt.Fprintln(cmd.OutOrStdout(), id)
				}
				return nil
			})
		},
	}
	cmd.Flags().Bool("parallel", false, "Compile independent projects in parallel")
	cmd.Flags().Bool("graph", false, "Print the project graph as Mermaid")
	return cmd
}
