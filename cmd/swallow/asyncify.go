package main

import (
	"context"
	"fmt"

	"github.com/aretw0/swallow/internal/cli"
	"github.com/aretw0/swallow/internal/presentation/graph"
	"github.com/aretw0/swallow/pkg/workspace"
	"github.com/spf13/cobra"
)

func newAsyncifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "asyncify [project] <Type.Name>",
		Short: "Make a function asynchronous and propagate to its callers",
		Long: `Rewrites the function and every related declaration to return an awaitable
result, awaits it at every invocation from a context that can become
asynchronous, blocks on it elsewhere and renames name literals. When a
project is given, the function must be declared in it.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			showGraph, _ := cmd.Flags().GetBool("graph")
			project, descriptor := "", args[0]
			if len(args) == 2 {
				project, descriptor = args[0], args[1]
			}
			return withRuntime(cmd, func(ctx context.Context, rt *cli.Runtime, ws *workspace.Workspace) error {
				res, err := rt.Engine.Asyncify(ctx, ws, project, descriptor)
				if err != nil {
					return err
				}
				if showGraph {
					fmt.Fprint(cmd.OutOrStdout(), graph.Propagation(res.Collected))
				}
				return rt.Report(ctx, cmd.OutOrStdout(), res, dryRun)
			})
		},
	}
	addDryRun(cmd)
	cmd.Flags().Bool("graph", false, "Print the propagation as a Mermaid graph")
	cmd.Flags().String("suffix", "", "Suffix appended to renamed functions (default Async)")
	cmd.Flags().Bool("parallel", false, "Compile independent projects in parallel")
	return cmd
}
