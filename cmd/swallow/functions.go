package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/aretw0/swallow/internal/cli"
	"github.com/aretw0/swallow/pkg/domain"
	"github.com/aretw0/swallow/pkg/workspace"
	"github.com/spf13/cobra"
)

func describe(info domain.FunctionInfo) string {
	var flags []string
	if info.Async {
		flags = append(flags, "async")
	}
	if !info.HasBody {
		flags = append(flags, "no-body")
	}
	if !info.CanBeAsync {
		flags = append(flags, "fixed")
	}
	return strings.Join(flags, ",")
}

func newFunctionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "functions <document> [filter [args...]]",
		Short: "List the functions declared in a document",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter string
			var filterArgs []string
			if len(args) > 1 {
				filter, filterArgs = args[1], args[2:]
			}
			return withRuntime(cmd, func(ctx context.Context, rt *cli.Runtime, ws *workspace.Workspace) error {
				infos, err := rt.Engine.Functions(ctx, ws, args[0], filter, filterArgs)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				for _, info := range infos {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", info.ID, info.Result, describe(info))
				}
				return tw.Flush()
			})
		},
	}
}
