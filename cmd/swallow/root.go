package main

import (
	"context"

	"github.com/aretw0/swallow"
	"github.com/aretw0/swallow/internal/cli"
	"github.com/aretw0/swallow/internal/config"
	"github.com/aretw0/swallow/pkg/workspace"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "swallow",
		Short:        "Swallow rewrites sources across a workspace, symbol by symbol",
		Long:         `Swallow turns synchronous functions asynchronous and propagates the change through callers, overrides and interface members across every project of a workspace.`,
		Version:      swallow.Version(),
		SilenceUsage: true,
	}
	root.PersistentFlags().String("workspace", "", "Workspace manifest (default from config: workspace.yaml)")
	root.PersistentFlags().String("config", "", "Config file (default "+config.DefaultPath+")")
	root.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
	root.PersistentFlags().Bool("debug", false, "Log every document and transformation")

	root.AddCommand(
		newAsyncifyCmd(),
		newRunCmd(),
		newEditCmd(),
		newListCmd(),
		newFunctionsCmd(),
		newCompileCmd(),
		newServeCmd(),
		newMCPCmd(),
		newImportCmd(),
		newVersionCmd(),
	)
	return root
}

// withRuntime loads configuration for cmd, opens the workspace and calls fn.
func withRuntime(cmd *cobra.Command, fn func(ctx context.Context, rt *cli.Runtime, ws *workspace.Workspace) error) error {
	return withConfig(cmd, func(ctx context.Context, rt *cli.Runtime) error {
		ws, err := rt.Engine.Open(ctx)
		if err != nil {
			return err
		}
		return fn(ctx, rt, ws)
	})
}

// withConfig builds the runtime for cmd without opening the workspace.
func withConfig(cmd *cobra.Command, fn func(ctx context.Context, rt *cli.Runtime) error) (err error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	debug, _ := cmd.Flags().GetBool("debug")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	rt, err := cli.NewRuntime(ctx, cfg, cli.Streams{Out: cmd.OutOrStdout(), Err: cmd.ErrOrStderr()}, debug)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rt.Close(context.WithoutCancel(ctx)); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(ctx, rt)
}

func addDryRun(cmd *cobra.Command) {
	cmd.Flags().Bool("dry-run", false, "Print a diff instead of writing")
}
