package main

import (
	"context"
	"fmt"
	"net"

	"github.com/aretw0/swallow/internal/cli"
	swallowhttp "github.com/aretw0/swallow/pkg/adapters/http"
	"github.com/aretw0/swallow/pkg/adapters/mcp"
	"github.com/aretw0/swallow/pkg/workspace"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the engine over HTTP",
		Long:  `Starts a JSON API over the workspace. Every request re-reads the workspace, and writes are serialized by the configured lock. Metrics are exposed on /metrics.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			return withRuntime(cmd, func(ctx context.Context, rt *cli.Runtime, _ *workspace.Workspace) error {
				ln, err := net.Listen("tcp", addr)
				if err != nil {
					return err
				}
				h := swallowhttp.NewHandler(rt.Engine,
					swallowhttp.WithLogger(rt.Logger),
					swallowhttp.WithMetrics(rt.MetricsHandler()),
				)
				return rt.Serve(ctx, ln, h)
			})
		},
	}
	cmd.Flags().String("addr", ":8080", "Listen address")
	return cmd
}

func newMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the engine as MCP tools",
		Long:  `Runs a Model Context Protocol server on stdin/stdout. With --sse, serves it over server-sent events on the given address instead.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sse, _ := cmd.Flags().GetString("sse")
			return withRuntime(cmd, func(ctx context.Context, rt *cli.Runtime, _ *workspace.Workspace) error {
				s := mcp.NewServer(rt.Engine, rt.Logger)
				if sse == "" {
					return s.ServeStdio()
				}
				ln, err := net.Listen("tcp", sse)
				if err != nil {
					return err
				}
				return rt.Serve(ctx, ln, s.SSEHandler(fmt.Sprintf("http://%s", ln.Addr())))
			})
		},
	}
	cmd.Flags().String("sse", "", "Serve over SSE on this address instead of stdio")
	return cmd
}
