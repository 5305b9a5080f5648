package main

import (
	"context"
	"os"

	"github.com/aretw0/swallow/internal/cli"
)

func main() {
	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
