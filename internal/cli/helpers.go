package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/swallow"
	"github.com/aretw0/swallow/internal/presentation/diff"
)

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// PrintSystemMessage prints a standardized system message.
func PrintSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

// Report prints the outcome of res. With dryRun set it writes a unified diff
// of every changed document; otherwise it commits res.After.
func (rt *Runtime) Report(ctx context.Context, w io.Writer, res *swallow.Result, dryRun bool) error {
	if len(res.Changed) == 0 {
		PrintSystemMessage(w, "No changes.")
		return nil
	}
	if dryRun {
		r := diff.NewRenderer(w)
		for _, id := range res.Changed {
			after, _ := res.After.Document(id)
			var before string
			if doc, ok := res.Before.Document(id); ok {
				before = doc.Text
			}
			if _, err := r.Document(after.Path, before, after.Text); err != nil {
				return err
			}
		}
		return nil
	}
	if _, err := rt.Engine.Commit(ctx, res.After); err != nil {
		return err
	}
	PrintSystemMessage(w, "%d document(s) written.", len(res.Changed))
	return nil
}
