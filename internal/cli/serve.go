package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

// ShutdownTimeout bounds how long in-flight requests may finish after the
// serve context is cancelled.
const ShutdownTimeout = 5 * time.Second

// MetricsHandler exposes the runtime's collectors for scraping.
func (rt *Runtime) MetricsHandler() http.Handler {
	return rt.metrics.Handler()
}

// Serve runs h on ln until ctx is cancelled, then shuts down gracefully.
func (rt *Runtime) Serve(ctx context.Context, ln net.Listener, h http.Handler) error {
	srv := &http.Server{Handler: h, ReadHeaderTimeout: 10 * time.Second}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rt.Logger.Info("listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		rt.Logger.Info("server stopped")
		return nil
	})
	return g.Wait()
}
