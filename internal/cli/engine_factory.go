// Package cli assembles the engine and its ambient stack from configuration
// for the swallow command.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/swallow"
	"github.com/aretw0/swallow/internal/adapters/file"
	"github.com/aretw0/swallow/internal/adapters/memory"
	"github.com/aretw0/swallow/internal/compiler"
	"github.com/aretw0/swallow/internal/config"
	"github.com/aretw0/swallow/internal/logging"
	"github.com/aretw0/swallow/pkg/adapters/redis"
	"github.com/aretw0/swallow/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	backend "github.com/redis/go-redis/v9"
)

// Runtime is an Engine plus the resources that outlive one operation.
type Runtime struct {
	Engine *swallow.Engine
	Config *config.Config
	Logger *slog.Logger

	metrics  *observability.Metrics
	provider *observability.Provider
	client   backend.UniversalClient
	store    memory.Store
}

// Streams are the destinations of command output.
type Streams struct {
	Out io.Writer
	Err io.Writer
}

// NewRuntime initializes an engine with standard CLI conventions: logs and
// stdout spans go to streams.Err so streams.Out only carries results.
func NewRuntime(ctx context.Context, cfg *config.Config, streams Streams, debug bool) (*Runtime, error) {
	logger, err := createLogger(streams.Err, cfg.LogLevel, debug)
	if err != nil {
		return nil, err
	}
	rt := &Runtime{Config: cfg, Logger: logger}

	rt.provider, err = observability.NewProvider(ctx, observability.TracingOptions{
		Enabled:  cfg.Tracing.Enabled,
		Exporter: cfg.Tracing.Exporter,
		Endpoint: cfg.Tracing.Endpoint,
		Insecure: cfg.Tracing.Insecure,
		Writer:   streams.Err,
	})
	if err != nil {
		return nil, fmt.Errorf("error initializing tracing: %w", err)
	}

	rt.metrics, err = observability.NewMetrics(prometheus.NewRegistry())
	if err != nil {
		return nil, errors.Join(err, rt.Close(ctx))
	}

	hooks := rt.metrics.Hooks()
	if debug {
		hooks = hooks.Merge(observability.LoggingHooks(logger))
	}
	if rt.provider.Enabled() {
		hooks = hooks.Merge(observability.TracingHooks(rt.provider.Tracer()))
	}

	mode, err := compiler.ParseMode(cfg.Compile.Mode)
	if err != nil {
		return nil, errors.Join(err, rt.Close(ctx))
	}
	opts := []swallow.Option{
		swallow.WithLogger(logger),
		swallow.WithLifecycleHooks(hooks),
		swallow.WithAsyncifyOptions(cfg.Asyncify),
		swallow.WithCompileMode(mode, cfg.Compile.MaxParallel),
	}
	if rt.provider.Enabled() {
		opts = append(opts, swallow.WithTracer(rt.provider.Tracer()))
	}
	if cfg.Lock.Addr != "" {
		rt.client = backend.NewUniversalClient(&backend.UniversalOptions{
			Addrs:    []string{cfg.Lock.Addr},
			Password: cfg.Lock.Password,
			DB:       cfg.Lock.DB,
		})
		opts = append(opts, swallow.WithLocker(redis.NewLocker(rt.client, cfg.Lock.Prefix), cfg.Lock.TTL))
	}
	if cfg.Store.Backend == "redis" {
		if rt.client == nil {
			return nil, errors.Join(errors.New("store.backend: redis requires lock.addr"), rt.Close(ctx))
		}
		rt.store = redis.NewStore(rt.client, cfg.Lock.Prefix, redis.WithTTL(cfg.Store.TTL))
	} else {
		rt.store = file.New(cfg.Store.SourceDir)
	}
	opts = append(opts, swallow.WithCodeModel(memory.New(memory.WithStore(rt.store), memory.WithLogger(logger))))

	rt.Engine, err = swallow.New(cfg.Workspace, opts...)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("error initializing engine: %w", err), rt.Close(ctx))
	}
	return rt, nil
}

// Import stores manifest as the configured workspace, replacing what is
// there.
func (rt *Runtime) Import(ctx context.Context, manifest []byte) error {
	if err := rt.store.Write(ctx, rt.Config.Workspace, manifest, nil); err != nil {
		return fmt.Errorf("import %s: %w", rt.Config.Workspace, err)
	}
	rt.Logger.Info("workspace imported", "workspace", rt.Config.Workspace, "bytes", len(manifest))
	return nil
}

// Close pushes metrics when a gateway is configured, flushes spans and
// releases the lock client.
func (rt *Runtime) Close(ctx context.Context) error {
	var errs []error
	if rt.metrics != nil && rt.Config.Metrics.PushGateway != "" {
		if err := rt.metrics.Push(ctx, rt.Config.Metrics.PushGateway, rt.Config.Metrics.Job); err != nil {
			errs = append(errs, fmt.Errorf("push metrics: %w", err))
		}
	}
	if rt.provider != nil {
		if err := rt.provider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown tracing: %w", err))
		}
	}
	if rt.client != nil {
		if err := rt.client.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// createLogger configures the application logger. Debug overrides the
// configured level.
func createLogger(w io.Writer, level string, debug bool) (*slog.Logger, error) {
	if debug {
		return logging.NewWriter(w, slog.LevelDebug), nil
	}
	lvl, err := logging.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return logging.NewWriter(w, lvl), nil
}
