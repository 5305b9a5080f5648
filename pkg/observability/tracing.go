package observability

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/aretw0/swallow/pkg/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// DefaultServiceName identifies swallow in exported traces.
const DefaultServiceName = "swallow"

// TracingOptions configures NewProvider.
type TracingOptions struct {
	// Enabled controls whether tracing is active. When false, a no-op tracer
	// is returned.
	Enabled bool
	// Exporter is "stdout" or "otlp".
	Exporter string
	// Endpoint is the OTLP collector address. Default: localhost:4317.
	Endpoint string
	Insecure bool
	// Writer receives stdout spans. Default: os.Stdout.
	Writer      io.Writer
	ServiceName string
}

// Provider manages the OpenTelemetry tracer provider.
type Provider struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
}

// NewProvider creates the trace provider described by opts and installs it
// as the global provider when enabled.
func NewProvider(ctx context.Context, opts TracingOptions) (*Provider, error) {
	if !opts.Enabled {
		return &Provider{tracer: noop.NewTracerProvider().Tracer("noop")}, nil
	}

	var exporter sdktrace.SpanExporter
	var err error
	switch opts.Exporter {
	case "stdout", "":
		stdoutOpts := []stdouttrace.Option{stdouttrace.WithPrettyPrint()}
		if opts.Writer != nil {
			stdoutOpts = append(stdoutOpts, stdouttrace.WithWriter(opts.Writer))
		}
		exporter, err = stdouttrace.New(stdoutOpts...)
		if err != nil {
			return nil, fmt.Errorf("create stdout exporter: %w", err)
		}
	case "otlp":
		endpoint := opts.Endpoint
		if endpoint == "" {
			endpoint = "localhost:4317"
		}
		grpcOpts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(endpoint)}
		if opts.Insecure {
			grpcOpts = append(grpcOpts, otlptracegrpc.WithInsecure())
		}
		exporter, err = otlptracegrpc.New(ctx, grpcOpts...)
		if err != nil {
			return nil, fmt.Errorf("create otlp exporter: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported exporter type: %s", opts.Exporter)
	}

	serviceName := opts.ServiceName
	if serviceName == "" {
		serviceName = DefaultServiceName
	}
	provider := sdktrace.NewTracerProvider(
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", serviceName))),
		sdktrace.WithBatcher(exporter),
	)
	otel.SetTracerProvider(provider)

	return &Provider{provider: provider, tracer: provider.Tracer(serviceName)}, nil
}

// Tracer returns the configured tracer. It is a no-op tracer when tracing is
// disabled.
func (p *Provider) Tracer() trace.Tracer { return p.tracer }

// Enabled reports whether spans are exported.
func (p *Provider) Enabled() bool { return p.provider != nil }

// Shutdown flushes pending spans.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.provider != nil {
		return p.provider.Shutdown(ctx)
	}
	return nil
}

type spanKey struct {
	unit     string
	document domain.DocumentID
	index    int
}

// TracingHooks records one span per document with a child span per
// transformation.
func TracingHooks(tracer trace.Tracer) domain.LifecycleHooks {
	var spans sync.Map

	end := func(key spanKey, err error) {
		v, ok := spans.LoadAndDelete(key)
		if !ok {
			return
		}
		span := v.(trace.Span)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}

	return domain.LifecycleHooks{
		OnBeginDocument: func(ctx context.Context, e *domain.DocumentEvent) {
			_, span := tracer.Start(ctx, "swallow.document", trace.WithAttributes(
				attribute.String("swallow.unit_id", e.UnitID),
				attribute.String("swallow.document", string(e.Document)),
				attribute.Int("swallow.transformations", e.Transformations),
			))
			spans.Store(spanKey{unit: e.UnitID, document: e.Document, index: -1}, span)
		},
		OnFinishDocument: func(_ context.Context, e *domain.DocumentEvent) {
			end(spanKey{unit: e.UnitID, document: e.Document, index: -1}, nil)
		},
		OnBeginTransformation: func(ctx context.Context, e *domain.TransformationEvent) {
			if v, ok := spans.Load(spanKey{unit: e.UnitID, document: e.Document, index: -1}); ok {
				ctx = trace.ContextWithSpan(ctx, v.(trace.Span))
			}
			_, span := tracer.Start(ctx, "swallow.transformation", trace.WithAttributes(
				attribute.String("swallow.transformation", e.Transformation),
				attribute.Int("swallow.index", e.Index),
			))
			spans.Store(spanKey{unit: e.UnitID, document: e.Document, index: e.Index}, span)
		},
		OnFinishTransformation: func(_ context.Context, e *domain.TransformationEvent) {
			end(spanKey{unit: e.UnitID, document: e.Document, index: e.Index}, e.Err)
			if e.Err != nil {
				// A failed document never finishes.
				end(spanKey{unit: e.UnitID, document: e.Document, index: -1}, e.Err)
			}
		},
	}
}
