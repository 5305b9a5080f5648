package observability

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aretw0/swallow/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
)

const (
	statusOK    = "ok"
	statusError = "error"
)

// Metrics records unit of work activity as Prometheus collectors.
type Metrics struct {
	Documents       *prometheus.CounterVec
	Transformations *prometheus.CounterVec
	Duration        *prometheus.HistogramVec
	gatherer        prometheus.Gatherer
}

// NewMetrics creates the collectors and registers them on reg. When reg is
// also a Gatherer, Push uses it.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Documents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "swallow_documents_total",
				Help: "Documents rewritten by a unit of work",
			},
			[]string{"status"},
		),
		Transformations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "swallow_transformations_total",
				Help: "Transformations applied, by name and outcome",
			},
			[]string{"transformation", "status"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "swallow_transformation_duration_seconds",
				Help:    "Duration of single transformations",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
			[]string{"transformation"},
		),
	}
	for _, c := range []prometheus.Collector{m.Documents, m.Transformations, m.Duration} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}
	// Document series are reported before the first unit of work.
	m.Documents.WithLabelValues(statusOK)
	m.Documents.WithLabelValues(statusError)
	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	}
	return m, nil
}

// Hooks returns lifecycle hooks that update the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnFinishDocument: func(_ context.Context, _ *domain.DocumentEvent) {
			m.Documents.WithLabelValues(statusOK).Inc()
		},
		OnFinishTransformation: func(_ context.Context, e *domain.TransformationEvent) {
			status := statusOK
			if e.Err != nil {
				status = statusError
				m.Documents.WithLabelValues(statusError).Inc()
			}
			m.Transformations.WithLabelValues(e.Transformation, status).Inc()
			m.Duration.WithLabelValues(e.Transformation).Observe(e.Duration.Seconds())
		},
	}
}

// Push sends the gathered metrics to a Prometheus push gateway.
func (m *Metrics) Push(ctx context.Context, url, job string) error {
	if m.gatherer == nil {
		return fmt.Errorf("push %s: registry cannot be gathered", url)
	}
	if err := push.New(url, job).Gatherer(m.gatherer).PushContext(ctx); err != nil {
		return fmt.Errorf("push %s: %w", url, err)
	}
	return nil
}

// Handler exposes the gathered metrics for scraping. It is nil when the
// registry cannot be gathered.
func (m *Metrics) Handler() http.Handler {
	if m.gatherer == nil {
		return nil
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
