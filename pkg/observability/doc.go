/*
Package observability turns unit of work lifecycle hooks into logs, metrics
and traces.

Each constructor returns a domain.LifecycleHooks value; combine them with
LifecycleHooks.Merge and pass the result to workspace.WithLifecycleHooks:

	metrics, _ := observability.NewMetrics(prometheus.NewRegistry())
	hooks := observability.LoggingHooks(logger).
		Merge(metrics.Hooks()).
		Merge(observability.TracingHooks(provider.Tracer()))
*/
package observability
