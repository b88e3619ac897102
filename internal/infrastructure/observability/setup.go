package observability

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Setup initializes logs, metrics, and traces. The returned handler serves
// /metrics; the returned func flushes the tracer on shutdown.
func Setup(serviceName string) (func(context.Context) error, http.Handler) {
	InitLogger()
	InitMetrics()
	tracerShutdown := InitTracing(serviceName)
	return tracerShutdown, promhttp.Handler()
}
