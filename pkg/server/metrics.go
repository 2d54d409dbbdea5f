package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/docsmith/pkg/observability"
)

// NewMetrics creates a registry with the Go and process collectors and
// the docsmith collectors, and installs the latter as the global hooks.
// The returned handler serves the registry.
func NewMetrics() http.Handler {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := observability.NewPrometheus(reg)
	observability.SetProcessorHooks(m)
	observability.SetCacheHooks(m)
	observability.SetServerHooks(m)

	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
