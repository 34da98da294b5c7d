package web

import (
	"net/http"

	"github.com/nandira/taksir/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// handleHealth handles GET /healthz requests, serving the Prometheus
// metrics from our custom registry.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}).ServeHTTP(w, r)
}
