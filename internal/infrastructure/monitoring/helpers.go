package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler exposes the collectors of g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// ResultLabel maps an error to the "ok"/"error" label used by counters.
func ResultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
