package http

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	parsesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qti_parses_total",
			Help: "Total number of parse calls",
		},
		[]string{"kind", "status"},
	)

	scoringsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qti_scorings_total",
			Help: "Total number of scoring calls",
		},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(parsesTotal)
	prometheus.MustRegister(scoringsTotal)
}

// GET /metrics
func MetricsHandler() http.Handler { return promhttp.Handler() }
