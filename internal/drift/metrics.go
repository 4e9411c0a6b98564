package drift

import "github.com/prometheus/client_golang/prometheus"

// Prometheus detection metrics.
var anomaliesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "driftscope_anomalies_total",
		Help: "Total anomalies detected, by series and detector type.",
	},
	[]string{"series", "type"},
)

func init() {
	prometheus.MustRegister(anomaliesTotal)
}
