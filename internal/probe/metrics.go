package probe

import "github.com/prometheus/client_golang/prometheus"

var (
	samplesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "driftscope_probe_samples_total",
			Help: "Total latency samples published, by target.",
		},
		[]string{"target"},
	)
	missesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "driftscope_probe_misses_total",
			Help: "Total probe rounds with no reply, by target.",
		},
		[]string{"target"},
	)
)

func init() {
	prometheus.MustRegister(samplesTotal, missesTotal)
}
