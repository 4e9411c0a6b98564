package bench

import "github.com/prometheus/client_golang/prometheus"

var runsTotal = prometheus.NewCounter(prometheus.CounterOpts{
	Name: "driftscope_bench_runs_total",
	Help: "Total evaluation runs graded.",
})

func init() {
	prometheus.MustRegister(runsTotal)
}
