package jobs

import "github.com/prometheus/client_golang/prometheus"

// Collectors are labelled by job name, e.g. "completion_audit".
var (
	jobRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "marks", Subsystem: "job", Name: "runs_total",
		Help: "Scheduled registry jobs (completion audit) executed, successful or not",
	}, []string{"job"})

	jobErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "marks", Subsystem: "job", Name: "errors_total",
		Help: "Registry job runs that returned an error, such as a failed completion query",
	}, []string{"job"})

	jobDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "marks", Subsystem: "job", Name: "duration_seconds",
		Help:    "Wall time of one registry job run, including its DB round trips",
		Buckets: []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"job"})

	jobLastSuccess = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "marks", Subsystem: "job", Name: "last_success_timestamp_seconds",
		Help: "Unix time of the last run that completed without error; a stale value means the completion gauges are stale too",
	}, []string{"job"})
)

func init() {
	prometheus.MustRegister(jobRuns, jobErrors, jobDuration, jobLastSuccess)
}
