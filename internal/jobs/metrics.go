package jobs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var jobsProcessed = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "shiftwatch",
		Subsystem: "jobs",
		Name:      "processed_total",
		Help:      "Jobs processed, by queue, type and outcome.",
	},
	[]string{"queue", "type", "outcome"},
)

func observeJob(queue string, jobType JobType, outcome string) {
	jobsProcessed.WithLabelValues(queue, string(jobType), outcome).Inc()
}
