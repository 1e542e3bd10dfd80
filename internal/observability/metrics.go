// Package observability exposes Prometheus counters for the job pipeline.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	JobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_jobs_total",
			Help: "Jobs reaching a terminal state, by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	JobRetriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_job_retries_total",
			Help: "Job attempts re-queued with backoff, by kind",
		},
		[]string{"kind"},
	)

	DeliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_deliveries_total",
			Help: "Terminal payload deliveries to the collector, by outcome",
		},
		[]string{"outcome"},
	)
)

// Register installs the counters on the given registry.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(JobsTotal, JobRetriesTotal, DeliveriesTotal)
}
