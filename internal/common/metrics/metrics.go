// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RunsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autoassign_runs_completed_total",
			Help: "Total number of assignment runs completed, by decision status",
		},
		[]string{"status"},
	)

	RunsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autoassign_runs_failed_total",
			Help: "Total number of assignment runs that failed",
		},
		[]string{"error_code"},
	)

	RunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "autoassign_run_duration_seconds",
			Help: "Duration of assignment run processing in seconds",
		},
		[]string{"status"},
	)

	ExternalCallErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autoassign_external_call_errors_total",
			Help: "Errors talking to external collaborators, by service",
		},
		[]string{"service"},
	)
)
