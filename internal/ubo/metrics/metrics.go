package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the screening module.
type Metrics struct {
	// Screening runs by compliance outcome
	RunsTotal *prometheus.CounterVec

	// Runs that aborted on a fatal error
	RunsFailed prometheus.Counter

	// Soft registry lookup failures by category
	LookupFailures *prometheus.CounterVec

	// Companies expanded per run
	CompaniesChecked prometheus.Histogram

	// Beneficial owners identified per run
	UBOsFound prometheus.Histogram

	// Full run latency including all registry lookups
	RunDuration prometheus.Histogram
}

// New creates a new Metrics instance with all screening metrics registered.
func New() *Metrics {
	return &Metrics{
		RunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ubo_screening_runs_total",
			Help: "Total screening runs by compliance status",
		}, []string{"compliance_status"}),

		RunsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ubo_screening_runs_failed_total",
			Help: "Screening runs aborted by a fatal error",
		}),

		LookupFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ubo_registry_lookup_failures_total",
			Help: "Soft registry lookup failures by error category",
		}, []string{"category"}),

		CompaniesChecked: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ubo_screening_companies_checked",
			Help:    "Companies expanded per screening run",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 200},
		}),

		UBOsFound: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ubo_screening_owners_found",
			Help:    "Beneficial owners identified per screening run",
			Buckets: []float64{0, 1, 2, 3, 5, 10},
		}),

		RunDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ubo_screening_run_duration_seconds",
			Help:    "Duration of full screening runs including registry lookups",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
	}
}

// RecordRun records a completed run's outcome and shape.
func (m *Metrics) RecordRun(status string, companiesChecked, ubosFound int, d time.Duration) {
	if m != nil {
		m.RunsTotal.WithLabelValues(status).Inc()
		m.CompaniesChecked.Observe(float64(companiesChecked))
		m.UBOsFound.Observe(float64(ubosFound))
		m.RunDuration.Observe(d.Seconds())
	}
}

// RecordFailure records a run aborted by a fatal error.
func (m *Metrics) RecordFailure() {
	if m != nil {
		m.RunsFailed.Inc()
	}
}

// RecordLookupFailures records soft registry lookup failures for a category.
func (m *Metrics) RecordLookupFailures(category string, count int) {
	if m != nil && count > 0 {
		m.LookupFailures.WithLabelValues(category).Add(float64(count))
	}
}
