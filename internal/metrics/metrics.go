// Package metrics provides Prometheus metrics for index-cleaner runs.
// All methods are safe to call on a nil *Metrics, which records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"index-cleaner/internal/types"
)

const (
	namespace = "index_cleaner"

	ResultSuccess = "success"
	ResultFailure = "failure"
)

type Metrics struct {
	// RunsTotal counts invocations by deletion mode and result.
	RunsTotal *prometheus.CounterVec

	// IndicesListed is the number of indices returned by the last listing.
	IndicesListed prometheus.Gauge

	// CandidatesSelected is the size of the last candidate set.
	CandidatesSelected prometheus.Gauge

	// IndicesDeletedTotal counts indices actually deleted (dry runs excluded).
	IndicesDeletedTotal prometheus.Counter

	// RunDuration measures a whole invocation.
	RunDuration prometheus.Histogram

	// LastSuccessTimestamp is the unix time of the last successful run.
	LastSuccessTimestamp prometheus.Gauge
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Total number of retention runs",
			},
			[]string{"mode", "result"},
		),
		IndicesListed: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "indices_listed",
				Help:      "Indices returned by the cluster on the last run",
			},
		),
		CandidatesSelected: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "candidates_selected",
				Help:      "Indices selected for deletion on the last run",
			},
		),
		IndicesDeletedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "indices_deleted_total",
				Help:      "Total number of indices deleted",
			},
		),
		RunDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Duration of a retention run in seconds",
				Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
		),
		LastSuccessTimestamp: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_success_timestamp_seconds",
				Help:      "Unix time of the last successful run",
			},
		),
	}
}

func (m *Metrics) ObserveSelection(listed int, candidates int) {
	if m == nil {
		return
	}
	m.IndicesListed.Set(float64(listed))
	m.CandidatesSelected.Set(float64(candidates))
}

func (m *Metrics) ObserveRun(report types.DeletionReport, started time.Time, finished time.Time, err error) {
	if m == nil {
		return
	}
	mode := report.Mode
	if mode == "" {
		mode = types.DeletionModeNone
	}
	m.RunDuration.Observe(finished.Sub(started).Seconds())
	if err != nil {
		m.RunsTotal.WithLabelValues(string(mode), ResultFailure).Inc()
		return
	}
	m.RunsTotal.WithLabelValues(string(mode), ResultSuccess).Inc()
	m.LastSuccessTimestamp.Set(float64(finished.Unix()))
	if mode == types.DeletionModeDelete {
		m.IndicesDeletedTotal.Add(float64(len(report.Targeted)))
	}
}
