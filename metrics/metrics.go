// Package metrics holds the prometheus metrics of an index sync run.
//
// The tool is a batch job, so metrics are not served over HTTP. They can be written once
// at the end of a run in the text exposition format (node_exporter textfile collector).
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const metricNamespace = "mdb_index_sync"

// Reasons a collection is skipped.
const (
	SkipReasonMissingDestination = "missing_destination"
	SkipReasonMissingSource      = "missing_source"
	SkipReasonView               = "view"
	SkipReasonExcluded           = "excluded"
)

// Counters.
var (
	//nolint:gochecknoglobals
	indexesReadTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name:      "indexes_read_total",
		Help:      "Total number of index specifications read from the source.",
		Namespace: metricNamespace,
	})

	//nolint:gochecknoglobals
	indexesCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name:      "indexes_created_total",
		Help:      "Total number of indexes created (or already present) on the destination.",
		Namespace: metricNamespace,
	})

	//nolint:gochecknoglobals
	indexCreateFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name:      "index_create_failures_total",
		Help:      "Total number of indexes that failed to be created on the destination.",
		Namespace: metricNamespace,
	})

	//nolint:gochecknoglobals
	indexesSkippedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name:      "indexes_skipped_total",
		Help:      "Total number of indexes not sent because they exist with the collection.",
		Namespace: metricNamespace,
	})

	//nolint:gochecknoglobals
	indexReadFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name:      "index_read_failures_total",
		Help:      "Total number of source collections whose indexes could not be listed.",
		Namespace: metricNamespace,
	})

	//nolint:gochecknoglobals
	collectionsSkippedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:      "collections_skipped_total",
		Help:      "Total number of source collections skipped, by reason.",
		Namespace: metricNamespace,
	}, []string{"reason"})

	//nolint:gochecknoglobals
	collectionsResetTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name:      "collections_reset_total",
		Help:      "Total number of destination collections whose indexes were dropped.",
		Namespace: metricNamespace,
	})

	//nolint:gochecknoglobals
	resetFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name:      "reset_failures_total",
		Help:      "Total number of destination collections whose indexes failed to be dropped.",
		Namespace: metricNamespace,
	})
)

// Gauges.
var (
	//nolint:gochecknoglobals
	runDurationSeconds = prometheus.NewGauge(prometheus.GaugeOpts{
		Name:      "run_duration_seconds",
		Help:      "Duration of the last run in seconds.",
		Namespace: metricNamespace,
	})

	//nolint:gochecknoglobals
	lastRunSuccessTimestampSeconds = prometheus.NewGauge(prometheus.GaugeOpts{
		Name:      "last_run_success_timestamp_seconds",
		Help:      "Unix time of the last run that completed without a fatal error.",
		Namespace: metricNamespace,
	})
)

// Init registers the metrics.
func Init(reg prometheus.Registerer) {
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{
		Namespace: metricNamespace,
	}))

	reg.MustRegister(
		indexesReadTotal,
		indexesCreatedTotal,
		indexCreateFailuresTotal,
		indexesSkippedTotal,
		indexReadFailuresTotal,
		collectionsSkippedTotal,
		collectionsResetTotal,
		resetFailuresTotal,

		runDurationSeconds,
		lastRunSuccessTimestampSeconds,
	)
}

// WriteTextfile writes every metric gathered from g to path in the text exposition format.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g) //nolint:wrapcheck
}

// AddIndexesRead increments the read index specifications counter.
func AddIndexesRead(v int) {
	indexesReadTotal.Add(float64(v))
}

// IncIndexesCreated increments the created indexes counter.
func IncIndexesCreated() {
	indexesCreatedTotal.Inc()
}

// IncIndexCreateFailures increments the failed index creations counter.
func IncIndexCreateFailures() {
	indexCreateFailuresTotal.Inc()
}

// IncIndexesSkipped increments the skipped indexes counter.
func IncIndexesSkipped() {
	indexesSkippedTotal.Inc()
}

// IncIndexReadFailures increments the failed index listings counter.
func IncIndexReadFailures() {
	indexReadFailuresTotal.Inc()
}

// IncCollectionsSkipped increments the skipped collections counter for reason.
func IncCollectionsSkipped(reason string) {
	collectionsSkippedTotal.WithLabelValues(reason).Inc()
}

// IncCollectionsReset increments the reset collections counter.
func IncCollectionsReset() {
	collectionsResetTotal.Inc()
}

// IncResetFailures increments the failed resets counter.
func IncResetFailures() {
	resetFailuresTotal.Inc()
}

// SetRunDuration sets the run duration gauge.
func SetRunDuration(d time.Duration) {
	runDurationSeconds.Set(d.Seconds())
}

// SetLastRunSuccess sets the last successful run timestamp gauge.
func SetLastRunSuccess(t time.Time) {
	lastRunSuccessTimestampSeconds.Set(float64(t.Unix()))
}
