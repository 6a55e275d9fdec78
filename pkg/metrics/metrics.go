// Package metrics provides Prometheus metrics for the Fern service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RecordsProcessed tracks ingested source records by outcome
	RecordsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fern",
			Subsystem: "ingest",
			Name:      "records_total",
			Help:      "Total number of source records processed by outcome",
		},
		[]string{"tenant_id", "source_system", "outcome"},
	)

	// RecordProcessingDuration tracks end-to-end record processing time
	RecordProcessingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fern",
			Subsystem: "ingest",
			Name:      "record_duration_seconds",
			Help:      "Duration of source record processing in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"tenant_id", "source_system"},
	)

	// ClassificationsTotal tracks classifier outcomes by entity kind
	ClassificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fern",
			Subsystem: "classify",
			Name:      "classifications_total",
			Help:      "Total number of classifications by entity kind and rule",
		},
		[]string{"tenant_id", "kind", "rule"},
	)

	// ClassificationFailures tracks records no rule matched
	ClassificationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fern",
			Subsystem: "classify",
			Name:      "failures_total",
			Help:      "Total number of records no classification rule matched",
		},
		[]string{"tenant_id", "source_system"},
	)

	// StreetResolutions tracks street alias resolution outcomes
	StreetResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fern",
			Subsystem: "streets",
			Name:      "resolutions_total",
			Help:      "Total number of street alias resolutions by method",
		},
		[]string{"method"},
	)

	// MatchScores tracks the distribution of candidate match scores
	MatchScores = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fern",
			Subsystem: "matching",
			Name:      "scores",
			Help:      "Distribution of candidate match scores",
			Buckets:   []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 0.95, 1},
		},
		[]string{"kind_pair"},
	)

	// MatchCandidatesSelected tracks candidates surviving selection
	MatchCandidatesSelected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fern",
			Subsystem: "matching",
			Name:      "candidates_selected_total",
			Help:      "Total number of match candidates surviving selection",
		},
		[]string{"tenant_id", "kind_pair"},
	)

	// KafkaMessagesPublished tracks Kafka messages published
	KafkaMessagesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fern",
			Subsystem: "kafka",
			Name:      "messages_published_total",
			Help:      "Total number of messages published to Kafka",
		},
		[]string{"topic", "status"},
	)

	// DatabaseQueryDuration tracks database query duration
	DatabaseQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fern",
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Duration of database queries in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"operation"},
	)
)

// RecordIngest records a processed source record
func RecordIngest(tenantID, sourceSystem, outcome string, durationSeconds float64) {
	RecordsProcessed.WithLabelValues(tenantID, sourceSystem, outcome).Inc()
	RecordProcessingDuration.WithLabelValues(tenantID, sourceSystem).Observe(durationSeconds)
}

// RecordClassification records a successful classification
func RecordClassification(tenantID, kind, rule string) {
	ClassificationsTotal.WithLabelValues(tenantID, kind, rule).Inc()
}

// RecordClassificationFailure records a record no rule matched
func RecordClassificationFailure(tenantID, sourceSystem string) {
	ClassificationFailures.WithLabelValues(tenantID, sourceSystem).Inc()
}

// RecordStreetResolution records a street alias resolution
func RecordStreetResolution(method string) {
	StreetResolutions.WithLabelValues(method).Inc()
}

// RecordMatchScore records a scored candidate pair
func RecordMatchScore(kindPair string, score float64) {
	MatchScores.WithLabelValues(kindPair).Observe(score)
}

// RecordCandidatesSelected records candidates surviving selection
func RecordCandidatesSelected(tenantID, kindPair string, count int) {
	MatchCandidatesSelected.WithLabelValues(tenantID, kindPair).Add(float64(count))
}
