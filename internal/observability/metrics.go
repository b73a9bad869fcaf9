package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Anomaly detection
	DetectorRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insights_detector_runs_total",
			Help: "Detector executions by outcome",
		},
		[]string{"detector", "status"},
	)

	DetectorDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "insights_detector_duration_seconds",
			Help:    "Detector execution time in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		},
		[]string{"detector"},
	)

	AnomaliesFound = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insights_anomalies_total",
			Help: "Anomalies produced by detector and priority",
		},
		[]string{"detector", "priority"},
	)

	// Journey construction
	JourneyPurchasesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insights_journey_purchases_total",
			Help: "Purchases seen by the journey builder by outcome",
		},
		[]string{"outcome"},
	)

	// Ingestion
	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insights_events_published_total",
			Help: "Raw events accepted by the API and published to the queue",
		},
		[]string{"status"},
	)

	EventsWrittenTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "insights_events_written_total",
			Help: "Raw events written to the columnar store by the consumer",
		},
	)

	MessagesReceivedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "insights_queue_messages_received_total",
			Help: "Messages pulled from the ingestion queue",
		},
	)

	QueueReceiveErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "insights_queue_receive_errors_total",
			Help: "Failed receive calls against the ingestion queue",
		},
	)

	MessagesRejectedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "insights_queue_messages_rejected_total",
			Help: "Queue messages dropped because their body could not be decoded",
		},
	)

	EventsDeduplicatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "insights_events_deduplicated_total",
			Help: "Raw events dropped by the consumer idempotency check",
		},
	)
)

// Journey purchase outcomes
const (
	OutcomeCreated = "created"
	OutcomeSkipped = "skipped"
	OutcomeIgnored = "ignored"
	OutcomeFailed  = "failed"
)
