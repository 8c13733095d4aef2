package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Inbound notification metrics
	MessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketbridge_messages_total",
			Help: "Total number of change notifications received",
		},
		[]string{"resource_type", "status"},
	)

	ProcessingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "marketbridge_processing_duration_seconds",
			Help:    "Duration of end-to-end message processing in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Processor metrics
	GenerationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketbridge_generation_failures_total",
			Help: "Total number of failed event generation attempts",
		},
		[]string{"processor"},
	)

	// Delivery metrics
	DeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketbridge_deliveries_total",
			Help: "Total number of outbound event deliveries",
		},
		[]string{"kind", "outcome"},
	)

	// Rate limiting metrics
	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketbridge_rate_limit_hits_total",
			Help: "Total number of rate limit hits",
		},
		[]string{"key"},
	)

	// Dead letter queue metrics
	DLQWritten = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "marketbridge_dlq_written_total",
			Help: "Total number of rejected deliveries written to the DLQ",
		},
	)
)
