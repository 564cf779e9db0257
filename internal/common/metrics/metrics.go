// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QueueJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "queue_jobs_completed_total",
			Help: "Total number of queue jobs completed",
		},
		[]string{"job_type"},
	)

	QueueJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "queue_jobs_failed_total",
			Help: "Total number of queue jobs failed",
		},
		[]string{"job_type", "error_code"},
	)

	QueueJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "queue_job_duration_seconds",
			Help: "Duration of queue job processing in seconds",
		},
		[]string{"job_type"},
	)

	QueueJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "queue_jobs_active",
			Help: "Number of queue jobs currently processing",
		},
		[]string{"job_type"},
	)

	MatchesPersisted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matches_persisted_total",
			Help: "Total number of match records upserted, by confidence",
		},
		[]string{"confidence"},
	)

	MatchScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "match_score",
			Help:    "Distribution of final match scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	AnomaliesDetected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "monitor_anomalies_detected_total",
			Help: "Scoring anomalies flagged by the quality monitor",
		},
		[]string{"anomaly_type"},
	)

	SuggestedThreshold = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "monitor_suggested_similarity_threshold",
			Help: "Similarity admission threshold proposed by the quality monitor",
		},
	)
)
