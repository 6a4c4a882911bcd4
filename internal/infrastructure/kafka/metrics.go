package kafka

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var adminRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "topic_scout",
		Subsystem: "admin",
		Name:      "request_duration_seconds",
		Help:      "Duration of admin requests sent to Kafka clusters",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"operation", "outcome"},
)

// observe records one admin request. Call it deferred with the named error result.
func observe(operation string, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	adminRequestDuration.WithLabelValues(operation, outcome).Observe(time.Since(start).Seconds())
}
