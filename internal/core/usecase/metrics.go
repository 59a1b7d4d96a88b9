package usecase

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Request body validation
	validationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "timelinewiki_validation_total",
			Help: "Total number of request bodies validated",
		},
		[]string{"schema", "result"}, // valid, invalid or error
	)

	validationViolationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "timelinewiki_validation_violations_total",
			Help: "Total number of violations reported to clients",
		},
		[]string{"schema"},
	)

	validationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "timelinewiki_validation_duration_seconds",
			Help:    "Time spent validating a request body",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 8),
		},
		[]string{"schema"},
	)

	// Change feed delivery
	outboxDispatchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "timelinewiki_outbox_dispatch_total",
			Help: "Total number of outbox delivery attempts",
		},
		[]string{"result"}, // success, failure or dead
	)
)
