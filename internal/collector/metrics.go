package collector

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fetchAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "feedcards_fetch_attempts_total",
		Help: "Feed fetch attempts per endpoint, by outcome",
	}, []string{"endpoint", "outcome"})

	fetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "feedcards_fetch_attempt_duration_seconds",
		Help:    "Duration of feed fetch attempts per endpoint",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms .. ~25s
	}, []string{"endpoint"})
)
