package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomePosts       = "posts"
	outcomeEmpty       = "empty"
	outcomeFetchFailed = "fetch_failed"
	outcomeParseFailed = "parse_failed"
)

var (
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "feedcards_pipeline_runs_total",
		Help: "Pipeline runs by outcome",
	}, []string{"outcome"})

	postsPerRun = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "feedcards_pipeline_posts",
		Help:    "Posts per run after parsing and after filtering",
		Buckets: prometheus.LinearBuckets(0, 5, 10),
	}, []string{"stage"})
)
