package collector

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/qepting91/feedcards/internal/domain"
	"golang.org/x/time/rate"
)

// DefaultTimeout bounds each endpoint attempt.
const DefaultTimeout = 8000 * time.Millisecond

// RaceClient fetches a feed by racing every endpoint of the source and
// keeping the first successful body.
type RaceClient struct {
	endpoints *EndpointClient
	timeout   time.Duration
	limiter   *rate.Limiter
	logger    *slog.Logger
}

// NewRaceClient builds a client. limiter may be nil to disable rate
// limiting; otherwise each Fetch takes one token before any endpoint is tried.
func NewRaceClient(endpoints *EndpointClient, timeout time.Duration, limiter *rate.Limiter, logger *slog.Logger) *RaceClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RaceClient{endpoints: endpoints, timeout: timeout, limiter: limiter, logger: logger}
}

type attemptResult struct {
	endpoint domain.Endpoint
	body     string
	err      error
}

// Fetch implements domain.Fetcher. Losing attempts are cancelled once a
// winner is found; their results land in a buffered channel and are dropped.
func (rc *RaceClient) Fetch(ctx context.Context, src domain.FeedSource) (string, error) {
	if len(src.Endpoints) == 0 {
		return "", &domain.FetchError{FeedURL: src.FeedURL}
	}
	if rc.limiter != nil {
		if err := rc.limiter.Wait(ctx); err != nil {
			return "", &domain.FetchError{
				FeedURL:  src.FeedURL,
				Attempts: []error{fmt.Errorf("rate limiter: %w", err)},
			}
		}
	}

	raceCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan attemptResult, len(src.Endpoints))
	for _, ep := range src.Endpoints {
		go func(ep domain.Endpoint) {
			body, err := rc.attempt(raceCtx, ep)
			results <- attemptResult{endpoint: ep, body: body, err: err}
		}(ep)
	}

	errs := make([]error, 0, len(src.Endpoints))
	for range src.Endpoints {
		r := <-results
		if r.err == nil {
			rc.logger.Debug("Endpoint won fetch race", "endpoint", r.endpoint.Name, "bytes", len(r.body))
			return r.body, nil
		}
		rc.logger.Debug("Endpoint attempt failed", "endpoint", r.endpoint.Name, "err", r.err)
		errs = append(errs, fmt.Errorf("%s: %w", r.endpoint.Name, r.err))
	}

	return "", &domain.FetchError{FeedURL: src.FeedURL, Attempts: errs}
}

func (rc *RaceClient) attempt(ctx context.Context, ep domain.Endpoint) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, rc.timeout)
	defer cancel()

	start := time.Now()
	body, err := rc.endpoints.Get(ctx, ep)
	fetchAttempts.WithLabelValues(ep.Name, attemptOutcome(err)).Inc()
	fetchDuration.WithLabelValues(ep.Name).Observe(time.Since(start).Seconds())
	return body, err
}
