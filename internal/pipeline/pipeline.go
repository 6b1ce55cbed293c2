package pipeline

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/qepting91/feedcards/internal/domain"
	"github.com/qepting91/feedcards/internal/feed"
	"github.com/qepting91/feedcards/internal/relevance"
)

// Orchestrator runs fetch, parse and filter for one feed source.
// It holds no per-run state, so concurrent Run calls are independent.
type Orchestrator struct {
	fetcher domain.Fetcher
	parser  domain.Parser
	logger  *slog.Logger
}

func New(fetcher domain.Fetcher, parser domain.Parser, logger *slog.Logger) *Orchestrator {
	if parser == nil {
		parser = feed.NewParser()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{fetcher: fetcher, parser: parser, logger: logger}
}

// Run makes a single fetch/parse/filter pass. A run with no matching posts
// is a successful, empty result; only fetch and parse failures set Err.
func (o *Orchestrator) Run(ctx context.Context, src domain.FeedSource, keywords domain.KeywordSet) domain.Result {
	res := domain.Result{RunID: uuid.NewString()}
	log := o.logger.With("run_id", res.RunID, "feed", src.FeedURL)

	log.Info("Fetching feed", "endpoints", len(src.Endpoints))
	raw, err := o.fetcher.Fetch(ctx, src)
	if err != nil {
		log.Error("All fetch attempts failed", "err", err)
		runsTotal.WithLabelValues(outcomeFetchFailed).Inc()
		res.Err = err
		return res
	}

	posts, err := o.parser.Parse(raw)
	if err != nil {
		log.Error("Failed to parse feed", "err", err, "bytes", len(raw))
		runsTotal.WithLabelValues(outcomeParseFailed).Inc()
		res.Err = err
		return res
	}
	res.Total = len(posts)
	postsPerRun.WithLabelValues("parsed").Observe(float64(len(posts)))

	if info, err := feed.Info(raw); err != nil {
		log.Debug("No channel metadata", "err", err)
	} else {
		res.Info = info
	}

	res.Posts = relevance.Filter(posts, keywords)
	postsPerRun.WithLabelValues("matched").Observe(float64(len(res.Posts)))
	log.Info("Feed processed", "parsed", res.Total, "matched", len(res.Posts))

	if len(res.Posts) == 0 {
		runsTotal.WithLabelValues(outcomeEmpty).Inc()
	} else {
		runsTotal.WithLabelValues(outcomePosts).Inc()
	}
	return res
}
