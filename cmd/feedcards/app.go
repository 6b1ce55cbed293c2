package main

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/qepting91/feedcards/internal/collector"
	"github.com/qepting91/feedcards/internal/config"
	"github.com/qepting91/feedcards/internal/domain"
	"github.com/qepting91/feedcards/internal/feed"
	"github.com/qepting91/feedcards/internal/pipeline"
	"github.com/urfave/cli/v2"
)

func newApp() *cli.App {
	return &cli.App{
		Name:  "feedcards",
		Usage: "Fetch an RSS feed, keep the on-topic posts and show them as cards",
		Description: `feedcards races a feed URL through several endpoints (public CORS
		proxies and a direct request), parses the first answer and keeps the
		posts that mention one of the configured keywords.

		Flags can generally be set via environment variables, e.g.:

		--config => FEEDCARDS_CONFIG=feedcards.toml
		--mode => FEEDCARDS_MODE=mock
		`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "TOML config file",
				EnvVars: []string{"FEEDCARDS_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "debug, info, warn or error",
				EnvVars: []string{"FEEDCARDS_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "log-file",
				Usage:   "also write logs to this file, rotated",
				EnvVars: []string{"FEEDCARDS_LOG_FILE"},
			},
			&cli.StringFlag{
				Name:    "mode",
				Usage:   "collector mode: race or mock",
				EnvVars: []string{"FEEDCARDS_MODE"},
			},
			&cli.DurationFlag{
				Name:    "timeout",
				Usage:   "per-endpoint fetch timeout",
				EnvVars: []string{"FEEDCARDS_TIMEOUT"},
			},
		},
		Commands: []*cli.Command{
			serveCmd(),
			fetchCmd(),
			checkCmd(),
		},
		Action: func(ctx *cli.Context) error {
			// Show help if no command is specified
			return cli.ShowAppHelp(ctx)
		},
	}
}

// deps is what every command needs: config, logger and a ready pipeline.
type deps struct {
	cfg          *config.Config
	logger       *slog.Logger
	source       domain.FeedSource
	keywords     domain.KeywordSet
	orchestrator *pipeline.Orchestrator
	closeLog     io.Closer
}

func (d *deps) Close() error {
	return d.closeLog.Close()
}

func setup(c *cli.Context) (*deps, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}

	// Flags override the config file
	if mode := c.String("mode"); mode != "" {
		cfg.Collector.Mode = mode
	}
	if c.IsSet("timeout") {
		cfg.Collector.TimeoutMS = int(c.Duration("timeout") / time.Millisecond)
	}
	if level := c.String("log-level"); level != "" {
		cfg.Log.Level = level
	}
	if file := c.String("log-file"); file != "" {
		cfg.Log.File = file
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, closeLog, err := newLogger(cfg.Log, c.App.ErrWriter)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)

	source, err := cfg.Source()
	if err != nil {
		return nil, err
	}

	// Initialize Client (Using Factory)
	fetcher, err := collector.NewCollector(cfg.CollectorOptions(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize collector: %w", err)
	}
	logger.Debug("Collector initialized", "mode", cfg.Collector.Mode, "timeout", cfg.Timeout())

	return &deps{
		cfg:          cfg,
		logger:       logger,
		source:       source,
		keywords:     cfg.KeywordSet(),
		orchestrator: pipeline.New(fetcher, feed.NewParser(), logger),
		closeLog:     closeLog,
	}, nil
}
