package main

import (
	"github.com/qepting91/feedcards/internal/dashboard"
	"github.com/urfave/cli/v2"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the cards dashboard",
		Description: `Starts the HTTP dashboard. Every page load runs the pipeline once.

		/            cards page
		/api/posts   the same result as JSON
		/stats       category and keyword charts
		/metrics     Prometheus metrics
		/healthz     liveness`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "addr",
				Aliases: []string{"a"},
				Usage:   "listen address (default from config, :8080)",
				EnvVars: []string{"FEEDCARDS_ADDR"},
			},
		},
		Action: func(c *cli.Context) error {
			d, err := setup(c)
			if err != nil {
				return err
			}
			defer d.Close()

			addr := d.cfg.Server.Addr
			if c.IsSet("addr") {
				addr = c.String("addr")
			}

			renderOpts, err := d.cfg.RenderOptions()
			if err != nil {
				return err
			}

			srv, err := dashboard.NewServer(d.orchestrator, dashboard.Config{
				Title:    d.cfg.Server.Title,
				Source:   d.source,
				Keywords: d.keywords,
				Render:   renderOpts,
				Logger:   d.logger,
			})
			if err != nil {
				return err
			}

			if err := srv.ListenAndServe(c.Context, addr); err != nil {
				d.logger.Error("Dashboard failed", "err", err)
				return err
			}
			d.logger.Info("Dashboard stopped")
			return nil
		},
	}
}
