package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v2"
)

func checkCmd() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "Run the pipeline once and print a summary",
		Action: func(c *cli.Context) error {
			d, err := setup(c)
			if err != nil {
				return err
			}
			defer d.Close()

			w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "feed\t%s\n", d.source.FeedURL)
			fmt.Fprintf(w, "mode\t%s\n", d.cfg.Collector.Mode)
			for _, ep := range d.source.Endpoints {
				fmt.Fprintf(w, "endpoint %s\t%s\n", ep.Name, ep.URL)
			}
			fmt.Fprintf(w, "keywords\t%d\n", d.keywords.Len())

			res := d.orchestrator.Run(c.Context, d.source, d.keywords)
			if res.Failed() {
				fmt.Fprintf(w, "status\tfailed\n")
				_ = w.Flush()
				return fmt.Errorf("check failed: %w", res.Err)
			}

			if res.Info.Title != "" {
				fmt.Fprintf(w, "title\t%s\n", res.Info.Title)
			}
			fmt.Fprintf(w, "parsed\t%d\n", res.Total)
			fmt.Fprintf(w, "matched\t%d\n", len(res.Posts))
			status := "ok"
			if res.Empty() {
				status = "empty"
			}
			fmt.Fprintf(w, "status\t%s\n", status)
			return w.Flush()
		},
	}
}
