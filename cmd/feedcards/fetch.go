package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/qepting91/feedcards/internal/domain"
	"github.com/qepting91/feedcards/internal/export"
	"github.com/urfave/cli/v2"
)

func fetchCmd() *cli.Command {
	return &cli.Command{
		Name:  "fetch",
		Usage: "Run the pipeline once and print matching posts as NDJSON",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "write to this file instead of stdout",
				EnvVars: []string{"FEEDCARDS_OUT"},
			},
		},
		Action: func(c *cli.Context) error {
			d, err := setup(c)
			if err != nil {
				return err
			}
			defer d.Close()

			res := d.orchestrator.Run(c.Context, d.source, d.keywords)
			if res.Failed() {
				return fmt.Errorf("fetch failed: %w", res.Err)
			}
			if res.Empty() {
				fmt.Fprintln(c.App.ErrWriter, "no matching posts")
				return nil
			}

			n, err := exportPosts(c.App.Writer, c.String("out"), res.Posts, d.logger)
			if err != nil {
				return err
			}
			d.logger.Info("Posts exported", "run_id", res.RunID, "posts", n)
			return nil
		},
	}
}

// exportPosts writes posts to the file at path, or to stdout when path is empty.
func exportPosts(stdout io.Writer, path string, posts []domain.Post, logger *slog.Logger) (int, error) {
	if path == "" {
		n, err := export.WritePosts(stdout, posts, logger)
		if err != nil {
			return n, fmt.Errorf("error writing posts: %w", err)
		}
		return n, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("error creating output file: %w", err)
	}
	n, err := writePostsAndClose(f, posts, logger)
	if err != nil {
		return n, fmt.Errorf("error writing posts: %w", err)
	}
	return n, nil
}

// writePostsAndClose writes posts to wc and closes it. A failed close is
// reported when the write itself succeeded.
func writePostsAndClose(wc io.WriteCloser, posts []domain.Post, logger *slog.Logger) (n int, err error) {
	defer func() {
		if cerr := wc.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return export.WritePosts(wc, posts, logger)
}
