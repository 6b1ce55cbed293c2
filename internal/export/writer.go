// Package export writes matched posts as newline-delimited JSON.
package export

import (
	"encoding/json"
	"io"
	"log/slog"
	"sync"

	"github.com/qepting91/feedcards/internal/domain"
)

// WriterService drains a post channel into Out, one JSON object per line.
type WriterService struct {
	Out    io.Writer
	Logger *slog.Logger

	mu      sync.Mutex
	written int
	err     error
}

// Start consumes input until it is closed. The first write error is kept
// and later posts are dropped.
func (w *WriterService) Start(wg *sync.WaitGroup, input <-chan domain.Post) {
	defer wg.Done()

	logger := w.Logger
	if logger == nil {
		logger = slog.Default()
	}
	enc := json.NewEncoder(w.Out)
	enc.SetEscapeHTML(false)

	for post := range input {
		w.mu.Lock()
		if w.err == nil {
			if err := enc.Encode(post); err != nil {
				logger.Error("Failed to write post", "link", post.Link, "err", err)
				w.err = err
			} else {
				w.written++
			}
		}
		w.mu.Unlock()
	}
}

// Written reports how many posts were written so far.
func (w *WriterService) Written() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.written
}

func (w *WriterService) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

// WritePosts writes posts through a WriterService and waits for it to finish.
func WritePosts(out io.Writer, posts []domain.Post, logger *slog.Logger) (int, error) {
	w := &WriterService{Out: out, Logger: logger}
	input := make(chan domain.Post, len(posts))

	var wg sync.WaitGroup
	wg.Add(1)
	go w.Start(&wg, input)

	for _, p := range posts {
		input <- p
	}
	close(input)
	wg.Wait()

	return w.Written(), w.Err()
}
