package dashboard

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/qepting91/feedcards/internal/domain"
	"github.com/qepting91/feedcards/internal/relevance"
	"github.com/qepting91/feedcards/internal/render"
)

//go:embed templates/index.html
var templateFS embed.FS

const (
	StatePosts  = "posts"
	StateEmpty  = "empty"
	StateFailed = "failed"

	FailureMessage = "Unable to load articles. Please try again later."
	EmptyMessage   = "No matching posts found."

	shutdownTimeout = 10 * time.Second
)

// Runner runs one pipeline pass.
type Runner interface {
	Run(ctx context.Context, src domain.FeedSource, keywords domain.KeywordSet) domain.Result
}

type Config struct {
	Title    string
	Source   domain.FeedSource
	Keywords domain.KeywordSet
	Render   render.Options
	Logger   *slog.Logger
}

// Server renders pipeline results. Every request triggers a fresh run.
type Server struct {
	runner Runner
	cfg    Config
	logger *slog.Logger
	page   *template.Template
}

func NewServer(runner Runner, cfg Config) (*Server, error) {
	page, err := template.ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, err
	}
	if cfg.Title == "" {
		cfg.Title = "Latest articles"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{runner: runner, cfg: cfg, logger: logger, page: page}, nil
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /api/posts", s.handlePosts)
	mux.HandleFunc("GET /stats", s.handleStats)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting Dashboard", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type view struct {
	State   string          `json:"state"`
	Title   string          `json:"-"`
	Feed    domain.FeedInfo `json:"feed"`
	Cards   []render.Card   `json:"cards"`
	Message string          `json:"message,omitempty"`
}

func (v view) status() int {
	if v.State == StateFailed {
		return http.StatusBadGateway
	}
	return http.StatusOK
}

// run executes the pipeline and maps the result to what the user sees.
// Failure details are logged, never rendered.
func (s *Server) run(ctx context.Context) (view, domain.Result) {
	res := s.runner.Run(ctx, s.cfg.Source, s.cfg.Keywords)
	v := view{Title: s.cfg.Title, Feed: res.Info, Cards: []render.Card{}}

	switch {
	case res.Failed():
		s.logger.Error("Error loading blog posts", "run_id", res.RunID, "err", res.Err)
		v.State = StateFailed
		v.Message = FailureMessage
	case res.Empty():
		v.State = StateEmpty
		v.Message = EmptyMessage
	default:
		v.State = StatePosts
		for _, p := range res.Posts {
			card := render.NewCard(p, s.cfg.Render)
			card.Keywords = relevance.Matches(p, s.cfg.Keywords)
			v.Cards = append(v.Cards, card)
		}
	}
	return v, res
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	v, _ := s.run(r.Context())

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(v.status())
	if err := s.page.Execute(w, v); err != nil {
		s.logger.Error("Failed to render page", "err", err)
	}
}

func (s *Server) handlePosts(w http.ResponseWriter, r *http.Request) {
	v, _ := s.run(r.Context())

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(v.status())
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode posts", "err", err)
	}
}
