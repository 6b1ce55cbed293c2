package dashboard

import (
	"net/http"
	"slices"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
	"github.com/qepting91/feedcards/internal/domain"
	"github.com/qepting91/feedcards/internal/relevance"
	"github.com/samber/lo"
)

const uncategorized = "Uncategorized"

type count struct {
	Name  string
	Value int
}

// categoryShare counts posts per category, most frequent first. Posts
// without categories are counted once as uncategorized.
func categoryShare(posts []domain.Post) []count {
	counts := make(map[string]int)
	for _, p := range posts {
		cats := lo.Uniq(lo.FilterMap(p.Categories, func(c string, _ int) (string, bool) {
			c = strings.TrimSpace(c)
			return c, c != ""
		}))
		if len(cats) == 0 {
			counts[uncategorized]++
			continue
		}
		for _, c := range cats {
			counts[c]++
		}
	}

	out := lo.MapToSlice(counts, func(name string, n int) count {
		return count{Name: name, Value: n}
	})
	slices.SortFunc(out, func(a, b count) int {
		if a.Value != b.Value {
			return b.Value - a.Value
		}
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// keywordHits counts, per keyword, the posts that mention it. Keywords keep
// their configured order, including those with no hits.
func keywordHits(posts []domain.Post, keywords domain.KeywordSet) []count {
	words := keywords.Words()
	hits := make(map[string]int, len(words))
	for _, p := range posts {
		for _, k := range relevance.Matches(p, keywords) {
			hits[k]++
		}
	}
	return lo.Map(words, func(k string, _ int) count {
		return count{Name: k, Value: hits[k]}
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	res := s.runner.Run(r.Context(), s.cfg.Source, s.cfg.Keywords)
	if res.Failed() {
		s.logger.Error("Error loading blog posts", "run_id", res.RunID, "err", res.Err)
		http.Error(w, FailureMessage, http.StatusBadGateway)
		return
	}

	// 1. Category share
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: types.ThemeWesteros}),
		charts.WithTitleOpts(opts.Title{Title: "Category Share", Subtitle: s.cfg.Title}),
	)
	pie.AddSeries("Posts", lo.Map(categoryShare(res.Posts), func(c count, _ int) opts.PieData {
		return opts.PieData{Name: c.Name, Value: c.Value}
	}))

	// 2. Keyword hits
	hits := keywordHits(res.Posts, s.cfg.Keywords)
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: types.ThemeWesteros}),
		charts.WithTitleOpts(opts.Title{Title: "Keyword Hits"}),
	)
	bar.SetXAxis(lo.Map(hits, func(c count, _ int) string { return c.Name })).
		AddSeries("Posts", lo.Map(hits, func(c count, _ int) opts.BarData {
			return opts.BarData{Value: c.Value}
		}))

	page := components.NewPage()
	page.PageTitle = s.cfg.Title
	page.AddCharts(pie, bar)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := page.Render(w); err != nil {
		s.logger.Error("Failed to render stats", "run_id", res.RunID, "err", err)
	}
}
