// Package relevance decides whether a post is on topic for a keyword set.
//
// Matching is plain substring search over a lowercase blob, so short
// keywords also match inside longer words ("tf" matches "outfit").
package relevance

import (
	"strings"

	"github.com/qepting91/feedcards/internal/domain"
	"github.com/samber/lo"
)

// IsRelevant reports whether any keyword occurs in the post's title,
// description, content or categories.
func IsRelevant(p domain.Post, keywords domain.KeywordSet) bool {
	blob := searchText(p)
	return lo.ContainsBy(keywords.Words(), func(k string) bool {
		return strings.Contains(blob, k)
	})
}

// Matches returns every keyword found in the post, in keyword set order.
func Matches(p domain.Post, keywords domain.KeywordSet) []string {
	blob := searchText(p)
	return lo.Filter(keywords.Words(), func(k string, _ int) bool {
		return strings.Contains(blob, k)
	})
}

// Filter keeps the relevant posts, preserving their order.
func Filter(posts []domain.Post, keywords domain.KeywordSet) []domain.Post {
	return lo.Filter(posts, func(p domain.Post, _ int) bool {
		return IsRelevant(p, keywords)
	})
}

func searchText(p domain.Post) string {
	return strings.ToLower(strings.Join([]string{
		p.Title,
		p.Description,
		p.Content,
		strings.Join(p.Categories, " "),
	}, " "))
}
