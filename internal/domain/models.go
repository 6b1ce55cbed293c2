package domain

import (
	"context"
	"strings"
	"time"
)

// Endpoint is one retrieval URL for a feed, either proxy-wrapped or direct.
type Endpoint struct {
	Name string
	URL  string
}

// FeedSource lists the endpoints raced for a single logical feed
type FeedSource struct {
	FeedURL   string
	Endpoints []Endpoint
}

// Post is the normalized record built from one feed item.
// Thumbnail is the only field that may be absent.
type Post struct {
	Title       string   `json:"title"`
	Link        string   `json:"link"`
	Description string   `json:"description"`
	Content     string   `json:"content"`
	PublishedAt string   `json:"published_at"`
	Thumbnail   *string  `json:"thumbnail"`
	Categories  []string `json:"categories"`
}

// FeedInfo describes the channel a feed document belongs to.
type FeedInfo struct {
	Title       string     `json:"title,omitempty"`
	Link        string     `json:"link,omitempty"`
	Description string     `json:"description,omitempty"`
	Language    string     `json:"language,omitempty"`
	Updated     *time.Time `json:"updated,omitempty"`
}

// KeywordSet holds lowercase keywords. Build it with NewKeywordSet; it is
// never modified afterwards.
type KeywordSet struct {
	words []string
}

func NewKeywordSet(words ...string) KeywordSet {
	seen := make(map[string]struct{}, len(words))
	kws := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		kws = append(kws, w)
	}
	return KeywordSet{words: kws}
}

// Words returns a copy of the keywords in configuration order.
func (k KeywordSet) Words() []string {
	out := make([]string, len(k.words))
	copy(out, k.words)
	return out
}

func (k KeywordSet) Len() int { return len(k.words) }

// Result is the outcome of one pipeline run.
type Result struct {
	RunID string
	Info  FeedInfo
	// Total is the number of posts parsed before filtering.
	Total int
	Posts []Post
	Err   error
}

func (r Result) Failed() bool { return r.Err != nil }

// Empty reports a successful run where nothing matched the keywords.
func (r Result) Empty() bool { return r.Err == nil && len(r.Posts) == 0 }

// Fetcher retrieves raw feed text from one of the source's endpoints
type Fetcher interface {
	Fetch(ctx context.Context, src FeedSource) (string, error)
}

// Parser turns raw feed text into posts in document order
type Parser interface {
	Parse(raw string) ([]Post, error)
}
