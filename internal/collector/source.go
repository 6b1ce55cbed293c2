package collector

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/qepting91/feedcards/internal/domain"
)

// Template placeholders. {url} is replaced by the query-escaped feed URL,
// {feed} by the feed URL as is.
const (
	PlaceholderEscaped = "{url}"
	PlaceholderRaw     = "{feed}"
)

// EndpointTemplate describes how to reach a feed through a proxy or directly.
type EndpointTemplate struct {
	Name     string `toml:"name"`
	Template string `toml:"template"`
}

// DefaultTemplates are two public CORS proxies plus a direct request.
var DefaultTemplates = []EndpointTemplate{
	{Name: "allorigins", Template: "https://api.allorigins.win/raw?url={url}"},
	{Name: "corsproxy", Template: "https://corsproxy.io/?{url}"},
	{Name: "direct", Template: "{feed}"},
}

// BuildSource expands templates for feedURL, keeping their order.
func BuildSource(feedURL string, templates []EndpointTemplate) (domain.FeedSource, error) {
	u, err := url.Parse(feedURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return domain.FeedSource{}, fmt.Errorf("invalid feed URL %q", feedURL)
	}

	endpoints := make([]domain.Endpoint, 0, len(templates))
	for i, t := range templates {
		if !strings.Contains(t.Template, PlaceholderEscaped) && !strings.Contains(t.Template, PlaceholderRaw) {
			return domain.FeedSource{}, fmt.Errorf("endpoint template %q has no %s or %s placeholder", t.Template, PlaceholderEscaped, PlaceholderRaw)
		}
		name := t.Name
		if name == "" {
			name = fmt.Sprintf("endpoint-%d", i+1)
		}
		expanded := strings.NewReplacer(
			PlaceholderEscaped, url.QueryEscape(feedURL),
			PlaceholderRaw, feedURL,
		).Replace(t.Template)
		endpoints = append(endpoints, domain.Endpoint{Name: name, URL: expanded})
	}

	return domain.FeedSource{FeedURL: feedURL, Endpoints: endpoints}, nil
}
