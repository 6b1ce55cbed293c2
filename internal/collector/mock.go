package collector

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/qepting91/feedcards/internal/domain"
)

// MockClient implements domain.Fetcher but serves a generated feed
type MockClient struct {
	Latency time.Duration
	Items   int
}

func NewMockClient() *MockClient {
	return &MockClient{Latency: 500 * time.Millisecond, Items: 6}
}

func (mc *MockClient) Fetch(ctx context.Context, src domain.FeedSource) (string, error) {
	// Simulate network latency
	select {
	case <-ctx.Done():
		return "", &domain.FetchError{FeedURL: src.FeedURL, Attempts: []error{fmt.Errorf("mock: %w", ctx.Err())}}
	case <-time.After(mc.Latency):
	}
	return MockFeed(src.FeedURL, mc.Items), nil
}

var mockTopics = []struct {
	title    string
	category string
}{
	{"Getting started with Terraform Cloud", "Terraform"},
	{"Azure Bicep deep dive", "Azure"},
	{"Managing state with Terragrunt", "DevOps"},
	{"PowerShell tips for admins", "PowerShell"},
	{"Writing better HCL modules", "Infrastructure as Code"},
	{"GitHub Actions for beginners", "GitHub"},
}

// MockFeed renders an RSS 2.0 document with n generated items. Even items
// mention infrastructure-as-code topics, odd ones do not.
func MockFeed(link string, n int) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/" xmlns:media="http://search.yahoo.com/mrss/">` + "\n")
	fmt.Fprintf(&b, "<channel><title>Simulated blog</title><link>%s</link><description>Generated feed</description>\n", link)

	base := time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		topic := mockTopics[i%len(mockTopics)]
		fmt.Fprintf(&b, "<item><title>%s #%d</title>", topic.title, i+1)
		fmt.Fprintf(&b, "<link>http://localhost/mock/%d</link>", i+1)
		fmt.Fprintf(&b, "<description><![CDATA[<p>Simulated post %d about %s.</p>]]></description>", i+1, topic.category)
		fmt.Fprintf(&b, "<pubDate>%s</pubDate>", base.AddDate(0, 0, -i).Format(time.RFC1123Z))
		fmt.Fprintf(&b, "<category>%s</category>", topic.category)
		if i%2 == 0 {
			fmt.Fprintf(&b, `<media:content url="http://localhost/mock/%d.png" medium="image"/>`, i+1)
		}
		b.WriteString("</item>\n")
	}
	b.WriteString("</channel></rss>\n")
	return b.String()
}
