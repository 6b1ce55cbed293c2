// Package render turns posts into display cards.
package render

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
	"github.com/qepting91/feedcards/internal/domain"
)

const (
	DefaultMaxDescription = 150
	DefaultDateLayout     = "January 2, 2006"
	ellipsis              = "..."
)

// Options controls card text. Zero values fall back to the defaults.
type Options struct {
	MaxDescription int
	DateLayout     string
	Location       *time.Location
}

func (o Options) withDefaults() Options {
	if o.MaxDescription <= 0 {
		o.MaxDescription = DefaultMaxDescription
	}
	if o.DateLayout == "" {
		o.DateLayout = DefaultDateLayout
	}
	if o.Location == nil {
		o.Location = time.UTC
	}
	return o
}

// Card is the display form of a post. An empty Image means the
// placeholder is shown.
type Card struct {
	Title       string   `json:"title"`
	Link        string   `json:"link"`
	Image       string   `json:"image,omitempty"`
	Description string   `json:"description"`
	Date        string   `json:"date"`
	Keywords    []string `json:"keywords,omitempty"`
}

func NewCard(p domain.Post, opts Options) Card {
	opts = opts.withDefaults()

	source := p.Description
	if source == "" {
		source = p.Content
	}

	return Card{
		Title:       p.Title,
		Link:        p.Link,
		Image:       ExtractImage(p),
		Description: Truncate(StripHTML(source), opts.MaxDescription),
		Date:        FormatDateLayout(p.PublishedAt, opts.DateLayout, opts.Location),
	}
}

// StripHTML returns the text content of an HTML fragment with whitespace
// runs collapsed to single spaces.
func StripHTML(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// Truncate cuts text to max runes, trims the cut and appends "...".
// Text within the limit is returned unchanged.
func Truncate(text string, max int) string {
	if max <= 0 {
		max = DefaultMaxDescription
	}
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return strings.TrimSpace(string(runes[:max])) + ellipsis
}

// FormatDate renders a feed date as "January 2, 2006" in loc.
func FormatDate(raw string, loc *time.Location) string {
	return FormatDateLayout(raw, DefaultDateLayout, loc)
}

// FormatDateLayout is FormatDate with a custom layout. Empty input gives
// "", and text that is not a recognizable date is returned trimmed.
func FormatDateLayout(raw, layout string, loc *time.Location) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if loc == nil {
		loc = time.UTC
	}
	t, err := dateparse.ParseIn(raw, loc)
	if err != nil {
		return raw
	}
	return t.In(loc).Format(layout)
}

// ExtractImage picks the card image: the post thumbnail, else the first
// non-empty img src in the content, else "".
func ExtractImage(p domain.Post) string {
	if p.Thumbnail != nil && *p.Thumbnail != "" {
		return *p.Thumbnail
	}
	if p.Content == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(p.Content))
	if err != nil {
		return ""
	}
	var src string
	doc.Find("img[src]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src = strings.TrimSpace(s.AttrOr("src", ""))
		return src == ""
	})
	return src
}
