package render_test

import (
	"strings"
	"testing"
	"time"

	"github.com/qepting91/feedcards/internal/domain"
	"github.com/qepting91/feedcards/internal/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

func TestTruncate(t *testing.T) {
	// 149 letters, a space at index 149, then 50 more letters: 200 runes.
	long := strings.Repeat("a", 149) + " " + strings.Repeat("b", 50)
	require.Len(t, []rune(long), 200)

	got := render.Truncate(long, 150)
	assert.Equal(t, strings.Repeat("a", 149)+"...", got)
	assert.NotContains(t, got, " ...")

	plain := strings.Repeat("x", 200)
	assert.Equal(t, strings.Repeat("x", 150)+"...", render.Truncate(plain, 150))
}

func TestTruncateShortTextUnchanged(t *testing.T) {
	assert.Equal(t, "short ", render.Truncate("short ", 150))
	assert.Equal(t, strings.Repeat("z", 150), render.Truncate(strings.Repeat("z", 150), 150))
	assert.Equal(t, "", render.Truncate("", 150))
}

func TestTruncateCountsRunes(t *testing.T) {
	text := strings.Repeat("é", 10)
	assert.Equal(t, strings.Repeat("é", 4)+"...", render.Truncate(text, 4))
}

func TestTruncateDefaultLimit(t *testing.T) {
	got := render.Truncate(strings.Repeat("q", 300), 0)
	assert.Equal(t, strings.Repeat("q", render.DefaultMaxDescription)+"...", got)
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain text", "Hello world", "Hello world"},
		{"nested tags", "<p>Use <strong>Terraform <em>Cloud</em></strong> today</p>", "Use Terraform Cloud today"},
		{"entities decoded", "Ops &amp; Dev &lt;3", "Ops & Dev <3"},
		{"whitespace collapsed", "<p>one\n\n   two</p>\t<p>three</p>", "one two three"},
		{"empty", "", ""},
		{"only markup", "<br/><hr/>", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, render.StripHTML(tt.input))
		})
	}
}

func TestFormatDate(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)

	tests := []struct {
		name     string
		raw      string
		loc      *time.Location
		expected string
	}{
		{"rfc1123z", "Fri, 01 Mar 2024 09:00:00 +0000", time.UTC, "March 1, 2024"},
		{"converted to location", "2024-03-01T02:00:00Z", est, "February 29, 2024"},
		{"nil location is utc", "2024-03-01T02:00:00Z", nil, "March 1, 2024"},
		{"empty", "", time.UTC, ""},
		{"blank", "   ", time.UTC, ""},
		{"unparseable returned trimmed", "  xyzq-baad ", time.UTC, "xyzq-baad"},
		{"invalid month", "2009-15-12T22:15Z", time.UTC, "2009-15-12T22:15Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, render.FormatDate(tt.raw, tt.loc))
		})
	}
}

func TestExtractImage(t *testing.T) {
	tests := []struct {
		name     string
		post     domain.Post
		expected string
	}{
		{
			name:     "thumbnail wins",
			post:     domain.Post{Thumbnail: ptr("https://cdn/thumb.png"), Content: `<img src="https://cdn/inline.png">`},
			expected: "https://cdn/thumb.png",
		},
		{
			name:     "first inline image",
			post:     domain.Post{Content: `<p>x</p><img alt="a" src="https://cdn/one.png"><img src="https://cdn/two.png">`},
			expected: "https://cdn/one.png",
		},
		{
			name:     "empty src skipped",
			post:     domain.Post{Content: `<img src=""><img src="https://cdn/two.png">`},
			expected: "https://cdn/two.png",
		},
		{
			name:     "empty thumbnail falls through",
			post:     domain.Post{Thumbnail: ptr(""), Content: `<IMG SRC="https://cdn/upper.png">`},
			expected: "https://cdn/upper.png",
		},
		{
			name:     "no image",
			post:     domain.Post{Content: "<p>text only</p>"},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, render.ExtractImage(tt.post))
		})
	}
}

func TestNewCard(t *testing.T) {
	p := domain.Post{
		Title:       "Terraform Cloud agents",
		Link:        "https://example.com/agents",
		Description: "<p>Run <b>agents</b> in your network</p>",
		Content:     `<img src="https://cdn/a.png"><p>full body</p>`,
		PublishedAt: "Fri, 01 Mar 2024 09:00:00 +0000",
	}

	card := render.NewCard(p, render.Options{})
	assert.Equal(t, render.Card{
		Title:       "Terraform Cloud agents",
		Link:        "https://example.com/agents",
		Image:       "https://cdn/a.png",
		Description: "Run agents in your network",
		Date:        "March 1, 2024",
	}, card)
}

func TestNewCardFallsBackToContent(t *testing.T) {
	p := domain.Post{Content: "<p>" + strings.Repeat("word ", 60) + "</p>"}

	card := render.NewCard(p, render.Options{MaxDescription: 20, DateLayout: "2006-01-02"})
	assert.Equal(t, "word word word word...", card.Description)
	assert.Equal(t, "", card.Date)
	assert.Equal(t, "", card.Image)
}
