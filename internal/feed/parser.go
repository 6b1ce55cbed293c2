// Package feed turns RSS documents into domain posts.
package feed

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"github.com/qepting91/feedcards/internal/domain"
	"golang.org/x/net/html/charset"
)

var (
	errNoRoot          = errors.New("document has no root element")
	errMultipleRoots   = errors.New("document has more than one root element")
	errTextOutsideRoot = errors.New("character data outside the root element")
)

// Parser implements domain.Parser for RSS 2.0 and RSS 1.0 style documents.
type Parser struct{}

func NewParser() *Parser { return &Parser{} }

// Element names below carry no namespace, so they match in any namespace:
// "encoded" covers content:encoded and a bare encoded, "content" covers
// media:content.
type rssItem struct {
	Titles       []text       `xml:"title"`
	Links        []text       `xml:"link"`
	Descriptions []text       `xml:"description"`
	Encoded      []text       `xml:"encoded"`
	PubDates     []text       `xml:"pubDate"`
	Categories   []text       `xml:"category"`
	Media        []urlElement `xml:"content"`
	MediaGroups  []mediaGroup `xml:"group"`
	Enclosures   []enclosure  `xml:"enclosure"`
}

// text is the character data of an element and all of its descendants.
type text string

func (t *text) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var b strings.Builder
	for depth := 1; depth > 0; {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch tok := tok.(type) {
		case xml.CharData:
			b.Write(tok)
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		}
	}
	*t = text(b.String())
	return nil
}

type urlElement struct {
	URL string `xml:"url,attr"`
}

type mediaGroup struct {
	Media []urlElement `xml:"content"`
}

type enclosure struct {
	URL  string `xml:"url,attr"`
	Type string `xml:"type,attr"`
}

// Parse decodes raw and returns one post per item, in document order.
// Any structural error fails the whole document.
func (p *Parser) Parse(raw string) ([]domain.Post, error) {
	d := xml.NewDecoder(strings.NewReader(raw))
	d.Strict = true
	d.CharsetReader = charset.NewReaderLabel

	posts := make([]domain.Post, 0)
	sawRoot := false
	depth := 0
	for {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &domain.ParseError{Err: err}
		}

		switch tok := tok.(type) {
		case xml.CharData:
			if depth == 0 && len(bytes.TrimSpace(tok)) > 0 {
				return nil, &domain.ParseError{Err: errTextOutsideRoot}
			}
		case xml.EndElement:
			depth--
		case xml.StartElement:
			if depth == 0 {
				if sawRoot {
					return nil, &domain.ParseError{Err: errMultipleRoots}
				}
				sawRoot = true
			}
			if tok.Name.Local != "item" {
				depth++
				continue
			}

			// DecodeElement consumes the whole item, end tag included.
			var it rssItem
			if err := d.DecodeElement(&it, &tok); err != nil {
				return nil, &domain.ParseError{Err: err}
			}
			posts = append(posts, it.post())
		}
	}

	if !sawRoot {
		return nil, &domain.ParseError{Err: errNoRoot}
	}
	return posts, nil
}

func (it rssItem) post() domain.Post {
	description := first(it.Descriptions)
	content := first(it.Encoded)
	if content == "" {
		content = description
	}

	categories := make([]string, 0, len(it.Categories))
	for _, c := range it.Categories {
		categories = append(categories, strings.TrimSpace(string(c)))
	}

	return domain.Post{
		Title:       strings.TrimSpace(first(it.Titles)),
		Link:        strings.TrimSpace(first(it.Links)),
		Description: description,
		Content:     content,
		PublishedAt: strings.TrimSpace(first(it.PubDates)),
		Thumbnail:   it.thumbnail(),
		Categories:  categories,
	}
}

// thumbnail prefers media content, then an image enclosure.
func (it rssItem) thumbnail() *string {
	if u := it.mediaURL(); u != "" {
		return &u
	}
	for _, enc := range it.Enclosures {
		if !strings.HasPrefix(enc.Type, "image") {
			continue
		}
		if u := strings.TrimSpace(enc.URL); u != "" {
			return &u
		}
		return nil
	}
	return nil
}

func (it rssItem) mediaURL() string {
	if len(it.Media) > 0 {
		return strings.TrimSpace(it.Media[0].URL)
	}
	for _, g := range it.MediaGroups {
		if len(g.Media) > 0 {
			return strings.TrimSpace(g.Media[0].URL)
		}
	}
	return ""
}

func first(values []text) string {
	if len(values) == 0 {
		return ""
	}
	return string(values[0])
}
