package feed

import (
	"fmt"

	"github.com/mmcdole/gofeed"
	"github.com/qepting91/feedcards/internal/domain"
)

// Info reads the channel metadata of raw. It accepts any format gofeed
// understands; callers treat a failure as "no metadata", never as a
// failed run.
func Info(raw string) (domain.FeedInfo, error) {
	f, err := gofeed.NewParser().ParseString(raw)
	if err != nil {
		return domain.FeedInfo{}, fmt.Errorf("read channel metadata: %w", err)
	}

	info := domain.FeedInfo{
		Title:       f.Title,
		Link:        f.Link,
		Description: f.Description,
		Language:    f.Language,
	}
	switch {
	case f.UpdatedParsed != nil:
		info.Updated = f.UpdatedParsed
	case f.PublishedParsed != nil:
		info.Updated = f.PublishedParsed
	}
	return info, nil
}
