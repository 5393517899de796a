// Package playlist expands Letv show and category pages into the video
// pages they link to.
package playlist

import (
	"context"
	"fmt"
	"strings"

	"github.com/ytget/letv/errs"
	"github.com/ytget/letv/internal/logger"
	"github.com/ytget/letv/letv/urls"
	"github.com/ytget/letv/letv/webpage"
	"github.com/ytget/letv/pkg/client"
	"github.com/ytget/letv/types"
)

// keywordSeparator splits the keywords meta tag. The site uses a
// full-width comma.
const keywordSeparator = "，"

// Crawler fetches listing pages.
type Crawler struct {
	Fetcher client.Fetcher
}

// New returns a Crawler using fetcher.
func New(fetcher client.Fetcher) *Crawler {
	return &Crawler{Fetcher: fetcher}
}

// ListShow lists the videos linked from a show page such as
// http://www.letv.com/tv/46177.html.
func (c *Crawler) ListShow(ctx context.Context, pageURL string) (*types.PlaylistInfo, error) {
	id, ok := urls.ShowID(pageURL)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a show page", errs.ErrUnsupportedURL, pageURL)
	}
	return c.list(ctx, id, pageURL)
}

// ListCategory lists the videos linked from a category page such as
// http://tv.letv.com/izt/wuzetian/index.html.
func (c *Crawler) ListCategory(ctx context.Context, pageURL string) (*types.PlaylistInfo, error) {
	id, ok := urls.CategoryID(pageURL)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a category page", errs.ErrUnsupportedURL, pageURL)
	}
	return c.list(ctx, id, pageURL)
}

func (c *Crawler) list(ctx context.Context, id, pageURL string) (*types.PlaylistInfo, error) {
	log := logger.WithComponent(logger.ComponentPlaylist)

	page, err := c.Fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", id, err)
	}

	info := &types.PlaylistInfo{ID: id, Entries: []types.PlaylistEntry{}}
	for _, u := range ExtractVideoURLs(page) {
		videoID, _ := urls.VideoID(u)
		info.Entries = append(info.Entries, types.PlaylistEntry{URL: u, VideoID: videoID})
	}

	if doc, err := webpage.Parse(page); err != nil {
		log.Warn("listing page not parseable, metadata omitted", map[string]any{"id": id, "error": err.Error()})
	} else {
		if kw, ok := doc.Meta("keywords"); ok {
			info.Title = TitleFromKeywords(kw)
		}
		if desc, ok := doc.Meta("description"); ok {
			info.Description = desc
		}
	}

	if len(info.Entries) == 0 {
		log.Warn("listing page has no video links", map[string]any{"id": id, "url": pageURL})
	}
	log.Debug("listed playlist", map[string]any{
		"id":      id,
		"title":   info.Title,
		"entries": len(info.Entries),
	})
	return info, nil
}

// ExtractVideoURLs returns every distinct video page URL in page, in order
// of first appearance.
func ExtractVideoURLs(page []byte) []string {
	matches := urls.VideoPageRe.FindAll(page, -1)
	seen := make(map[string]struct{}, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		u := string(m)
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}

// TitleFromKeywords returns the first keyword of a keyword list. This is
// often the show name, but category pages sometimes lead with a channel.
func TitleFromKeywords(keywords string) string {
	first, _, _ := strings.Cut(keywords, keywordSeparator)
	return strings.TrimSpace(first)
}
