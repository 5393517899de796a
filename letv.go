package letv

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ytget/letv/errs"
	"github.com/ytget/letv/internal/logger"
	"github.com/ytget/letv/letv/formats"
	"github.com/ytget/letv/letv/playjson"
	"github.com/ytget/letv/letv/playlist"
	"github.com/ytget/letv/letv/timekey"
	"github.com/ytget/letv/letv/urls"
	"github.com/ytget/letv/letv/webpage"
	"github.com/ytget/letv/pkg/client"
	"github.com/ytget/letv/types"
)

// Options holds the Extractor configuration. Use the chainable setters on
// Extractor to populate it.
type Options struct {
	HTTPClient  *http.Client
	Fetcher     client.Fetcher
	Clock       func() time.Time
	APIEndpoint string
	Keyer       timekey.Keyer
	Concurrency int
}

// Extractor resolves Letv video, show and category URLs.
// It holds no state between calls and is safe for concurrent use once
// configured.
type Extractor struct {
	options Options
}

// Result is what Resolve returns: exactly one of Video and Playlist is set.
type Result struct {
	Kind     urls.Kind
	Video    *types.VideoInfo
	Playlist *types.PlaylistInfo
}

// EntryResult is the outcome of resolving one playlist entry.
type EntryResult struct {
	Entry types.PlaylistEntry
	Info  *types.VideoInfo
	Err   error
}

// New creates an Extractor with default options.
func New() *Extractor {
	return &Extractor{}
}

// WithHTTPClient sets the http.Client wrapped by the default fetcher.
// Ignored when WithFetcher is used.
func (e *Extractor) WithHTTPClient(c *http.Client) *Extractor {
	e.options.HTTPClient = c
	return e
}

// WithFetcher replaces the HTTP collaborator entirely.
func (e *Extractor) WithFetcher(f client.Fetcher) *Extractor {
	e.options.Fetcher = f
	return e
}

// WithClock sets the time source used to sign API requests.
func (e *Extractor) WithClock(now func() time.Time) *Extractor {
	e.options.Clock = now
	return e
}

// WithAPIEndpoint overrides the playJson endpoint.
func (e *Extractor) WithAPIEndpoint(endpoint string) *Extractor {
	e.options.APIEndpoint = endpoint
	return e
}

// WithKeyer replaces the built-in tkey schedule, e.g. with a
// timekey.ScriptKeyer.
func (e *Extractor) WithKeyer(k timekey.Keyer) *Extractor {
	e.options.Keyer = k
	return e
}

// WithConcurrency sets how many entries ResolveEntries resolves at once.
// Values below 1 mean sequential.
func (e *Extractor) WithConcurrency(n int) *Extractor {
	if n < 1 {
		n = 1
	}
	e.options.Concurrency = n
	return e
}

func (e *Extractor) fetcher() client.Fetcher {
	if e.options.Fetcher != nil {
		return e.options.Fetcher
	}
	c := client.New()
	if e.options.HTTPClient != nil {
		c.HTTPClient = e.options.HTTPClient
	}
	return c
}

func (e *Extractor) api(f client.Fetcher) *playjson.Client {
	api := playjson.New(f)
	if e.options.APIEndpoint != "" {
		api.Endpoint = e.options.APIEndpoint
	}
	if e.options.Keyer != nil {
		api.Keyer = e.options.Keyer
	}
	if e.options.Clock != nil {
		api.Now = e.options.Clock
	}
	return api
}

// Resolve dispatches rawURL to ResolveVideo, ListShow or ListCategory.
func (e *Extractor) Resolve(ctx context.Context, rawURL string) (*Result, error) {
	rawURL = strings.TrimSpace(rawURL)
	kind, _ := urls.Match(rawURL)
	res := &Result{Kind: kind}
	var err error
	switch kind {
	case urls.KindVideo:
		res.Video, err = e.ResolveVideo(ctx, rawURL)
	case urls.KindShow:
		res.Playlist, err = e.ListShow(ctx, rawURL)
	case urls.KindCategory:
		res.Playlist, err = e.ListCategory(ctx, rawURL)
	default:
		return nil, fmt.Errorf("%w: %s", errs.ErrUnsupportedURL, rawURL)
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

// ResolveVideo resolves a video page URL into its metadata and renditions.
func (e *Extractor) ResolveVideo(ctx context.Context, pageURL string) (*types.VideoInfo, error) {
	id, ok := urls.VideoID(pageURL)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a video page", errs.ErrUnsupportedURL, pageURL)
	}
	return e.resolve(ctx, e.fetcher(), id, pageURL)
}

// ResolveID resolves a video by its numeric id.
func (e *Extractor) ResolveID(ctx context.Context, id string) (*types.VideoInfo, error) {
	return e.resolve(ctx, e.fetcher(), id, urls.VideoURL(id))
}

func (e *Extractor) resolve(ctx context.Context, f client.Fetcher, id, pageURL string) (*types.VideoInfo, error) {
	log := logger.WithComponent(logger.ComponentApp)
	log.Debug("resolving video", map[string]any{"id": id, "url": pageURL})

	page, err := f.Fetch(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("video page %s: %w", id, err)
	}

	resp, err := e.api(f).Get(ctx, id)
	if err != nil {
		return nil, err
	}

	fs, err := formats.ParseFormats(&resp.PlayURL)
	if err != nil {
		return nil, fmt.Errorf("video %s: %w", id, err)
	}

	info := &types.VideoInfo{
		ID:        id,
		Title:     resp.PlayURL.Title,
		Thumbnail: resp.PlayURL.Pic,
		Formats:   fs,
	}
	if published, err := webpage.ParsePublishTime(page); err != nil {
		log.Debug("publish time omitted", map[string]any{"id": id, "reason": err.Error()})
	} else {
		info.PublishedAt = published
	}
	return info, nil
}

// ListShow lists the entries of a show page.
func (e *Extractor) ListShow(ctx context.Context, pageURL string) (*types.PlaylistInfo, error) {
	return playlist.New(e.fetcher()).ListShow(ctx, pageURL)
}

// ListCategory lists the entries of a category page.
func (e *Extractor) ListCategory(ctx context.Context, pageURL string) (*types.PlaylistInfo, error) {
	return playlist.New(e.fetcher()).ListCategory(ctx, pageURL)
}

// ResolveEntries resolves every entry independently and returns one
// result per entry, in input order. A failed entry carries its error and
// does not affect the others. Entries not yet started when ctx is done
// fail with ctx.Err().
func (e *Extractor) ResolveEntries(ctx context.Context, entries []types.PlaylistEntry) []EntryResult {
	results := make([]EntryResult, len(entries))
	if len(entries) == 0 {
		return results
	}

	workers := e.options.Concurrency
	if workers < 1 {
		workers = 1
	}
	if workers > len(entries) {
		workers = len(entries)
	}

	f := e.fetcher()
	log := logger.WithComponent(logger.ComponentApp)

	jobs := make(chan int, len(entries))
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for idx := range jobs {
				entry := entries[idx]
				results[idx].Entry = entry
				if err := ctx.Err(); err != nil {
					results[idx].Err = err
					continue
				}

				id := entry.VideoID
				if id == "" {
					var ok bool
					if id, ok = urls.VideoID(entry.URL); !ok {
						results[idx].Err = fmt.Errorf("%w: %s", errs.ErrUnsupportedURL, entry.URL)
						continue
					}
				}
				pageURL := entry.URL
				if pageURL == "" {
					pageURL = urls.VideoURL(id)
				}

				info, err := e.resolve(ctx, f, id, pageURL)
				if err != nil {
					log.Warn("entry failed", map[string]any{"id": id, "error": err.Error()})
				}
				results[idx].Info, results[idx].Err = info, err
			}
		}()
	}
	for i := range entries {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	log.Info("resolved playlist entries", map[string]any{
		"entries": len(entries),
		"failed":  failed,
		"workers": workers,
	})
	return results
}
