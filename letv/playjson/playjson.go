// Package playjson calls the signed playJson media API and maps its
// status block onto the errs taxonomy.
package playjson

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ytget/letv/errs"
	"github.com/ytget/letv/internal/logger"
	"github.com/ytget/letv/letv/timekey"
	"github.com/ytget/letv/pkg/client"
)

const (
	// DefaultEndpoint is the production playJson API.
	DefaultEndpoint = "http://api.letv.com/mms/out/video/playJson"
	// Domain is sent as the requesting site.
	Domain = "www.letv.com"

	platformID    = "1"
	subPlatformID = "101"
	formatFlag    = "1"

	statusFailure = 0
	flagCountry   = 1
)

// PlayStatus is the API's verdict on a request. Flag and Country are only
// meaningful when Status is zero.
type PlayStatus struct {
	Status  int    `json:"status"`
	Flag    int    `json:"flag"`
	Country string `json:"country"`
}

// PlayURL carries the playable renditions of a successful response.
type PlayURL struct {
	Domain []string `json:"domain"`
	// Dispatch maps a quality label to [relative path, file name].
	Dispatch map[string][]string `json:"dispatch"`
	Title    string              `json:"title"`
	Pic      string              `json:"pic"`
}

// Response is the decoded playJson document.
type Response struct {
	PlayStatus PlayStatus `json:"playstatus"`
	PlayURL    PlayURL    `json:"playurl"`
}

// Err converts a failure status into an *errs.AuthError or *errs.APIError.
func (s PlayStatus) Err() error {
	if s.Status != statusFailure {
		return nil
	}
	if s.Flag == flagCountry {
		return &errs.AuthError{Country: s.Country}
	}
	return &errs.APIError{Flag: s.Flag}
}

// Params builds the signed query for one media id.
func Params(mediaID string, tkey uint32) url.Values {
	return url.Values{
		"id":      {mediaID},
		"platid":  {platformID},
		"splatid": {subPlatformID},
		"format":  {formatFlag},
		"tkey":    {strconv.FormatUint(uint64(tkey), 10)},
		"domain":  {Domain},
	}
}

// RequestURL joins endpoint and the signed query.
func RequestURL(endpoint, mediaID string, tkey uint32) string {
	sep := "?"
	if strings.Contains(endpoint, "?") {
		sep = "&"
	}
	return endpoint + sep + Params(mediaID, tkey).Encode()
}

// Client performs signed playJson requests.
type Client struct {
	Fetcher  client.Fetcher
	Endpoint string
	Keyer    timekey.Keyer
	Now      func() time.Time
}

// New returns a Client using the production endpoint, the built-in key
// schedule and the wall clock.
func New(fetcher client.Fetcher) *Client {
	return &Client{
		Fetcher:  fetcher,
		Endpoint: DefaultEndpoint,
		Keyer:    timekey.Default,
		Now:      time.Now,
	}
}

// Get signs a request for mediaID with the current time, fetches it and
// validates the status block. A nil error guarantees a success status.
func (c *Client) Get(ctx context.Context, mediaID string) (*Response, error) {
	log := logger.WithComponent(logger.ComponentPlayJSON)

	keyer := c.Keyer
	if keyer == nil {
		keyer = timekey.Default
	}
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	endpoint := c.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	ts := now().Unix()
	tkey, err := keyer.Key(ts)
	if err != nil {
		return nil, fmt.Errorf("derive tkey: %w", err)
	}

	reqURL := RequestURL(endpoint, mediaID, tkey)
	log.Debug("requesting playJson", map[string]any{
		"id":        mediaID,
		"timestamp": ts,
		"tkey":      tkey,
	})

	var resp Response
	if err := c.Fetcher.FetchJSON(ctx, reqURL, &resp); err != nil {
		return nil, fmt.Errorf("playJson %s: %w", mediaID, err)
	}

	if err := resp.PlayStatus.Err(); err != nil {
		log.Warn("playJson rejected request", map[string]any{
			"id":      mediaID,
			"flag":    resp.PlayStatus.Flag,
			"country": resp.PlayStatus.Country,
		})
		return nil, err
	}
	return &resp, nil
}
