// Package formats turns a playJson dispatch table into ordered, re-signed
// renditions and selects one of them.
package formats

import (
	"fmt"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/ytget/letv/errs"
	"github.com/ytget/letv/internal/logger"
	"github.com/ytget/letv/letv/playjson"
	"github.com/ytget/letv/types"
)

// Labels lists the known quality labels, lowest quality first.
var Labels = []string{"350", "1000", "1300", "720p", "1080p"}

// hdSuffix marks labels that encode their pixel height.
const hdSuffix = "p"

// resignParams are forced onto every media URL so that non-browser
// players are served.
var resignParams = [][2]string{
	{"platid", "14"},
	{"splatid", "1401"},
	{"tss", "no"},
	{"retry", "1"},
}

// ParseFormats builds one Format per known label present in p.Dispatch,
// in Labels order. Unknown labels are ignored.
func ParseFormats(p *playjson.PlayURL) ([]types.Format, error) {
	log := logger.WithComponent(logger.ComponentFormat)

	if p == nil || len(p.Domain) == 0 {
		return nil, fmt.Errorf("%w: no media domain", errs.ErrVideoUnavailable)
	}
	domain := p.Domain[0]

	var out []types.Format
	for _, label := range Labels {
		entry, ok := p.Dispatch[label]
		if !ok {
			continue
		}
		if len(entry) == 0 {
			log.Warn("empty dispatch entry", map[string]any{"label": label})
			continue
		}

		signed, err := Resign(domain + entry[0])
		if err != nil {
			log.Warn("skipping unparseable media url", map[string]any{
				"label": label,
				"error": err.Error(),
			})
			continue
		}

		f := types.Format{
			Quality: label,
			URL:     signed,
			Height:  Height(label),
		}
		if len(entry) > 1 {
			f.Ext = strings.TrimPrefix(path.Ext(entry[1]), ".")
		}
		out = append(out, f)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no known renditions", errs.ErrVideoUnavailable)
	}
	log.Debug("parsed renditions", map[string]any{"count": len(out)})
	return out, nil
}

// Resign overwrites the player-compatibility parameters in rawURL's query.
// Other parameters are kept. Applying it twice yields the same URL.
func Resign(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse media url: %w", err)
	}
	q := u.Query()
	for _, kv := range resignParams {
		q.Set(kv[0], kv[1])
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Height returns the pixel height encoded in an HD label such as "720p",
// or 0 for bitrate labels.
func Height(label string) int {
	if !strings.HasSuffix(label, hdSuffix) {
		return 0
	}
	h, err := strconv.Atoi(strings.TrimSuffix(label, hdSuffix))
	if err != nil || h <= 0 {
		return 0
	}
	return h
}

// SelectFormat picks a rendition. Supported selectors:
//   - best (default): highest quality
//   - worst: lowest quality
//   - height<=NNN, height>=NNN: best rendition within the bound
//   - ext=EXT: best rendition with that extension
//   - a quality label such as "1300" or "720p"
//
// A selector that matches nothing falls back to best. Returns nil only
// when formats is empty.
func SelectFormat(formats []types.Format, selector string) *types.Format {
	if len(formats) == 0 {
		return nil
	}
	q := strings.TrimSpace(strings.ToLower(selector))

	filtered := formats
	switch {
	case q == "worst":
		return pick(formats, func(a, b types.Format) bool { return better(b, a) })
	case strings.HasPrefix(q, "ext="):
		filtered = filter(formats, func(f types.Format) bool {
			return extEquals(f, strings.TrimPrefix(q, "ext="))
		})
	case strings.HasPrefix(q, "height<="):
		if v, err := strconv.Atoi(strings.TrimPrefix(q, "height<=")); err == nil {
			filtered = filter(formats, func(f types.Format) bool { return withinHeight(f, 0, v) })
		}
	case strings.HasPrefix(q, "height>="):
		if v, err := strconv.Atoi(strings.TrimPrefix(q, "height>=")); err == nil {
			filtered = filter(formats, func(f types.Format) bool { return withinHeight(f, v, 0) })
		}
	case q != "" && q != "best":
		for i := range formats {
			if qualityEquals(formats[i], q) {
				return &formats[i]
			}
		}
	}
	if len(filtered) == 0 {
		filtered = formats
	}
	return pick(filtered, better)
}

func filter(formats []types.Format, keep func(types.Format) bool) []types.Format {
	var out []types.Format
	for _, f := range formats {
		if keep(f) {
			out = append(out, f)
		}
	}
	return out
}

// pick returns the element that no other element beats.
func pick(formats []types.Format, beats func(candidate, current types.Format) bool) *types.Format {
	best := formats[0]
	for _, f := range formats[1:] {
		if beats(f, best) {
			best = f
		}
	}
	return &best
}
