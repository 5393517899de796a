// Package urls recognises the three kinds of Letv page URL and extracts
// the identifier each one carries.
package urls

import (
	"regexp"
	"strings"
)

// Kind identifies which listing or player page a URL points to.
type Kind int

const (
	KindUnknown Kind = iota
	KindVideo
	KindShow
	KindCategory
)

func (k Kind) String() string {
	switch k {
	case KindVideo:
		return "video"
	case KindShow:
		return "show"
	case KindCategory:
		return "category"
	}
	return "unknown"
}

var (
	videoRe    = regexp.MustCompile(`^https?://www\.letv\.com/ptv/vplay/(\d+)\.html`)
	showRe     = regexp.MustCompile(`^https?://www\.letv\.com/tv/(\d+)\.html`)
	categoryRe = regexp.MustCompile(`^https?://tv\.letv\.com/[a-z]+/([a-z]+)/index\.s?html`)
)

// VideoPageRe matches canonical video page URLs embedded anywhere in a
// listing page.
var VideoPageRe = regexp.MustCompile(`http://www\.letv\.com/ptv/vplay/\d+\.html`)

// Match classifies rawURL and returns the identifier it carries: the
// numeric video or show id, or the category slug.
func Match(rawURL string) (Kind, string) {
	u := strings.TrimSpace(rawURL)
	for _, p := range []struct {
		kind Kind
		re   *regexp.Regexp
	}{
		{KindVideo, videoRe},
		{KindShow, showRe},
		{KindCategory, categoryRe},
	} {
		if m := p.re.FindStringSubmatch(u); m != nil {
			return p.kind, m[1]
		}
	}
	return KindUnknown, ""
}

// VideoID extracts the numeric id from a video page URL.
func VideoID(rawURL string) (string, bool) {
	return matchKind(rawURL, KindVideo)
}

// ShowID extracts the numeric id from a show index URL.
func ShowID(rawURL string) (string, bool) {
	return matchKind(rawURL, KindShow)
}

// CategoryID extracts the slug from a category index URL.
func CategoryID(rawURL string) (string, bool) {
	return matchKind(rawURL, KindCategory)
}

func matchKind(rawURL string, want Kind) (string, bool) {
	kind, id := Match(rawURL)
	if kind != want {
		return "", false
	}
	return id, true
}

// VideoURL returns the canonical page URL of a video id.
func VideoURL(id string) string {
	return "http://www.letv.com/ptv/vplay/" + id + ".html"
}
