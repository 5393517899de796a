package types

import "time"

// Format describes one resolved rendition of a video.
type Format struct {
	// Quality is the dispatch label the rendition was published under
	// (350, 1000, 1300, 720p or 1080p).
	Quality string `json:"format_id"`
	URL     string `json:"url"`
	Ext     string `json:"ext"`
	// Height is only known for the HD labels; zero otherwise.
	Height int `json:"height,omitempty"`
}

// VideoInfo is the resolved descriptor of a single video.
type VideoInfo struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Thumbnail string `json:"thumbnail,omitempty"`
	// PublishedAt is zero when the page carried no parseable publish time.
	PublishedAt time.Time `json:"published_at,omitzero"`
	// Formats are ordered by ascending quality.
	Formats []Format `json:"formats"`
}

// Timestamp returns the publish time as Unix seconds and whether it is known.
func (v *VideoInfo) Timestamp() (int64, bool) {
	if v.PublishedAt.IsZero() {
		return 0, false
	}
	return v.PublishedAt.Unix(), true
}
