package types

// PlaylistEntry is an unresolved reference to a video page.
type PlaylistEntry struct {
	URL     string `json:"url"`
	VideoID string `json:"id"`
}

// PlaylistInfo describes a show or category listing.
type PlaylistInfo struct {
	ID string `json:"id"`
	// Title is the first keyword of the page's keyword list. It is a
	// heuristic and may name the channel rather than the show.
	Title       string          `json:"title,omitempty"`
	Description string          `json:"description,omitempty"`
	Entries     []PlaylistEntry `json:"entries"`
}
