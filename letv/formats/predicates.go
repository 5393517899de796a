package formats

import (
	"strings"

	"github.com/ytget/letv/types"
)

// rank returns the position of the format's label in Labels, or -1.
func rank(format types.Format) int {
	for i, l := range Labels {
		if l == format.Quality {
			return i
		}
	}
	return -1
}

// extEquals checks the extension case-insensitively; a leading dot is ignored.
func extEquals(format types.Format, desiredExt string) bool {
	desired := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(desiredExt)), ".")
	if desired == "" {
		return true
	}
	return strings.ToLower(format.Ext) == desired
}

func qualityEquals(format types.Format, label string) bool {
	return strings.EqualFold(format.Quality, label)
}

// withinHeight checks the height against [minHeight, maxHeight]; a zero
// bound is ignored. Bitrate labels carry no height and count as below
// every HD label, so they satisfy any upper bound and no lower bound.
func withinHeight(format types.Format, minHeight int, maxHeight int) bool {
	h := format.Height
	if minHeight > 0 && h < minHeight {
		return false
	}
	if maxHeight > 0 && h > maxHeight {
		return false
	}
	return true
}

// better reports whether candidate outranks current: height first, then
// label position.
func better(candidate types.Format, current types.Format) bool {
	if candidate.Height != current.Height {
		return candidate.Height > current.Height
	}
	return rank(candidate) > rank(current)
}
