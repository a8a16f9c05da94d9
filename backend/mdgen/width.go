package mdgen

import (
	"strings"
	"sync"

	"github.com/npillmayer/uax/grapheme"
	"github.com/npillmayer/uax/segment"
	"github.com/npillmayer/uax/uax11"
)

var setupGraphemes sync.Once

// cellWidth returns the display width of s in terminal cells, summing the
// East Asian width of every grapheme cluster.
func cellWidth(s string) int {
	if isASCII(s) {
		return len(s)
	}
	setupGraphemes.Do(grapheme.SetupGraphemeClasses)
	splitter := segment.NewSegmenter(grapheme.NewBreaker(1))
	splitter.Init(strings.NewReader(s))
	w := 0
	for splitter.Next() {
		w += uax11.Width(splitter.Bytes(), uax11.LatinContext)
	}
	return w
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

// pad fills s with blanks up to width cells, respecting alignment.
func pad(s string, width int, right, center bool) string {
	n := width - cellWidth(s)
	if n <= 0 {
		return s
	}
	switch {
	case right:
		return strings.Repeat(" ", n) + s
	case center:
		return strings.Repeat(" ", n/2) + s + strings.Repeat(" ", n-n/2)
	}
	return s + strings.Repeat(" ", n)
}
