package layout

import (
	"strings"

	"github.com/iitkqc/confession-bot-go/internal/util"
)

// MeasureFunc reports the rendered pixel width of a string for the target
// font and size. It must be deterministic and side-effect free; Wrap may
// call it many times for the same input.
type MeasureFunc func(text string) float64

// Wrap breaks text into display lines no wider than maxWidth pixels. Words
// are accumulated greedily; a word that cannot fit on a line of its own is
// split rune by rune. Forced lines always take at least one rune, so the
// wrapper terminates even when maxWidth is narrower than a single glyph.
func Wrap(text string, measure MeasureFunc, maxWidth float64) []string {
	var lines []string
	var current []string

	flush := func() {
		if len(current) > 0 {
			lines = append(lines, strings.Join(current, " "))
			current = current[:0]
		}
	}

	for _, word := range strings.Fields(text) {
		candidate := word
		if len(current) > 0 {
			candidate = strings.Join(current, " ") + " " + word
		}
		if measure(candidate) <= maxWidth {
			current = append(current, word)
			continue
		}

		flush()
		if measure(word) <= maxWidth {
			current = append(current, word)
			continue
		}

		// The word alone overflows; split it at rune granularity.
		var piece []rune
		for _, r := range word {
			if len(piece) > 0 && measure(string(append(piece, r))) > maxWidth {
				lines = append(lines, string(piece))
				piece = piece[:0]
			}
			piece = append(piece, r)
		}
		if len(piece) > 0 {
			current = append(current, string(piece))
		}
	}
	flush()
	return lines
}

// WrapColumns is the cheap fixed-width variant: it wraps at a rune-count
// column budget instead of measured pixels and never splits inside a word,
// so an overlong word simply gets its own line. Used by canvas profiles
// where a constant column estimate is good enough.
func WrapColumns(text string, columns int) []string {
	if columns < 1 {
		columns = 1
	}

	var lines []string
	var current string
	for _, word := range strings.Fields(text) {
		switch {
		case current == "":
			current = word
		case util.RuneLen(current)+1+util.RuneLen(word) <= columns:
			current += " " + word
		default:
			lines = append(lines, current)
			current = word
		}
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}
