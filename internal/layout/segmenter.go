package layout

import (
	"strings"

	"github.com/iitkqc/confession-bot-go/internal/util"
)

// Segment splits confession text into slide-sized chunks of at most budget
// runes each. Splitting cascades: sentences first, then clauses on commas,
// then single words, and finally a forced truncation when one word alone
// exceeds the budget. Accumulation is greedy and strictly left to right, so
// the chunk order always matches reading order.
//
// Text already within budget is returned as-is, including the empty string.
// Chunks built from sentences carry a "." terminator, clause and word runs a
// ",". Forced truncations end in "..." and are exactly budget runes long.
func Segment(text string, budget int) []string {
	if budget < minBudget {
		budget = minBudget
	}
	if util.RuneLen(text) <= budget {
		return []string{text}
	}

	g := &grouper{budget: budget}
	for _, frag := range splitFragments(text, isSentenceEnd) {
		g.add(frag, ".", stageSentence)
	}
	g.flush()
	return g.chunks
}

// minBudget keeps the "..." truncation representable; anything smaller is a
// misconfiguration, not a real canvas.
const minBudget = 4

type stage int

const (
	stageSentence stage = iota
	stageClause
)

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func isComma(r rune) bool {
	return r == ','
}

// splitFragments splits on the given terminator class, trimming whitespace
// and dropping empty pieces.
func splitFragments(text string, isEnd func(rune) bool) []string {
	parts := strings.FieldsFunc(text, isEnd)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// grouper greedily accumulates fragments into budget-bounded chunks.
type grouper struct {
	budget int
	chunks []string
	cur    string
}

func (g *grouper) flush() {
	if trimmed := strings.TrimSpace(g.cur); trimmed != "" {
		g.chunks = append(g.chunks, trimmed)
	}
	g.cur = ""
}

func (g *grouper) emit(chunk string) {
	if trimmed := strings.TrimSpace(chunk); trimmed != "" {
		g.chunks = append(g.chunks, trimmed)
	}
}

// add appends one fragment with its terminator, flushing or cascading to the
// next stage when the budget would be exceeded. The +2 allowance covers the
// joining space and the terminator.
func (g *grouper) add(frag, term string, depth stage) {
	if util.RuneLen(g.cur)+util.RuneLen(frag)+2 > g.budget {
		if g.cur != "" {
			g.flush()
		}
		if util.RuneLen(frag)+2 > g.budget {
			// The fragment alone does not fit; fall one level down.
			switch depth {
			case stageSentence:
				for _, clause := range splitFragments(frag, isComma) {
					g.add(clause, ",", stageClause)
				}
			case stageClause:
				g.addWordRun(frag, term)
			}
			return
		}
	}
	if g.cur == "" {
		g.cur = frag + term
	} else {
		g.cur += " " + frag + term
	}
}

// addWordRun accumulates whitespace-separated words, emitting a chunk each
// time the next word would overflow. A word longer than the whole budget is
// truncated to budget-3 runes plus "..." and emitted on its own. Any
// leftover run becomes the open accumulator so following fragments can still
// join it.
func (g *grouper) addWordRun(frag, term string) {
	var run string
	for _, word := range strings.Fields(frag) {
		if util.RuneLen(word)+1 > g.budget {
			if run != "" {
				g.emit(run + term)
				run = ""
			}
			g.emit(util.TruncateString(word, g.budget-3))
			continue
		}
		switch {
		case run == "":
			run = word
		case util.RuneLen(run)+util.RuneLen(word)+1 > g.budget:
			g.emit(run + term)
			run = word
		default:
			run += " " + word
		}
	}
	if run != "" {
		g.cur = run + term
	}
}
