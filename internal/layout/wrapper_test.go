package layout

import (
	"strings"
	"testing"
	"unicode/utf8"
)

// measureTenPerRune is a deterministic stand-in for font metrics: every rune
// is 10px wide.
func measureTenPerRune(s string) float64 {
	return float64(utf8.RuneCountInString(s)) * 10
}

func TestWrapGreedyWordFill(t *testing.T) {
	lines := Wrap("aaa bbb ccc", measureTenPerRune, 100)
	if len(lines) != 2 || lines[0] != "aaa bbb" || lines[1] != "ccc" {
		t.Fatalf("unexpected wrap: %v", lines)
	}
}

func TestWrapEveryLineFitsBudget(t *testing.T) {
	text := "a bb ccc dddd eeeee ffffff ggggggg hhhhhhhh"
	lines := Wrap(text, measureTenPerRune, 120)
	for _, line := range lines {
		if measureTenPerRune(line) > 120 {
			t.Fatalf("line exceeds max width: %q", line)
		}
	}
}

func TestWrapSplitsOverlongWordByRunes(t *testing.T) {
	lines := Wrap("abcdefghijklmnop", measureTenPerRune, 50)
	want := []string{"abcde", "fghij", "klmno", "p"}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %v", len(want), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d: want %q got %q", i, want[i], lines[i])
		}
	}
}

func TestWrapLeftoverPieceJoinsNextWord(t *testing.T) {
	lines := Wrap("abcdefghijklmnop qq", measureTenPerRune, 50)
	last := lines[len(lines)-1]
	if last != "p qq" {
		t.Fatalf("expected the split remainder to share a line with the next word, got %v", lines)
	}
}

func TestWrapDegenerateWidthStillTerminates(t *testing.T) {
	// 5px budget is narrower than a single 10px rune; the wrapper must force
	// one rune per line rather than loop.
	lines := Wrap("abc", measureTenPerRune, 5)
	if len(lines) != 3 {
		t.Fatalf("expected one rune per forced line, got %v", lines)
	}
	for _, line := range lines {
		if utf8.RuneCountInString(line) != 1 {
			t.Fatalf("forced line should hold exactly one rune, got %q", line)
		}
	}
}

func TestWrapEmptyTextYieldsNoLines(t *testing.T) {
	if lines := Wrap("", measureTenPerRune, 100); len(lines) != 0 {
		t.Fatalf("expected no lines for empty input, got %v", lines)
	}
}

func TestWrapColumnsRespectsColumnBudget(t *testing.T) {
	text := "short words wrap at a constant column count ignoring glyph widths entirely"
	lines := WrapColumns(text, 35)
	for _, line := range lines {
		if utf8.RuneCountInString(line) > 35 {
			t.Fatalf("line exceeds column budget: %q", line)
		}
	}
	if got := strings.Join(lines, " "); got != text {
		t.Fatalf("wrapping must not reorder or drop words: %q", got)
	}
}

func TestWrapColumnsNeverBreaksWords(t *testing.T) {
	long := strings.Repeat("x", 50)
	lines := WrapColumns("start "+long+" end", 35)
	if len(lines) != 3 {
		t.Fatalf("expected the overlong word on its own line, got %v", lines)
	}
	if lines[1] != long {
		t.Fatalf("overlong word must stay unsplit, got %q", lines[1])
	}
}
