package layout

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSegmentShortTextReturnsUnchanged(t *testing.T) {
	got := Segment("Short text.", 400)
	if len(got) != 1 || got[0] != "Short text." {
		t.Fatalf("expected the input back unchanged, got %v", got)
	}
}

func TestSegmentEmptyTextReturnsSingleEmptyChunk(t *testing.T) {
	got := Segment("", 400)
	if len(got) != 1 || got[0] != "" {
		t.Fatalf("expected one empty chunk, got %v", got)
	}
}

func TestSegmentLongProseStaysUnderBudget(t *testing.T) {
	sentence := "the quick brown fox jumps over the lazy dog"
	text := strings.Repeat(sentence+". ", 27)
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < 1200 {
		t.Fatalf("test input should exceed 1200 chars, got %d", utf8.RuneCountInString(text))
	}

	chunks := Segment(text, 400)
	if len(chunks) < 3 || len(chunks) > 4 {
		t.Fatalf("expected 3-4 chunks for ~1200 chars of prose, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if n := utf8.RuneCountInString(chunk); n > 400 {
			t.Fatalf("chunk %d has %d runes, budget is 400: %q", i, n, chunk)
		}
	}
}

func TestSegmentSingleGiantWordTruncates(t *testing.T) {
	word := strings.Repeat("x", 500)
	chunks := Segment(word, 400)
	if len(chunks) != 1 {
		t.Fatalf("expected exactly one chunk, got %d", len(chunks))
	}
	want := strings.Repeat("x", 397) + "..."
	if chunks[0] != want {
		t.Fatalf("unexpected truncation: got %d runes ending %q", utf8.RuneCountInString(chunks[0]), chunks[0][len(chunks[0])-6:])
	}
	if utf8.RuneCountInString(chunks[0]) != 400 {
		t.Fatalf("truncated chunk must be exactly budget runes, got %d", utf8.RuneCountInString(chunks[0]))
	}
}

func TestSegmentChunkBoundsHoldForAllFallbackLevels(t *testing.T) {
	inputs := []string{
		// Sentences only.
		strings.Repeat("A plain statement about campus life. ", 40),
		// One giant sentence with commas.
		strings.Repeat("a clause about the mess food, ", 40),
		// No punctuation at all, forcing the word cascade.
		strings.Repeat("word ", 300),
		// Multi-script content; budgets are runes, not bytes.
		strings.Repeat("यह एक लंबा वाक्य है जो बार बार दोहराया जाता है. ", 30),
	}

	for _, input := range inputs {
		for _, chunk := range Segment(input, 120) {
			n := utf8.RuneCountInString(chunk)
			if strings.HasSuffix(chunk, "...") {
				if n != 120 {
					t.Fatalf("forced truncation must be exactly budget runes, got %d: %q", n, chunk)
				}
				continue
			}
			if n > 120 {
				t.Fatalf("chunk exceeds budget (%d runes): %q", n, chunk)
			}
		}
	}
}

func TestSegmentPreservesWordOrder(t *testing.T) {
	text := "one two three four. five six seven, eight nine. ten eleven twelve thirteen fourteen"
	chunks := Segment(text, 30)

	joined := strings.Join(chunks, " ")
	joined = strings.NewReplacer(".", " ", ",", " ").Replace(joined)
	got := strings.Fields(joined)

	original := strings.NewReplacer(".", " ", ",", " ").Replace(text)
	want := strings.Fields(original)

	if len(got) != len(want) {
		t.Fatalf("word count changed: want %d got %d (%v)", len(want), len(got), chunks)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("word %d reordered: want %q got %q", i, want[i], got[i])
		}
	}
}

func TestSegmentPunctuationOnlyInputYieldsNoChunks(t *testing.T) {
	input := strings.Repeat("... !!! ??? ", 40)
	chunks := Segment(input, 10)
	if len(chunks) != 0 {
		t.Fatalf("expected no chunks for punctuation-only input, got %v", chunks)
	}
}

func TestSegmentTreatsBangAndQuestionAsSentenceEnds(t *testing.T) {
	text := strings.Repeat("is this fine? absolutely! sure. ", 10)
	chunks := Segment(text, 60)
	for _, chunk := range chunks {
		if utf8.RuneCountInString(chunk) > 60 {
			t.Fatalf("chunk exceeds budget: %q", chunk)
		}
	}
	if len(chunks) < 2 {
		t.Fatalf("expected the text to split into multiple chunks, got %d", len(chunks))
	}
}
