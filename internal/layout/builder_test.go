package layout

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/iitkqc/confession-bot-go/internal/domain"
	"go.uber.org/zap"
)

// fakeRenderer measures 10px per rune and returns a tiny payload per slide.
type fakeRenderer struct {
	slides    []*Slide
	failAfter int // fail on the Nth render when > 0
}

func (f *fakeRenderer) TextWidth(text string, size float64) float64 {
	return float64(utf8.RuneCountInString(text)) * 10
}

func (f *fakeRenderer) Render(slide *Slide) ([]byte, error) {
	f.slides = append(f.slides, slide)
	if f.failAfter > 0 && len(f.slides) >= f.failAfter {
		return nil, errors.New("rasterizer out of memory")
	}
	return []byte("png"), nil
}

type fakeStore struct {
	saved   []string
	failOn  string
	saveErr error
}

func (f *fakeStore) Save(name string, data []byte) (string, error) {
	if f.failOn != "" && name == f.failOn {
		return "", f.saveErr
	}
	f.saved = append(f.saved, name)
	return "/tmp/" + name, nil
}

func candidate(row int, text string, count int) domain.Candidate {
	return domain.Candidate{
		Moderated: domain.Moderated{
			Confession: domain.Confession{RowNum: row, Text: text},
		},
		DisplayCount: count,
	}
}

func newTestBuilder(renderer *fakeRenderer, store *fakeStore, maxSlides int) *Builder {
	return NewBuilder(SquareProfile(), renderer, store, "WM", 400, maxSlides, zap.NewNop())
}

func TestBuildShortTextProducesSingleSlide(t *testing.T) {
	renderer := &fakeRenderer{}
	store := &fakeStore{}
	b := newTestBuilder(renderer, store, 10)

	artifacts, truncated, err := b.Build(context.Background(), candidate(3, "A short confession.", 12))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if truncated {
		t.Fatal("short text must not be truncated")
	}
	if len(artifacts) != 1 {
		t.Fatalf("expected 1 artifact, got %d", len(artifacts))
	}
	if artifacts[0].Position != 1 || artifacts[0].Total != 1 {
		t.Fatalf("unexpected pagination: %+v", artifacts[0])
	}
	if store.saved[0] != "confession_3_slide_1.png" {
		t.Fatalf("unexpected artifact name: %q", store.saved[0])
	}
}

func TestBuildEmptyTextStillProducesOneSlide(t *testing.T) {
	renderer := &fakeRenderer{}
	b := newTestBuilder(renderer, &fakeStore{}, 10)

	artifacts, _, err := b.Build(context.Background(), candidate(1, "", 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(artifacts) != 1 {
		t.Fatalf("expected 1 artifact for empty text, got %d", len(artifacts))
	}
	if len(renderer.slides[0].Lines) != 0 {
		t.Fatalf("empty chunk should wrap to no lines, got %v", renderer.slides[0].Lines)
	}
}

func TestBuildCapsSlideCountAndFlagsTruncation(t *testing.T) {
	renderer := &fakeRenderer{}
	b := newTestBuilder(renderer, &fakeStore{}, 10)

	// ~6000 chars of prose segments into well over 10 chunks.
	text := strings.TrimSpace(strings.Repeat("the quick brown fox jumps over the lazy dog. ", 130))
	artifacts, truncated, err := b.Build(context.Background(), candidate(7, text, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !truncated {
		t.Fatal("overflow past the slide cap must be reported")
	}
	if len(artifacts) != 10 {
		t.Fatalf("expected the cap of 10 artifacts, got %d", len(artifacts))
	}
	for i, a := range artifacts {
		if a.Position != i+1 || a.Total != 10 {
			t.Fatalf("artifact %d has pagination %d/%d", i, a.Position, a.Total)
		}
	}
}

func TestBuildDisplayCountOnlyOnFirstSlide(t *testing.T) {
	renderer := &fakeRenderer{}
	b := newTestBuilder(renderer, &fakeStore{}, 10)

	text := strings.TrimSpace(strings.Repeat("a sentence that pads the budget out. ", 30))
	if _, _, err := b.Build(context.Background(), candidate(2, text, 55)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(renderer.slides) < 2 {
		t.Fatalf("expected a multi-slide set, got %d", len(renderer.slides))
	}

	countOn := func(slide *Slide) bool {
		for _, txt := range slide.Texts {
			if txt.Content == "#55" {
				return true
			}
		}
		return false
	}
	if !countOn(renderer.slides[0]) {
		t.Fatal("first slide should show the display count")
	}
	for _, slide := range renderer.slides[1:] {
		if countOn(slide) {
			t.Fatal("display count leaked onto a later slide")
		}
	}
}

func TestBuildStoreFailureReturnsEarlierArtifacts(t *testing.T) {
	renderer := &fakeRenderer{}
	store := &fakeStore{failOn: "confession_5_slide_2.png", saveErr: errors.New("disk full")}
	b := newTestBuilder(renderer, store, 10)

	text := strings.TrimSpace(strings.Repeat("a sentence that pads the budget out. ", 30))
	artifacts, _, err := b.Build(context.Background(), candidate(5, text, 1))
	if err == nil {
		t.Fatal("expected the store error to surface")
	}
	if len(artifacts) != 1 {
		t.Fatalf("expected the one persisted artifact back, got %d", len(artifacts))
	}
	if artifacts[0].Handle != "/tmp/confession_5_slide_1.png" {
		t.Fatalf("unexpected surviving handle: %q", artifacts[0].Handle)
	}
}

func TestBuildRenderFailureWrapsSlideIdentity(t *testing.T) {
	renderer := &fakeRenderer{failAfter: 1}
	b := newTestBuilder(renderer, &fakeStore{}, 10)

	_, _, err := b.Build(context.Background(), candidate(8, "whatever.", 1))
	if err == nil {
		t.Fatal("expected render error")
	}
	if !strings.Contains(err.Error(), "confession_8") {
		t.Fatalf("error should name the confession: %v", err)
	}
}

func TestBuildReelUsesSingleSlideNaming(t *testing.T) {
	renderer := &fakeRenderer{}
	store := &fakeStore{}
	b := NewBuilder(ReelProfile(), renderer, store, "WM", 400, 10, zap.NewNop())

	artifact, err := b.BuildReel(context.Background(), candidate(4, "Reel text.", 9))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if artifact.Handle != "/tmp/confession_4_reel.png" {
		t.Fatalf("unexpected handle: %q", artifact.Handle)
	}
	if renderer.slides[0].Badge != nil {
		t.Fatal("a reel has no pagination badge")
	}
}

func TestBuildRedactedTextWins(t *testing.T) {
	renderer := &fakeRenderer{}
	b := newTestBuilder(renderer, &fakeStore{}, 10)

	c := candidate(6, "raw text with a name", 1)
	c.Moderation.RedactedText = "raw text with [redacted]"
	if _, _, err := b.Build(context.Background(), c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var found bool
	for _, line := range renderer.slides[0].Lines {
		if strings.Contains(line, "[redacted]") {
			found = true
		}
		if strings.Contains(line, "a name") {
			t.Fatalf("raw text rendered instead of redacted: %q", line)
		}
	}
	if !found {
		t.Fatal("redacted text never rendered")
	}
}
