package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/iitkqc/confession-bot-go/internal/domain"
)

// fakeGenerator answers every GenerateJSON call with a canned JSON payload.
type fakeGenerator struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeGenerator) GenerateJSON(ctx context.Context, prompt string, preset ModelPreset, dest any, opts *GenerateOptions) (*GenerateMetadata, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return nil, f.err
	}
	if err := json.Unmarshal([]byte(f.response), dest); err != nil {
		return nil, err
	}
	return &GenerateMetadata{Provider: "fake"}, nil
}

func newTestModerator(gen JSONGenerator) *Moderator {
	return NewModerator(gen, "moderation-model", "selection-model", "IIT Kanpur", zap.NewNop())
}

func moderatedBatch(n int) []domain.Moderated {
	batch := make([]domain.Moderated, n)
	for i := range batch {
		batch[i] = domain.Moderated{
			Confession: domain.Confession{RowNum: i + 2, Text: fmt.Sprintf("confession number %d", i+1)},
			Moderation: domain.ModerationResult{Safe: true, Sentiment: domain.SentimentNeutral},
		}
	}
	return batch
}

func TestModerateParsesModelContract(t *testing.T) {
	gen := &fakeGenerator{response: `{
		"is_safe": true,
		"rejection_reason": "",
		"sentiment": "Mixed",
		"summary_caption": "Campus feels #iitk",
		"original_text": "I saw **** at the mess"
	}`}
	m := newTestModerator(gen)

	result := m.Moderate(context.Background(), domain.Confession{RowNum: 5, Text: "I saw Rahul at the mess"})
	if !result.Safe {
		t.Fatal("expected safe verdict")
	}
	if result.Sentiment != domain.SentimentMixed {
		t.Fatalf("sentiment: got %q", result.Sentiment)
	}
	if result.RedactedText != "I saw **** at the mess" {
		t.Fatalf("redacted text: got %q", result.RedactedText)
	}
	if len(gen.prompts) != 1 || !strings.Contains(gen.prompts[0], "I saw Rahul at the mess") {
		t.Fatal("moderation prompt should embed the confession text")
	}
}

func TestModerateFailsClosedOnError(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("503 upstream")}
	m := newTestModerator(gen)

	result := m.Moderate(context.Background(), domain.Confession{RowNum: 3, Text: "anything"})
	if result.Safe {
		t.Fatal("a failed moderation call must not pass the confession")
	}
	if result.RejectionReason == "" {
		t.Fatal("rejection reason should carry the failure")
	}
	if result.Sentiment != domain.SentimentUnknown {
		t.Fatalf("sentiment: got %q", result.Sentiment)
	}
}

func TestModerateDefaultsMissingSentiment(t *testing.T) {
	gen := &fakeGenerator{response: `{"is_safe": true}`}
	m := newTestModerator(gen)

	result := m.Moderate(context.Background(), domain.Confession{RowNum: 1, Text: "x"})
	if result.Sentiment != domain.SentimentUnknown {
		t.Fatalf("missing sentiment should default to Unknown, got %q", result.Sentiment)
	}
}

func TestSelectTopOrdersByModelRanking(t *testing.T) {
	gen := &fakeGenerator{response: `[3, 1, 5, 2]`}
	m := newTestModerator(gen)

	picked := m.SelectTop(context.Background(), moderatedBatch(6), 4)
	if len(picked) != 4 {
		t.Fatalf("expected 4 picks, got %d", len(picked))
	}
	wantRows := []int{4, 2, 6, 3}
	for i, want := range wantRows {
		if picked[i].RowNum != want {
			t.Fatalf("pick %d: want row %d got %d", i, want, picked[i].RowNum)
		}
	}
}

func TestSelectTopDropsInvalidAndDuplicateIndices(t *testing.T) {
	gen := &fakeGenerator{response: `[0, 2, 2, 99, 4]`}
	m := newTestModerator(gen)

	picked := m.SelectTop(context.Background(), moderatedBatch(6), 4)
	if len(picked) != 2 {
		t.Fatalf("expected the 2 valid unique picks, got %d", len(picked))
	}
	if picked[0].RowNum != 3 || picked[1].RowNum != 5 {
		t.Fatalf("unexpected picks: %d %d", picked[0].RowNum, picked[1].RowNum)
	}
}

func TestSelectTopFallsBackToSubmissionOrder(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("quota exceeded")}
	m := newTestModerator(gen)

	batch := moderatedBatch(6)
	picked := m.SelectTop(context.Background(), batch, 4)
	if len(picked) != 4 {
		t.Fatalf("expected 4 fallback picks, got %d", len(picked))
	}
	for i := range picked {
		if picked[i].RowNum != batch[i].RowNum {
			t.Fatal("fallback must preserve submission order")
		}
	}
}

func TestSelectTopSkipsModelForSmallBatches(t *testing.T) {
	gen := &fakeGenerator{}
	m := newTestModerator(gen)

	picked := m.SelectTop(context.Background(), moderatedBatch(3), 4)
	if len(picked) != 3 {
		t.Fatalf("expected everything back, got %d", len(picked))
	}
	if len(gen.prompts) != 0 {
		t.Fatal("no model call needed when the batch already fits")
	}
}

func TestSelectTopEmptyBatch(t *testing.T) {
	m := newTestModerator(&fakeGenerator{})
	if picked := m.SelectTop(context.Background(), nil, 4); picked != nil {
		t.Fatalf("expected nil for an empty batch, got %v", picked)
	}
}
