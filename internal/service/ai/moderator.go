package ai

import (
	"context"

	"go.uber.org/zap"

	"github.com/iitkqc/confession-bot-go/internal/constants"
	"github.com/iitkqc/confession-bot-go/internal/domain"
	"github.com/iitkqc/confession-bot-go/internal/prompt"
)

// JSONGenerator is the slice of ModelManager the moderator needs.
type JSONGenerator interface {
	GenerateJSON(ctx context.Context, prompt string, preset ModelPreset, dest any, opts *GenerateOptions) (*GenerateMetadata, error)
}

// Moderator wraps the model manager with the confession-specific contracts:
// per-submission safety screening and batch curation.
type Moderator struct {
	models          JSONGenerator
	moderationModel string
	selectionModel  string
	community       string
	logger          *zap.Logger
}

func NewModerator(models JSONGenerator, moderationModel, selectionModel, community string, logger *zap.Logger) *Moderator {
	return &Moderator{
		models:          models,
		moderationModel: moderationModel,
		selectionModel:  selectionModel,
		community:       community,
		logger:          logger,
	}
}

// Moderate screens one confession. Any model or transport failure fails
// closed: the confession is reported unsafe and skipped for this run, it is
// not lost because its sheet status stays unset.
func (m *Moderator) Moderate(ctx context.Context, c domain.Confession) domain.ModerationResult {
	ctx, cancel := context.WithTimeout(ctx, constants.PipelineConfig.ModerationTimeout)
	defer cancel()

	var result domain.ModerationResult
	_, err := m.models.GenerateJSON(ctx, prompt.BuildModerationPrompt(c.Text), PresetPrecise, &result, &GenerateOptions{
		Model: m.moderationModel,
	})
	if err != nil {
		m.logger.Warn("Moderation call failed, treating as unsafe",
			zap.Int("row", c.RowNum),
			zap.Error(err),
		)
		return domain.ModerationResult{
			Safe:            false,
			RejectionReason: "moderation API error: " + err.Error(),
			Sentiment:       domain.SentimentUnknown,
			RedactedText:    c.Text,
		}
	}

	if result.Sentiment == "" {
		result.Sentiment = domain.SentimentUnknown
	}
	return result
}

// SelectTop asks the curation model to rank the safe confessions and returns
// up to maxCount of them in the model's order. On any failure the first
// maxCount survive, so a model outage degrades to FIFO rather than an empty
// run.
func (m *Moderator) SelectTop(ctx context.Context, confessions []domain.Moderated, maxCount int) []domain.Moderated {
	if len(confessions) == 0 {
		return nil
	}
	if len(confessions) <= maxCount {
		picked := make([]domain.Moderated, len(confessions))
		copy(picked, confessions)
		return picked
	}

	var indices []int
	_, err := m.models.GenerateJSON(ctx, prompt.BuildSelectionPrompt(m.community, confessions, maxCount), PresetBalanced, &indices, &GenerateOptions{
		Model: m.selectionModel,
	})
	if err != nil {
		m.logger.Warn("Selection call failed, falling back to submission order", zap.Error(err))
		return confessions[:maxCount]
	}

	seen := make(map[int]bool, len(indices))
	var picked []domain.Moderated
	for _, idx := range indices {
		if idx < 1 || idx > len(confessions) || seen[idx] {
			m.logger.Warn("Dropping invalid selection index", zap.Int("index", idx))
			continue
		}
		seen[idx] = true
		picked = append(picked, confessions[idx-1])
		if len(picked) == maxCount {
			break
		}
	}

	if len(picked) == 0 {
		m.logger.Warn("Selection returned no usable indices, falling back to submission order")
		return confessions[:maxCount]
	}
	return picked
}
