package layout

import (
	"context"
	"fmt"

	"github.com/iitkqc/confession-bot-go/internal/domain"
	"go.uber.org/zap"
)

// SlideRenderer rasterizes a composed slide. Implementations also provide
// the measurement the composer needs, so one font setup serves both.
type SlideRenderer interface {
	Measurer
	Render(slide *Slide) ([]byte, error)
}

// ArtifactStore persists an encoded slide under a filename hint and returns
// a handle (path or URL) for the upload step.
type ArtifactStore interface {
	Save(name string, data []byte) (string, error)
}

// Artifact references one persisted slide image.
type Artifact struct {
	Handle   string
	Position int
	Total    int
}

// Builder turns a confession into its ordered slide set: segment under the
// character budget, wrap per the profile's mode, compose, render, persist.
type Builder struct {
	profile   Profile
	renderer  SlideRenderer
	store     ArtifactStore
	watermark string
	budget    int
	maxSlides int
	logger    *zap.Logger
}

func NewBuilder(profile Profile, renderer SlideRenderer, store ArtifactStore, watermark string, budget, maxSlides int, logger *zap.Logger) *Builder {
	return &Builder{
		profile:   profile,
		renderer:  renderer,
		store:     store,
		watermark: watermark,
		budget:    budget,
		maxSlides: maxSlides,
		logger:    logger,
	}
}

// Build renders the full carousel for a confession. truncated reports the
// slide-cap policy firing: chunks past the cap are dropped, not merged, and
// that is deliberate data loss the caller may want to surface.
func (b *Builder) Build(ctx context.Context, c domain.Candidate) (artifacts []Artifact, truncated bool, err error) {
	chunks := Segment(c.PostText(), b.budget)

	if len(chunks) > b.maxSlides {
		b.logger.Warn("Slide cap exceeded, dropping overflow chunks",
			zap.Int("row", c.RowNum),
			zap.Int("chunks", len(chunks)),
			zap.Int("cap", b.maxSlides),
		)
		chunks = chunks[:b.maxSlides]
		truncated = true
	}

	composer := NewComposer(b.profile, b.renderer, b.watermark)
	total := len(chunks)

	for i, chunk := range chunks {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return artifacts, truncated, ctxErr
		}
		position := i + 1
		slide := composer.Compose(b.wrapChunk(chunk), position, total, c.Label(), c.DisplayCount)

		data, renderErr := b.renderer.Render(slide)
		if renderErr != nil {
			return artifacts, truncated, fmt.Errorf("render slide %d/%d for %s: %w", position, total, c.Label(), renderErr)
		}

		name := fmt.Sprintf("%s_slide_%d.png", c.Label(), position)
		handle, saveErr := b.store.Save(name, data)
		if saveErr != nil {
			// Earlier artifacts stay valid; report what was produced.
			return artifacts, truncated, saveErr
		}

		artifacts = append(artifacts, Artifact{Handle: handle, Position: position, Total: total})
	}

	return artifacts, truncated, nil
}

// BuildReel renders the whole confession as a single 9:16 slide.
func (b *Builder) BuildReel(ctx context.Context, c domain.Candidate) (Artifact, error) {
	if err := ctx.Err(); err != nil {
		return Artifact{}, err
	}
	composer := NewComposer(b.profile, b.renderer, b.watermark)
	slide := composer.Compose(b.wrapChunk(c.PostText()), 1, 1, c.Label(), c.DisplayCount)

	data, err := b.renderer.Render(slide)
	if err != nil {
		return Artifact{}, fmt.Errorf("render reel for %s: %w", c.Label(), err)
	}

	handle, err := b.store.Save(fmt.Sprintf("%s_reel.png", c.Label()), data)
	if err != nil {
		return Artifact{}, err
	}
	return Artifact{Handle: handle, Position: 1, Total: 1}, nil
}

func (b *Builder) wrapChunk(chunk string) []string {
	if b.profile.Columns > 0 {
		return WrapColumns(chunk, b.profile.Columns)
	}
	measure := func(s string) float64 {
		return b.renderer.TextWidth(s, b.profile.BodySize)
	}
	return Wrap(chunk, measure, b.profile.UsableWidth())
}
