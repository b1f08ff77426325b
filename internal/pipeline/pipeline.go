package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/iitkqc/confession-bot-go/internal/constants"
	"github.com/iitkqc/confession-bot-go/internal/domain"
	"github.com/iitkqc/confession-bot-go/internal/layout"
)

// SheetClient is the spreadsheet surface the pipeline drives.
type SheetClient interface {
	FetchNew(ctx context.Context) ([]domain.Confession, error)
	MarkProcessed(ctx context.Context, rowNum, status int) error
	Count(ctx context.Context) (int, error)
	IncrementCount(ctx context.Context) error
	AccessToken(ctx context.Context) (string, error)
	SetAccessToken(ctx context.Context, token string) error
}

// ModerationService screens and ranks confessions.
type ModerationService interface {
	Moderate(ctx context.Context, c domain.Confession) domain.ModerationResult
	SelectTop(ctx context.Context, confessions []domain.Moderated, maxCount int) []domain.Moderated
}

// SlideBuilder renders a candidate into its slide artifacts.
type SlideBuilder interface {
	Build(ctx context.Context, c domain.Candidate) ([]layout.Artifact, bool, error)
}

// MediaUploader hosts artifacts publicly and cleans them up afterwards.
type MediaUploader interface {
	Upload(ctx context.Context, path string) (string, error)
	Purge(ctx context.Context) error
}

// Publisher is the Instagram surface.
type Publisher interface {
	SetAccessToken(token string)
	PublishPost(ctx context.Context, imageURLs []string, caption string) (string, error)
	RefreshAccessToken(ctx context.Context) (string, error)
}

// Dedupe is the fast processed-row check; nil disables it.
type Dedupe interface {
	IsProcessed(ctx context.Context, rowNum int) (bool, error)
	MarkProcessed(ctx context.Context, rowNums ...int) error
}

// ReceiptArchive persists publish outcomes; nil disables it.
type ReceiptArchive interface {
	SaveReceipt(ctx context.Context, r domain.Receipt) error
}

// renderedPost is one candidate with its slides already built and a display
// number reserved.
type renderedPost struct {
	candidate domain.Candidate
	artifacts []layout.Artifact
	err       error
}

// Pipeline wires one end-to-end run: fetch, moderate, curate, render,
// publish, settle.
type Pipeline struct {
	sheets    SheetClient
	moderator ModerationService
	builder   SlideBuilder
	uploader  MediaUploader
	publisher Publisher
	dedupe    Dedupe
	archive   ReceiptArchive
	logger    *zap.Logger

	maxPerRun int
	dryRun    bool
	now       func() time.Time
}

type Options struct {
	Sheets    SheetClient
	Moderator ModerationService
	Builder   SlideBuilder
	Uploader  MediaUploader
	Publisher Publisher
	Dedupe    Dedupe
	Archive   ReceiptArchive
	Logger    *zap.Logger
	MaxPerRun int
	DryRun    bool
}

func New(opts Options) *Pipeline {
	maxPerRun := opts.MaxPerRun
	if maxPerRun <= 0 {
		maxPerRun = 4
	}
	return &Pipeline{
		sheets:    opts.Sheets,
		moderator: opts.Moderator,
		builder:   opts.Builder,
		uploader:  opts.Uploader,
		publisher: opts.Publisher,
		dedupe:    opts.Dedupe,
		archive:   opts.Archive,
		logger:    opts.Logger,
		maxPerRun: maxPerRun,
		dryRun:    opts.DryRun,
		now:       time.Now,
	}
}

// Run executes one automation pass. Every fetched row ends the run with a
// settled status: 1 when its post published, 0 otherwise.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("Starting confession run", zap.Time("at", p.now()))

	if !p.dryRun {
		if err := p.setupToken(ctx); err != nil {
			return err
		}
	}

	fetched, err := p.sheets.FetchNew(ctx)
	if err != nil {
		return fmt.Errorf("fetch confessions: %w", err)
	}
	p.logger.Info("Found new confessions", zap.Int("count", len(fetched)))

	// Rate limit: only the oldest window is moderated per run, the rest
	// wait for the next one.
	if len(fetched) > constants.PipelineConfig.FetchWindow {
		fetched = fetched[:constants.PipelineConfig.FetchWindow]
	}

	fetched, err = p.filterProcessed(ctx, fetched)
	if err != nil {
		return err
	}
	if len(fetched) == 0 {
		p.logger.Info("No new confessions to process")
		return nil
	}

	safe := p.moderate(ctx, fetched)
	if len(safe) == 0 {
		p.logger.Info("No safe confessions this run")
		return p.settleLeftovers(ctx, fetched, nil)
	}

	picked := p.moderator.SelectTop(ctx, safe, p.maxPerRun)
	p.logger.Info("Selected confessions for posting", zap.Int("count", len(picked)))

	posted, err := p.publishAll(ctx, picked)
	if err != nil {
		return err
	}

	if err := p.settleLeftovers(ctx, fetched, posted); err != nil {
		return err
	}

	if !p.dryRun {
		if err := p.uploader.Purge(ctx); err != nil {
			p.logger.Warn("Asset cleanup failed", zap.Error(err))
		}
	}

	p.logger.Info("Confession run finished", zap.Int("posted", len(posted)))
	return nil
}

// setupToken loads the Instagram token from the sheet and exchanges it for a
// fresh long-lived one on the monthly refresh day.
func (p *Pipeline) setupToken(ctx context.Context) error {
	token, err := p.sheets.AccessToken(ctx)
	if err != nil {
		return fmt.Errorf("load access token: %w", err)
	}
	if token == "" {
		return fmt.Errorf("no Instagram access token stored in the sheet")
	}
	p.publisher.SetAccessToken(token)

	if p.now().Day() == constants.PipelineConfig.TokenRefreshDay {
		p.logger.Info("Refreshing Instagram access token")
		newToken, err := p.publisher.RefreshAccessToken(ctx)
		if err != nil {
			return fmt.Errorf("refresh access token: %w", err)
		}
		if err := p.sheets.SetAccessToken(ctx, newToken); err != nil {
			return fmt.Errorf("store refreshed token: %w", err)
		}
	}
	return nil
}

func (p *Pipeline) filterProcessed(ctx context.Context, fetched []domain.Confession) ([]domain.Confession, error) {
	if p.dedupe == nil {
		return fetched, nil
	}

	var fresh []domain.Confession
	for _, c := range fetched {
		done, err := p.dedupe.IsProcessed(ctx, c.RowNum)
		if err != nil {
			// Redis down degrades to sheet-only dedupe.
			p.logger.Warn("Dedupe check failed, keeping row", zap.Int("row", c.RowNum), zap.Error(err))
			fresh = append(fresh, c)
			continue
		}
		if done {
			p.logger.Info("Skipping already processed row", zap.Int("row", c.RowNum))
			continue
		}
		fresh = append(fresh, c)
	}
	return fresh, nil
}

func (p *Pipeline) moderate(ctx context.Context, fetched []domain.Confession) []domain.Moderated {
	var safe []domain.Moderated
	for _, c := range fetched {
		result := p.moderator.Moderate(ctx, c)
		if !result.Safe {
			p.logger.Info("Confession rejected",
				zap.Int("row", c.RowNum),
				zap.String("reason", result.RejectionReason),
			)
			continue
		}
		p.logger.Info("Confession accepted",
			zap.Int("row", c.RowNum),
			zap.String("sentiment", result.Sentiment.String()),
		)
		safe = append(safe, domain.Moderated{Confession: c, Moderation: result})
	}
	return safe
}

// publishAll renders the picked confessions concurrently, then publishes
// them in order. Display numbers are reserved up front from the sheet
// counter; a failed publish burns its number, which keeps rendering off the
// publish path.
func (p *Pipeline) publishAll(ctx context.Context, picked []domain.Moderated) (map[int]bool, error) {
	posted := make(map[int]bool)
	if len(picked) == 0 {
		return posted, nil
	}

	count, err := p.sheets.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("read confession counter: %w", err)
	}

	rendered := make([]renderedPost, len(picked))
	workers := pool.New().WithMaxGoroutines(constants.PipelineConfig.RenderConcurrency)
	for idx, m := range picked {
		candidate := domain.Candidate{Moderated: m, DisplayCount: count + idx + 1}
		workers.Go(func() {
			artifacts, truncated, err := p.builder.Build(ctx, candidate)
			if truncated {
				p.logger.Warn("Confession truncated to slide cap", zap.Int("row", candidate.RowNum))
			}
			rendered[idx] = renderedPost{candidate: candidate, artifacts: artifacts, err: err}
		})
	}
	workers.Wait()

	for _, post := range rendered {
		row := post.candidate.RowNum
		if post.err != nil {
			p.logger.Error("Slide rendering failed", zap.Int("row", row), zap.Error(post.err))
			p.markRow(ctx, row, 0)
			continue
		}

		if p.dryRun {
			p.logger.Info("Dry run: skipping publish",
				zap.Int("row", row),
				zap.Int("slides", len(post.artifacts)),
			)
			posted[row] = true
			continue
		}

		mediaID, err := p.publishOne(ctx, post)
		if err != nil {
			p.logger.Error("Publish failed", zap.Int("row", row), zap.Error(err))
			p.markRow(ctx, row, 0)
			continue
		}

		if err := p.sheets.IncrementCount(ctx); err != nil {
			p.logger.Error("Counter update failed", zap.Error(err))
		}
		p.markRow(ctx, row, 1)
		p.saveReceipt(ctx, post, mediaID)
		posted[row] = true
	}

	return posted, nil
}

func (p *Pipeline) publishOne(ctx context.Context, post renderedPost) (string, error) {
	urls := make([]string, 0, len(post.artifacts))
	for _, artifact := range post.artifacts {
		url, err := p.uploader.Upload(ctx, artifact.Handle)
		if err != nil {
			return "", fmt.Errorf("upload slide %d: %w", artifact.Position, err)
		}
		urls = append(urls, url)
	}

	return p.publisher.PublishPost(ctx, urls, post.candidate.Moderation.SummaryCaption)
}

// settleLeftovers marks every fetched row that did not publish. Unsafe,
// unpicked and failed rows all land on 0 so the next scan stops above them.
func (p *Pipeline) settleLeftovers(ctx context.Context, fetched []domain.Confession, posted map[int]bool) error {
	for _, c := range fetched {
		if posted[c.RowNum] {
			continue
		}
		p.markRow(ctx, c.RowNum, 0)
	}
	return nil
}

// markRow settles one row in both the cache and the sheet. The cache write
// goes first; it is what protects against a crash mid-settle. Dry runs leave
// every row unsettled so a real run can pick them up.
func (p *Pipeline) markRow(ctx context.Context, rowNum, status int) {
	if p.dryRun {
		return
	}
	if p.dedupe != nil {
		if err := p.dedupe.MarkProcessed(ctx, rowNum); err != nil {
			p.logger.Warn("Dedupe mark failed", zap.Int("row", rowNum), zap.Error(err))
		}
	}
	if err := p.sheets.MarkProcessed(ctx, rowNum, status); err != nil {
		p.logger.Error("Sheet mark failed", zap.Int("row", rowNum), zap.Error(err))
	}
}

func (p *Pipeline) saveReceipt(ctx context.Context, post renderedPost, mediaID string) {
	if p.archive == nil {
		return
	}
	receipt := domain.Receipt{
		RowNum:       post.candidate.RowNum,
		DisplayCount: post.candidate.DisplayCount,
		MediaID:      mediaID,
		SlideCount:   len(post.artifacts),
		Caption:      post.candidate.Moderation.SummaryCaption,
		PostedAt:     p.now(),
	}
	if err := p.archive.SaveReceipt(ctx, receipt); err != nil {
		p.logger.Warn("Receipt archive failed", zap.Int("row", receipt.RowNum), zap.Error(err))
	}
}
