package app

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/iitkqc/confession-bot-go/internal/config"
	"github.com/iitkqc/confession-bot-go/internal/constants"
	"github.com/iitkqc/confession-bot-go/internal/layout"
	"github.com/iitkqc/confession-bot-go/internal/pipeline"
	"github.com/iitkqc/confession-bot-go/internal/render"
	"github.com/iitkqc/confession-bot-go/internal/service/ai"
	"github.com/iitkqc/confession-bot-go/internal/service/archive"
	"github.com/iitkqc/confession-bot-go/internal/service/cache"
	"github.com/iitkqc/confession-bot-go/internal/service/instagram"
	"github.com/iitkqc/confession-bot-go/internal/service/media"
	"github.com/iitkqc/confession-bot-go/internal/service/sheets"
)

// Container bundles the assembled services behind one pipeline instance.
type Container struct {
	Config   *config.Config
	Logger   *zap.Logger
	Pipeline *pipeline.Pipeline

	closers []func()
}

// Close releases connections in reverse construction order.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

// Build assembles every service the pipeline needs. All heavy-weight
// initialization (sheet auth, AI clients, font loading, Redis, Postgres)
// happens here so a broken environment fails before any sheet row is
// touched.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (container *Container, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}

	var closers []func()
	defer func() {
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		}
	}()

	sheetSvc, err := sheets.NewService(ctx, cfg.Sheets.SpreadsheetID, cfg.Sheets.CredentialsB64, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	models, err := ai.NewModelManager(ctx, ai.ModelManagerConfig{
		GeminiAPIKey:       cfg.Gemini.APIKey,
		OpenAIAPIKey:       cfg.OpenAI.APIKey,
		DefaultGeminiModel: cfg.Gemini.ModerationModel,
		EnableFallback:     cfg.OpenAI.EnableFallback,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create model manager: %w", err)
	}
	moderator := ai.NewModerator(models,
		cfg.Gemini.ModerationModel,
		cfg.Gemini.SelectionModel,
		cfg.Pipeline.Community,
		logger,
	)

	renderer, err := render.NewRenderer(cfg.Render.FontPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load slide font: %w", err)
	}
	store := render.NewDiskStore(cfg.Render.OutputDir)
	if err := store.Cleanup(); err != nil {
		logger.Warn("Stale artifact cleanup failed", zap.Error(err))
	}

	profile := layout.SquareProfile()
	if strings.EqualFold(cfg.Render.WrapMode, "pixels") {
		profile.Columns = 0
	}
	builder := layout.NewBuilder(profile, renderer, store,
		cfg.Render.Watermark,
		constants.SlideConfig.CharBudget,
		constants.SlideConfig.MaxSlides,
		logger,
	)

	uploader := media.NewUploader(
		cfg.Cloudinary.CloudName,
		cfg.Cloudinary.APIKey,
		cfg.Cloudinary.APISecret,
		logger,
	)
	publisher := instagram.NewClient(
		cfg.Instagram.PageID,
		cfg.Instagram.AppID,
		cfg.Instagram.AppSecret,
		logger,
	)

	var dedupe pipeline.Dedupe
	var receipts pipeline.ReceiptArchive
	if cfg.Redis.Host != "" {
		cacheSvc, cacheErr := cache.NewCacheService(cache.CacheConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, logger)
		if cacheErr != nil {
			return nil, fmt.Errorf("failed to create cache service: %w", cacheErr)
		}
		closers = append(closers, func() {
			_ = cacheSvc.Close()
		})
		dedupe = cacheSvc
		receipts = cacheSvc
	} else {
		logger.Info("Redis disabled, dedupe relies on the sheet status column")
	}

	if cfg.Postgres.Host != "" {
		archiveSvc, pgErr := archive.NewService(archive.Config{
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			Database: cfg.Postgres.Database,
		}, logger)
		if pgErr != nil {
			return nil, fmt.Errorf("failed to create receipt archive: %w", pgErr)
		}
		closers = append(closers, func() {
			_ = archiveSvc.Close()
		})
		receipts = archiveSvc
	}

	run := pipeline.New(pipeline.Options{
		Sheets:    sheetSvc,
		Moderator: moderator,
		Builder:   builder,
		Uploader:  uploader,
		Publisher: publisher,
		Dedupe:    dedupe,
		Archive:   receipts,
		Logger:    logger,
		MaxPerRun: cfg.Pipeline.MaxPerRun,
		DryRun:    cfg.Pipeline.DryRun,
	})

	return &Container{
		Config:   cfg,
		Logger:   logger,
		Pipeline: run,
		closers:  closers,
	}, nil
}
