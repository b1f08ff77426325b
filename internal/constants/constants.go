package constants

import "time"

var SlideConfig = struct {
	CharBudget     int
	MaxSlides      int
	SquareWidth    float64
	SquareHeight   float64
	SquareColumns  int
	ReelWidth      float64
	ReelHeight     float64
	ReelPadding    float64 // fraction of width reserved per side
	BadgePaddingX  float64
	BadgePaddingY  float64
	BadgeMarginX   float64
	BadgeMarginY   float64
	WatermarkY     float64
	CountBadgeY    float64
	ReelWatermarkY float64
	ReelCountY     float64
}{
	CharBudget:     400,
	MaxSlides:      10,
	SquareWidth:    1080,
	SquareHeight:   1080,
	SquareColumns:  35,
	ReelWidth:      1080,
	ReelHeight:     1920,
	ReelPadding:    0.10,
	BadgePaddingX:  10,
	BadgePaddingY:  5,
	BadgeMarginX:   30,
	BadgeMarginY:   60,
	WatermarkY:     50,
	CountBadgeY:    100,
	ReelWatermarkY: 300,
	ReelCountY:     360,
}

var FontConfig = struct {
	SquareBody      float64
	SquareWatermark float64
	SquareBadge     float64
	SquareLineH     float64
	ReelBody        float64
	ReelWatermark   float64
	ReelBadge       float64
	ReelLineH       float64
}{
	SquareBody:      50,
	SquareWatermark: 32,
	SquareBadge:     24,
	SquareLineH:     60,
	ReelBody:        70,
	ReelWatermark:   45,
	ReelBadge:       30,
	ReelLineH:       85,
}

var PipelineConfig = struct {
	FetchWindow       int // most recent submissions considered per run
	ModerationTimeout time.Duration
	PublishDelay      time.Duration // container processing wait before publish
	RenderConcurrency int
	TokenRefreshDay   int // day of month for long-lived token exchange
}{
	FetchWindow:       15,
	ModerationTimeout: 60 * time.Second,
	PublishDelay:      10 * time.Second,
	RenderConcurrency: 4,
	TokenRefreshDay:   28,
}

var SheetLayout = struct {
	StatusColumn int // 1-based, written 0/1 after a run
	CounterCell  string
	TokenCell    string
	ReadRange    string
}{
	StatusColumn: 3,
	CounterCell:  "D1",
	TokenCell:    "E1",
	ReadRange:    "A:C",
}

var CircuitBreakerConfig = struct {
	FailureThreshold    int
	ResetTimeout        time.Duration
	RateLimitTimeout    time.Duration
	HealthCheckInterval time.Duration
	HealthCheckTimeout  time.Duration
}{
	FailureThreshold:    3,
	ResetTimeout:        30 * time.Second,
	RateLimitTimeout:    1 * time.Hour,
	HealthCheckInterval: 10 * time.Minute,
	HealthCheckTimeout:  10 * time.Second,
}

var APIConfig = struct {
	GraphBaseURL      string
	GraphTimeout      time.Duration
	CloudinaryBaseURL string
	CloudinaryTimeout time.Duration
	MaxRetryAttempts  int
}{
	GraphBaseURL:      "https://graph.facebook.com/v19.0",
	GraphTimeout:      30 * time.Second,
	CloudinaryBaseURL: "https://api.cloudinary.com/v1_1",
	CloudinaryTimeout: 60 * time.Second,
	MaxRetryAttempts:  3,
}

var CacheKeys = struct {
	ProcessedRows string
	ReceiptPrefix string
}{
	ProcessedRows: "confession:processed",
	ReceiptPrefix: "confession:receipt:",
}
