package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Sheets     SheetsConfig
	Gemini     GeminiConfig
	OpenAI     OpenAIConfig
	Instagram  InstagramConfig
	Cloudinary CloudinaryConfig
	Redis      RedisConfig
	Postgres   PostgresConfig
	Render     RenderConfig
	Pipeline   PipelineConfig
	Logging    LoggingConfig
}

type SheetsConfig struct {
	SpreadsheetID  string
	CredentialsB64 string
}

type GeminiConfig struct {
	APIKey          string
	ModerationModel string
	SelectionModel  string
}

type OpenAIConfig struct {
	APIKey         string
	EnableFallback bool
}

type InstagramConfig struct {
	PageID    string
	AppID     string
	AppSecret string
}

type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
}

// Redis is optional; row dedupe falls back to the sheet alone when Host is
// empty.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Postgres is optional; the receipt archive is skipped when Host is empty.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

type RenderConfig struct {
	FontPath  string
	OutputDir string
	Watermark string
	WrapMode  string // "columns" or "pixels" for the square profile
}

type PipelineConfig struct {
	MaxPerRun int
	Community string
	DryRun    bool
}

type LoggingConfig struct {
	Level string
	File  string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Sheets: SheetsConfig{
			SpreadsheetID:  getEnv("GOOGLE_SHEET_ID", ""),
			CredentialsB64: getEnv("GOOGLE_SHEETS_CREDENTIALS_B64", ""),
		},
		Gemini: GeminiConfig{
			APIKey:          getEnv("GEMINI_API_KEY", ""),
			ModerationModel: getEnv("GEMINI_MODERATION_MODEL", "gemini-2.0-flash-lite"),
			SelectionModel:  getEnv("GEMINI_SELECTION_MODEL", "gemini-2.5-flash"),
		},
		OpenAI: OpenAIConfig{
			APIKey:         getEnv("OPENAI_API_KEY", ""),
			EnableFallback: getEnvBool("OPENAI_ENABLE_FALLBACK", true),
		},
		Instagram: InstagramConfig{
			PageID:    getEnv("INSTAGRAM_PAGE_ID", ""),
			AppID:     getEnv("FB_APP_ID", ""),
			AppSecret: getEnv("FB_APP_SECRET", ""),
		},
		Cloudinary: CloudinaryConfig{
			CloudName: getEnv("CLOUDINARY_CLOUD_NAME", ""),
			APIKey:    getEnv("CLOUDINARY_API_KEY", ""),
			APISecret: getEnv("CLOUDINARY_API_SECRET", ""),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", ""),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Postgres: PostgresConfig{
			Host:     getEnv("POSTGRES_HOST", ""),
			Port:     getEnvInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "confessions"),
			Password: getEnv("POSTGRES_PASSWORD", ""),
			Database: getEnv("POSTGRES_DB", "confessions"),
		},
		Render: RenderConfig{
			FontPath:  getEnv("FONT_PATH", "assets/NotoSansDevanagari-Regular.ttf"),
			OutputDir: getEnv("IMAGE_OUTPUT_DIR", "generated_images"),
			Watermark: getEnv("WATERMARK_TEXT", "IITK QUICK CONFESSIONS"),
			WrapMode:  getEnv("SQUARE_WRAP_MODE", "columns"),
		},
		Pipeline: PipelineConfig{
			MaxPerRun: getEnvInt("MAX_CONFESSIONS_PER_RUN", 4),
			Community: getEnv("COMMUNITY_NAME", "IIT Kanpur"),
			DryRun:    getEnvBool("DRY_RUN", false),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Sheets.SpreadsheetID == "" {
		return fmt.Errorf("GOOGLE_SHEET_ID is required")
	}
	if c.Sheets.CredentialsB64 == "" {
		return fmt.Errorf("GOOGLE_SHEETS_CREDENTIALS_B64 is required")
	}
	if c.Gemini.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}
	if !c.Pipeline.DryRun {
		if c.Instagram.PageID == "" {
			return fmt.Errorf("INSTAGRAM_PAGE_ID is required")
		}
		if c.Cloudinary.CloudName == "" || c.Cloudinary.APIKey == "" || c.Cloudinary.APISecret == "" {
			return fmt.Errorf("CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY and CLOUDINARY_API_SECRET are required")
		}
	}
	switch mode := strings.ToLower(c.Render.WrapMode); mode {
	case "columns", "pixels":
	default:
		return fmt.Errorf("SQUARE_WRAP_MODE must be \"columns\" or \"pixels\", got %q", c.Render.WrapMode)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
