package archive

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/iitkqc/confession-bot-go/internal/domain"
)

// Service keeps a durable archive of publish receipts. The sheet only holds
// a 0/1 status per row; the archive remembers which post a row became.
type Service struct {
	db     *sql.DB
	logger *zap.Logger
}

type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

func NewService(cfg Config, logger *zap.Logger) (*Service, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	logger.Info("PostgreSQL connected",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Database),
	)

	svc := &Service{
		db:     db,
		logger: logger,
	}
	if err := svc.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return svc, nil
}

func (s *Service) ensureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS post_receipts (
			row_num       INTEGER PRIMARY KEY,
			display_count INTEGER NOT NULL,
			media_id      TEXT NOT NULL,
			slide_count   INTEGER NOT NULL,
			caption       TEXT NOT NULL DEFAULT '',
			posted_at     TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("ensure post_receipts schema: %w", err)
	}
	return nil
}

// SaveReceipt records a published post. Re-running for the same row
// overwrites, so a retried run stays idempotent.
func (s *Service) SaveReceipt(ctx context.Context, r domain.Receipt) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO post_receipts (row_num, display_count, media_id, slide_count, caption, posted_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (row_num) DO UPDATE SET
			display_count = EXCLUDED.display_count,
			media_id      = EXCLUDED.media_id,
			slide_count   = EXCLUDED.slide_count,
			caption       = EXCLUDED.caption,
			posted_at     = EXCLUDED.posted_at`,
		r.RowNum, r.DisplayCount, r.MediaID, r.SlideCount, r.Caption, r.PostedAt)
	if err != nil {
		return fmt.Errorf("save receipt for row %d: %w", r.RowNum, err)
	}

	s.logger.Info("Receipt archived",
		zap.Int("row", r.RowNum),
		zap.String("media_id", r.MediaID),
	)
	return nil
}

// Receipt fetches the archived outcome for a row, nil when absent.
func (s *Service) Receipt(ctx context.Context, rowNum int) (*domain.Receipt, error) {
	var r domain.Receipt
	err := s.db.QueryRowContext(ctx, `
		SELECT row_num, display_count, media_id, slide_count, caption, posted_at
		FROM post_receipts WHERE row_num = $1`, rowNum).
		Scan(&r.RowNum, &r.DisplayCount, &r.MediaID, &r.SlideCount, &r.Caption, &r.PostedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load receipt for row %d: %w", rowNum, err)
	}
	return &r, nil
}

func (s *Service) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Service) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
