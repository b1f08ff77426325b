package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iitkqc/confession-bot-go/internal/constants"
	"github.com/iitkqc/confession-bot-go/internal/domain"
	"github.com/iitkqc/confession-bot-go/pkg/errors"
)

// CacheService guards against double-posting. The sheet's status column is
// the source of truth; Redis is the fast secondary check that survives a
// crash between publish and mark.
type CacheService struct {
	client *redis.Client
	logger *zap.Logger
}

type CacheConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func NewCacheService(cfg CacheConfig, logger *zap.Logger) (*CacheService, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.NewCacheError("failed to connect to Redis", "ping", "", err)
	}

	logger.Info("Redis connected",
		zap.String("addr", fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)),
		zap.Int("db", cfg.DB),
	)

	return &CacheService{
		client: client,
		logger: logger,
	}, nil
}

// IsProcessed reports whether a sheet row was already handled by any run.
func (c *CacheService) IsProcessed(ctx context.Context, rowNum int) (bool, error) {
	exists, err := c.client.SIsMember(ctx, constants.CacheKeys.ProcessedRows, strconv.Itoa(rowNum)).Result()
	if err != nil {
		c.logger.Error("Cache sismember failed", zap.Int("row", rowNum), zap.Error(err))
		return false, errors.NewCacheError("sismember failed", "sismember", constants.CacheKeys.ProcessedRows, err)
	}
	return exists, nil
}

// MarkProcessed records handled rows. Written immediately after the publish
// decision, before the slower sheet write.
func (c *CacheService) MarkProcessed(ctx context.Context, rowNums ...int) error {
	if len(rowNums) == 0 {
		return nil
	}

	members := make([]any, len(rowNums))
	for i, row := range rowNums {
		members[i] = strconv.Itoa(row)
	}

	if err := c.client.SAdd(ctx, constants.CacheKeys.ProcessedRows, members...).Err(); err != nil {
		c.logger.Error("Cache sadd failed", zap.Int("count", len(rowNums)), zap.Error(err))
		return errors.NewCacheError("sadd failed", "sadd", constants.CacheKeys.ProcessedRows, err)
	}
	return nil
}

// SaveReceipt keeps the publish outcome for a row. Receipts are diagnostic
// only and expire after 30 days.
func (c *CacheService) SaveReceipt(ctx context.Context, receipt domain.Receipt) error {
	key := constants.CacheKeys.ReceiptPrefix + strconv.Itoa(receipt.RowNum)

	data, err := json.Marshal(receipt)
	if err != nil {
		return errors.NewCacheError("marshal failed", "set", key, err)
	}

	if err := c.client.Set(ctx, key, data, 30*24*time.Hour).Err(); err != nil {
		c.logger.Error("Cache set failed", zap.String("key", key), zap.Error(err))
		return errors.NewCacheError("set failed", "set", key, err)
	}
	return nil
}

// Receipt loads a stored publish outcome. Missing keys return (nil, nil).
func (c *CacheService) Receipt(ctx context.Context, rowNum int) (*domain.Receipt, error) {
	key := constants.CacheKeys.ReceiptPrefix + strconv.Itoa(rowNum)

	value, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		c.logger.Error("Cache get failed", zap.String("key", key), zap.Error(err))
		return nil, errors.NewCacheError("get failed", "get", key, err)
	}

	var receipt domain.Receipt
	if err := json.Unmarshal([]byte(value), &receipt); err != nil {
		return nil, errors.NewCacheError("unmarshal failed", "get", key, err)
	}
	return &receipt, nil
}

func (c *CacheService) Close() error {
	if err := c.client.Close(); err != nil {
		c.logger.Error("Failed to close Redis connection", zap.Error(err))
		return err
	}
	c.logger.Info("Redis disconnected")
	return nil
}

func (c *CacheService) IsConnected(ctx context.Context) bool {
	return c.client.Ping(ctx).Err() == nil
}
