package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/kapu/poketeam-kakao-bot/internal/util"
	"github.com/kapu/poketeam-kakao-bot/pkg/errors"
)

// CacheService wraps a go-redis client with JSON values and typed errors.
type CacheService struct {
	client redis.UniversalClient
	logger *zap.Logger
}

type CacheConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func NewCacheService(cfg CacheConfig, logger *zap.Logger) (*CacheService, error) {
	logger = util.LoggerOrNop(logger)
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
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
		_ = client.Close()
		return nil, errors.NewCacheError("failed to connect to Redis", "ping", "", err)
	}

	logger.Info("Redis connected",
		zap.String("addr", addr),
		zap.Int("db", cfg.DB),
	)

	return NewCacheServiceWithClient(client, logger), nil
}

// NewCacheServiceWithClient wraps an existing client without pinging it.
func NewCacheServiceWithClient(client redis.UniversalClient, logger *zap.Logger) *CacheService {
	return &CacheService{
		client: client,
		logger: util.LoggerOrNop(logger),
	}
}

// Get decodes the JSON value at key into dest. A missing key leaves dest
// untouched and reports found=false.
func (c *CacheService) Get(ctx context.Context, key string, dest any) (bool, error) {
	value, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		c.logger.Error("Cache get failed", zap.String("key", key), zap.Error(err))
		return false, errors.NewCacheError("get failed", "get", key, err)
	}

	if dest != nil {
		if err := json.Unmarshal([]byte(value), dest); err != nil {
			c.logger.Error("Cache unmarshal failed", zap.String("key", key), zap.Error(err))
			return false, errors.NewCacheError("unmarshal failed", "get", key, err)
		}
	}

	return true, nil
}

func (c *CacheService) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	jsonData, err := json.Marshal(value)
	if err != nil {
		return errors.NewCacheError("marshal failed", "set", key, err)
	}

	if ttl < 0 {
		ttl = 0
	}

	if err := c.client.Set(ctx, key, jsonData, ttl).Err(); err != nil {
		c.logger.Error("Cache set failed", zap.String("key", key), zap.Error(err))
		return errors.NewCacheError("set failed", "set", key, err)
	}

	return nil
}

func (c *CacheService) Del(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.logger.Error("Cache delete failed", zap.String("key", key), zap.Error(err))
		return errors.NewCacheError("delete failed", "del", key, err)
	}
	return nil
}

func (c *CacheService) SAdd(ctx context.Context, key string, members []string) (int64, error) {
	if len(members) == 0 {
		return 0, nil
	}

	added, err := c.client.SAdd(ctx, key, toArgs(members)...).Result()
	if err != nil {
		c.logger.Error("Cache sadd failed", zap.String("key", key), zap.Error(err))
		return 0, errors.NewCacheError("sadd failed", "sadd", key, err)
	}

	return added, nil
}

func (c *CacheService) SRem(ctx context.Context, key string, members []string) (int64, error) {
	if len(members) == 0 {
		return 0, nil
	}

	removed, err := c.client.SRem(ctx, key, toArgs(members)...).Result()
	if err != nil {
		c.logger.Error("Cache srem failed", zap.String("key", key), zap.Error(err))
		return 0, errors.NewCacheError("srem failed", "srem", key, err)
	}

	return removed, nil
}

func (c *CacheService) SMembers(ctx context.Context, key string) ([]string, error) {
	members, err := c.client.SMembers(ctx, key).Result()
	if err != nil {
		c.logger.Error("Cache smembers failed", zap.String("key", key), zap.Error(err))
		return []string{}, errors.NewCacheError("smembers failed", "smembers", key, err)
	}
	return members, nil
}

func (c *CacheService) SIsMember(ctx context.Context, key, member string) (bool, error) {
	exists, err := c.client.SIsMember(ctx, key, member).Result()
	if err != nil {
		c.logger.Error("Cache sismember failed", zap.String("key", key), zap.Error(err))
		return false, errors.NewCacheError("sismember failed", "sismember", key, err)
	}
	return exists, nil
}

// PushCapped prepends value to the list at key after removing earlier copies
// and trims the list to limit entries, all in one transaction.
func (c *CacheService) PushCapped(ctx context.Context, key, value string, limit int) error {
	if limit <= 0 {
		return errors.NewValidationError("limit must be positive", "limit", limit)
	}

	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LRem(ctx, key, 0, value)
		pipe.LPush(ctx, key, value)
		pipe.LTrim(ctx, key, 0, int64(limit-1))
		return nil
	})
	if err != nil {
		c.logger.Error("Cache push capped failed", zap.String("key", key), zap.Error(err))
		return errors.NewCacheError("push capped failed", "lpush", key, err)
	}
	return nil
}

func (c *CacheService) LRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	values, err := c.client.LRange(ctx, key, start, stop).Result()
	if err != nil {
		c.logger.Error("Cache lrange failed", zap.String("key", key), zap.Error(err))
		return []string{}, errors.NewCacheError("lrange failed", "lrange", key, err)
	}
	return values, nil
}

func (c *CacheService) Close() error {
	if err := c.client.Close(); err != nil {
		c.logger.Error("Failed to close Redis connection", zap.Error(err))
		return err
	}
	c.logger.Info("Redis disconnected")
	return nil
}

func toArgs(members []string) []any {
	args := make([]any, len(members))
	for i, m := range members {
		args[i] = m
	}
	return args
}
