package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"Okto-Agent/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// RedisConfig 描述 Redis 限流器的连接与配额参数。
type RedisConfig struct {
	Address  string
	Password string
	DB       int
	Key      string
	Limit    int
	Window   time.Duration
}

// RedisWindow 把固定窗口计数放到 Redis 中，让多实例部署共享同一份
// 供应商配额。计数键按窗口起点取整，由 Redis 的过期机制完成重置。
type RedisWindow struct {
	client *redis.Client
	key    string
	limit  int
	window time.Duration
	log    *slog.Logger
}

// NewRedisWindow 创建 Redis 限流器并验证连通性。
func NewRedisWindow(cfg RedisConfig) (*RedisWindow, error) {
	if cfg.Key == "" {
		cfg.Key = "oktoagent:ratelimit"
	}
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultLimit
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("连接 Redis 失败: %w", err)
	}

	return &RedisWindow{
		client: client,
		key:    cfg.Key,
		limit:  cfg.Limit,
		window: cfg.Window,
		log:    logger.Named("ratelimit"),
	}, nil
}

// Allow 以 INCR + EXPIRE 实现固定窗口计数。Redis 不可用时放行并记录
// 告警，准入控制不应成为单点故障。
func (l *RedisWindow) Allow() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	windowStart := time.Now().Truncate(l.window).Unix()
	key := fmt.Sprintf("%s:%d", l.key, windowStart)

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		l.log.Warn("Redis 限流计数失败，本次放行", slog.Any("error", err))
		return true
	}
	if count == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			l.log.Warn("设置限流键过期失败", slog.Any("error", err))
		}
	}
	return count <= int64(l.limit)
}

// Close 释放 Redis 连接。
func (l *RedisWindow) Close() error {
	return l.client.Close()
}

var _ Limiter = (*RedisWindow)(nil)
