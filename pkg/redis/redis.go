package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/6610545011/cn331-project/config"
)

// Client Redis 客户端封装
// 用于班次占用缓存、Token 黑名单与接口限流
type Client struct {
	rdb    *goredis.Client
	logger *zap.Logger
}

// NewClient 创建 Redis 连接并执行 Ping 健康检查
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("Redis 连接失败: %w", err)
	}

	logger.Info("Redis 连接成功", zap.String("addr", cfg.Addr))

	return &Client{rdb: rdb, logger: logger}, nil
}

// ── 班次占用缓存 ──
//
// 键中包含 schedule_version，上课时间一旦写入、版本号自增，
// 旧版本的缓存键不再被读取，靠 TTL 自然过期，无需显式失效。

const (
	occupancyPrefix = "planner:occupancy:"
	occupancyTTL    = 12 * time.Hour
)

func occupancyKey(sectionID string, version int) string {
	return fmt.Sprintf("%s%s:%d", occupancyPrefix, sectionID, version)
}

// GetOccupancy 读取班次占用缓存（day → 槽位下标列表）
// 任何 Redis 或反序列化错误都按缓存未命中处理
func (c *Client) GetOccupancy(ctx context.Context, sectionID string, version int) (map[int][]int, bool) {
	raw, err := c.rdb.Get(ctx, occupancyKey(sectionID, version)).Bytes()
	if err != nil {
		return nil, false
	}
	var occ map[int][]int
	if err := json.Unmarshal(raw, &occ); err != nil {
		c.logger.Warn("占用缓存反序列化失败", zap.String("section_id", sectionID), zap.Error(err))
		return nil, false
	}
	return occ, true
}

// SetOccupancy 写入班次占用缓存
func (c *Client) SetOccupancy(ctx context.Context, sectionID string, version int, occ map[int][]int) {
	raw, err := json.Marshal(occ)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, occupancyKey(sectionID, version), raw, occupancyTTL).Err(); err != nil {
		c.logger.Warn("占用缓存写入失败", zap.String("section_id", sectionID), zap.Error(err))
	}
}

// ── Token 黑名单 ──

const blacklistPrefix = "token:blacklist:"

// BlacklistToken 将 JWT ID 加入黑名单，TTL 与 Token 剩余有效期一致
func (c *Client) BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil // Token 已过期，无需加入黑名单
	}
	return c.rdb.Set(ctx, blacklistPrefix+jti, "1", ttl).Err()
}

// IsBlacklisted 检查 JWT ID 是否在黑名单中
func (c *Client) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	n, err := c.rdb.Exists(ctx, blacklistPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ── 接口限流 ──

// CheckRateLimit 固定窗口计数限流
// 返回 true 表示放行；窗口内计数超过 limit 时返回 false
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	n, err := c.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if n == 1 {
		if err := c.rdb.Expire(ctx, key, window).Err(); err != nil {
			return false, err
		}
	}
	return n <= int64(limit), nil
}

// Close 关闭 Redis 连接
func (c *Client) Close() error {
	return c.rdb.Close()
}
