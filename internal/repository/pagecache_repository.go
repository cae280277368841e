package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// PageCacheRepository 定义了页面渲染缓存的操作接口。
// 缓存以页面路径为键；收藏等变更通过 Invalidate 使对应路径的缓存失效，
// 保证后续读取能看到新状态。
type PageCacheRepository interface {
	Get(ctx context.Context, pageKey string) ([]byte, bool, error)
	Set(ctx context.Context, pageKey string, payload []byte, ttl time.Duration) error
	// Invalidate 使指定路径下所有缓存的页面渲染失效（含带查询参数的变体）。
	Invalidate(ctx context.Context, path string) error
}

type redisPageCacheRepository struct {
	redisClient *redis.Client
}

// NewPageCacheRepository 创建一个新的 PageCacheRepository 实例。
func NewPageCacheRepository(redisClient *redis.Client) PageCacheRepository {
	return &redisPageCacheRepository{redisClient: redisClient}
}

func pageCacheKey(pageKey string) string {
	return fmt.Sprintf("page:%s", pageKey)
}

// Get 从 Redis 获取指定页面的缓存渲染。
func (r *redisPageCacheRepository) Get(ctx context.Context, pageKey string) ([]byte, bool, error) {
	payload, err := r.redisClient.Get(ctx, pageCacheKey(pageKey)).Bytes()
	if err == redis.Nil {
		return nil, false, nil // 缓存未命中
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get cached page: %w", err)
	}
	return payload, true, nil
}

// Set 在 Redis 中写入指定页面的缓存渲染。
func (r *redisPageCacheRepository) Set(ctx context.Context, pageKey string, payload []byte, ttl time.Duration) error {
	err := r.redisClient.Set(ctx, pageCacheKey(pageKey), payload, ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to set cached page: %w", err)
	}
	return nil
}

// Invalidate 删除路径前缀下的全部缓存键。
func (r *redisPageCacheRepository) Invalidate(ctx context.Context, path string) error {
	keys, err := r.redisClient.Keys(ctx, pageCacheKey(path)+"*").Result()
	if err != nil {
		return fmt.Errorf("failed to scan cached page keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := r.redisClient.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached pages: %w", err)
	}
	return nil
}
