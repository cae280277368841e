package repository

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// popularityKey 是记录各伙伴会话次数的有序集合键。
const popularityKey = "companions:popular"

// PopularityRepository 定义了伙伴热度排行的操作接口。
// 热度按完成的会话次数累计，存储在 Redis 有序集合中。
type PopularityRepository interface {
	IncrScore(ctx context.Context, companionID string) error
	TopIDs(ctx context.Context, limit int) ([]string, error)
}

type redisPopularityRepository struct {
	redisClient *redis.Client
}

// NewPopularityRepository 创建一个新的 PopularityRepository 实例。
func NewPopularityRepository(redisClient *redis.Client) PopularityRepository {
	return &redisPopularityRepository{redisClient: redisClient}
}

// IncrScore 将指定伙伴的会话计数加一。
func (r *redisPopularityRepository) IncrScore(ctx context.Context, companionID string) error {
	if err := r.redisClient.ZIncrBy(ctx, popularityKey, 1, companionID).Err(); err != nil {
		return fmt.Errorf("failed to increment popularity score: %w", err)
	}
	return nil
}

// TopIDs 返回会话次数最多的前 limit 个伙伴 ID，按热度降序。
func (r *redisPopularityRepository) TopIDs(ctx context.Context, limit int) ([]string, error) {
	ids, err := r.redisClient.ZRevRange(ctx, popularityKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read popularity ranking: %w", err)
	}
	return ids, nil
}
