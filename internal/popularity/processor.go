// Package popularity 消费会话完成事件并维护伙伴热度排行。
package popularity

import (
	"context"

	"converso-go/internal/repository"
	"converso-go/pkg/events"
	"converso-go/pkg/log"
)

// Processor 处理会话完成事件：累计伙伴热度并刷新受影响页面的缓存。
type Processor struct {
	popularityRepo repository.PopularityRepository
	pageCache      repository.PageCacheRepository
}

// NewProcessor 创建一个新的 Processor 实例。
func NewProcessor(popularityRepo repository.PopularityRepository, pageCache repository.PageCacheRepository) *Processor {
	return &Processor{
		popularityRepo: popularityRepo,
		pageCache:      pageCache,
	}
}

// Process 实现 kafka.EventProcessor。
// 热度累计失败返回错误交给消费者重试；缓存刷新失败只记录日志。
func (p *Processor) Process(ctx context.Context, event events.SessionCompletedEvent) error {
	if err := p.popularityRepo.IncrScore(ctx, event.CompanionID); err != nil {
		return err
	}

	// 热度变化影响伙伴列表页的缓存渲染
	if err := p.pageCache.Invalidate(ctx, "/api/v1/companions"); err != nil {
		log.Warnf("刷新伙伴列表缓存失败: %v", err)
	}

	return nil
}
