package service

import (
	"context"

	"converso-go/internal/model"
	"converso-go/internal/repository"
	"converso-go/pkg/errs"
	"converso-go/pkg/log"
)

// BookmarkService 接口定义了收藏相关的业务操作。
// 收藏变更成功后必须使收藏按钮所在页面的缓存渲染失效，
// 保证后续读取反映新状态。
type BookmarkService interface {
	Add(ctx context.Context, companionID, userID, path string) error
	Remove(ctx context.Context, companionID, userID, path string) error
	ListForUser(userID string) ([]model.Companion, error)
}

// bookmarkService 是 BookmarkService 接口的实现。
type bookmarkService struct {
	bookmarkRepo  repository.BookmarkRepository
	companionRepo repository.CompanionRepository
	pageCache     repository.PageCacheRepository
	enforceUnique bool
}

// NewBookmarkService 创建一个新的 BookmarkService 实例。
// enforceUnique 为 true 时重复收藏被幂等忽略，为 false 时直接插入。
func NewBookmarkService(bookmarkRepo repository.BookmarkRepository, companionRepo repository.CompanionRepository, pageCache repository.PageCacheRepository, enforceUnique bool) BookmarkService {
	return &bookmarkService{
		bookmarkRepo:  bookmarkRepo,
		companionRepo: companionRepo,
		pageCache:     pageCache,
		enforceUnique: enforceUnique,
	}
}

// Add 为 (companion, user) 添加收藏关系。
func (s *bookmarkService) Add(ctx context.Context, companionID, userID, path string) error {
	if userID == "" {
		return errs.ErrUnauthorized
	}

	// 被收藏的伙伴必须存在
	if _, err := s.companionRepo.FindByID(companionID); err != nil {
		return err
	}

	if s.enforceUnique {
		exists, err := s.bookmarkRepo.ExistsByPair(companionID, userID)
		if err != nil {
			return err
		}
		if exists {
			// 幂等：已收藏则不再插入，但仍然刷新页面缓存
			s.revalidate(ctx, path)
			return nil
		}
	}

	if err := s.bookmarkRepo.Create(&model.Bookmark{
		CompanionID: companionID,
		UserID:      userID,
	}); err != nil {
		return err
	}

	s.revalidate(ctx, path)
	return nil
}

// Remove 按组合键移除收藏关系；目标不存在时是空操作，不报错。
func (s *bookmarkService) Remove(ctx context.Context, companionID, userID, path string) error {
	if userID == "" {
		return errs.ErrUnauthorized
	}

	if err := s.bookmarkRepo.DeleteByPair(companionID, userID); err != nil {
		return err
	}

	s.revalidate(ctx, path)
	return nil
}

// ListForUser 返回用户收藏的伙伴列表，最近收藏的排最前。
func (s *bookmarkService) ListForUser(userID string) ([]model.Companion, error) {
	if userID == "" {
		return nil, errs.ErrUnauthorized
	}
	return s.bookmarkRepo.FindCompanionsByUser(userID)
}

// revalidate 使指定路径的缓存渲染失效。
// 变更本身已经落库，失效失败只记录日志，等 TTL 过期兜底。
func (s *bookmarkService) revalidate(ctx context.Context, path string) {
	if path == "" || s.pageCache == nil {
		return
	}
	if err := s.pageCache.Invalidate(ctx, path); err != nil {
		log.Warnf("刷新页面缓存失败: path=%s, err=%v", path, err)
	}
}
