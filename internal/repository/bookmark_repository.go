package repository

import (
	"converso-go/internal/model"
	"converso-go/pkg/errs"

	"gorm.io/gorm"
)

// BookmarkRepository 接口定义了收藏关系的持久化操作。
type BookmarkRepository interface {
	Create(bookmark *model.Bookmark) error
	// DeleteByPair 按 (companion_id, user_id) 组合键删除；目标不存在时是空操作，不报错。
	DeleteByPair(companionID, userID string) error
	ExistsByPair(companionID, userID string) (bool, error)
	FindCompanionsByUser(userID string) ([]model.Companion, error)
}

// bookmarkRepository 是 BookmarkRepository 接口的 GORM 实现。
type bookmarkRepository struct {
	db *gorm.DB
}

// NewBookmarkRepository 创建一个新的 BookmarkRepository 实例。
func NewBookmarkRepository(db *gorm.DB) BookmarkRepository {
	return &bookmarkRepository{db: db}
}

// Create 插入一条 (companion, user) 收藏关系。
// 是否先做重复检查由上层按配置决定，此处直接插入。
func (r *bookmarkRepository) Create(bookmark *model.Bookmark) error {
	if err := r.db.Create(bookmark).Error; err != nil {
		return errs.WrapDatastore("insert bookmark", err)
	}
	return nil
}

// DeleteByPair 按组合键删除收藏关系。
func (r *bookmarkRepository) DeleteByPair(companionID, userID string) error {
	err := r.db.Where("companion_id = ? AND user_id = ?", companionID, userID).
		Delete(&model.Bookmark{}).Error
	if err != nil {
		return errs.WrapDatastore("delete bookmark", err)
	}
	return nil
}

// ExistsByPair 判断 (companion, user) 收藏关系是否已存在。
func (r *bookmarkRepository) ExistsByPair(companionID, userID string) (bool, error) {
	var count int64
	err := r.db.Model(&model.Bookmark{}).
		Where("companion_id = ? AND user_id = ?", companionID, userID).
		Count(&count).Error
	if err != nil {
		return false, errs.WrapDatastore("count bookmarks", err)
	}
	return count > 0, nil
}

// FindCompanionsByUser 检索某个用户收藏的伙伴，最近收藏的排最前。
// 与会话历史相同的连接展平形状。
func (r *bookmarkRepository) FindCompanionsByUser(userID string) ([]model.Companion, error) {
	var companions []model.Companion
	err := r.db.Table("bookmarks").
		Select("companions.*").
		Joins("JOIN companions ON companions.id = bookmarks.companion_id").
		Where("bookmarks.user_id = ?", userID).
		Order("bookmarks.created_at DESC, bookmarks.id DESC").
		Find(&companions).Error
	if err != nil {
		return nil, errs.WrapDatastore("select bookmarked companions", err)
	}
	return companions, nil
}
