package repository

import (
	"errors"

	"converso-go/internal/model"
	"converso-go/pkg/errs"

	"gorm.io/gorm"
)

// SessionHistoryRepository 接口定义了会话历史的持久化操作。
// 历史是只追加的：每次完成会话插入一行，无去重也无幂等，从不删除。
type SessionHistoryRepository interface {
	Create(entry *model.SessionHistory) error
	FindByID(id uint) (*model.SessionHistory, error)
	FindRecentCompanions(limit int) ([]model.Companion, error)
	FindCompanionsByUser(userID string, limit int) ([]model.Companion, error)
}

// sessionHistoryRepository 是 SessionHistoryRepository 接口的 GORM 实现。
type sessionHistoryRepository struct {
	db *gorm.DB
}

// NewSessionHistoryRepository 创建一个新的 SessionHistoryRepository 实例。
func NewSessionHistoryRepository(db *gorm.DB) SessionHistoryRepository {
	return &sessionHistoryRepository{db: db}
}

// Create 追加一条会话历史记录。调用两次就产生两行，每行代表一次完成的会话。
func (r *sessionHistoryRepository) Create(entry *model.SessionHistory) error {
	if err := r.db.Create(entry).Error; err != nil {
		return errs.WrapDatastore("insert session history", err)
	}
	return nil
}

// FindByID 根据 ID 查找一条历史记录，未命中返回 errs.ErrNotFound。
func (r *sessionHistoryRepository) FindByID(id uint) (*model.SessionHistory, error) {
	var entry model.SessionHistory
	err := r.db.First(&entry, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrNotFound
		}
		return nil, errs.WrapDatastore("select session history", err)
	}
	return &entry, nil
}

// FindRecentCompanions 检索全局最近会话对应的伙伴，最新会话排最前。
// 连接历史行与伙伴并把结果展平成伙伴列表；同一伙伴被多次使用时会重复出现。
func (r *sessionHistoryRepository) FindRecentCompanions(limit int) ([]model.Companion, error) {
	var companions []model.Companion
	err := r.db.Table("session_history").
		Select("companions.*").
		Joins("JOIN companions ON companions.id = session_history.companion_id").
		Order("session_history.created_at DESC, session_history.id DESC").
		Limit(limit).
		Find(&companions).Error
	if err != nil {
		return nil, errs.WrapDatastore("select recent sessions", err)
	}
	return companions, nil
}

// FindCompanionsByUser 与 FindRecentCompanions 相同的形状，但只看一个用户的历史。
func (r *sessionHistoryRepository) FindCompanionsByUser(userID string, limit int) ([]model.Companion, error) {
	var companions []model.Companion
	err := r.db.Table("session_history").
		Select("companions.*").
		Joins("JOIN companions ON companions.id = session_history.companion_id").
		Where("session_history.user_id = ?", userID).
		Order("session_history.created_at DESC, session_history.id DESC").
		Limit(limit).
		Find(&companions).Error
	if err != nil {
		return nil, errs.WrapDatastore("select user sessions", err)
	}
	return companions, nil
}
