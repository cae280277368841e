// Package repository 定义了与数据库进行数据交换的接口和实现。
package repository

import (
	"errors"
	"strings"

	"converso-go/internal/model"
	"converso-go/pkg/errs"

	"gorm.io/gorm"
)

// CompanionFilters 是伙伴列表查询的过滤条件，零值表示不过滤。
type CompanionFilters struct {
	// Subject 对学科做大小写不敏感的子串匹配。
	Subject string
	// Topic 对主题或名称做大小写不敏感的子串匹配（OR 组合）。
	Topic string
}

// CompanionRepository 接口定义了伙伴数据的持久化操作。
// Create 从不复查配额；配额检查由上层在事务内完成。
type CompanionRepository interface {
	Create(companion *model.Companion) error
	FindByID(id string) (*model.Companion, error)
	FindWithFilters(filters CompanionFilters, page, limit int) ([]model.Companion, error)
	FindByAuthor(author string) ([]model.Companion, error)
	CountByAuthor(author string) (int64, error)
	FindByIDs(ids []string) ([]model.Companion, error)
	// Transaction 在一个数据库事务内执行 fn，fn 拿到的是绑定该事务的仓库。
	Transaction(fn func(txRepo CompanionRepository) error) error
}

// companionRepository 是 CompanionRepository 接口的 GORM 实现。
type companionRepository struct {
	db *gorm.DB
}

// NewCompanionRepository 创建一个新的 CompanionRepository 实例。
func NewCompanionRepository(db *gorm.DB) CompanionRepository {
	return &companionRepository{db: db}
}

// Create 在数据库中创建一个新的伙伴记录。
func (r *companionRepository) Create(companion *model.Companion) error {
	if err := r.db.Create(companion).Error; err != nil {
		return errs.WrapDatastore("insert companion", err)
	}
	return nil
}

// FindByID 根据 ID 查找一个伙伴，未命中返回 errs.ErrNotFound。
func (r *companionRepository) FindByID(id string) (*model.Companion, error) {
	var companion model.Companion
	err := r.db.Where("id = ?", id).First(&companion).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrNotFound
		}
		return nil, errs.WrapDatastore("select companion", err)
	}
	return &companion, nil
}

// FindWithFilters 按过滤条件分页检索伙伴记录。
// 学科过滤匹配 subject 列；主题过滤匹配 topic 或 name 列；均为大小写不敏感子串。
// 分页是基于偏移量的：第 page 页（从 1 开始）对应行区间 [(page-1)*limit, (page-1)*limit+limit-1]。
func (r *companionRepository) FindWithFilters(filters CompanionFilters, page, limit int) ([]model.Companion, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}

	db := r.db.Model(&model.Companion{})
	if filters.Subject != "" {
		db = db.Where("LOWER(subject) LIKE ?", likePattern(filters.Subject))
	}
	if filters.Topic != "" {
		p := likePattern(filters.Topic)
		db = db.Where("LOWER(topic) LIKE ? OR LOWER(name) LIKE ?", p, p)
	}

	var companions []model.Companion
	err := db.Offset((page - 1) * limit).Limit(limit).Find(&companions).Error
	if err != nil {
		return nil, errs.WrapDatastore("select companions", err)
	}
	return companions, nil
}

// FindByAuthor 检索某个作者创建的全部伙伴，最新创建的排在最前。
func (r *companionRepository) FindByAuthor(author string) ([]model.Companion, error) {
	var companions []model.Companion
	err := r.db.Where("author = ?", author).
		Order("created_at DESC, id DESC").
		Find(&companions).Error
	if err != nil {
		return nil, errs.WrapDatastore("select companions by author", err)
	}
	return companions, nil
}

// CountByAuthor 统计某个作者当前拥有的伙伴数量，配额判定总是读实时值。
func (r *companionRepository) CountByAuthor(author string) (int64, error) {
	var count int64
	err := r.db.Model(&model.Companion{}).Where("author = ?", author).Count(&count).Error
	if err != nil {
		return 0, errs.WrapDatastore("count companions", err)
	}
	return count, nil
}

// FindByIDs 按 ID 集合检索伙伴，顺序不保证，调用方自行重排。
func (r *companionRepository) FindByIDs(ids []string) ([]model.Companion, error) {
	if len(ids) == 0 {
		return []model.Companion{}, nil
	}
	var companions []model.Companion
	err := r.db.Where("id IN ?", ids).Find(&companions).Error
	if err != nil {
		return nil, errs.WrapDatastore("select companions by ids", err)
	}
	return companions, nil
}

// Transaction 在一个数据库事务内执行 fn。
func (r *companionRepository) Transaction(fn func(txRepo CompanionRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&companionRepository{db: tx})
	})
}

// likePattern 将查询词转换为小写的 LIKE 模式。
func likePattern(q string) string {
	return "%" + strings.ToLower(q) + "%"
}
