package service

import (
	"context"

	"converso-go/internal/model"
	"converso-go/internal/repository"
	"converso-go/pkg/errs"
	"converso-go/pkg/token"

	"github.com/google/uuid"
)

// CreateCompanionInput 是创建伙伴的表单载荷。
type CreateCompanionInput struct {
	Name     string `json:"name"`
	Subject  string `json:"subject"`
	Topic    string `json:"topic"`
	Voice    string `json:"voice"`
	Style    string `json:"style"`
	Duration int    `json:"duration"`
}

// CompanionService 接口定义了所有与伙伴相关的业务操作。
type CompanionService interface {
	Create(input CreateCompanionInput, claims *token.SessionClaims) (*model.Companion, error)
	List(filters repository.CompanionFilters, page, limit int) ([]model.Companion, error)
	GetByID(id string) (*model.Companion, error)
	ListByAuthor(userID string) ([]model.Companion, error)
	Popular(ctx context.Context, limit int) ([]model.Companion, error)
}

// companionService 是 CompanionService 接口的实现。
type companionService struct {
	companionRepo  repository.CompanionRepository
	popularityRepo repository.PopularityRepository
	quotaService   QuotaService
}

// NewCompanionService 创建一个新的 CompanionService 实例。
func NewCompanionService(companionRepo repository.CompanionRepository, popularityRepo repository.PopularityRepository, quotaService QuotaService) CompanionService {
	return &companionService{
		companionRepo:  companionRepo,
		popularityRepo: popularityRepo,
		quotaService:   quotaService,
	}
}

// validateCreate 校验创建载荷，所有字段必填且取值合法。
func validateCreate(input CreateCompanionInput) error {
	if input.Name == "" {
		return errs.NewValidation("name", "伙伴名称不能为空")
	}
	if input.Subject == "" {
		return errs.NewValidation("subject", "学科不能为空")
	}
	if !model.IsValidSubject(input.Subject) {
		return errs.NewValidation("subject", "学科不在允许的集合内")
	}
	if input.Topic == "" {
		return errs.NewValidation("topic", "主题不能为空")
	}
	if !model.IsValidVoice(input.Voice) {
		return errs.NewValidation("voice", "语音必须为 male 或 female")
	}
	if !model.IsValidStyle(input.Style) {
		return errs.NewValidation("style", "风格必须为 formal 或 casual")
	}
	if input.Duration <= 0 {
		return errs.NewValidation("duration", "会话时长必须为正整数")
	}
	return nil
}

// Create 处理伙伴创建的业务逻辑。
// 1. 无可解析身份立即拒绝，不产生任何副作用；
// 2. 校验载荷；
// 3. 在同一事务内完成配额计数与插入，避免并发创建穿透配额；
// 4. 作者取自调用者，创建后不可变更。
func (s *companionService) Create(input CreateCompanionInput, claims *token.SessionClaims) (*model.Companion, error) {
	if claims == nil || claims.UserID == "" {
		return nil, errs.ErrUnauthorized
	}

	if err := validateCreate(input); err != nil {
		return nil, err
	}

	limit, unlimited := s.quotaService.Limit(claims)

	companion := &model.Companion{
		ID:       uuid.NewString(),
		Name:     input.Name,
		Subject:  input.Subject,
		Topic:    input.Topic,
		Voice:    input.Voice,
		Style:    input.Style,
		Duration: input.Duration,
		Author:   claims.UserID,
	}

	err := s.companionRepo.Transaction(func(txRepo repository.CompanionRepository) error {
		if !unlimited {
			used, err := txRepo.CountByAuthor(claims.UserID)
			if err != nil {
				return err
			}
			if used >= limit {
				return errs.ErrQuotaExceeded
			}
		}
		return txRepo.Create(companion)
	})
	if err != nil {
		return nil, err
	}

	return companion, nil
}

// List 按过滤条件分页检索伙伴。
func (s *companionService) List(filters repository.CompanionFilters, page, limit int) ([]model.Companion, error) {
	return s.companionRepo.FindWithFilters(filters, page, limit)
}

// GetByID 根据 ID 获取单个伙伴。
func (s *companionService) GetByID(id string) (*model.Companion, error) {
	return s.companionRepo.FindByID(id)
}

// ListByAuthor 获取某个用户创建的全部伙伴，最新的排最前。
func (s *companionService) ListByAuthor(userID string) ([]model.Companion, error) {
	return s.companionRepo.FindByAuthor(userID)
}

// Popular 返回会话次数最多的伙伴，按热度降序。
// 排行来自 Redis 有序集合，再回数据库取完整记录并按排行重排。
func (s *companionService) Popular(ctx context.Context, limit int) ([]model.Companion, error) {
	if limit <= 0 {
		limit = 10
	}
	ids, err := s.popularityRepo.TopIDs(ctx, limit)
	if err != nil {
		return nil, err
	}

	companions, err := s.companionRepo.FindByIDs(ids)
	if err != nil {
		return nil, err
	}

	// 按排行顺序重排；排行中已被删除的 ID 直接跳过
	byID := make(map[string]model.Companion, len(companions))
	for _, c := range companions {
		byID[c.ID] = c
	}
	ordered := make([]model.Companion, 0, len(ids))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			ordered = append(ordered, c)
		}
	}
	return ordered, nil
}
