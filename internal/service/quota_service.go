// Package service 包含了应用的业务逻辑层。
package service

import (
	"converso-go/internal/repository"
	"converso-go/pkg/token"
)

// 权益层级到创建上限的映射。
// pro 套餐不限量；特性开关授予 3 或 10；两者都没有时上限为 0，创建一律拒绝。
const (
	planPro        = "pro"
	featureLimit3  = "3_companion_limit"
	featureLimit10 = "10_companion_limit"
	limitUnlimited = int64(-1)
)

// CompanionPermissions 是配额预检的结果，供 UI 在提交前展示。
type CompanionPermissions struct {
	CanCreate bool  `json:"canCreate"`
	Unlimited bool  `json:"unlimited"`
	Limit     int64 `json:"limit"`
	Used      int64 `json:"used"`
}

// QuotaService 接口定义了伙伴创建配额的判定逻辑。
// 判定是权益快照的纯函数加一次实时计数，计数从不跨调用缓存。
type QuotaService interface {
	// Limit 根据权益快照推导创建上限；unlimited 为 true 时忽略 limit。
	Limit(claims *token.SessionClaims) (limit int64, unlimited bool)
	// Permissions 执行完整预检：推导上限并实时统计当前拥有量。
	Permissions(claims *token.SessionClaims) (*CompanionPermissions, error)
}

type quotaService struct {
	companionRepo repository.CompanionRepository
}

// NewQuotaService 创建一个新的 QuotaService 实例。
func NewQuotaService(companionRepo repository.CompanionRepository) QuotaService {
	return &quotaService{companionRepo: companionRepo}
}

// Limit 是权益快照的纯函数。
func (s *quotaService) Limit(claims *token.SessionClaims) (int64, bool) {
	if claims.HasPlan(planPro) {
		return limitUnlimited, true
	}
	if claims.HasFeature(featureLimit10) {
		return 10, false
	}
	if claims.HasFeature(featureLimit3) {
		return 3, false
	}
	return 0, false
}

// Permissions 推导上限并读取实时拥有量。
func (s *quotaService) Permissions(claims *token.SessionClaims) (*CompanionPermissions, error) {
	limit, unlimited := s.Limit(claims)

	used, err := s.companionRepo.CountByAuthor(claims.UserID)
	if err != nil {
		return nil, err
	}

	return &CompanionPermissions{
		CanCreate: unlimited || used < limit,
		Unlimited: unlimited,
		Limit:     limit,
		Used:      used,
	}, nil
}
