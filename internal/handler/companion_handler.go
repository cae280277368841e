package handler

import (
	"net/http"
	"strconv"

	"converso-go/internal/repository"
	"converso-go/internal/service"
	"converso-go/pkg/log"
	"converso-go/pkg/token"

	"github.com/gin-gonic/gin"
)

// CompanionHandler 处理与伙伴相关的 API 请求。
type CompanionHandler struct {
	companionService service.CompanionService
	quotaService     service.QuotaService
}

// NewCompanionHandler 创建一个新的 CompanionHandler。
func NewCompanionHandler(companionService service.CompanionService, quotaService service.QuotaService) *CompanionHandler {
	return &CompanionHandler{
		companionService: companionService,
		quotaService:     quotaService,
	}
}

// Create 处理创建伙伴的请求。
func (h *CompanionHandler) Create(c *gin.Context) {
	claims := c.MustGet("claims").(*token.SessionClaims)

	var input service.CreateCompanionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "无效的请求载荷", "data": nil})
		return
	}

	companion, err := h.companionService.Create(input, claims)
	if err != nil {
		log.Warnf("[CompanionHandler] 创建伙伴失败, user: %s, error: %v", claims.UserID, err)
		respondError(c, err)
		return
	}

	respondOK(c, companion)
}

// List 处理伙伴列表查询，支持学科与主题过滤和偏移分页。
func (h *CompanionHandler) List(c *gin.Context) {
	filters := repository.CompanionFilters{
		Subject: c.Query("subject"),
		Topic:   c.Query("topic"),
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit <= 0 {
		limit = 10
	}

	companions, err := h.companionService.List(filters, page, limit)
	if err != nil {
		log.Errorf("[CompanionHandler] 查询伙伴列表失败, error: %v", err)
		respondError(c, err)
		return
	}

	respondOK(c, companions)
}

// GetByID 处理按 ID 获取单个伙伴的请求。
func (h *CompanionHandler) GetByID(c *gin.Context) {
	companion, err := h.companionService.GetByID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, companion)
}

// Popular 返回会话次数最多的伙伴排行。
func (h *CompanionHandler) Popular(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit <= 0 {
		limit = 10
	}

	companions, err := h.companionService.Popular(c.Request.Context(), limit)
	if err != nil {
		log.Errorf("[CompanionHandler] 查询热门伙伴失败, error: %v", err)
		respondError(c, err)
		return
	}

	respondOK(c, companions)
}

// Permissions 是创建配额的预检接口，供 UI 在提交前展示。
func (h *CompanionHandler) Permissions(c *gin.Context) {
	claims := c.MustGet("claims").(*token.SessionClaims)

	permissions, err := h.quotaService.Permissions(claims)
	if err != nil {
		log.Errorf("[CompanionHandler] 配额预检失败, user: %s, error: %v", claims.UserID, err)
		respondError(c, err)
		return
	}

	respondOK(c, permissions)
}

// ListMine 返回当前用户创建的全部伙伴，最新的排最前。
func (h *CompanionHandler) ListMine(c *gin.Context) {
	claims := c.MustGet("claims").(*token.SessionClaims)

	companions, err := h.companionService.ListByAuthor(claims.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, companions)
}
