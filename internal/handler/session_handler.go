package handler

import (
	"net/http"
	"strconv"

	"converso-go/internal/service"
	"converso-go/pkg/log"
	"converso-go/pkg/token"

	"github.com/gin-gonic/gin"
)

// SessionHandler 处理与会话历史相关的 API 请求。
type SessionHandler struct {
	sessionService service.SessionService
}

// NewSessionHandler 创建一个新的 SessionHandler。
func NewSessionHandler(sessionService service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// appendRequest 是追加会话历史的请求载荷。
type appendRequest struct {
	CompanionID string `json:"companionId" binding:"required"`
}

// Append 记录一次完成的会话。每次调用追加一行，无去重。
func (h *SessionHandler) Append(c *gin.Context) {
	claims := c.MustGet("claims").(*token.SessionClaims)

	var req appendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "无效的请求载荷", "data": nil})
		return
	}

	entry, err := h.sessionService.Append(req.CompanionID, claims.UserID)
	if err != nil {
		log.Warnf("[SessionHandler] 追加会话历史失败, user: %s, error: %v", claims.UserID, err)
		respondError(c, err)
		return
	}

	respondOK(c, entry)
}

// RecentGlobal 返回全局最近会话对应的伙伴列表。
func (h *SessionHandler) RecentGlobal(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit <= 0 {
		limit = 10
	}

	companions, err := h.sessionService.ListRecentGlobal(limit)
	if err != nil {
		log.Errorf("[SessionHandler] 查询最近会话失败, error: %v", err)
		respondError(c, err)
		return
	}

	respondOK(c, companions)
}

// ListMine 返回当前用户最近会话对应的伙伴列表。
func (h *SessionHandler) ListMine(c *gin.Context) {
	claims := c.MustGet("claims").(*token.SessionClaims)

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit <= 0 {
		limit = 10
	}

	companions, err := h.sessionService.ListByUser(claims.UserID, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, companions)
}

// TranscriptURL 为会话拥有者生成转录文本的预签名下载地址。
func (h *SessionHandler) TranscriptURL(c *gin.Context) {
	claims := c.MustGet("claims").(*token.SessionClaims)

	sessionID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "无效的会话 ID", "data": nil})
		return
	}

	url, err := h.sessionService.TranscriptURL(uint(sessionID), claims.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{"url": url})
}
