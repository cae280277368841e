package handler

import (
	"net/http"

	"converso-go/internal/service"
	"converso-go/pkg/log"
	"converso-go/pkg/token"

	"github.com/gin-gonic/gin"
)

// BookmarkHandler 处理与收藏相关的 API 请求。
type BookmarkHandler struct {
	bookmarkService service.BookmarkService
}

// NewBookmarkHandler 创建一个新的 BookmarkHandler。
func NewBookmarkHandler(bookmarkService service.BookmarkService) *BookmarkHandler {
	return &BookmarkHandler{bookmarkService: bookmarkService}
}

// bookmarkRequest 携带收藏按钮所在页面的路径，变更后按它刷新缓存。
type bookmarkRequest struct {
	Path string `json:"path" binding:"required"`
}

// Add 为当前用户收藏指定伙伴。
func (h *BookmarkHandler) Add(c *gin.Context) {
	claims := c.MustGet("claims").(*token.SessionClaims)
	companionID := c.Param("id")

	var req bookmarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "无效的请求载荷", "data": nil})
		return
	}

	if err := h.bookmarkService.Add(c.Request.Context(), companionID, claims.UserID, req.Path); err != nil {
		log.Warnf("[BookmarkHandler] 添加收藏失败, user: %s, companion: %s, error: %v", claims.UserID, companionID, err)
		respondError(c, err)
		return
	}

	respondOK(c, nil)
}

// Remove 移除当前用户对指定伙伴的收藏；目标不存在时也返回成功。
func (h *BookmarkHandler) Remove(c *gin.Context) {
	claims := c.MustGet("claims").(*token.SessionClaims)
	companionID := c.Param("id")

	var req bookmarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "无效的请求载荷", "data": nil})
		return
	}

	if err := h.bookmarkService.Remove(c.Request.Context(), companionID, claims.UserID, req.Path); err != nil {
		log.Warnf("[BookmarkHandler] 移除收藏失败, user: %s, companion: %s, error: %v", claims.UserID, companionID, err)
		respondError(c, err)
		return
	}

	respondOK(c, nil)
}

// ListMine 返回当前用户收藏的伙伴列表，最近收藏的排最前。
func (h *BookmarkHandler) ListMine(c *gin.Context) {
	claims := c.MustGet("claims").(*token.SessionClaims)

	companions, err := h.bookmarkService.ListForUser(claims.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, companions)
}
