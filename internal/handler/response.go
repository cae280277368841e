// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"errors"
	"net/http"

	"converso-go/pkg/errs"

	"github.com/gin-gonic/gin"
)

// respondOK 以统一信封返回成功结果。
func respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data":    data,
	})
}

// respondError 把业务错误映射到 HTTP 状态码。
// 未认证 401、校验失败 400、未找到 404、超出配额 403，其余按数据存储错误 500。
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "服务内部错误"

	switch {
	case errors.Is(err, errs.ErrUnauthorized):
		status = http.StatusUnauthorized
		message = "请求未包含有效身份"
	case errors.Is(err, errs.ErrNotFound):
		status = http.StatusNotFound
		message = "记录不存在"
	case errors.Is(err, errs.ErrQuotaExceeded):
		status = http.StatusForbidden
		message = "已达到当前套餐的伙伴创建上限"
	case errs.IsValidation(err):
		status = http.StatusBadRequest
		message = err.Error()
	}

	c.JSON(status, gin.H{
		"code":    status,
		"message": message,
		"data":    nil,
	})
}
