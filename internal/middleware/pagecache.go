package middleware

import (
	"bytes"
	"net/http"
	"time"

	"converso-go/internal/repository"
	"converso-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// cacheBodyWriter 捕获响应体以便在请求成功后写入缓存。
type cacheBodyWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *cacheBodyWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// PageCache 创建一个 Gin 中间件，把 GET 页面的渲染结果缓存在 Redis 中。
// 缓存键是路径加查询串；命中时直接返回缓存载荷，
// 未命中时放行并在响应成功后回填。收藏等变更通过
// PageCacheRepository.Invalidate 按路径前缀使缓存失效。
func PageCache(pageCache repository.PageCacheRepository, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		pageKey := c.Request.URL.Path
		if c.Request.URL.RawQuery != "" {
			pageKey += "?" + c.Request.URL.RawQuery
		}

		payload, hit, err := pageCache.Get(c.Request.Context(), pageKey)
		if err != nil {
			// 缓存不可用时退化为直连，不影响读取路径
			log.Warnf("读取页面缓存失败: key=%s, err=%v", pageKey, err)
		}
		if hit {
			c.Data(http.StatusOK, "application/json; charset=utf-8", payload)
			c.Abort()
			return
		}

		cw := &cacheBodyWriter{body: bytes.NewBufferString(""), ResponseWriter: c.Writer}
		c.Writer = cw

		c.Next()

		if c.Writer.Status() == http.StatusOK {
			if err := pageCache.Set(c.Request.Context(), pageKey, cw.body.Bytes(), ttl); err != nil {
				log.Warnf("写入页面缓存失败: key=%s, err=%v", pageKey, err)
			}
		}
	}
}
