package handler

import (
	"encoding/json"
	"sync"
	"time"

	"converso-go/internal/repository"
	"converso-go/internal/search"
	"converso-go/internal/service"
	"converso-go/pkg/log"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// SearchHandler 处理实时搜索的 WebSocket 连接。
// 每个按键把当前查询词发到服务端；服务端用防抖窗口收敛，
// 只有窗口到期时仍然存活的查询词才会触发一次列表查询。
type SearchHandler struct {
	companionService service.CompanionService
	debounce         time.Duration
	limit            int
}

// NewSearchHandler 创建一个新的 SearchHandler 实例。
func NewSearchHandler(companionService service.CompanionService, debounce time.Duration, limit int) *SearchHandler {
	if limit <= 0 {
		limit = 20
	}
	return &SearchHandler{
		companionService: companionService,
		debounce:         debounce,
		limit:            limit,
	}
}

// liveSearchRequest 是客户端每次按键发送的帧。
type liveSearchRequest struct {
	Subject string `json:"subject"`
	Topic   string `json:"topic"`
}

// Live 处理一个实时搜索 WebSocket 连接。
func (h *SearchHandler) Live(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WebSocket 升级失败", err)
		return
	}
	defer conn.Close()

	debouncer := search.NewDebouncer(h.debounce)
	// 连接关闭时取消仍未触发的回调
	defer debouncer.Stop()

	// 防抖回调从定时器协程写连接，加写锁保护
	var writeMu sync.Mutex

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			break
		}

		var req liveSearchRequest
		if err := json.Unmarshal(message, &req); err != nil {
			log.Warnf("无法解析搜索消息: %v, value: %s", err, string(message))
			continue
		}

		// 每次按键重置窗口；只有最后存活的查询会执行
		debouncer.Trigger(func() {
			companions, err := h.companionService.List(repository.CompanionFilters{
				Subject: req.Subject,
				Topic:   req.Topic,
			}, 1, h.limit)
			if err != nil {
				log.Errorf("[SearchHandler] 实时搜索失败, error: %v", err)
				return
			}

			payload, err := json.Marshal(map[string]interface{}{
				"type":    "results",
				"subject": req.Subject,
				"topic":   req.Topic,
				"data":    companions,
			})
			if err != nil {
				return
			}

			writeMu.Lock()
			_ = conn.WriteMessage(websocket.TextMessage, payload)
			writeMu.Unlock()
		})
	}
}
