package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"converso-go/internal/model"
	"converso-go/internal/service"
	"converso-go/internal/voice"
	"converso-go/pkg/log"
	"converso-go/pkg/token"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // 允许所有来源
	},
}

// VoiceHandler 负责处理语音会话的 WebSocket 连接。
// 客户端侧的语音 SDK 把生命周期事件经由此连接转发到服务端，
// 服务端用四态状态机跟踪会话，并在结束时记录历史与归档转录。
type VoiceHandler struct {
	sessionService   service.SessionService
	companionService service.CompanionService
	jwtManager       *token.JWTManager
}

// NewVoiceHandler 创建一个新的 VoiceHandler。
func NewVoiceHandler(sessionService service.SessionService, companionService service.CompanionService, jwtManager *token.JWTManager) *VoiceHandler {
	return &VoiceHandler{
		sessionService:   sessionService,
		companionService: companionService,
		jwtManager:       jwtManager,
	}
}

// voiceClientMessage 是客户端经 WebSocket 投递的帧。
// 除 SDK 生命周期事件外，还可携带 mute 指令。
type voiceClientMessage struct {
	Type           string `json:"type"`
	Role           string `json:"role,omitempty"`
	TranscriptType string `json:"transcriptType,omitempty"`
	Transcript     string `json:"transcript,omitempty"`
	Error          string `json:"error,omitempty"`
	Muted          bool   `json:"muted,omitempty"`
}

// Handle 处理一个传入的语音会话 WebSocket 连接。
// 认证令牌通过路径参数传递，伙伴 ID 通过查询参数传递。
func (h *VoiceHandler) Handle(c *gin.Context) {
	tokenString := c.Param("token")
	claims, err := h.jwtManager.VerifyToken(tokenString)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"code": http.StatusUnauthorized, "message": "无效的 token", "data": nil})
		return
	}

	companionID := c.Query("companionId")
	companion, err := h.companionService.GetByID(companionID)
	if err != nil {
		respondError(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WebSocket 升级失败", err)
		return
	}
	defer conn.Close()

	log.Infof("语音会话连接已建立, user: %s, companion: %s", claims.UserID, companion.Name)

	// 状态机的通知与完成回调会从消费协程写连接，加写锁保护
	var writeMu sync.Mutex
	writeJSON := func(v interface{}) {
		writeMu.Lock()
		defer writeMu.Unlock()
		b, err := json.Marshal(v)
		if err != nil {
			return
		}
		_ = conn.WriteMessage(websocket.TextMessage, b)
	}

	onTransition := func(status voice.CallStatus, speaking bool) {
		writeJSON(map[string]interface{}{
			"type":      "status",
			"status":    status.String(),
			"speaking":  speaking,
			"timestamp": time.Now().UnixMilli(),
			"date":      time.Now().Format("2006-01-02T15:04:05"),
		})
	}

	onFinish := func(transcript []model.TranscriptMessage) {
		entry, err := h.sessionService.Append(companion.ID, claims.UserID)
		if err != nil {
			log.Errorf("记录会话历史失败: user=%s, companion=%s, err=%v", claims.UserID, companion.ID, err)
			writeJSON(map[string]string{"error": "会话历史记录失败"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := h.sessionService.ArchiveTranscript(ctx, entry.ID, transcript); err != nil {
			log.Warnf("归档会话转录失败: session=%d, err=%v", entry.ID, err)
		}

		writeJSON(map[string]interface{}{
			"type":      "completion",
			"status":    "finished",
			"sessionId": entry.ID,
			"timestamp": time.Now().UnixMilli(),
			"date":      time.Now().Format("2006-01-02T15:04:05"),
		})
	}

	session := voice.NewSession(onFinish, onTransition)
	// 客户端断开而未发 call-end 时放弃会话，不记录历史
	defer session.Abort()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			log.Warnf("从 WebSocket 读取消息失败: %v", err)
			break
		}

		var msg voiceClientMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			log.Warnf("无法解析语音会话消息: %v, value: %s", err, string(message))
			continue
		}

		// mute 是客户端指令，不进状态机
		if msg.Type == "mute" {
			session.SetMuted(msg.Muted)
			writeJSON(map[string]interface{}{"type": "mute", "muted": session.IsMuted()})
			continue
		}

		session.Deliver(voice.Event{
			Type:           voice.EventType(msg.Type),
			Role:           msg.Role,
			TranscriptType: msg.TranscriptType,
			Transcript:     msg.Transcript,
			Error:          msg.Error,
		})

		// 会话结束后不再接收事件
		select {
		case <-session.Done():
			return
		default:
		}
	}
}
