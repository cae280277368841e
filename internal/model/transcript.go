package model

// TranscriptMessage 代表语音会话中一条最终转录文本。
// 部分转录（partial）不入列，只保留 final。
type TranscriptMessage struct {
	Role      string    `json:"role"` // "user" 或 "assistant"
	Content   string    `json:"content"`
	Timestamp LocalTime `json:"timestamp"`
}
