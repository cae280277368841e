package model

import "time"

// SessionHistory 对应于数据库中的 'session_history' 表。
// 每完成一次语音会话就追加一行，从不删除；同一伙伴可以出现多次。
type SessionHistory struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CompanionID string    `gorm:"type:varchar(36);not null;index" json:"companionId"`
	UserID      string    `gorm:"type:varchar(64);not null;index" json:"userId"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (SessionHistory) TableName() string {
	return "session_history"
}
