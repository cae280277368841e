package model

import "time"

// Bookmark 对应于数据库中的 'bookmarks' 表。
// 用户与伙伴之间的多对多收藏关系，逻辑身份是 (companion_id, user_id) 组合。
// 表上不做数据库级唯一约束，是否允许重复由 bookmark.enforce_unique 配置决定。
type Bookmark struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CompanionID string    `gorm:"type:varchar(36);not null;index:idx_bookmark_pair" json:"companionId"`
	UserID      string    `gorm:"type:varchar(64);not null;index:idx_bookmark_pair" json:"userId"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (Bookmark) TableName() string {
	return "bookmarks"
}
