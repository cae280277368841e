// Package model 定义了与数据库表对应的 Go 结构体。
package model

import "time"

// Companion 对应于数据库中的 'companions' 表。
// 一条记录描述一个可配置的 AI 辅导伙伴；创建后不可修改，作者永不变更。
type Companion struct {
	// ID 是伙伴的唯一标识符 (UUID)，作为主键。
	ID string `gorm:"type:varchar(36);primaryKey" json:"id"`
	// Name 是伙伴的显示名称。
	Name string `gorm:"type:varchar(100);not null" json:"name"`
	// Subject 是伙伴教授的学科，取值限于固定集合。
	Subject string `gorm:"type:varchar(50);not null;index" json:"subject"`
	// Topic 是自由文本的主题描述。
	Topic string `gorm:"type:text;not null" json:"topic"`
	// Voice 是语音性别，male 或 female。
	Voice string `gorm:"type:varchar(10);not null" json:"voice"`
	// Style 是讲授风格，formal 或 casual。
	Style string `gorm:"type:varchar(10);not null" json:"style"`
	// Duration 是单次会话时长（分钟），必须为正整数。
	Duration int `gorm:"not null" json:"duration"`
	// Author 是创建者在外部身份提供商中的用户 ID。
	Author string `gorm:"type:varchar(64);not null;index" json:"author"`
	// CreatedAt 由 GORM 自动管理，记录创建时间。
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (Companion) TableName() string {
	return "companions"
}

// Subjects 是伙伴可教授的学科固定集合。
var Subjects = []string{"maths", "language", "science", "history", "coding", "economics"}

// Voices 是允许的语音取值。
var Voices = []string{"male", "female"}

// Styles 是允许的讲授风格取值。
var Styles = []string{"formal", "casual"}

// contains 判断 s 是否在列表中。
func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// IsValidSubject 判断 subject 是否属于固定学科集合。
func IsValidSubject(subject string) bool { return contains(Subjects, subject) }

// IsValidVoice 判断 voice 取值是否合法。
func IsValidVoice(voice string) bool { return contains(Voices, voice) }

// IsValidStyle 判断 style 取值是否合法。
func IsValidStyle(style string) bool { return contains(Styles, style) }
