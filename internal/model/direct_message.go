package model

import "time"

// DirectMessage 两人私聊消息，逻辑频道名由双方 id 确定性推出
type DirectMessage struct {
	ID          uint64       `gorm:"primaryKey"`
	PublicID    string       `gorm:"uniqueIndex;size:36;not null"`
	SenderID    uint64       `gorm:"not null;index:idx_dm_pair,priority:1"`
	ReceiverID  uint64       `gorm:"not null;index:idx_dm_pair,priority:2"`
	Content     string       `gorm:"type:text"`
	GifURL      string       `gorm:"size:512"`
	Attachments []Attachment `gorm:"serializer:json;type:json"`
	Reactions   []Reaction   `gorm:"serializer:json;type:json"`
	ReplyToID   string       `gorm:"size:36;index"`
	Read        bool         `gorm:"not null;default:false"`
	Edited      bool         `gorm:"not null;default:false"`
	CreatedAt   time.Time    `gorm:"index"`
	UpdatedAt   time.Time
}

func (m *DirectMessage) HasContent() bool {
	return m.Content != "" || len(m.Attachments) > 0 || m.GifURL != ""
}
