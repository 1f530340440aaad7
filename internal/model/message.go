package model

import "time"

// Attachment 消息附件，整体以 JSON 存储
type Attachment struct {
	URL         string `json:"url"`
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// Reaction 一个表情对应的点过的用户集合
type Reaction struct {
	Emoji   string   `json:"emoji"`
	UserIDs []uint64 `json:"userIds"`
}

type Message struct {
	ID uint64 `gorm:"primaryKey"`
	// PublicID 对外稳定 id，与自增主键解耦，客户端只见这个
	PublicID    string       `gorm:"uniqueIndex;size:36;not null"`
	ChannelID   uint64       `gorm:"not null;index:idx_msg_chan_time,priority:1"`
	CommunityID uint64       `gorm:"not null;index"`
	AuthorID    uint64       `gorm:"not null;index"`
	Content     string       `gorm:"type:text"`
	GifURL      string       `gorm:"size:512"`
	Attachments []Attachment `gorm:"serializer:json;type:json"`
	Mentions    []uint64     `gorm:"serializer:json;type:json"`
	Reactions   []Reaction   `gorm:"serializer:json;type:json"`
	// ReplyToID 指向被回复消息的 PublicID，只展开一层
	ReplyToID string `gorm:"size:36;index"`
	Edited    bool   `gorm:"not null;default:false"`
	Pinned    bool   `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"index:idx_msg_chan_time,priority:2,sort:desc"`
	UpdatedAt time.Time
}

// HasContent 文本、附件、GIF 至少其一
func (m *Message) HasContent() bool {
	return m.Content != "" || len(m.Attachments) > 0 || m.GifURL != ""
}
