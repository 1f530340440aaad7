package model

import "time"

const (
	ChannelKindText  = "text"
	ChannelKindVoice = "voice"
	ChannelKindVideo = "video"
)

// DefaultChannelName 社区没有任何频道时合成的默认频道名
const DefaultChannelName = "general"

type Channel struct {
	ID          uint64 `gorm:"primaryKey"`
	PublicID    string `gorm:"uniqueIndex;size:36;not null"`
	CommunityID uint64 `gorm:"not null;index:idx_channel_comm_pos,priority:1"`
	Name        string `gorm:"size:64;not null"`
	Kind        string `gorm:"size:16;not null;default:text"`
	Position    int    `gorm:"not null;default:0;index:idx_channel_comm_pos,priority:2"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
