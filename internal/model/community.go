package model

import "time"

type Community struct {
	ID          uint64 `gorm:"primaryKey"`
	PublicID    string `gorm:"uniqueIndex;size:36;not null"` // 对外暴露的 id，广播频道名里用它
	Name        string `gorm:"size:64;not null"`
	Description string `gorm:"type:text"`
	OwnerID     uint64 `gorm:"not null;index"`
	// 默认频道，社区创建时写入；为空时由 ChannelService 自愈
	DefaultChannelID *uint64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type Membership struct {
	ID          uint64 `gorm:"primaryKey"`
	CommunityID uint64 `gorm:"not null;index;uniqueIndex:uk_community_user"`
	UserID      uint64 `gorm:"not null;index;uniqueIndex:uk_community_user"`
	Nickname    string `gorm:"size:32"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// MembershipRole 成员与角色的关联，Position 保证角色有序
type MembershipRole struct {
	ID           uint64 `gorm:"primaryKey"`
	MembershipID uint64 `gorm:"not null;index;uniqueIndex:uk_membership_role"`
	RoleID       uint64 `gorm:"not null;uniqueIndex:uk_membership_role"`
	Position     int    `gorm:"not null;default:0"`
	CreatedAt    time.Time
}
