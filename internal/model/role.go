package model

import "time"

type Role struct {
	ID          uint64   `gorm:"primaryKey"`
	CommunityID uint64   `gorm:"not null;index"` // 角色只属于一个社区
	Name        string   `gorm:"size:64;not null"`
	Permissions []string `gorm:"serializer:json;type:json"`
	Position    int      `gorm:"not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
