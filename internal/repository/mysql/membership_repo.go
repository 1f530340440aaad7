package mysql

import (
	"context"

	"gamehub/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MembershipRepository struct {
	DB *gorm.DB
}

func (r *MembershipRepository) db() *gorm.DB {
	if r.DB != nil {
		return r.DB
	}
	return DB
}

func (r *MembershipRepository) Join(ctx context.Context, member *model.Membership) error {
	// 幂等插入：(community_id, user_id) 已存在则不报错
	return r.db().WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "community_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(member).Error
}

func (r *MembershipRepository) Leave(ctx context.Context, communityID, userID uint64) error {
	return r.db().WithContext(ctx).Where("community_id = ? AND user_id = ?", communityID, userID).
		Delete(&model.Membership{}).Error
}

func (r *MembershipRepository) Find(ctx context.Context, communityID, userID uint64) (*model.Membership, error) {
	var m model.Membership
	err := r.db().WithContext(ctx).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		First(&m).Error
	return &m, err
}

func (r *MembershipRepository) IsMember(ctx context.Context, communityID, userID uint64) (bool, error) {
	var count int64
	err := r.db().WithContext(ctx).Model(&model.Membership{}).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		Count(&count).Error
	return count > 0, err
}

// RoleIDs 成员的角色 id，按 position 排序，limit 兜住病态角色数
func (r *MembershipRepository) RoleIDs(ctx context.Context, membershipID uint64, limit int) ([]uint64, error) {
	var links []model.MembershipRole
	err := r.db().WithContext(ctx).
		Where("membership_id = ?", membershipID).
		Order("position asc").
		Limit(limit).
		Find(&links).Error
	if err != nil {
		return nil, err
	}
	ids := make([]uint64, 0, len(links))
	for _, l := range links {
		ids = append(ids, l.RoleID)
	}
	return ids, nil
}
