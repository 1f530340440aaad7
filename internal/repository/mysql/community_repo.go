package mysql

import (
	"context"
	"strconv"

	"gamehub/internal/model"

	"gorm.io/gorm"
)

type CommunityRepository struct {
	DB *gorm.DB
}

func (r *CommunityRepository) db() *gorm.DB {
	if r.DB != nil {
		return r.DB
	}
	return DB
}

// Create 建社区：同一事务里写入 owner 的成员行和默认频道
func (r *CommunityRepository) Create(ctx context.Context, c *model.Community, defaultChannel *model.Channel) error {
	return r.db().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(c).Error; err != nil {
			return err
		}

		mRepo := &MembershipRepository{DB: tx}
		if err := mRepo.Join(ctx, &model.Membership{
			CommunityID: c.ID,
			UserID:      c.OwnerID,
		}); err != nil {
			return err
		}

		if defaultChannel != nil {
			defaultChannel.CommunityID = c.ID
			if err := tx.Create(defaultChannel).Error; err != nil {
				return err
			}
			c.DefaultChannelID = &defaultChannel.ID
			if err := tx.Model(c).Update("default_channel_id", defaultChannel.ID).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *CommunityRepository) FindByID(ctx context.Context, id uint64) (*model.Community, error) {
	var community model.Community
	err := r.db().WithContext(ctx).First(&community, id).Error
	return &community, err
}

func (r *CommunityRepository) FindByPublicID(ctx context.Context, publicID string) (*model.Community, error) {
	var community model.Community
	err := r.db().WithContext(ctx).Where("public_id = ?", publicID).First(&community).Error
	return &community, err
}

// FindByRef 社区有两个 id：对外的 public_id 和存储主键。
// 先按 public_id 查，查不到且 ref 是数字时再按主键重试一次，两个都试过才算没有
func (r *CommunityRepository) FindByRef(ctx context.Context, ref string) (*model.Community, error) {
	community, err := r.FindByPublicID(ctx, ref)
	if err == nil {
		return community, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}
	id, perr := strconv.ParseUint(ref, 10, 64)
	if perr != nil {
		return nil, gorm.ErrRecordNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *CommunityRepository) List(ctx context.Context, offset, limit int) ([]model.Community, error) {
	var list []model.Community
	err := r.db().WithContext(ctx).Order("id desc").Offset(offset).Limit(limit).Find(&list).Error
	return list, err
}
