package mysql

import (
	"context"

	"gamehub/internal/model"

	"gorm.io/gorm"
)

type ChannelRepository struct {
	DB *gorm.DB
}

func (r *ChannelRepository) db() *gorm.DB {
	if r.DB != nil {
		return r.DB
	}
	return DB
}

func (r *ChannelRepository) Create(ctx context.Context, ch *model.Channel) error {
	return r.db().WithContext(ctx).Create(ch).Error
}

func (r *ChannelRepository) ListByCommunity(ctx context.Context, communityID uint64) ([]model.Channel, error) {
	var list []model.Channel
	err := r.db().WithContext(ctx).
		Where("community_id = ?", communityID).
		Order("position asc, id asc").
		Find(&list).Error
	return list, err
}

func (r *ChannelRepository) FindByPublicID(ctx context.Context, communityID uint64, publicID string) (*model.Channel, error) {
	var ch model.Channel
	err := r.db().WithContext(ctx).
		Where("community_id = ? AND public_id = ?", communityID, publicID).
		First(&ch).Error
	return &ch, err
}
