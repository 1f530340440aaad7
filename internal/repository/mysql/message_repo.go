package mysql

import (
	"context"
	"time"

	"gamehub/internal/model"

	"gorm.io/gorm"
)

type MessageRepository struct {
	DB *gorm.DB
}

func (r *MessageRepository) db() *gorm.DB {
	if r.DB != nil {
		return r.DB
	}
	return DB
}

func (r *MessageRepository) Create(ctx context.Context, msg *model.Message) error {
	return r.db().WithContext(ctx).Create(msg).Error
}

func (r *MessageRepository) FindByPublicID(ctx context.Context, publicID string) (*model.Message, error) {
	var msg model.Message
	err := r.db().WithContext(ctx).Where("public_id = ?", publicID).First(&msg).Error
	return &msg, err
}

// FindByPublicIDs 批量取回复预览目标，一次 IN 查询
func (r *MessageRepository) FindByPublicIDs(ctx context.Context, publicIDs []string) ([]model.Message, error) {
	if len(publicIDs) == 0 {
		return nil, nil
	}
	var list []model.Message
	err := r.db().WithContext(ctx).Where("public_id IN ?", publicIDs).Find(&list).Error
	return list, err
}

// ListByChannel 新的在前；before 作为时间游标翻历史
func (r *MessageRepository) ListByChannel(ctx context.Context, channelID uint64, limit int, before *time.Time) ([]model.Message, error) {
	q := r.db().WithContext(ctx).Where("channel_id = ?", channelID)
	if before != nil {
		q = q.Where("created_at < ?", *before)
	}
	var list []model.Message
	err := q.Order("created_at DESC, id DESC").Limit(limit).Find(&list).Error
	return list, err
}

// Update 全量保存，编辑和表情变更共用
func (r *MessageRepository) Update(ctx context.Context, msg *model.Message) error {
	return r.db().WithContext(ctx).Save(msg).Error
}

// Delete 硬删除，没有墓碑
func (r *MessageRepository) Delete(ctx context.Context, id uint64) error {
	return r.db().WithContext(ctx).Delete(&model.Message{}, id).Error
}
