package mysql

import (
	"context"
	"time"

	"gamehub/internal/model"

	"gorm.io/gorm"
)

type DirectMessageRepository struct {
	DB *gorm.DB
}

func (r *DirectMessageRepository) db() *gorm.DB {
	if r.DB != nil {
		return r.DB
	}
	return DB
}

func (r *DirectMessageRepository) Create(ctx context.Context, dm *model.DirectMessage) error {
	return r.db().WithContext(ctx).Create(dm).Error
}

func (r *DirectMessageRepository) FindByPublicID(ctx context.Context, publicID string) (*model.DirectMessage, error) {
	var dm model.DirectMessage
	err := r.db().WithContext(ctx).Where("public_id = ?", publicID).First(&dm).Error
	return &dm, err
}

// ListBetween 双向会话取两个方向的消息，新的在前
func (r *DirectMessageRepository) ListBetween(ctx context.Context, a, b uint64, limit int, before *time.Time) ([]model.DirectMessage, error) {
	q := r.db().WithContext(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)", a, b, b, a)
	if before != nil {
		q = q.Where("created_at < ?", *before)
	}
	var list []model.DirectMessage
	err := q.Order("created_at DESC, id DESC").Limit(limit).Find(&list).Error
	return list, err
}

func (r *DirectMessageRepository) Update(ctx context.Context, dm *model.DirectMessage) error {
	return r.db().WithContext(ctx).Save(dm).Error
}

func (r *DirectMessageRepository) Delete(ctx context.Context, id uint64) error {
	return r.db().WithContext(ctx).Delete(&model.DirectMessage{}, id).Error
}

// MarkRead 把对方发给我的消息置为已读
func (r *DirectMessageRepository) MarkRead(ctx context.Context, senderID, receiverID uint64) error {
	return r.db().WithContext(ctx).Model(&model.DirectMessage{}).
		Where("sender_id = ? AND receiver_id = ? AND `read` = false", senderID, receiverID).
		Update("read", true).Error
}
