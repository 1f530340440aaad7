package mysql

import (
	"context"

	"gamehub/internal/model"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func (r *UserRepository) db() *gorm.DB {
	if r.DB != nil {
		return r.DB
	}
	return DB
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return r.db().WithContext(ctx).Create(user).Error
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := r.db().WithContext(ctx).Where("username = ? OR email = ?", username, username).First(&user).Error
	return &user, err
}

func (r *UserRepository) FindByID(ctx context.Context, id uint64) (*model.User, error) {
	var user model.User
	err := r.db().WithContext(ctx).First(&user, id).Error
	return &user, err
}

// FindByIDs 批量拉取，调用方自己建 map，避免逐条查询
func (r *UserRepository) FindByIDs(ctx context.Context, ids []uint64) ([]model.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []model.User
	err := r.db().WithContext(ctx).Where("id IN ?", ids).Find(&users).Error
	return users, err
}
