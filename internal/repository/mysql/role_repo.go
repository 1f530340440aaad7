package mysql

import (
	"context"

	"gamehub/internal/model"

	"gorm.io/gorm"
)

type RoleRepository struct {
	DB *gorm.DB
}

func (r *RoleRepository) db() *gorm.DB {
	if r.DB != nil {
		return r.DB
	}
	return DB
}

func (r *RoleRepository) FindByIDs(ctx context.Context, ids []uint64) ([]model.Role, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var roles []model.Role
	err := r.db().WithContext(ctx).Where("id IN ?", ids).Order("position asc").Find(&roles).Error
	return roles, err
}
