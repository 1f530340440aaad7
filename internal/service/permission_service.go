package service

import (
	"context"
	"errors"

	"gamehub/internal/model"
	"gamehub/internal/perms"
	"gamehub/internal/pkg"
	"gamehub/internal/repository/mysql"

	"gorm.io/gorm"
)

// MaxRoleLookups 单次解析最多合并的角色数，防止病态角色数拖垮权限解析
const MaxRoleLookups = 10

// OwnerRoleName 社区所有者的隐式角色
const OwnerRoleName = "Owner"

type CommunityFinder interface {
	FindByRef(ctx context.Context, ref string) (*model.Community, error)
}

type MembershipFinder interface {
	Find(ctx context.Context, communityID, userID uint64) (*model.Membership, error)
	RoleIDs(ctx context.Context, membershipID uint64, limit int) ([]uint64, error)
}

type RoleFinder interface {
	FindByIDs(ctx context.Context, ids []uint64) ([]model.Role, error)
}

// PermissionResolver 供协调器和订阅授权注入测试替身
type PermissionResolver interface {
	Resolve(ctx context.Context, userID uint64, communityRef string) ([]string, perms.Set, error)
}

// PermissionService 有效权限解析。owner 短路只在这里做一次，
// 其他地方不准再内联判 owner
type PermissionService struct {
	Communities CommunityFinder
	Memberships MembershipFinder
	Roles       RoleFinder
}

func NewPermissionService() *PermissionService {
	return &PermissionService{
		Communities: &mysql.CommunityRepository{},
		Memberships: &mysql.MembershipRepository{},
		Roles:       &mysql.RoleRepository{},
	}
}

// Resolve 返回角色名和权限集。没有成员身份时返回空集且 err 为 nil，
// 调用方必须把空集当成拒绝，而不是默认权限
func (s *PermissionService) Resolve(ctx context.Context, userID uint64, communityRef string) ([]string, perms.Set, error) {
	community, err := s.Communities.FindByRef(ctx, communityRef)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkg.NewAppError(pkg.KindNotFound, "community not found")
		}
		return nil, nil, pkg.WrapAppError(pkg.KindPersistence, "community lookup failed", err)
	}

	// owner 隐式拥有全部权限，不查角色
	if community.OwnerID == userID {
		return []string{OwnerRoleName}, perms.FullSet(), nil
	}

	membership, err := s.Memberships.Find(ctx, community.ID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, perms.NewSet(), nil
		}
		return nil, nil, pkg.WrapAppError(pkg.KindPersistence, "membership lookup failed", err)
	}

	roleIDs, err := s.Memberships.RoleIDs(ctx, membership.ID, MaxRoleLookups)
	if err != nil {
		return nil, nil, pkg.WrapAppError(pkg.KindPersistence, "role lookup failed", err)
	}

	roles, err := s.Roles.FindByIDs(ctx, roleIDs)
	if err != nil {
		return nil, nil, pkg.WrapAppError(pkg.KindPersistence, "role lookup failed", err)
	}

	names := make([]string, 0, len(roles))
	set := perms.NewSet()
	for _, role := range roles {
		names = append(names, role.Name)
		set.Add(role.Permissions...)
	}

	if set.Has(perms.Administrator) {
		return names, perms.FullSet(), nil
	}

	// 真实成员但没挂任何权限：给保底读写集
	if set.Empty() {
		set.Add(perms.Baseline()...)
	}

	return names, set, nil
}
