package service

import (
	"context"
	"errors"

	"gamehub/internal/model"
	"gamehub/internal/pkg"
	"gamehub/internal/repository/mysql"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CommunityCreator interface {
	CommunityStore
	Create(ctx context.Context, c *model.Community, defaultChannel *model.Channel) error
	List(ctx context.Context, offset, limit int) ([]model.Community, error)
}

type MembershipEditor interface {
	Join(ctx context.Context, member *model.Membership) error
	Leave(ctx context.Context, communityID, userID uint64) error
}

type CommunityService struct {
	Repo     CommunityCreator
	Members  MembershipEditor
	Channels *ChannelService
}

func NewCommunityService() *CommunityService {
	return &CommunityService{
		Repo:     &mysql.CommunityRepository{},
		Members:  &mysql.MembershipRepository{},
		Channels: NewChannelService(),
	}
}

// CreateCommunity 建社区时同事务写入 owner 成员行和默认频道，
// 保证新社区从第一刻起就可达
func (s *CommunityService) CreateCommunity(ctx context.Context, ownerID uint64, name, desc string) (*model.Community, error) {
	if name == "" {
		return nil, pkg.NewAppError(pkg.KindInputInvalid, "community name required")
	}

	community := &model.Community{
		PublicID:    uuid.NewString(),
		Name:        name,
		Description: desc,
		OwnerID:     ownerID,
	}

	if err := s.Repo.Create(ctx, community, NewDefaultChannel()); err != nil {
		return nil, pkg.WrapAppError(pkg.KindPersistence, "community create failed", err)
	}

	return community, nil
}

func (s *CommunityService) JoinCommunity(ctx context.Context, userID uint64, communityRef string) error {
	community, err := s.Repo.FindByRef(ctx, communityRef)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkg.NewAppError(pkg.KindNotFound, "community not found")
		}
		return pkg.WrapAppError(pkg.KindPersistence, "community lookup failed", err)
	}

	if err := s.Members.Join(ctx, &model.Membership{
		CommunityID: community.ID,
		UserID:      userID,
	}); err != nil {
		return pkg.WrapAppError(pkg.KindPersistence, "join failed", err)
	}
	return nil
}

func (s *CommunityService) LeaveCommunity(ctx context.Context, userID uint64, communityRef string) error {
	community, err := s.Repo.FindByRef(ctx, communityRef)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkg.NewAppError(pkg.KindNotFound, "community not found")
		}
		return pkg.WrapAppError(pkg.KindPersistence, "community lookup failed", err)
	}

	// owner 不允许退出自己的社区
	if community.OwnerID == userID {
		return pkg.NewAppError(pkg.KindInputInvalid, "owner cannot leave")
	}

	if err := s.Members.Leave(ctx, community.ID, userID); err != nil {
		return pkg.WrapAppError(pkg.KindPersistence, "leave failed", err)
	}
	return nil
}

func (s *CommunityService) ListCommunities(ctx context.Context, page, size int) ([]model.Community, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 50 {
		size = 20
	}

	offset := (page - 1) * size
	list, err := s.Repo.List(ctx, offset, size)
	if err != nil {
		return nil, pkg.WrapAppError(pkg.KindPersistence, "community list failed", err)
	}
	return list, nil
}

// CommunityChannels 频道列表，空社区走自愈路径
func (s *CommunityService) CommunityChannels(ctx context.Context, communityRef string) (*model.Community, []model.Channel, error) {
	community, err := s.Repo.FindByRef(ctx, communityRef)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkg.NewAppError(pkg.KindNotFound, "community not found")
		}
		return nil, nil, pkg.WrapAppError(pkg.KindPersistence, "community lookup failed", err)
	}

	channels, err := s.Channels.EnsureChannels(ctx, community.ID)
	if err != nil {
		return nil, nil, err
	}
	return community, channels, nil
}
