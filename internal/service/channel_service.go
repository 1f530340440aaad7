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

type ChannelStore interface {
	Create(ctx context.Context, ch *model.Channel) error
	ListByCommunity(ctx context.Context, communityID uint64) ([]model.Channel, error)
	FindByPublicID(ctx context.Context, communityID uint64, publicID string) (*model.Channel, error)
}

type ChannelService struct {
	Channels ChannelStore
}

func NewChannelService() *ChannelService {
	return &ChannelService{
		Channels: &mysql.ChannelRepository{},
	}
}

// NewDefaultChannel 默认文字频道 "general"，position 0
func NewDefaultChannel() *model.Channel {
	return &model.Channel{
		PublicID: uuid.NewString(),
		Name:     model.DefaultChannelName,
		Kind:     model.ChannelKindText,
		Position: 0,
	}
}

// EnsureChannels 社区必须至少有一个频道。查出来是空就地合成默认频道，
// 不把数据缺口抛给用户
func (s *ChannelService) EnsureChannels(ctx context.Context, communityID uint64) ([]model.Channel, error) {
	list, err := s.Channels.ListByCommunity(ctx, communityID)
	if err != nil {
		return nil, pkg.WrapAppError(pkg.KindPersistence, "channel list failed", err)
	}
	if len(list) > 0 {
		return list, nil
	}

	ch := NewDefaultChannel()
	ch.CommunityID = communityID
	if err := s.Channels.Create(ctx, ch); err != nil {
		return nil, pkg.WrapAppError(pkg.KindPersistence, "default channel create failed", err)
	}
	return []model.Channel{*ch}, nil
}

// Resolve 按 public id 找频道；ref 为空时退到第一个频道
func (s *ChannelService) Resolve(ctx context.Context, communityID uint64, ref string) (*model.Channel, error) {
	if ref == "" {
		list, err := s.EnsureChannels(ctx, communityID)
		if err != nil {
			return nil, err
		}
		return &list[0], nil
	}

	ch, err := s.Channels.FindByPublicID(ctx, communityID, ref)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkg.NewAppError(pkg.KindNotFound, "channel not found")
		}
		return nil, pkg.WrapAppError(pkg.KindPersistence, "channel lookup failed", err)
	}
	return ch, nil
}
